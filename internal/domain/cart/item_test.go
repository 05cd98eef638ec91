package cart_test

import (
	"testing"

	"app/internal/domain/cart"
	"app/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestItem_Subtotal(t *testing.T) {
	item := cart.NewItem(productA(), 3, dec("9.99"))
	assert.True(t, item.Subtotal().Equal(dec("29.97")))

	single := cart.NewItem(productA(), 1, dec("0.10"))
	assert.True(t, single.Subtotal().Equal(dec("0.10")))
}

func TestItem_Record(t *testing.T) {
	item := cart.NewItem(model.Product{ID: 7, Name: "mug"}, 2, dec("12.30"))

	record := item.Record()
	assert.Equal(t, cart.ItemRecord{ProductID: 7, Quantity: 2, Price: "12.3"}, record)
}

// レコード→明細→レコードで完全に同一になる
func TestItem_RecordRoundTrip(t *testing.T) {
	original := cart.ItemRecord{ProductID: 7, Quantity: 2, Price: "12.3"}

	price, err := decimal.NewFromString(original.Price)
	assert.NoError(t, err)

	item := cart.NewItem(model.Product{ID: 7}, original.Quantity, price)
	assert.Equal(t, original, item.Record())
}
