package cart

import (
	"app/internal/domain/model"

	"github.com/shopspring/decimal"
)

// カートの明細。価格は最初に追加した時点の値を保持し、
// カタログ側で値上げ・値下げされても変わらない。
type Item struct {
	Product  model.Product
	Quantity int64
	Price    decimal.Decimal
}

// セッションに書き込む1明細分のレコード。
// 価格は10進文字列。floatを経由すると往復で誤差が出るので使わない。
type ItemRecord struct {
	ProductID int64  `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Price     string `json:"price"`
}

func NewItem(product model.Product, quantity int64, price decimal.Decimal) *Item {
	return &Item{
		Product:  product,
		Quantity: quantity,
		Price:    price,
	}
}

// 明細の小計（単価×数量）。
func (i *Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}

// シリアライズ→復元→再シリアライズで同一になること。
func (i *Item) Record() ItemRecord {
	return ItemRecord{
		ProductID: i.Product.ID,
		Quantity:  i.Quantity,
		Price:     i.Price.String(),
	}
}
