package cart

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"app/internal/domain/model"

	"github.com/shopspring/decimal"
)

var (
	// Add/SetQuantityに不正な数量が渡された
	ErrInvalidQuantity = errors.New("cart: invalid quantity")
	// 未追加の商品をpriceなしでAddした（呼び出し側のバグ）
	ErrMissingPrice = errors.New("cart: missing price")
	// 構築時の依存が不正
	ErrConfiguration = errors.New("cart: invalid configuration")
)

// セッションに載るカート。商品IDをキーに明細を持つ。
// 1つのセッションキーに紐づき、変更のたびに全スナップショットを書き戻す。
// 1リクエスト内で使い切る前提で、複数goroutineからの共有はしない。
type Cart struct {
	items    map[int64]*Item
	store    SessionStore
	key      string
	products ProductFinder
}

// セッションのスナップショットからカートを復元する。
// 商品はFindByIDsで一括解決し、カタログから消えた商品の明細は黙って捨てる
// （削除済み商品がセッションに残っていても自己修復する）。
func New(ctx context.Context, store SessionStore, key string, products ProductFinder) (*Cart, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil session store", ErrConfiguration)
	}
	if key == "" {
		return nil, fmt.Errorf("%w: empty session key", ErrConfiguration)
	}
	if products == nil {
		return nil, fmt.Errorf("%w: nil product finder", ErrConfiguration)
	}

	c := &Cart{
		items:    map[int64]*Item{},
		store:    store,
		key:      key,
		products: products,
	}

	records, found, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found || len(records) == 0 {
		return c, nil
	}

	ids := make([]int64, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ProductID)
	}

	// 1明細ごとに引かず、1回のカタログ参照で済ませる
	resolved, err := products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]model.Product, len(resolved))
	for _, p := range resolved {
		byID[p.ID] = p
	}

	for _, r := range records {
		p, ok := byID[r.ProductID]
		if !ok {
			continue
		}
		price, err := decimal.NewFromString(r.Price)
		if err != nil {
			continue
		}
		c.items[p.ID] = NewItem(p, r.Quantity, price)
	}

	return c, nil
}

// 商品がカートに入っているか。
func (c *Cart) Contains(product model.Product) bool {
	_, ok := c.items[product.ID]
	return ok
}

// 商品を追加する。既に入っている商品は数量を加算し、priceは無視する
// （単価は最初の追加時に確定する）。未追加の商品はpriceが必須。
func (c *Cart) Add(ctx context.Context, product model.Product, quantity int64, price *decimal.Decimal) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if item, ok := c.items[product.ID]; ok {
		item.Quantity += quantity
	} else {
		if price == nil {
			return ErrMissingPrice
		}
		c.items[product.ID] = NewItem(product, quantity, *price)
	}
	return c.persist(ctx)
}

// 商品を明細ごと取り除く。入っていなければ何もしない。
func (c *Cart) Remove(ctx context.Context, product model.Product) error {
	if _, ok := c.items[product.ID]; !ok {
		return nil
	}
	delete(c.items, product.ID)
	return c.persist(ctx)
}

// 数量を1つ減らす。残り1つなら明細ごと取り除く。入っていなければ何もしない。
func (c *Cart) RemoveSingle(ctx context.Context, product model.Product) error {
	item, ok := c.items[product.ID]
	if !ok {
		return nil
	}
	if item.Quantity <= 1 {
		delete(c.items, product.ID)
	} else {
		item.Quantity--
	}
	return c.persist(ctx)
}

// 数量を指定値にする。0は削除と同じ。入っていなければ何もしない。
func (c *Cart) SetQuantity(ctx context.Context, product model.Product, quantity int64) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if _, ok := c.items[product.ID]; !ok {
		return nil
	}
	if quantity < 1 {
		delete(c.items, product.ID)
	} else {
		c.items[product.ID].Quantity = quantity
	}
	return c.persist(ctx)
}

// 全明細を取り除く。
func (c *Cart) Clear(ctx context.Context) error {
	c.items = map[int64]*Item{}
	return c.persist(ctx)
}

// 現在の全明細をセッションに書き戻す。差分ではなく常に全量
// （カートは小さいので単純さを優先）。
func (c *Cart) persist(ctx context.Context) error {
	return c.store.Set(ctx, c.key, c.ItemsSerializable())
}

// 明細一覧。順序は保証しない。
func (c *Cart) Items() []*Item {
	items := make([]*Item, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item)
	}
	return items
}

// セッションに書く形の明細一覧。スナップショットを安定させるため商品ID順。
func (c *Cart) ItemsSerializable() []ItemRecord {
	records := make([]ItemRecord, 0, len(c.items))
	for _, item := range c.items {
		records = append(records, item.Record())
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ProductID < records[j].ProductID
	})
	return records
}

// 数量の合計。
func (c *Cart) Count() int64 {
	var n int64
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

// 商品種類の数。
func (c *Cart) UniqueCount() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return c.UniqueCount() == 0
}

// 明細が参照している商品の一覧。順序は保証しない。
func (c *Cart) Products() []model.Product {
	products := make([]model.Product, 0, len(c.items))
	for _, item := range c.items {
		products = append(products, item.Product)
	}
	return products
}

// 小計の合計。空ならゼロ。
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Subtotal())
	}
	return total
}
