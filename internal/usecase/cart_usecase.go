package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"app/internal/domain/cart"
	"app/internal/domain/model"
	repo "app/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// カートの状態はDBではなくセッションのスナップショットに置き、
// リクエストごとに復元してから操作します。
type CartUsecase struct {
	store          cart.SessionStore
	productRepo    repo.ProductRepository
	cartSessionKey string
}

func NewCartUsecase(store cart.SessionStore, productRepo repo.ProductRepository, cartSessionKey string) *CartUsecase {
	return &CartUsecase{
		store:          store,
		productRepo:    productRepo,
		cartSessionKey: cartSessionKey,
	}
}

// レスポンスのprice/subtotalは追加時点の価格スナップショット。
type CartItemResponse struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int64  `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type CartResponse struct {
	Items       []CartItemResponse `json:"items"`
	Count       int64              `json:"count"`
	UniqueCount int                `json:"unique_count"`
	Total       string             `json:"total"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

// セッションIDとキー名からカートの置き場所を決める
func (u *CartUsecase) cartKey(sessionID string) string {
	return fmt.Sprintf("%s:%s", sessionID, u.cartSessionKey)
}

// セッションからカートを復元する
func (u *CartUsecase) loadCart(ctx context.Context, sessionID string) (*cart.Cart, error) {
	if sessionID == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "missing session")
	}
	c, err := cart.New(ctx, u.store, u.cartKey(sessionID), u.productRepo)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "session error")
	}
	return c, nil
}

// GetCart はカート取得（無ければ空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, sessionID string) (CartResponse, error) {
	c, err := u.loadCart(ctx, sessionID)
	if err != nil {
		return CartResponse{}, err
	}
	return buildCartResponse(c), nil
}

// AddToCart はカートに追加（同一商品は数量加算、単価は初回追加時に確定）。
func (u *CartUsecase) AddToCart(ctx context.Context, sessionID string, in AddCartInput) (CartResponse, error) {
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	// 商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}

	c, err := u.loadCart(ctx, sessionID)
	if err != nil {
		return CartResponse{}, err
	}

	// 初回追加なら現在のカタログ価格をスナップショットとして渡す。
	// 既に入っている商品ではcart側が無視する。
	price := p.Price
	if err := c.Add(ctx, p, in.Quantity, &price); err != nil {
		return CartResponse{}, mapCartError(err)
	}

	return buildCartResponse(c), nil
}

// RemoveFromCart は明細ごと削除。入っていない商品でもエラーにしない。
func (u *CartUsecase) RemoveFromCart(ctx context.Context, sessionID string, productID int64) (CartResponse, error) {
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	c, err := u.loadCart(ctx, sessionID)
	if err != nil {
		return CartResponse{}, err
	}

	if err := c.Remove(ctx, productByID(c, productID)); err != nil {
		return CartResponse{}, mapCartError(err)
	}
	return buildCartResponse(c), nil
}

// RemoveSingleFromCart は数量を1減らす（残り1なら明細ごと削除）。
func (u *CartUsecase) RemoveSingleFromCart(ctx context.Context, sessionID string, productID int64) (CartResponse, error) {
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	c, err := u.loadCart(ctx, sessionID)
	if err != nil {
		return CartResponse{}, err
	}

	if err := c.RemoveSingle(ctx, productByID(c, productID)); err != nil {
		return CartResponse{}, mapCartError(err)
	}
	return buildCartResponse(c), nil
}

// SetQuantity は数量変更（0は削除と同じ）。
func (u *CartUsecase) SetQuantity(ctx context.Context, sessionID string, productID int64, quantity int64) (CartResponse, error) {
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	c, err := u.loadCart(ctx, sessionID)
	if err != nil {
		return CartResponse{}, err
	}

	if err := c.SetQuantity(ctx, productByID(c, productID), quantity); err != nil {
		return CartResponse{}, mapCartError(err)
	}
	return buildCartResponse(c), nil
}

// ClearCart は全明細削除。
func (u *CartUsecase) ClearCart(ctx context.Context, sessionID string) (CartResponse, error) {
	c, err := u.loadCart(ctx, sessionID)
	if err != nil {
		return CartResponse{}, err
	}

	if err := c.Clear(ctx); err != nil {
		return CartResponse{}, mapCartError(err)
	}
	return buildCartResponse(c), nil
}

// cartの業務エラーをHTTPエラーへ
func mapCartError(err error) error {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		return NewHTTPError(http.StatusBadRequest, "invalid quantity")
	case errors.Is(err, cart.ErrMissingPrice):
		return NewHTTPError(http.StatusBadRequest, "missing price")
	default:
		return NewHTTPError(http.StatusInternalServerError, "session error")
	}
}

// 削除系はカート内の商品参照だけで足りるので、カタログは引かない。
// カートに入っていなければIDだけの参照になり、cart側でno-opになる。
func productByID(c *cart.Cart, productID int64) model.Product {
	for _, p := range c.Products() {
		if p.ID == productID {
			return p
		}
	}
	return model.Product{ID: productID}
}

// カート全体をCartResponseへ
func buildCartResponse(c *cart.Cart) CartResponse {
	items := c.Items()
	respItems := make([]CartItemResponse, 0, len(items))
	for _, item := range items {
		respItems = append(respItems, CartItemResponse{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			Price:     item.Price.String(),
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal().String(),
		})
	}

	// レスポンスの並びを安定させる
	sort.Slice(respItems, func(i, j int) bool {
		return respItems[i].ProductID < respItems[j].ProductID
	})

	return CartResponse{
		Items:       respItems,
		Count:       c.Count(),
		UniqueCount: c.UniqueCount(),
		Total:       c.Total().String(),
	}
}
