package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"app/internal/domain/cart"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/middleware"
	repo "app/internal/repository"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// =====================
// In-memory fakes
// =====================

type stubSessionStore struct {
	snapshots map[string][]cart.ItemRecord
}

func (s *stubSessionStore) Get(_ context.Context, key string) ([]cart.ItemRecord, bool, error) {
	records, ok := s.snapshots[key]
	return records, ok, nil
}

func (s *stubSessionStore) Set(_ context.Context, key string, records []cart.ItemRecord) error {
	s.snapshots[key] = records
	return nil
}

type stubProductRepo struct {
	products map[int64]model.Product
}

func (r *stubProductRepo) ListPublic(_ context.Context, _ repo.ProductListQuery) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id int64) (model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindByIDs(_ context.Context, ids []int64) ([]model.Product, error) {
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Create(_ context.Context, p model.Product) (model.Product, error) {
	p.ID = int64(len(r.products) + 1)
	r.products[p.ID] = p
	return p, nil
}

func newTestServer() (*stubSessionStore, http.Handler) {
	store := &stubSessionStore{snapshots: map[string][]cart.ItemRecord{}}
	products := &stubProductRepo{products: map[int64]model.Product{
		1: {ID: 1, Name: "coffee", Price: decimal.RequireFromString("9.99"), IsActive: true},
	}}

	cartUC := usecase.NewCartUsecase(store, products, "CART")
	productUC := usecase.NewProductUsecase(products)

	cartH := handler.NewCartHandler(cartUC, time.Hour)
	productH := handler.NewProductHandler(productUC)

	return store, server.New(cartH, productH)
}

func doJSON(t *testing.T, h http.Handler, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) usecase.CartResponse {
	t.Helper()
	var out usecase.CartResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// =====================
// Tests
// =====================

// Cookieなしの初回アクセスでセッションが発行され、カートが使える
func TestCartHandler_AddIssuesSessionCookie(t *testing.T) {
	_, h := newTestServer()

	rec := doJSON(t, h, http.MethodPost, "/cart/items", `{"product_id":1,"quantity":2}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var sessionCookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.SessionCookieName {
			sessionCookie = ck
		}
	}
	assert.NotNil(t, sessionCookie)
	assert.NotEmpty(t, sessionCookie.Value)

	out := decodeCart(t, rec)
	assert.Equal(t, int64(2), out.Count)
	assert.Equal(t, "19.98", out.Total)
}

// 同じCookieで操作を続けると同じカートに載る
func TestCartHandler_SessionPersistsAcrossRequests(t *testing.T) {
	_, h := newTestServer()

	rec := doJSON(t, h, http.MethodPost, "/cart/items", `{"product_id":1}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()

	// quantity省略は1。もう一度追加して2になる
	rec = doJSON(t, h, http.MethodPost, "/cart/items", `{"product_id":1}`, cookies)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/cart", "", cookies)
	assert.Equal(t, http.StatusOK, rec.Code)

	out := decodeCart(t, rec)
	assert.Equal(t, int64(2), out.Count)
	assert.Equal(t, 1, out.UniqueCount)
}

func TestCartHandler_AddUnknownProduct(t *testing.T) {
	_, h := newTestServer()

	rec := doJSON(t, h, http.MethodPost, "/cart/items", `{"product_id":42}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartHandler_SetQuantityZeroRemoves(t *testing.T) {
	_, h := newTestServer()

	rec := doJSON(t, h, http.MethodPost, "/cart/items", `{"product_id":1,"quantity":3}`, nil)
	cookies := rec.Result().Cookies()

	rec = doJSON(t, h, http.MethodPatch, "/cart/items/1", `{"quantity":0}`, cookies)
	assert.Equal(t, http.StatusOK, rec.Code)

	out := decodeCart(t, rec)
	assert.Equal(t, 0, out.UniqueCount)
	assert.Equal(t, "0", out.Total)
}

func TestCartHandler_DecrementAndClear(t *testing.T) {
	store, h := newTestServer()

	rec := doJSON(t, h, http.MethodPost, "/cart/items", `{"product_id":1,"quantity":2}`, nil)
	cookies := rec.Result().Cookies()

	rec = doJSON(t, h, http.MethodPost, "/cart/items/1/decrement", "", cookies)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decodeCart(t, rec).Count)

	rec = doJSON(t, h, http.MethodDelete, "/cart", "", cookies)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decodeCart(t, rec).UniqueCount)

	// セッション側のスナップショットも空になっている
	var sessionCookie string
	for _, ck := range cookies {
		if ck.Name == middleware.SessionCookieName {
			sessionCookie = ck.Value
		}
	}
	assert.Empty(t, store.snapshots[sessionCookie+":CART"])
}

func TestCartHandler_InvalidQuantity(t *testing.T) {
	_, h := newTestServer()

	rec := doJSON(t, h, http.MethodPost, "/cart/items", `{"product_id":1,"quantity":-2}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
