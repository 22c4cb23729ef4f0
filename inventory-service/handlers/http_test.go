package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/draftea/order-system/inventory-service/application"
	"github.com/draftea/order-system/inventory-service/domain"
	"github.com/draftea/order-system/inventory-service/infrastructure"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func newTestRouter(t *testing.T, productID string, available int) chi.Router {
	t.Helper()

	store := infrastructure.NewMemoryStockStore()
	stock, err := domain.NewStock(productID, available)
	assert.NoError(t, err)
	assert.NoError(t, store.Save(context.Background(), stock))

	handlers := NewInventoryHandlers(
		application.NewReserveStock(store, nil),
		application.NewReleaseStock(store, nil),
		application.NewGetStock(store),
	)

	router := chi.NewRouter()
	handlers.RegisterRoutes(router)
	return router
}

func TestReserveStock(t *testing.T) {
	router := newTestRouter(t, "item123", 1)

	req := httptest.NewRequest(http.MethodPost, "/reserve",
		strings.NewReader(`{"productId": "item123"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"remaining":0`)
}

func TestReserveStock_OutOfStock(t *testing.T) {
	router := newTestRouter(t, "item123", 0)

	req := httptest.NewRequest(http.MethodPost, "/reserve",
		strings.NewReader(`{"productId": "item123"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Out of stock", strings.TrimSpace(rec.Body.String()))
}

func TestReleaseStock(t *testing.T) {
	router := newTestRouter(t, "item123", 0)

	req := httptest.NewRequest(http.MethodPost, "/release",
		strings.NewReader(`{"productId": "item123"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"remaining":1`)
}

func TestGetStock(t *testing.T) {
	router := newTestRouter(t, "item123", 7)

	req := httptest.NewRequest(http.MethodGet, "/stock/item123", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"available":7`)
}

func TestGetStock_NotFound(t *testing.T) {
	router := newTestRouter(t, "item123", 7)

	req := httptest.NewRequest(http.MethodGet, "/stock/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
