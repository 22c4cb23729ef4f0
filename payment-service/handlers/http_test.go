package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/draftea/order-system/payment-service/application"
	"github.com/draftea/order-system/payment-service/domain"
	"github.com/draftea/order-system/payment-service/infrastructure"
	"github.com/draftea/order-system/shared/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func newTestRouter(t *testing.T, userID string, balance int64) chi.Router {
	t.Helper()

	store := infrastructure.NewMemoryAccountStore()
	account, err := domain.NewAccount(userID, models.NewMoney(balance, "USD"))
	assert.NoError(t, err)
	assert.NoError(t, store.Save(context.Background(), account))

	price := models.NewMoney(100, "USD")
	handlers := NewPaymentHandlers(
		application.NewChargeAccount(store, nil, price),
		application.NewRefundAccount(store, nil, price),
		application.NewGetAccount(store),
	)

	router := chi.NewRouter()
	handlers.RegisterRoutes(router)
	return router
}

func TestChargeAccount(t *testing.T) {
	router := newTestRouter(t, "user123", 100)

	req := httptest.NewRequest(http.MethodPost, "/charge",
		strings.NewReader(`{"userId": "user123"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"amount":100`)
}

func TestChargeAccount_InsufficientFunds(t *testing.T) {
	router := newTestRouter(t, "user123", 0)

	req := httptest.NewRequest(http.MethodPost, "/charge",
		strings.NewReader(`{"userId": "user123"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Insufficient funds", strings.TrimSpace(rec.Body.String()))
}

func TestRefundAccount(t *testing.T) {
	router := newTestRouter(t, "user123", 0)

	req := httptest.NewRequest(http.MethodPost, "/refund",
		strings.NewReader(`{"userId": "user123"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"amount":100`)
}

func TestRefundThenChargeSucceeds(t *testing.T) {
	router := newTestRouter(t, "user123", 0)

	refund := httptest.NewRequest(http.MethodPost, "/refund",
		strings.NewReader(`{"userId": "user123"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, refund)
	assert.Equal(t, http.StatusOK, rec.Code)

	charge := httptest.NewRequest(http.MethodPost, "/charge",
		strings.NewReader(`{"userId": "user123"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, charge)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetAccount(t *testing.T) {
	router := newTestRouter(t, "user123", 250)

	req := httptest.NewRequest(http.MethodGet, "/accounts/user123", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"amount":250`)
}

func TestGetAccount_NotFound(t *testing.T) {
	router := newTestRouter(t, "user123", 250)

	req := httptest.NewRequest(http.MethodGet, "/accounts/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
