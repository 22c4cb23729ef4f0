package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/draftea/order-system/shipping-service/application"
	"github.com/draftea/order-system/shipping-service/infrastructure"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func newTestRouter() chi.Router {
	shipments := infrastructure.NewMemoryShipmentRepository()
	handlers := NewShippingHandlers(
		application.NewScheduleShipment(shipments, nil),
		application.NewGetShipment(shipments),
	)

	router := chi.NewRouter()
	handlers.RegisterRoutes(router)
	return router
}

func TestScheduleShipment(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/ship",
		strings.NewReader(`{"userId": "user123", "productId": "item123"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"scheduled"`)
}

func TestScheduleShipment_MissingUser(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/ship",
		strings.NewReader(`{"productId": "item123"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetShipment(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/ship",
		strings.NewReader(`{"userId": "user123", "productId": "item123"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var scheduled application.ScheduleShipmentResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scheduled))

	get := httptest.NewRequest(http.MethodGet, "/shipments/"+scheduled.ShipmentID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, get)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), scheduled.ShipmentID)
}
