package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/draftea/order-system/order-service/application"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

// Response bodies of the order placement endpoint. Existing callers match on
// these strings, so they never change.
const (
	orderCompletedBody = "Order completed successfully."
	orderFailedBody    = "Order failed. Compensation triggered."
)

// OrderHandlers contains order HTTP handlers
type OrderHandlers struct {
	placeOrder *application.PlaceOrder
	getOrder   *application.GetOrder
}

// NewOrderHandlers creates new order handlers
func NewOrderHandlers(
	placeOrder *application.PlaceOrder,
	getOrder *application.GetOrder,
) *OrderHandlers {
	return &OrderHandlers{
		placeOrder: placeOrder,
		getOrder:   getOrder,
	}
}

// CreateOrder handles order placement requests. The response body states only
// the overall outcome; which step failed stays internal to the audit trail.
func (h *OrderHandlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var cmd application.PlaceOrderCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cmd.IdempotencyKey = r.Header.Get("Idempotency-Key")

	response, err := h.placeOrder.Execute(r.Context(), &cmd)
	if err != nil {
		if errors.Cause(err) == application.ErrValidation {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if !response.Completed() {
		http.Error(w, orderFailedBody, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(orderCompletedBody))
}

// GetOrder handles order retrieval requests
func (h *OrderHandlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		http.Error(w, "Order ID is required", http.StatusBadRequest)
		return
	}

	query := &application.GetOrderQuery{
		OrderID: orderID,
	}

	response, err := h.getOrder.Execute(r.Context(), query)
	if err != nil {
		if errors.Cause(err) == application.ErrValidation {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err.Error() == "order not found" {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// RegisterRoutes registers order routes
func (h *OrderHandlers) RegisterRoutes(r chi.Router) {
	r.Post("/create-order", h.CreateOrder)
	r.Route("/orders", func(r chi.Router) {
		r.Get("/{id}", h.GetOrder)
	})
}
