package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/draftea/order-system/inventory-service/application"
	"github.com/draftea/order-system/inventory-service/domain"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

// outOfStockBody is matched by existing callers and never changes.
const outOfStockBody = "Out of stock"

// InventoryHandlers contains inventory HTTP handlers
type InventoryHandlers struct {
	reserveStock *application.ReserveStock
	releaseStock *application.ReleaseStock
	getStock     *application.GetStock
}

// NewInventoryHandlers creates new inventory handlers
func NewInventoryHandlers(
	reserveStock *application.ReserveStock,
	releaseStock *application.ReleaseStock,
	getStock *application.GetStock,
) *InventoryHandlers {
	return &InventoryHandlers{
		reserveStock: reserveStock,
		releaseStock: releaseStock,
		getStock:     getStock,
	}
}

// ReserveStock handles stock reservation requests
func (h *InventoryHandlers) ReserveStock(w http.ResponseWriter, r *http.Request) {
	var cmd application.ReserveStockCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	response, err := h.reserveStock.Execute(r.Context(), &cmd)
	if err != nil {
		if errors.Cause(err) == domain.ErrOutOfStock {
			http.Error(w, outOfStockBody, http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// ReleaseStock handles stock release requests
func (h *InventoryHandlers) ReleaseStock(w http.ResponseWriter, r *http.Request) {
	var cmd application.ReleaseStockCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	response, err := h.releaseStock.Execute(r.Context(), &cmd)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetStock handles stock retrieval requests
func (h *InventoryHandlers) GetStock(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		http.Error(w, "Product ID is required", http.StatusBadRequest)
		return
	}

	response, err := h.getStock.Execute(r.Context(), &application.GetStockQuery{
		ProductID: productID,
	})
	if err != nil {
		if err.Error() == "product not found" {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// RegisterRoutes registers inventory routes
func (h *InventoryHandlers) RegisterRoutes(r chi.Router) {
	r.Post("/reserve", h.ReserveStock)
	r.Post("/release", h.ReleaseStock)
	r.Route("/stock", func(r chi.Router) {
		r.Get("/{productId}", h.GetStock)
	})
}
