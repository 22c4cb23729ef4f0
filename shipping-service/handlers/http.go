package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/draftea/order-system/shipping-service/application"
	"github.com/go-chi/chi/v5"
)

// ShippingHandlers contains shipping HTTP handlers
type ShippingHandlers struct {
	scheduleShipment *application.ScheduleShipment
	getShipment      *application.GetShipment
}

// NewShippingHandlers creates new shipping handlers
func NewShippingHandlers(
	scheduleShipment *application.ScheduleShipment,
	getShipment *application.GetShipment,
) *ShippingHandlers {
	return &ShippingHandlers{
		scheduleShipment: scheduleShipment,
		getShipment:      getShipment,
	}
}

// ScheduleShipment handles shipment scheduling requests
func (h *ShippingHandlers) ScheduleShipment(w http.ResponseWriter, r *http.Request) {
	var cmd application.ScheduleShipmentCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	response, err := h.scheduleShipment.Execute(r.Context(), &cmd)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetShipment handles shipment retrieval requests
func (h *ShippingHandlers) GetShipment(w http.ResponseWriter, r *http.Request) {
	shipmentID := chi.URLParam(r, "id")
	if shipmentID == "" {
		http.Error(w, "Shipment ID is required", http.StatusBadRequest)
		return
	}

	response, err := h.getShipment.Execute(r.Context(), &application.GetShipmentQuery{
		ShipmentID: shipmentID,
	})
	if err != nil {
		if err.Error() == "shipment not found" {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// RegisterRoutes registers shipping routes
func (h *ShippingHandlers) RegisterRoutes(r chi.Router) {
	r.Post("/ship", h.ScheduleShipment)
	r.Route("/shipments", func(r chi.Router) {
		r.Get("/{id}", h.GetShipment)
	})
}
