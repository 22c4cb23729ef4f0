package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/draftea/order-system/payment-service/application"
	"github.com/draftea/order-system/payment-service/domain"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

// insufficientFundsBody is matched by existing callers and never changes.
const insufficientFundsBody = "Insufficient funds"

// PaymentHandlers contains payment HTTP handlers
type PaymentHandlers struct {
	chargeAccount *application.ChargeAccount
	refundAccount *application.RefundAccount
	getAccount    *application.GetAccount
}

// NewPaymentHandlers creates new payment handlers
func NewPaymentHandlers(
	chargeAccount *application.ChargeAccount,
	refundAccount *application.RefundAccount,
	getAccount *application.GetAccount,
) *PaymentHandlers {
	return &PaymentHandlers{
		chargeAccount: chargeAccount,
		refundAccount: refundAccount,
		getAccount:    getAccount,
	}
}

// ChargeAccount handles charge requests
func (h *PaymentHandlers) ChargeAccount(w http.ResponseWriter, r *http.Request) {
	var cmd application.ChargeAccountCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	response, err := h.chargeAccount.Execute(r.Context(), &cmd)
	if err != nil {
		if errors.Cause(err) == domain.ErrInsufficientFunds {
			http.Error(w, insufficientFundsBody, http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// RefundAccount handles refund requests
func (h *PaymentHandlers) RefundAccount(w http.ResponseWriter, r *http.Request) {
	var cmd application.RefundAccountCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	response, err := h.refundAccount.Execute(r.Context(), &cmd)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetAccount handles account retrieval requests
func (h *PaymentHandlers) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		http.Error(w, "User ID is required", http.StatusBadRequest)
		return
	}

	response, err := h.getAccount.Execute(r.Context(), &application.GetAccountQuery{
		UserID: userID,
	})
	if err != nil {
		if err.Error() == "account not found" {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// RegisterRoutes registers payment routes
func (h *PaymentHandlers) RegisterRoutes(r chi.Router) {
	r.Post("/charge", h.ChargeAccount)
	r.Post("/refund", h.RefundAccount)
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/{userId}", h.GetAccount)
	})
}
