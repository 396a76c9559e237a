package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/alengo/customer-discount/internal/customer"
)

type entitlementResponse struct {
	Name           string          `json:"name"`
	Amount         decimal.Decimal `json:"amount"`
	ExpirationDate *string         `json:"expirationDate,omitempty"`
}

// getEntitlement returns the customer's decoded discount entitlement.
func (h *Handler) getEntitlement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	cust, err := h.customers.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.lg.Error("Get customer", zap.String("customer_id", id), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if cust.Entitlement == nil {
		h.writeError(w, http.StatusNotFound, "no entitlement configured")
		return
	}

	resp := entitlementResponse{
		Name:   cust.Entitlement.Name,
		Amount: cust.Entitlement.Amount,
	}
	if cust.Entitlement.ExpirationDate != nil {
		s := cust.Entitlement.ExpirationDate.Format(time.DateOnly)
		resp.ExpirationDate = &s
	}

	h.writeJSON(w, http.StatusOK, resp)
}

type updateEntitlementRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// putEntitlement overwrites the remaining balance of the entitlement.
func (h *Handler) putEntitlement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateEntitlementRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Amount.IsNegative() {
		h.writeError(w, http.StatusUnprocessableEntity, "amount must not be negative")
		return
	}

	if err := h.customers.UpdateEntitlementAmount(r.Context(), id, req.Amount); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.lg.Error("Update entitlement", zap.String("customer_id", id), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
