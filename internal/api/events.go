package api

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/alengo/customer-discount/internal/customer"
	"github.com/alengo/customer-discount/internal/order"
)

type cartChangedRequest struct {
	CustomerID string `json:"customerId"`
}

type promotionResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Code       string          `json:"code"`
	ValidUntil *time.Time      `json:"validUntil,omitempty"`
	Value      decimal.Decimal `json:"value"`
}

// cartChanged materializes the customer's entitlement as a promotion record.
// Customers without a materializable entitlement yield 204.
func (h *Handler) cartChanged(w http.ResponseWriter, r *http.Request) {
	var req cartChangedRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.CustomerID == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	cust, err := h.customers.GetByID(r.Context(), req.CustomerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.lg.Error("Get customer", zap.String("customer_id", req.CustomerID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	promo, err := h.promotions.OnCartChanged(r.Context(), cust)
	if err != nil {
		h.lg.Error("Materialize promotion", zap.String("customer_id", cust.ID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "promotion creation failed")
		return
	}
	if promo == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.writeJSON(w, http.StatusOK, promotionResponse{
		ID:         promo.ID,
		Name:       promo.Name,
		Code:       promo.Code,
		ValidUntil: promo.ValidUntil,
		Value:      promo.Discounts[0].Value,
	})
}

type orderPlacedRequest struct {
	OrderID    string                 `json:"orderId"`
	CustomerID string                 `json:"customerId"`
	PlacedAt   *time.Time             `json:"placedAt,omitempty"`
	LineItems  []orderLineItemRequest `json:"lineItems"`
}

type orderLineItemRequest struct {
	Type       string          `json:"type"`
	Label      string          `json:"label"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// orderPlaced settles the redeemed discount against the customer's balance.
func (h *Handler) orderPlaced(w http.ResponseWriter, r *http.Request) {
	var req orderPlacedRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	o := &order.Order{
		ID:         req.OrderID,
		CustomerID: req.CustomerID,
	}
	if req.PlacedAt != nil {
		o.PlacedAt = *req.PlacedAt
	}
	for _, li := range req.LineItems {
		o.LineItems = append(o.LineItems, order.LineItem{
			Type:       li.Type,
			Label:      li.Label,
			TotalPrice: li.TotalPrice,
		})
	}

	if err := h.settler.OnOrderPlaced(r.Context(), o); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.lg.Error("Settle order", zap.String("order_id", req.OrderID), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "settlement failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
