// Package api exposes the checkout pipeline and its surrounding event hooks
// over HTTP. The platform invokes these endpoints; no business logic lives
// here beyond request mapping.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/alengo/customer-discount/internal/checkout"
	"github.com/alengo/customer-discount/internal/customer"
	"github.com/alengo/customer-discount/internal/order"
	"github.com/alengo/customer-discount/internal/promotion"
)

// Handler wires the HTTP surface to the domain services.
type Handler struct {
	calculator *checkout.Calculator
	customers  customer.Repository
	promotions *promotion.Materializer
	settler    *order.Settler
	lg         *zap.Logger
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	calculator *checkout.Calculator,
	customers customer.Repository,
	promotions *promotion.Materializer,
	settler *order.Settler,
	lg *zap.Logger,
) *Handler {
	return &Handler{
		calculator: calculator,
		customers:  customers,
		promotions: promotions,
		settler:    settler,
		lg:         lg,
	}
}

// Routes returns the API router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/checkout/cart/calculate", h.calculateCart)
	r.Post("/events/cart-changed", h.cartChanged)
	r.Post("/events/order-placed", h.orderPlaced)
	r.Get("/customers/{id}/entitlement", h.getEntitlement)
	r.Put("/customers/{id}/entitlement", h.putEntitlement)

	return r
}
