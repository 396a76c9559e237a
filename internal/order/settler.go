package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/alengo/customer-discount/internal/checkout/cart"
	"github.com/alengo/customer-discount/internal/customer"
)

// Settler decrements a customer's entitlement balance by the discount
// redeemed in a placed order. The balance never goes below zero.
type Settler struct {
	customers customer.Repository
	lg        *zap.Logger
}

// NewSettler creates a Settler backed by the given customer repository.
func NewSettler(customers customer.Repository, lg *zap.Logger) *Settler {
	return &Settler{customers: customers, lg: lg}
}

// OnOrderPlaced settles the discount of the given order. Orders without a
// customer, without an entitlement, or without redeemed discount line items
// are a no-op.
func (s *Settler) OnOrderPlaced(ctx context.Context, o *Order) error {
	if o.CustomerID == "" {
		return nil
	}

	redeemed := redeemedDiscount(o.LineItems)
	if redeemed.IsZero() {
		return nil
	}

	cust, err := s.customers.GetByID(ctx, o.CustomerID)
	if err != nil {
		return errors.Wrapf(err, "get customer %s", o.CustomerID)
	}
	if cust.Entitlement == nil {
		return nil
	}

	remaining := cust.Entitlement.Amount.Sub(redeemed)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	if err := s.customers.UpdateEntitlementAmount(ctx, cust.ID, remaining); err != nil {
		return errors.Wrapf(err, "update entitlement for customer %s", cust.ID)
	}

	s.lg.Info("Entitlement settled",
		zap.String("order_id", o.ID),
		zap.String("customer_id", cust.ID),
		zap.String("redeemed", redeemed.String()),
		zap.String("remaining", remaining.String()),
	)

	return nil
}

// redeemedDiscount sums the absolute totals of all discount line items.
func redeemedDiscount(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.Type == cart.TypeSpecialDiscount {
			total = total.Add(item.TotalPrice.Abs())
		}
	}
	return total
}
