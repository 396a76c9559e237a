package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/alengo/customer-discount/internal/checkout/cart"
	"github.com/alengo/customer-discount/internal/customer"
)

type mockCustomerRepo struct {
	cust      *customer.Customer
	getErr    error
	updatedID string
	updated   decimal.Decimal
	updateN   int
}

func (m *mockCustomerRepo) GetByID(_ context.Context, _ string) (*customer.Customer, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.cust, nil
}

func (m *mockCustomerRepo) UpdateEntitlementAmount(_ context.Context, id string, amount decimal.Decimal) error {
	m.updatedID = id
	m.updated = amount
	m.updateN++
	return nil
}

func entitledCustomer(amount string) *customer.Customer {
	return &customer.Customer{
		ID: "c-1",
		Entitlement: &customer.Entitlement{
			Name:   "SUMMER",
			Amount: decimal.RequireFromString(amount),
		},
	}
}

func discountOrder(totals ...string) *Order {
	o := &Order{ID: "o-1", CustomerID: "c-1"}
	for _, total := range totals {
		o.LineItems = append(o.LineItems, LineItem{
			Type:       cart.TypeSpecialDiscount,
			Label:      "SUMMER",
			TotalPrice: decimal.RequireFromString(total),
		})
	}
	return o
}

func TestOnOrderPlaced_DecrementsBalance(t *testing.T) {
	repo := &mockCustomerRepo{cust: entitledCustomer("50.00")}
	s := NewSettler(repo, zaptest.NewLogger(t))

	err := s.OnOrderPlaced(context.Background(), discountOrder("-30.00"))
	require.NoError(t, err)

	assert.Equal(t, 1, repo.updateN)
	assert.Equal(t, "c-1", repo.updatedID)
	assert.True(t, repo.updated.Equal(decimal.RequireFromString("20.00")), "got %s", repo.updated)
}

func TestOnOrderPlaced_FloorsAtZero(t *testing.T) {
	repo := &mockCustomerRepo{cust: entitledCustomer("10.00")}
	s := NewSettler(repo, zaptest.NewLogger(t))

	err := s.OnOrderPlaced(context.Background(), discountOrder("-30.00"))
	require.NoError(t, err)

	assert.True(t, repo.updated.IsZero(), "got %s", repo.updated)
}

func TestOnOrderPlaced_SumsMultipleDiscountItems(t *testing.T) {
	repo := &mockCustomerRepo{cust: entitledCustomer("50.00")}
	s := NewSettler(repo, zaptest.NewLogger(t))

	err := s.OnOrderPlaced(context.Background(), discountOrder("-10.00", "-5.50"))
	require.NoError(t, err)

	assert.True(t, repo.updated.Equal(decimal.RequireFromString("34.50")), "got %s", repo.updated)
}

func TestOnOrderPlaced_IgnoresNonDiscountItems(t *testing.T) {
	repo := &mockCustomerRepo{cust: entitledCustomer("50.00")}
	s := NewSettler(repo, zaptest.NewLogger(t))

	o := &Order{
		ID:         "o-1",
		CustomerID: "c-1",
		LineItems: []LineItem{
			{Type: cart.TypeProduct, Label: "Widget", TotalPrice: decimal.RequireFromString("100.00")},
		},
	}
	require.NoError(t, s.OnOrderPlaced(context.Background(), o))
	assert.Zero(t, repo.updateN)
}

func TestOnOrderPlaced_GuestOrder(t *testing.T) {
	repo := &mockCustomerRepo{}
	s := NewSettler(repo, zaptest.NewLogger(t))

	o := discountOrder("-30.00")
	o.CustomerID = ""

	require.NoError(t, s.OnOrderPlaced(context.Background(), o))
	assert.Zero(t, repo.updateN)
}

func TestOnOrderPlaced_CustomerWithoutEntitlement(t *testing.T) {
	repo := &mockCustomerRepo{cust: &customer.Customer{ID: "c-1"}}
	s := NewSettler(repo, zaptest.NewLogger(t))

	require.NoError(t, s.OnOrderPlaced(context.Background(), discountOrder("-30.00")))
	assert.Zero(t, repo.updateN)
}

func TestOnOrderPlaced_CustomerLookupFails(t *testing.T) {
	repo := &mockCustomerRepo{getErr: errors.New("connection lost")}
	s := NewSettler(repo, zaptest.NewLogger(t))

	err := s.OnOrderPlaced(context.Background(), discountOrder("-30.00"))
	require.Error(t, err)
	assert.Zero(t, repo.updateN)
}
