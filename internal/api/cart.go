package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/alengo/customer-discount/internal/checkout/cart"
	"github.com/alengo/customer-discount/internal/checkout/delivery"
	"github.com/alengo/customer-discount/internal/checkout/pricing"
	"github.com/alengo/customer-discount/internal/customer"
)

type calculateCartRequest struct {
	Token      string             `json:"token,omitempty"`
	CustomerID string             `json:"customerId,omitempty"`
	Context    calculationContext `json:"context"`
	LineItems  []lineItemRequest  `json:"lineItems"`
	Deliveries []deliveryRequest  `json:"deliveries,omitempty"`
	// Recalculation marks a replay of a persisted cart.
	Recalculation bool `json:"recalculation,omitempty"`
}

type calculationContext struct {
	CurrencyISO      string           `json:"currencyIso"`
	TaxState         string           `json:"taxState,omitempty"`
	TaxRate          decimal.Decimal  `json:"taxRate"`
	RoundingDecimals *int             `json:"roundingDecimals,omitempty"`
	RoundingInterval *decimal.Decimal `json:"roundingInterval,omitempty"`
}

type lineItemRequest struct {
	ID          string           `json:"id"`
	Type        string           `json:"type"`
	Label       string           `json:"label"`
	Description string           `json:"description,omitempty"`
	Quantity    int              `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unitPrice,omitempty"`
	// PriceDefinition carries the persisted definition of synthetic items so
	// they can be recalculated instead of repriced from a unit price.
	PriceDefinition *priceDefinitionRequest `json:"priceDefinition,omitempty"`
}

type priceDefinitionRequest struct {
	Price decimal.Decimal `json:"price"`
}

type deliveryRequest struct {
	ShippingMethod string          `json:"shippingMethod,omitempty"`
	ShippingNet    decimal.Decimal `json:"shippingNet"`
	ShippingTax    decimal.Decimal `json:"shippingTax"`
}

type cartResponse struct {
	Token         string             `json:"token,omitempty"`
	LineItems     []lineItemResponse `json:"lineItems"`
	Price         priceResponse      `json:"price"`
	ShippingCosts decimal.Decimal    `json:"shippingCosts"`
}

type lineItemResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Label       string          `json:"label"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
	Good        bool            `json:"good"`
	Stackable   bool            `json:"stackable"`
	Removable   bool            `json:"removable"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

type priceResponse struct {
	NetPrice        decimal.Decimal `json:"netPrice"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	CalculatedTaxes []taxResponse   `json:"calculatedTaxes"`
}

type taxResponse struct {
	TaxRate decimal.Decimal `json:"taxRate"`
	Tax     decimal.Decimal `json:"tax"`
	Price   decimal.Decimal `json:"price"`
}

// calculateCart runs one calculation pass for the submitted cart snapshot.
func (h *Handler) calculateCart(w http.ResponseWriter, r *http.Request) {
	var req calculateCartRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	pctx, err := h.buildContext(r, req.CustomerID, req.Context)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.lg.Error("Build pricing context", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	original, err := buildCart(req, pctx)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	calculated, err := h.calculator.Calculate(original, pctx, cart.Behavior{Recalculation: req.Recalculation})
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidRounding) {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.lg.Error("Calculate cart", zap.String("token", req.Token), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "cart calculation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, newCartResponse(calculated))
}

func (h *Handler) buildContext(r *http.Request, customerID string, cc calculationContext) (*pricing.Context, error) {
	pctx := &pricing.Context{
		CurrencyISO: cc.CurrencyISO,
		TaxState:    pricing.TaxStateGross,
		TaxRate:     cc.TaxRate,
		Rounding:    pricing.DefaultRounding(),
	}
	if cc.TaxState != "" {
		pctx.TaxState = pricing.TaxState(cc.TaxState)
	}
	if cc.RoundingDecimals != nil {
		pctx.Rounding.Decimals = *cc.RoundingDecimals
	}
	if cc.RoundingInterval != nil {
		pctx.Rounding.Interval = *cc.RoundingInterval
	}

	if customerID != "" {
		cust, err := h.customers.GetByID(r.Context(), customerID)
		if err != nil {
			return nil, err
		}
		pctx.Customer = cust
	}

	return pctx, nil
}

// buildCart maps the request snapshot into the cart model, pricing each line
// item under the given context.
func buildCart(req calculateCartRequest, pctx *pricing.Context) (*cart.Cart, error) {
	calc := pricing.NewAbsolutePriceCalculator()

	c := &cart.Cart{Token: req.Token}

	for _, item := range req.LineItems {
		li := &cart.LineItem{
			ID:          item.ID,
			Type:        item.Type,
			Label:       item.Label,
			Description: item.Description,
			Quantity:    item.Quantity,
		}

		switch {
		case item.UnitPrice != nil:
			if item.Quantity <= 0 {
				return nil, errors.Errorf("quantity must be greater than 0 for line item %s", item.ID)
			}
			qty := decimal.NewFromInt(int64(item.Quantity))
			price, err := calc.Calculate(item.UnitPrice.Mul(qty), pctx)
			if err != nil {
				return nil, err
			}
			price.UnitPrice = *item.UnitPrice
			price.Quantity = item.Quantity
			li.Price = price
			li.Good = item.Type == cart.TypeProduct
			li.Stackable = li.Good
			li.Removable = li.Good

		case item.PriceDefinition != nil:
			def := &pricing.AbsolutePriceDefinition{
				Price:    item.PriceDefinition.Price,
				Rounding: pctx.Rounding,
			}
			price, err := calc.Calculate(def.Price, pctx)
			if err != nil {
				return nil, err
			}
			li.PriceDefinition = def
			li.Price = price

		default:
			return nil, errors.Errorf("line item %s needs a unit price or a price definition", item.ID)
		}

		c.Add(li)
	}

	for _, d := range req.Deliveries {
		c.Deliveries = append(c.Deliveries, &cart.Delivery{
			ShippingMethod: d.ShippingMethod,
			ShippingCosts: &pricing.CalculatedPrice{
				UnitPrice:  d.ShippingNet,
				TotalPrice: d.ShippingNet,
				Quantity:   1,
				CalculatedTaxes: []pricing.CalculatedTax{{
					TaxRate: pctx.TaxRate,
					Tax:     d.ShippingTax,
					Price:   d.ShippingNet,
				}},
			},
		})
	}

	return c, nil
}

func newCartResponse(c *cart.Cart) cartResponse {
	items := make([]lineItemResponse, 0, len(c.LineItems))
	for _, li := range c.LineItems {
		resp := lineItemResponse{
			ID:          li.ID,
			Type:        li.Type,
			Label:       li.Label,
			Description: li.Description,
			Quantity:    li.Quantity,
			Good:        li.Good,
			Stackable:   li.Stackable,
			Removable:   li.Removable,
		}
		if li.Price != nil {
			resp.UnitPrice = li.Price.UnitPrice
			resp.TotalPrice = li.Price.TotalPrice
		}
		items = append(items, resp)
	}

	taxes := make([]taxResponse, 0, len(c.Price.CalculatedTaxes))
	for _, t := range c.Price.CalculatedTaxes {
		taxes = append(taxes, taxResponse{TaxRate: t.TaxRate, Tax: t.Tax, Price: t.Price})
	}

	return cartResponse{
		Token:     c.Token,
		LineItems: items,
		Price: priceResponse{
			NetPrice:        c.Price.NetPrice,
			TotalPrice:      c.Price.TotalPrice,
			CalculatedTaxes: taxes,
		},
		ShippingCosts: delivery.ShippingCosts(c.Deliveries),
	}
}
