//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"testing"
)

func num(t *testing.T, n json.Number) float64 {
	t.Helper()

	v, err := n.Float64()
	if err != nil {
		t.Fatalf("parse number: %v", err)
	}
	return v
}

func calculateRequest(customerID string) map[string]any {
	return map[string]any{
		"token":      "cart-1",
		"customerId": customerID,
		"context":    map[string]any{"currencyIso": "EUR", "taxRate": 19},
		"lineItems": []map[string]any{
			{"id": "li-1", "type": "product", "label": "Widget", "quantity": 2, "unitPrice": 50.00},
		},
		"deliveries": []map[string]any{
			{"shippingMethod": "standard", "shippingNet": 5.00, "shippingTax": 0.95},
		},
	}
}

func TestCalculateCart_Guest(t *testing.T) {
	req := calculateRequest("")
	resp := doJSON(t, http.MethodPost, "/api/checkout/cart/calculate", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	c := decodeJSON[cartResponse](t, resp)
	if len(c.LineItems) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(c.LineItems))
	}
	if got := num(t, c.Price.TotalPrice); got != 100 {
		t.Errorf("total: got %v, want 100", got)
	}
}

func TestCalculateCart_EntitledCustomer(t *testing.T) {
	req := calculateRequest(customerEntitled)
	resp := doJSON(t, http.MethodPost, "/api/checkout/cart/calculate", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	c := decodeJSON[cartResponse](t, resp)
	if len(c.LineItems) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(c.LineItems))
	}

	disc := c.LineItems[1]
	if disc.Type != "special_discount" {
		t.Errorf("type: got %q, want special_discount", disc.Type)
	}
	if disc.Label != "SUMMER" {
		t.Errorf("label: got %q, want SUMMER", disc.Label)
	}
	if disc.Good || disc.Stackable || disc.Removable {
		t.Errorf("discount flags must all be false: %+v", disc)
	}
	if got := num(t, disc.TotalPrice); got != -25 {
		t.Errorf("discount total: got %v, want -25", got)
	}

	// 100.00 products - 25.00 discount.
	if got := num(t, c.Price.TotalPrice); got != 75 {
		t.Errorf("total: got %v, want 75", got)
	}
	// 5.00 net + 0.95 tax, folded in once.
	if got := num(t, c.ShippingCosts); got != 5.95 {
		t.Errorf("shipping: got %v, want 5.95", got)
	}
}

func TestCalculateCart_ClampedToCartValue(t *testing.T) {
	req := map[string]any{
		"customerId": customerEntitled,
		"context":    map[string]any{"currencyIso": "EUR", "taxRate": 19},
		"lineItems": []map[string]any{
			{"id": "li-1", "type": "product", "label": "Sticker", "quantity": 1, "unitPrice": 10.00},
		},
	}
	resp := doJSON(t, http.MethodPost, "/api/checkout/cart/calculate", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	c := decodeJSON[cartResponse](t, resp)
	if got := num(t, c.LineItems[1].TotalPrice); got != -10 {
		t.Errorf("discount total: got %v, want -10", got)
	}
	if got := num(t, c.Price.TotalPrice); got != 0 {
		t.Errorf("total: got %v, want 0", got)
	}
}

func TestCalculateCart_RecalculationStaysIdempotent(t *testing.T) {
	req := calculateRequest(customerEntitled)
	req["recalculation"] = true
	req["lineItems"] = []map[string]any{
		{"id": "li-1", "type": "product", "label": "Widget", "quantity": 2, "unitPrice": 50.00},
		{
			"id": "li-2", "type": "special_discount", "label": "SUMMER", "quantity": 1,
			"priceDefinition": map[string]any{"price": -25.00},
		},
	}

	resp := doJSON(t, http.MethodPost, "/api/checkout/cart/calculate", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	c := decodeJSON[cartResponse](t, resp)
	discounts := 0
	for _, li := range c.LineItems {
		if li.Type == "special_discount" {
			discounts++
		}
	}
	if discounts != 1 {
		t.Fatalf("expected exactly 1 discount line, got %d", discounts)
	}
}

func TestCalculateCart_CustomerWithoutEntitlement(t *testing.T) {
	req := calculateRequest(customerNoEntitlement)
	resp := doJSON(t, http.MethodPost, "/api/checkout/cart/calculate", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	c := decodeJSON[cartResponse](t, resp)
	if len(c.LineItems) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(c.LineItems))
	}
}

func TestCalculateCart_UnknownCustomer(t *testing.T) {
	req := calculateRequest("99999999-9999-9999-9999-999999999999")
	resp := doJSON(t, http.MethodPost, "/api/checkout/cart/calculate", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Code != http.StatusNotFound {
		t.Errorf("error code: got %d, want 404", body.Code)
	}
}

func TestCalculateCart_InvalidQuantity(t *testing.T) {
	req := calculateRequest("")
	req["lineItems"] = []map[string]any{
		{"id": "li-1", "type": "product", "label": "Widget", "quantity": 0, "unitPrice": 50.00},
	}

	resp := doJSON(t, http.MethodPost, "/api/checkout/cart/calculate", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}
