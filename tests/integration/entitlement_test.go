//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestGetEntitlement(t *testing.T) {
	resp := doGet(t, "/api/customers/"+customerEntitled+"/entitlement")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	ent := decodeJSON[entitlementResponse](t, resp)
	if ent.Name != "SUMMER" {
		t.Errorf("name: got %q, want SUMMER", ent.Name)
	}
	if got := num(t, ent.Amount); got != 25 {
		t.Errorf("amount: got %v, want 25", got)
	}
	if ent.ExpirationDate != "2030-12-31" {
		t.Errorf("expiration: got %q, want 2030-12-31", ent.ExpirationDate)
	}
}

func TestGetEntitlement_NoneConfigured(t *testing.T) {
	resp := doGet(t, "/api/customers/"+customerNoEntitlement+"/entitlement")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestUpdateEntitlement(t *testing.T) {
	resp := doJSON(t, http.MethodPut, "/api/customers/"+customerForUpdate+"/entitlement",
		map[string]any{"amount": 15.00})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp = doGet(t, "/api/customers/"+customerForUpdate+"/entitlement")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	ent := decodeJSON[entitlementResponse](t, resp)
	if got := num(t, ent.Amount); got != 15 {
		t.Errorf("amount: got %v, want 15", got)
	}
}

func TestUpdateEntitlement_NegativeAmount(t *testing.T) {
	resp := doJSON(t, http.MethodPut, "/api/customers/"+customerForUpdate+"/entitlement",
		map[string]any{"amount": -1.00})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestCartChanged_CreatesPromotion(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/events/cart-changed",
		map[string]any{"customerId": customerEntitled})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	promo := decodeJSON[promotionResponse](t, resp)
	if promo.Code != "10001-MUSTER-ERIKA-2030-12-31" {
		t.Errorf("code: got %q, want 10001-MUSTER-ERIKA-2030-12-31", promo.Code)
	}
	if got := num(t, promo.Value); got != 25 {
		t.Errorf("value: got %v, want 25", got)
	}

	// A second invocation returns the already materialized promotion.
	again := doJSON(t, http.MethodPost, "/api/events/cart-changed",
		map[string]any{"customerId": customerEntitled})
	defer again.Body.Close()

	if again.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", again.StatusCode)
	}
	second := decodeJSON[promotionResponse](t, again)
	if second.ID != promo.ID {
		t.Errorf("promotion recreated: %q vs %q", second.ID, promo.ID)
	}
}

func TestCartChanged_NothingToMaterialize(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/events/cart-changed",
		map[string]any{"customerId": customerNoEntitlement})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}

func TestOrderPlaced_SettlesBalance(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/events/order-placed", map[string]any{
		"orderId":    "11111111-aaaa-1111-aaaa-111111111111",
		"customerId": customerForSettlement,
		"lineItems": []map[string]any{
			{"type": "product", "label": "Widget", "totalPrice": 100.00},
			{"type": "special_discount", "label": "WELCOME", "totalPrice": -30.00},
		},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp = doGet(t, "/api/customers/"+customerForSettlement+"/entitlement")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	ent := decodeJSON[entitlementResponse](t, resp)
	if got := num(t, ent.Amount); got != 20 {
		t.Errorf("remaining: got %v, want 20", got)
	}
}

func TestOrderPlaced_UnknownCustomer(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/events/order-placed", map[string]any{
		"orderId":    "22222222-bbbb-2222-bbbb-222222222222",
		"customerId": "99999999-9999-9999-9999-999999999999",
		"lineItems": []map[string]any{
			{"type": "special_discount", "label": "WELCOME", "totalPrice": -30.00},
		},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
