package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"joulina-backend/internal/domain"
)

func TestCartAddItem_RequiresExactlyOneRef(t *testing.T) {
	deps, _, _, _ := testDeps()
	router := newTestRouter(t, deps)

	for _, body := range []string{
		`{"quantity":1}`,
		`{"productId":"p1","variantId":"v1","quantity":1}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestCartAddItem_InsufficientStockIs409(t *testing.T) {
	deps, _, _, carts := testDeps()
	carts.err = &domain.InsufficientStockError{Available: 2}
	router := newTestRouter(t, deps)

	body := `{"productId":"p1","quantity":5}`
	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"available":2`) {
		t.Fatalf("body missing available: %s", rec.Body.String())
	}
}

func TestCartUpdateLine_AbsentLineIs404(t *testing.T) {
	deps, _, _, carts := testDeps()
	carts.err = domain.ErrNotFound
	router := newTestRouter(t, deps)

	body := `{"quantity":2}`
	req := httptest.NewRequest(http.MethodPut, "/cart/items/nope", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCartSnapshot_EmptyCartIs200(t *testing.T) {
	deps, _, _, _ := testDeps()
	router := newTestRouter(t, deps)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"lines":[]`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCheckout_EmptyCartIs400(t *testing.T) {
	deps, _, _, _ := testDeps()
	deps.Checkout = &stubCheckout{err: domain.ErrEmptyCart}
	router := newTestRouter(t, deps)

	body := `{"shippingAddressId":"addr-1"}`
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCheckout_Created(t *testing.T) {
	deps, _, _, _ := testDeps()
	router := newTestRouter(t, deps)

	body := `{"shippingAddressId":"addr-1"}`
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"id":"o1"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestOrderStatus_StaffCanTransition(t *testing.T) {
	deps, identity, _, _ := testDeps()
	identity.isStaff = true
	router := newTestRouter(t, deps)

	body := `{"status":"confirmed"}`
	req := httptest.NewRequest(http.MethodPost, "/orders/o1/status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
}
