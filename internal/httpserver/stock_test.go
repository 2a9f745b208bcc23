package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"joulina-backend/internal/domain"
)

func postStock(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/stock/adjust", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAdjustStock_StaffRestocksProduct(t *testing.T) {
	deps, identity, _, _ := testDeps()
	identity.isStaff = true
	router := newTestRouter(t, deps)

	rec := postStock(router, `{"productId":"p1","delta":10,"reference":"po-1234"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	stock := deps.Stock.(*stubStock)
	if stock.ref != domain.ProductRef("p1") {
		t.Fatalf("unexpected ref: %+v", stock.ref)
	}
	if stock.delta != 10 {
		t.Fatalf("expected delta 10, got %d", stock.delta)
	}
	if stock.adj != domain.StockIn {
		t.Fatalf("expected stock_in, got %s", stock.adj)
	}
}

func TestAdjustStock_NegativeDeltaRecordedAsAdjustment(t *testing.T) {
	deps, identity, _, _ := testDeps()
	identity.isStaff = true
	router := newTestRouter(t, deps)

	rec := postStock(router, `{"variantId":"v1","delta":-3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	stock := deps.Stock.(*stubStock)
	if stock.ref != domain.VariantRef("v1") {
		t.Fatalf("unexpected ref: %+v", stock.ref)
	}
	if stock.adj != domain.StockAdjustment {
		t.Fatalf("expected adjustment, got %s", stock.adj)
	}
}

func TestAdjustStock_ZeroDeltaRejected(t *testing.T) {
	deps, identity, _, _ := testDeps()
	identity.isStaff = true
	router := newTestRouter(t, deps)

	rec := postStock(router, `{"productId":"p1","delta":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestAdjustStock_NonStaffRejected(t *testing.T) {
	deps, _, _, _ := testDeps()
	router := newTestRouter(t, deps)

	rec := postStock(router, `{"productId":"p1","delta":10}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rec.Code, rec.Body.String())
	}
}
