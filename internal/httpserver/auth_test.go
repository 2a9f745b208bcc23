package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	identitysvc "joulina-backend/internal/service/identity"
)

func TestLogin_Success(t *testing.T) {
	deps, _, _, _ := testDeps()
	router := newTestRouter(t, deps)

	body := `{"phoneNumber":"+15550001111","password":"correct horse"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"accessToken":"access"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	deps, identity, _, _ := testDeps()
	identity.loginErr = identitysvc.ErrInvalidCredentials
	router := newTestRouter(t, deps)

	body := `{"phoneNumber":"+15550001111","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestLogin_MergesSessionCart(t *testing.T) {
	deps, _, merge, _ := testDeps()
	router := newTestRouter(t, deps)

	body := `{"phoneNumber":"+15550001111","password":"correct horse"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-Key", "sess-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if len(merge.calls) != 1 || merge.calls[0] != [2]string{"sess-42", "u1"} {
		t.Fatalf("merge calls = %v", merge.calls)
	}
}

func TestLogin_NoSessionKeyNoMerge(t *testing.T) {
	deps, _, merge, _ := testDeps()
	router := newTestRouter(t, deps)

	body := `{"phoneNumber":"+15550001111","password":"correct horse"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if len(merge.calls) != 0 {
		t.Fatalf("merge calls = %v, want none", merge.calls)
	}
}

func TestRegister_Created(t *testing.T) {
	deps, _, _, _ := testDeps()
	router := newTestRouter(t, deps)

	body := `{"phoneNumber":"+15550001111","password":"correct horse"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	deps, identity, _, _ := testDeps()
	router := newTestRouter(t, deps)

	body := `{"refreshToken":"refresh"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if len(identity.loggedOut) != 1 || identity.loggedOut[0] != "refresh" {
		t.Fatalf("logged out = %v", identity.loggedOut)
	}
}
