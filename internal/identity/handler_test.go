package identity

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func newAuthRouter(t *testing.T) chi.Router {
	t.Helper()
	accounts := NewInMemoryAccountStore()
	if err := SeedDemoAccounts(context.Background(), accounts); err != nil {
		t.Fatalf("seed accounts: %v", err)
	}
	revoked := NewInMemoryRevocationStore()
	tokens := NewTokenService("test-signing-key", time.Hour, revoked)
	service := New(accounts, tokens, revoked)

	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	r := chi.NewRouter()
	NewHandler(service, tokens, logger).Register(r)
	return r
}

func post(r http.Handler, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginEndpoint(t *testing.T) {
	r := newAuthRouter(t)

	w := post(r, "/auth/login", "", `{"email":"admin@samore.cl","password":"Admin123!"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		User        User   `json:"user"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.TokenType != "Bearer" || body.AccessToken == "" {
		t.Errorf("unexpected token payload: %+v", body)
	}
	if body.User.Name != "Carlos Mendoza" {
		t.Errorf("unexpected user: %+v", body.User)
	}
}

func TestLoginEndpointRejectsBadPayloads(t *testing.T) {
	r := newAuthRouter(t)

	w := post(r, "/auth/login", "", `{"email":"not-an-email","password":"x"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	w = post(r, "/auth/login", "", `{"email":"admin@samore.cl","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestLogoutAndMe(t *testing.T) {
	r := newAuthRouter(t)

	w := post(r, "/auth/login", "", `{"email":"turista@samore.cl","password":"Turista123!"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d", w.Code)
	}
	var login struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(w.Body).Decode(&login); err != nil {
		t.Fatalf("decode login: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /auth/me, got %d", rec.Code)
	}

	w = post(r, "/auth/logout", login.AccessToken, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 from logout, got %d", w.Code)
	}

	// The revoked token no longer opens the protected group.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}
