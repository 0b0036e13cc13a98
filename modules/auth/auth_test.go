package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"jelly-icon-server/modules/common/config"
)

func newTestVerifier(t *testing.T) (*Verifier, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		io.WriteString(w, `{"id":"user-123","email":"user@example.com"}`)
	}))
	t.Cleanup(server.Close)

	return NewVerifier(&config.Config{
		SupabaseURL:        server.URL,
		SupabaseServiceKey: "service-key",
	}), server
}

func TestVerify(t *testing.T) {
	verifier, _ := newTestVerifier(t)

	identity, err := verifier.Verify(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if identity.Subject != "user-123" {
		t.Errorf("subject = %s, want user-123", identity.Subject)
	}
	if identity.Email != "user@example.com" {
		t.Errorf("email = %s", identity.Email)
	}
}

func TestVerifyBadToken(t *testing.T) {
	verifier, _ := newTestVerifier(t)

	_, err := verifier.Verify(context.Background(), "forged-token")
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestVerifyEmptyToken(t *testing.T) {
	verifier, _ := newTestVerifier(t)

	_, err := verifier.Verify(context.Background(), "   ")
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestMiddlewareRejectsAnonymous(t *testing.T) {
	verifier, _ := newTestVerifier(t)

	called := false
	handler := verifier.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/icons", nil))

	if called {
		t.Error("inner handler must not run for an anonymous request")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("401 body is not JSON: %v", err)
	}
	if body["error"] != "Not authenticated" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestMiddlewareAttachesIdentity(t *testing.T) {
	verifier, _ := newTestVerifier(t)

	var seen *Identity
	handler := verifier.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/api/icons", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen == nil || seen.Subject != "user-123" {
		t.Errorf("identity in context = %+v, want subject user-123", seen)
	}
}

func TestOptionalMiddlewareAllowsAnonymous(t *testing.T) {
	verifier, _ := newTestVerifier(t)

	var seen *Identity
	called := false
	handler := verifier.OptionalMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		seen = FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/generate-icon", nil))

	if !called {
		t.Fatal("anonymous request must pass through")
	}
	if seen != nil {
		t.Errorf("anonymous request should carry no identity, got %+v", seen)
	}
}

func TestOptionalMiddlewareIgnoresInvalidToken(t *testing.T) {
	verifier, _ := newTestVerifier(t)

	called := false
	handler := verifier.OptionalMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if FromContext(r.Context()) != nil {
			t.Error("invalid token must not attach an identity")
		}
	}))

	req := httptest.NewRequest("POST", "/api/generate-icon", nil)
	req.Header.Set("Authorization", "Bearer forged-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("request with an invalid token must still pass through")
	}
}

func TestBearerTokenSources(t *testing.T) {
	withHeader := httptest.NewRequest("GET", "/ws", nil)
	withHeader.Header.Set("Authorization", "Bearer abc")
	if got := BearerToken(withHeader); got != "abc" {
		t.Errorf("header token = %q", got)
	}

	withQuery := httptest.NewRequest("GET", "/ws?token=xyz", nil)
	if got := BearerToken(withQuery); got != "xyz" {
		t.Errorf("query token = %q", got)
	}

	bare := httptest.NewRequest("GET", "/ws", nil)
	if got := BearerToken(bare); got != "" {
		t.Errorf("token = %q, want empty", got)
	}
}
