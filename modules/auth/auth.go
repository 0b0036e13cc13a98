package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"jelly-icon-server/modules/common/config"
)

// ErrNotAuthenticated - the request carries no verifiable caller identity
var ErrNotAuthenticated = errors.New("not authenticated")

// Identity - the verified subject of an authenticated request. Every
// persistence and retrieval operation is scoped by Subject, never by
// client-supplied input.
type Identity struct {
	Subject string
	Email   string
}

type contextKey struct{}

// Verifier - resolves bearer tokens against Supabase Auth (GoTrue)
type Verifier struct {
	cfg        *config.Config
	httpClient *http.Client
}

func NewVerifier(cfg *config.Config) *Verifier {
	return &Verifier{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// gotrueUser - the subset of GET /auth/v1/user we rely on
type gotrueUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Verify - resolve an access token to a verified identity
func (v *Verifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrNotAuthenticated
	}

	req, err := http.NewRequestWithContext(ctx, "GET", v.cfg.SupabaseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	req.Header.Set("apikey", v.cfg.SupabaseServiceKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: auth service returned %d", ErrNotAuthenticated, resp.StatusCode)
	}

	var user gotrueUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%w: auth service returned no subject", ErrNotAuthenticated)
	}

	return &Identity{Subject: user.ID, Email: user.Email}, nil
}

// Middleware - requires a verified identity; 401 JSON otherwise.
// OPTIONS preflights pass through for the CORS layer.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := v.Verify(r.Context(), BearerToken(r))
		if err != nil {
			log.Printf("⚠️ [Auth] Rejected %s %s: %v", r.Method, r.URL.Path, err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Not authenticated"})
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// OptionalMiddleware - attaches an identity when a valid token is present,
// lets anonymous requests through. Generation works without sign-in; only
// history persistence is skipped.
func (v *Verifier) OptionalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := BearerToken(r); token != "" {
			if identity, err := v.Verify(r.Context(), token); err == nil {
				r = r.WithContext(WithIdentity(r.Context(), identity))
			} else {
				log.Printf("⚠️ [Auth] Ignoring invalid token on %s: %v", r.URL.Path, err)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// BearerToken - Authorization header first, "token" query parameter second
// (the query form exists for WebSocket clients that cannot set headers)
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

// WithIdentity - store a verified identity in the context
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, identity)
}

// FromContext - the verified identity, or nil for anonymous requests
func FromContext(ctx context.Context) *Identity {
	identity, _ := ctx.Value(contextKey{}).(*Identity)
	return identity
}
