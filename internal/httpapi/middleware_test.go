package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/beratoz/vampireville/internal/auth"
	"github.com/beratoz/vampireville/internal/httpapi/handler"
	"github.com/beratoz/vampireville/internal/ratelimit"
)

// denyAllLimiter denies every request (for testing 429).
type denyAllLimiter struct{}

func (denyAllLimiter) Allow(string) (bool, int) { return false, 60 }

func TestRateLimitMiddlewareReturns429WhenDenied(t *testing.T) {
	mw := RateLimitMiddleware(denyAllLimiter{}, RateLimitKeyByIP)
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", w.Header().Get("Retry-After"))
	}
}

func TestRateLimitMiddlewareProxiesWhenAllowed(t *testing.T) {
	mw := RateLimitMiddleware(&ratelimit.Noop{}, RateLimitKeyByIP)
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "ok" {
		t.Errorf("body = %q, want ok", w.Body.String())
	}
}

func TestRateLimitKeyByIPPrefersProxyHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	if got := RateLimitKeyByIP(req); got != "10.0.0.1:1234" {
		t.Errorf("key = %q, want RemoteAddr", got)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	if got := RateLimitKeyByIP(req); got != "203.0.113.7" {
		t.Errorf("key = %q, want X-Forwarded-For", got)
	}
	req.Header.Set("X-Real-IP", "198.51.100.2")
	if got := RateLimitKeyByIP(req); got != "198.51.100.2" {
		t.Errorf("key = %q, want X-Real-IP", got)
	}
}

// moderatorRouter wires RequireModerator behind a chi route so the code
// URL param resolves.
func moderatorRouter(secret []byte, next http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.With(RequireModerator(secret)).Post("/api/sessions/{code}/start", next)
	return r
}

func TestRequireModerator(t *testing.T) {
	secret := []byte("test-secret")
	var gotClaims *auth.Claims
	router := moderatorRouter(secret, func(w http.ResponseWriter, r *http.Request) {
		gotClaims = handler.ClaimsFromRequest(r)
		w.WriteHeader(http.StatusOK)
	})

	do := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/sessions/ABC123/start", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	if w := do(""); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}
	if w := do("garbage"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", w.Code)
	}

	spectator, _, err := auth.GenerateToken("ABC123", auth.RoleSpectator, secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if w := do(spectator); w.Code != http.StatusForbidden {
		t.Errorf("spectator token: status = %d, want 403", w.Code)
	}

	otherSession, _, err := auth.GenerateToken("XYZ789", auth.RoleModerator, secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if w := do(otherSession); w.Code != http.StatusForbidden {
		t.Errorf("foreign token: status = %d, want 403", w.Code)
	}

	moderator, _, err := auth.GenerateToken("ABC123", auth.RoleModerator, secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if w := do(moderator); w.Code != http.StatusOK {
		t.Errorf("moderator token: status = %d, want 200", w.Code)
	}
	if gotClaims == nil || gotClaims.SessionCode != "ABC123" || gotClaims.Role != auth.RoleModerator {
		t.Errorf("claims = %+v, want moderator claims for ABC123", gotClaims)
	}
}

func TestRequireModeratorRejectsWithoutSecret(t *testing.T) {
	router := moderatorRouter(nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/ABC123/start", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
