package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/beratoz/vampireville/internal/auth"
	"github.com/beratoz/vampireville/internal/logger"
	"github.com/beratoz/vampireville/internal/session"
)

// contextKey type for request context keys (avoids collisions with other packages).
type contextKey string

// ClaimsContextKey is the context key under which auth middleware
// stores the verified token claims.
const ClaimsContextKey contextKey = "claims"

// ClaimsFromRequest returns the verified claims set by auth middleware,
// or nil for unauthenticated requests.
func ClaimsFromRequest(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(ClaimsContextKey).(*auth.Claims)
	return claims
}

// errorResponse is the JSON body for every error status.
type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Warnw("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeCommandError maps a session or engine error to a response with
// a machine-readable reason code.
func writeCommandError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Reason: session.ReasonCode(err)})
}

// requestID returns the request ID from chi's context for logging.
func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(middleware.RequestIDKey).(string); ok {
		return id
	}
	return ""
}
