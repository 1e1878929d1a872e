package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/beratoz/vampireville/internal/auth"
	"github.com/beratoz/vampireville/internal/logger"
	"github.com/beratoz/vampireville/internal/monitor"
	"github.com/beratoz/vampireville/internal/session"
	"github.com/beratoz/vampireville/internal/storage"
)

// PasswordMaxLen bounds moderator passwords.
const PasswordMaxLen = 128

// SessionHandler handles session lifecycle and moderator commands.
type SessionHandler struct {
	sessions    *session.Manager
	tokenSecret []byte
	metrics     *monitor.Metrics
}

// NewSessionHandler creates a SessionHandler. If tokenSecret is empty,
// create/login responses omit tokens and every moderator route rejects.
func NewSessionHandler(sessions *session.Manager, tokenSecret []byte, metrics *monitor.Metrics) *SessionHandler {
	return &SessionHandler{sessions: sessions, tokenSecret: tokenSecret, metrics: metrics}
}

type createSessionRequest struct {
	Password string `json:"password"`
}

type sessionResponse struct {
	Code         string                     `json:"code"`
	Token        string                     `json:"token,omitempty"`
	ExpiresAt    *time.Time                 `json:"expiresAt,omitempty"`
	BalanceScore int                        `json:"balanceScore"`
	State        map[string]json.RawMessage `json:"state"`
}

// sessionCode returns the normalized session code from the URL.
func sessionCode(r *http.Request) string {
	return strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))
}

func (h *SessionHandler) issueToken(code, role string) (string, *time.Time, bool) {
	if len(h.tokenSecret) == 0 {
		return "", nil, true
	}
	token, expiresAt, err := auth.GenerateToken(code, role, h.tokenSecret, auth.DefaultTokenExpiry)
	if err != nil {
		return "", nil, false
	}
	return token, &expiresAt, true
}

// CreateSession handles POST /api/sessions.
//
// @Summary      Create session
// @Description  Create a new game session. The response includes a moderator token.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        body  body      createSessionRequest  true  "Request body"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/sessions [post]
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Password) > PasswordMaxLen {
		writeError(w, http.StatusBadRequest, "password too long")
		return
	}

	sess, err := h.sessions.Create(r.Context(), req.Password)
	if err != nil {
		logger.Log.Errorw("create session", "request_id", requestID(r), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	token, expiresAt, ok := h.issueToken(sess.Code, auth.RoleModerator)
	if !ok {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	h.metrics.ActiveSessions.Inc()

	writeJSON(w, http.StatusCreated, sessionResponse{
		Code:         sess.Code,
		Token:        token,
		ExpiresAt:    expiresAt,
		BalanceScore: sess.BalanceScore(),
		State:        sess.Snapshot(),
	})
}

type loginRequest struct {
	Password string `json:"password"`
}

// Login handles POST /api/sessions/{code}/login.
//
// @Summary      Moderator login
// @Description  Exchange the session password for a moderator token.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        code  path      string        true  "Session code"
// @Param        body  body      loginRequest  true  "Request body"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/sessions/{code}/login [post]
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.sessions.Authenticate(r.Context(), code, req.Password); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, session.ErrBadPassword):
			writeError(w, http.StatusUnauthorized, "wrong password")
		default:
			logger.Log.Errorw("login", "request_id", requestID(r), "session", code, "error", err)
			writeError(w, http.StatusInternalServerError, "login failed")
		}
		return
	}

	sess, err := h.sessions.Get(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	token, expiresAt, ok := h.issueToken(code, auth.RoleModerator)
	if !ok {
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Code:         code,
		Token:        token,
		ExpiresAt:    expiresAt,
		BalanceScore: sess.BalanceScore(),
		State:        sess.Snapshot(),
	})
}

// Spectate handles POST /api/sessions/{code}/spectate.
//
// @Summary      Spectator token
// @Description  Issue a read-only spectator token for the websocket feed. No password needed.
// @Tags         sessions
// @Produce      json
// @Param        code  path      string  true  "Session code"
// @Success      200   {object}  sessionResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/sessions/{code}/spectate [post]
func (h *SessionHandler) Spectate(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)
	sess, err := h.sessions.Get(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	token, expiresAt, ok := h.issueToken(code, auth.RoleSpectator)
	if !ok {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Code:      code,
		Token:     token,
		ExpiresAt: expiresAt,
		State:     sess.Snapshot(),
	})
}

// GetSession handles GET /api/sessions/{code}.
//
// @Summary      Session snapshot
// @Description  Full session state as a flat key to JSON value map.
// @Tags         sessions
// @Produce      json
// @Param        code  path      string  true  "Session code"
// @Success      200   {object}  sessionResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/sessions/{code} [get]
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	code := sessionCode(r)
	sess, err := h.sessions.Get(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Code:         code,
		BalanceScore: sess.BalanceScore(),
		State:        sess.Snapshot(),
	})
}
