package websocket

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/beratoz/vampireville/internal/auth"
	"github.com/beratoz/vampireville/internal/logger"
	"github.com/beratoz/vampireville/internal/session"
)

// Handler upgrades observer connections after verifying their access
// token against the session they want to watch.
type Handler struct {
	hub         *Hub
	sessions    *session.Manager
	tokenSecret []byte
}

// NewHandler creates a websocket handler. tokenSecret must match the
// secret the HTTP API signs tokens with.
func NewHandler(hub *Hub, sessions *session.Manager, tokenSecret []byte) *Handler {
	return &Handler{
		hub:         hub,
		sessions:    sessions,
		tokenSecret: tokenSecret,
	}
}

// HandleObserve handles GET /ws/sessions/{code}. The token is taken
// from the token query parameter or the Authorization header, and must
// be bound to the same session code. Auth is checked before upgrading.
func (h *Handler) HandleObserve(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	if code == "" {
		http.Error(w, "session code is required", http.StatusBadRequest)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		const prefix = "Bearer "
		if v := r.Header.Get("Authorization"); strings.HasPrefix(v, prefix) {
			token = strings.TrimSpace(v[len(prefix):])
		}
	}
	if token == "" || len(h.tokenSecret) == 0 {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	claims, err := auth.VerifyToken(token, h.tokenSecret)
	if err != nil {
		logger.Log.Infow("observer auth failed", "session", code, "error", err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if claims.SessionCode != code {
		http.Error(w, "token does not match session", http.StatusUnauthorized)
		return
	}

	sess, err := h.sessions.Get(r.Context(), code)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warnw("websocket upgrade failed", "session", code, "error", err)
		return
	}

	client := &Client{
		hub:         h.hub,
		conn:        conn,
		send:        make(chan *Envelope, 256),
		SessionCode: code,
		Role:        claims.Role,
		stateFunc: func() map[string]json.RawMessage {
			return sess.Snapshot()
		},
	}

	h.hub.register <- client

	go client.writePump()
	go client.readPump()

	// Every observer starts from a full snapshot.
	client.trySend(stateEnvelope(sess.Snapshot()))
}
