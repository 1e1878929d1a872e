package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/beratoz/vampireville/internal/game"
	"github.com/beratoz/vampireville/internal/session"
	"github.com/beratoz/vampireville/internal/storage"
)

// statusFor maps command errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, game.ErrUnknownPlayer):
		return http.StatusNotFound
	case errors.Is(err, game.ErrWrongPhase),
		errors.Is(err, game.ErrTerminalPhase),
		errors.Is(err, session.ErrDuplicate),
		errors.Is(err, session.ErrRosterFull):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// command runs fn against the session named in the URL and writes the
// shared command response: the full snapshot on success, an error body
// with a reason code on failure.
func (h *SessionHandler) command(w http.ResponseWriter, r *http.Request, name string, fn func(ctx context.Context, s *session.Session) error) {
	started := time.Now()
	defer func() {
		h.metrics.CommandDuration.Observe(time.Since(started).Seconds())
	}()

	code := sessionCode(r)
	sess, err := h.sessions.Get(r.Context(), code)
	if err != nil {
		h.metrics.CommandsRejected.WithLabelValues(name, "not_found").Inc()
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	before := sess.State().Phase
	if err := fn(r.Context(), sess); err != nil {
		h.metrics.CommandsRejected.WithLabelValues(name, session.ReasonCode(err)).Inc()
		writeCommandError(w, statusFor(err), err)
		return
	}
	h.metrics.CommandsTotal.WithLabelValues(name).Inc()

	state := sess.State()
	if before != game.PhaseGameOver && state.Phase == game.PhaseGameOver && state.Winner != "" {
		h.metrics.GamesFinished.WithLabelValues(string(state.Winner)).Inc()
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Code:         code,
		BalanceScore: sess.BalanceScore(),
		State:        sess.Snapshot(),
	})
}

// decode reads a JSON body into dst, reporting malformed input.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

type addPlayerRequest struct {
	Name string `json:"name"`
}

// AddPlayer handles POST /api/sessions/{code}/players.
//
// @Summary      Add player
// @Description  Add a player to the roster during setup. Recomputes the recommended config.
// @Tags         commands
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string            true  "Session code"
// @Param        body  body      addPlayerRequest  true  "Request body"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/sessions/{code}/players [post]
func (h *SessionHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	var req addPlayerRequest
	if !decode(w, r, &req) {
		return
	}
	h.command(w, r, "add_player", func(ctx context.Context, s *session.Session) error {
		_, err := s.AddPlayer(ctx, req.Name)
		return err
	})
}

// RemovePlayer handles DELETE /api/sessions/{code}/players/{playerID}.
//
// @Summary      Remove player
// @Tags         commands
// @Produce      json
// @Security     BearerAuth
// @Param        code      path      string  true  "Session code"
// @Param        playerID  path      string  true  "Player ID"
// @Success      200       {object}  sessionResponse
// @Failure      404       {object}  errorResponse
// @Router       /api/sessions/{code}/players/{playerID} [delete]
func (h *SessionHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	h.command(w, r, "remove_player", func(ctx context.Context, s *session.Session) error {
		return s.RemovePlayer(ctx, playerID)
	})
}

// UpdateConfig handles PATCH /api/sessions/{code}/config.
//
// @Summary      Update config
// @Description  Patch role counts and timers. Rejected patches leave the config unchanged.
// @Tags         commands
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string            true  "Session code"
// @Param        body  body      game.ConfigPatch  true  "Fields to change"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/sessions/{code}/config [patch]
func (h *SessionHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var patch game.ConfigPatch
	if !decode(w, r, &patch) {
		return
	}
	h.command(w, r, "update_config", func(ctx context.Context, s *session.Session) error {
		_, err := s.UpdateConfig(ctx, patch)
		return err
	})
}

// Start handles POST /api/sessions/{code}/start.
//
// @Summary      Start game
// @Description  Deal roles and move to role distribution. Requires at least 4 players.
// @Tags         commands
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string  true  "Session code"
// @Success      200   {object}  sessionResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/sessions/{code}/start [post]
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, "start", func(ctx context.Context, s *session.Session) error {
		return s.Start(ctx)
	})
}

type nightActionRequest struct {
	Role     game.Role `json:"role"`
	TargetID string    `json:"targetId"`
}

// NightAction handles POST /api/sessions/{code}/night-action.
//
// @Summary      Record night action
// @Description  Record the vampire, doctor or sheriff target for the current night. An empty targetId clears it.
// @Tags         commands
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string              true  "Session code"
// @Param        body  body      nightActionRequest  true  "Request body"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/sessions/{code}/night-action [post]
func (h *SessionHandler) NightAction(w http.ResponseWriter, r *http.Request) {
	var req nightActionRequest
	if !decode(w, r, &req) {
		return
	}
	h.command(w, r, "night_action", func(ctx context.Context, s *session.Session) error {
		return s.SetNightTarget(ctx, req.Role, req.TargetID)
	})
}

type roleActionRequest struct {
	Role game.Role `json:"role"`
}

// RoleAction handles POST /api/sessions/{code}/role-action.
//
// @Summary      Spend role action
// @Description  Decrement the remaining uses of the doctor or sheriff ability.
// @Tags         commands
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string             true  "Session code"
// @Param        body  body      roleActionRequest  true  "Request body"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/sessions/{code}/role-action [post]
func (h *SessionHandler) RoleAction(w http.ResponseWriter, r *http.Request) {
	var req roleActionRequest
	if !decode(w, r, &req) {
		return
	}
	h.command(w, r, "role_action", func(ctx context.Context, s *session.Session) error {
		return s.UseRoleAction(ctx, req.Role)
	})
}

type castVoteRequest struct {
	VoterID  string `json:"voterId"`
	TargetID string `json:"targetId"`
}

// CastVote handles POST /api/sessions/{code}/votes.
//
// @Summary      Cast vote
// @Description  Record a living player's vote, replacing any earlier vote by the same voter.
// @Tags         commands
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string           true  "Session code"
// @Param        body  body      castVoteRequest  true  "Request body"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/sessions/{code}/votes [post]
func (h *SessionHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req castVoteRequest
	if !decode(w, r, &req) {
		return
	}
	h.command(w, r, "cast_vote", func(ctx context.Context, s *session.Session) error {
		return s.CastVote(ctx, req.VoterID, req.TargetID)
	})
}

// ClearVotes handles DELETE /api/sessions/{code}/votes.
//
// @Summary      Clear votes
// @Tags         commands
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string  true  "Session code"
// @Success      200   {object}  sessionResponse
// @Router       /api/sessions/{code}/votes [delete]
func (h *SessionHandler) ClearVotes(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, "clear_votes", func(ctx context.Context, s *session.Session) error {
		return s.ClearVotes(ctx)
	})
}

type activeVoterRequest struct {
	PlayerID string `json:"playerId"`
}

// SetActiveVoter handles PUT /api/sessions/{code}/active-voter.
//
// @Summary      Set active voter
// @Description  Point the voting UI at the player whose turn it is. Empty playerId clears it.
// @Tags         commands
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string              true  "Session code"
// @Param        body  body      activeVoterRequest  true  "Request body"
// @Success      200   {object}  sessionResponse
// @Router       /api/sessions/{code}/active-voter [put]
func (h *SessionHandler) SetActiveVoter(w http.ResponseWriter, r *http.Request) {
	var req activeVoterRequest
	if !decode(w, r, &req) {
		return
	}
	h.command(w, r, "set_active_voter", func(ctx context.Context, s *session.Session) error {
		return s.SetActiveVoter(ctx, req.PlayerID)
	})
}

type eliminateRequest struct {
	PlayerID string `json:"playerId"`
}

// Eliminate handles POST /api/sessions/{code}/eliminate.
//
// @Summary      Eliminate player
// @Description  Eliminate the player the village voted out and evaluate the win conditions.
// @Tags         commands
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string            true  "Session code"
// @Param        body  body      eliminateRequest  true  "Request body"
// @Success      200   {object}  sessionResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/sessions/{code}/eliminate [post]
func (h *SessionHandler) Eliminate(w http.ResponseWriter, r *http.Request) {
	var req eliminateRequest
	if !decode(w, r, &req) {
		return
	}
	h.command(w, r, "eliminate", func(ctx context.Context, s *session.Session) error {
		_, err := s.Eliminate(ctx, req.PlayerID)
		return err
	})
}

// Advance handles POST /api/sessions/{code}/advance.
//
// @Summary      Advance phase
// @Description  Move the game to the next phase, resolving night actions and votes on the way.
// @Tags         commands
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string  true  "Session code"
// @Success      200   {object}  sessionResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/sessions/{code}/advance [post]
func (h *SessionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, "advance", func(ctx context.Context, s *session.Session) error {
		return s.AdvancePhase(ctx)
	})
}

// ResetRound handles POST /api/sessions/{code}/reset-round.
//
// @Summary      Reset round
// @Description  Return to setup with the same roster, clearing roles and game progress.
// @Tags         commands
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string  true  "Session code"
// @Success      200   {object}  sessionResponse
// @Router       /api/sessions/{code}/reset-round [post]
func (h *SessionHandler) ResetRound(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, "reset_round", func(ctx context.Context, s *session.Session) error {
		return s.ResetRound(ctx)
	})
}

// ResetAll handles POST /api/sessions/{code}/reset.
//
// @Summary      Full reset
// @Description  Wipe the roster and all game state back to a fresh session.
// @Tags         commands
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string  true  "Session code"
// @Success      200   {object}  sessionResponse
// @Router       /api/sessions/{code}/reset [post]
func (h *SessionHandler) ResetAll(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, "reset_all", func(ctx context.Context, s *session.Session) error {
		return s.ResetAll(ctx)
	})
}
