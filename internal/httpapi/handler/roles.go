package handler

import (
	"net/http"
	"strconv"

	"github.com/beratoz/vampireville/internal/game"
)

// roleEntry is one role in the GET /api/roles response.
type roleEntry struct {
	Role game.Role     `json:"role"`
	Info game.RoleInfo `json:"info"`
}

// rolesResponse is the JSON body for GET /api/roles.
type rolesResponse struct {
	Roles         []roleEntry  `json:"roles"`
	DefaultConfig *game.Config `json:"defaultConfig,omitempty"`
}

// GetRoles handles GET /api/roles.
//
// @Summary      Role catalog
// @Description  Static role definitions, plus the recommended config for ?players=N.
// @Tags         roles
// @Produce      json
// @Param        players  query     int  false  "Player count for the recommended config"
// @Success      200      {object}  rolesResponse
// @Router       /api/roles [get]
func GetRoles(w http.ResponseWriter, r *http.Request) {
	resp := rolesResponse{Roles: make([]roleEntry, 0, len(game.AllRoles))}
	for _, role := range game.AllRoles {
		resp.Roles = append(resp.Roles, roleEntry{Role: role, Info: role.Info()})
	}
	if raw := r.URL.Query().Get("players"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "players must be a non-negative integer")
			return
		}
		cfg := game.DefaultConfig(n)
		resp.DefaultConfig = &cfg
	}
	writeJSON(w, http.StatusOK, resp)
}
