// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// GamesHandler serves the game catalog and the player directory.
type GamesHandler struct {
	deps Dependencies
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps Dependencies) *GamesHandler {
	return &GamesHandler{deps: deps}
}

// HandleListGames handles GET /games requests.
func (h *GamesHandler) HandleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.deps.ListGames(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// gameConfigResponse echoes the requested game id so a client that switched
// games while the request was in flight can discard the stale answer.
type gameConfigResponse struct {
	GameID int64 `json:"game_id"`
	Config any   `json:"config"`
}

// HandleGameConfig handles GET /games/{id}/config requests.
func (h *GamesHandler) HandleGameConfig(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	cfg, err := h.deps.GameConfig(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gameConfigResponse{GameID: id, Config: cfg})
}

type playerNameResponse struct {
	PlayerID int64  `json:"player_id"`
	Name     string `json:"name"`
}

// HandlePlayerName handles GET /players/{id}/name requests.
func (h *GamesHandler) HandlePlayerName(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	name, err := h.deps.PlayerName(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playerNameResponse{PlayerID: id, Name: name})
}
