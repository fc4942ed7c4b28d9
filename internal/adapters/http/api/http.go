// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rankdesk/rankdesk/internal/adapters/catalog"
	"github.com/rankdesk/rankdesk/internal/adapters/standings"
	service "github.com/rankdesk/rankdesk/internal/app"
	"github.com/rankdesk/rankdesk/internal/domain/grid"
	"github.com/rankdesk/rankdesk/internal/domain/session"
	"github.com/rankdesk/rankdesk/internal/domain/submit"
)

// EditorView mirrors the read shape returned by editor operations.
type EditorView = service.EditorView

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Editor lifecycle and table operations.
	OpenEditor(ctx context.Context, gameID int64) (EditorView, error)
	OpenEditorWith(ctx context.Context, gameID int64, existing *session.Session) (EditorView, error)
	Editor(ctx context.Context, id string) (EditorView, error)
	CloseEditor(ctx context.Context, id string) error
	Resize(ctx context.Context, id string, kind grid.Kind, team, want int) (EditorView, error)
	RemoveTeam(ctx context.Context, id string, team int) (EditorView, error)
	SwitchMode(ctx context.Context, id string, target session.Mode) (EditorView, error)
	SetPlayerValues(ctx context.Context, id string, row int, v grid.Values) (EditorView, error)
	SetTeamPlayerValues(ctx context.Context, id string, team, row int, v grid.Values) (EditorView, error)
	SetTeam(ctx context.Context, id string, team int, name string, position int, score *int) (EditorView, error)
	Submit(ctx context.Context, id, idemKey string, reconcile bool) (*submit.Payload, error)

	// Read operations over the catalog and standings.
	Leaderboard(ctx context.Context, gameID int64, n int) ([]standings.Entry, error)
	Standing(ctx context.Context, gameID, playerID int64) (standings.Entry, error)
	GameConfig(ctx context.Context, gameID int64) (catalog.GameConfig, error)
	ListGames(ctx context.Context) ([]catalog.GameConfig, error)
	PlayerName(ctx context.Context, playerID int64) (string, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	editorsHandler     *EditorsHandler
	gamesHandler       *GamesHandler
	leaderboardHandler *LeaderboardHandler
	statsHandler       *StatsHandler
	healthHandler      *HealthHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		editorsHandler:     NewEditorsHandler(deps),
		gamesHandler:       NewGamesHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
		statsHandler:       NewStatsHandler(statsProvider),
		healthHandler:      NewHealthHandler(),
	}
}

// Register attaches all HTTP routes to the router.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	r.Use(MetricsMiddleware)

	r.HandleFunc("/healthz", s.healthHandler.HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.statsHandler.HandleStats).Methods(http.MethodGet)

	r.HandleFunc("/editors", s.editorsHandler.HandleOpen).Methods(http.MethodPost)
	r.HandleFunc("/editors/{id}", s.editorsHandler.HandleGet).Methods(http.MethodGet)
	r.HandleFunc("/editors/{id}", s.editorsHandler.HandleClose).Methods(http.MethodDelete)
	r.HandleFunc("/editors/{id}/resize", s.editorsHandler.HandleResize).Methods(http.MethodPost)
	r.HandleFunc("/editors/{id}/mode", s.editorsHandler.HandleSwitchMode).Methods(http.MethodPost)
	r.HandleFunc("/editors/{id}/rows", s.editorsHandler.HandleSetRow).Methods(http.MethodPost)
	r.HandleFunc("/editors/{id}/teams/{team}", s.editorsHandler.HandleSetTeam).Methods(http.MethodPost)
	r.HandleFunc("/editors/{id}/teams/{team}", s.editorsHandler.HandleRemoveTeam).Methods(http.MethodDelete)
	r.HandleFunc("/editors/{id}/submission", s.editorsHandler.HandleSubmit).Methods(http.MethodPost)

	r.HandleFunc("/games", s.gamesHandler.HandleListGames).Methods(http.MethodGet)
	r.HandleFunc("/games/{id}/config", s.gamesHandler.HandleGameConfig).Methods(http.MethodGet)
	r.HandleFunc("/players/{id}/name", s.gamesHandler.HandlePlayerName).Methods(http.MethodGet)

	r.HandleFunc("/leaderboard", s.leaderboardHandler.HandleGetLeaderboard).Methods(http.MethodGet)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates service sentinels onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEditorNotFound),
		errors.Is(err, catalog.ErrGameNotFound),
		errors.Is(err, catalog.ErrPlayerNotFound),
		errors.Is(err, standings.ErrUnknownGame),
		errors.Is(err, standings.ErrNotFound),
		errors.Is(err, grid.ErrNoSuchTeam),
		errors.Is(err, grid.ErrNoSuchRow):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrDuplicateSubmission):
		writeError(w, http.StatusConflict, "duplicate", err)
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, service.ErrUnsupportedMode),
		errors.Is(err, grid.ErrLastRow),
		errors.Is(err, grid.ErrUnknownKind),
		errors.Is(err, standings.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
