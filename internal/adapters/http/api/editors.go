// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/rankdesk/rankdesk/internal/domain/grid"
	"github.com/rankdesk/rankdesk/internal/domain/session"
)

// EditorsHandler handles editor lifecycle and table operations.
type EditorsHandler struct {
	deps Dependencies
}

// NewEditorsHandler creates a new editors handler.
func NewEditorsHandler(deps Dependencies) *EditorsHandler {
	return &EditorsHandler{deps: deps}
}

type openEditorRequest struct {
	GameID int64 `json:"game_id"`

	// Session, when present, opens an edit form over the given recorded
	// session instead of a blank add form.
	Session *sessionRequest `json:"session,omitempty"`
}

// sessionRequest is the wire shape of a recorded session. Ranks pair with
// performances (individual play) or teams (team play) by index; omitted ids
// mark rows added during this edit.
type sessionRequest struct {
	Mode         string        `json:"mode"`
	Ranks        []rankRequest `json:"ranks"`
	Performances []perfRequest `json:"performances"`
	Teams        []teamRequest `json:"teams,omitempty"`
}

type rankRequest struct {
	ID       *int64 `json:"id,omitempty"`
	Position int    `json:"position"`
	Score    *int   `json:"score,omitempty"`
}

type perfRequest struct {
	ID       *int64  `json:"id,omitempty"`
	PlayerID int64   `json:"player_id"`
	Score    *int    `json:"score,omitempty"`
	Weight   float64 `json:"weight"`
}

type teamRequest struct {
	ID      *int64  `json:"id,omitempty"`
	Name    string  `json:"name,omitempty"`
	Members []int64 `json:"members"`
}

// toSession validates the wire shape into a domain session.
func (sr *sessionRequest) toSession() (*session.Session, error) {
	mode, err := parseMode(sr.Mode)
	if err != nil {
		return nil, err
	}

	perfs := make([]session.Performance, len(sr.Performances))
	for i, p := range sr.Performances {
		weight := p.Weight
		if weight == 0 {
			weight = 1
		}
		perfs[i] = session.Performance{
			ID:     wireEntityID(p.ID, i),
			Player: session.PlayerRef(p.PlayerID),
			Score:  p.Score,
			Weight: weight,
		}
	}

	teams := make([]session.Team, len(sr.Teams))
	for i, t := range sr.Teams {
		team := session.Team{ID: wireEntityID(t.ID, i), Name: t.Name}
		for _, m := range t.Members {
			team.Members = append(team.Members, session.PlayerRef(m))
		}
		teams[i] = team
	}

	ranks := make([]session.Rank, len(sr.Ranks))
	for i, rr := range sr.Ranks {
		rank := session.Rank{
			ID:       wireEntityID(rr.ID, i),
			Position: rr.Position,
			Score:    rr.Score,
		}
		if mode == session.TeamPlay {
			rank.Kind = session.TeamOwned
			if i < len(teams) {
				rank.Owner = teams[i].ID
			}
		} else {
			rank.Kind = session.PlayerOwned
			if i < len(perfs) {
				rank.Owner = session.Assigned(int64(perfs[i].Player))
			}
		}
		ranks[i] = rank
	}

	return session.Build(mode, ranks, perfs, teams)
}

func wireEntityID(id *int64, slot int) session.EntityID {
	if id != nil {
		return session.Assigned(*id)
	}
	return session.Pending(slot)
}

// HandleOpen handles POST /editors requests.
func (h *EditorsHandler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	var req openEditorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GameID < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	var (
		view EditorView
		err  error
	)
	if req.Session != nil {
		var existing *session.Session
		existing, err = req.Session.toSession()
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		view, err = h.deps.OpenEditorWith(r.Context(), req.GameID, existing)
	} else {
		view, err = h.deps.OpenEditor(r.Context(), req.GameID)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// HandleGet handles GET /editors/{id} requests.
func (h *EditorsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.Editor(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleClose handles DELETE /editors/{id} requests.
func (h *EditorsHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.CloseEditor(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resizeRequest struct {
	Kind string `json:"kind"` // "players", "teams" or "team_players"
	Team int    `json:"team"` // target team for "team_players"
	Rows int    `json:"rows"`
}

// HandleResize handles POST /editors/{id}/resize requests.
func (h *EditorsHandler) HandleResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	kind, err := parseKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	view, err := h.deps.Resize(r.Context(), mux.Vars(r)["id"], kind, req.Team, req.Rows)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type switchModeRequest struct {
	Mode string `json:"mode"` // "individual" or "team"
}

// HandleSwitchMode handles POST /editors/{id}/mode requests.
func (h *EditorsHandler) HandleSwitchMode(w http.ResponseWriter, r *http.Request) {
	var req switchModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	mode, err := parseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	view, err := h.deps.SwitchMode(r.Context(), mux.Vars(r)["id"], mode)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type setRowRequest struct {
	Team     *int    `json:"team,omitempty"` // nil targets the flat player table
	Row      int     `json:"row"`
	PlayerID int64   `json:"player_id"`
	Position int     `json:"position"`
	Score    *int    `json:"score,omitempty"`
	Weight   float64 `json:"weight"`
}

// HandleSetRow handles POST /editors/{id}/rows requests.
func (h *EditorsHandler) HandleSetRow(w http.ResponseWriter, r *http.Request) {
	var req setRowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	values := grid.Values{
		Player:   session.PlayerRef(req.PlayerID),
		Position: req.Position,
		Score:    req.Score,
		Weight:   req.Weight,
	}

	var (
		view EditorView
		err  error
	)
	if req.Team != nil {
		view, err = h.deps.SetTeamPlayerValues(r.Context(), mux.Vars(r)["id"], *req.Team, req.Row, values)
	} else {
		view, err = h.deps.SetPlayerValues(r.Context(), mux.Vars(r)["id"], req.Row, values)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type setTeamRequest struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
	Score    *int   `json:"score,omitempty"`
}

// HandleSetTeam handles POST /editors/{id}/teams/{team} requests.
func (h *EditorsHandler) HandleSetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := strconv.Atoi(mux.Vars(r)["team"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	var req setTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	view, err := h.deps.SetTeam(r.Context(), mux.Vars(r)["id"], team, req.Name, req.Position, req.Score)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleRemoveTeam handles DELETE /editors/{id}/teams/{team} requests.
func (h *EditorsHandler) HandleRemoveTeam(w http.ResponseWriter, r *http.Request) {
	team, err := strconv.Atoi(mux.Vars(r)["team"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	view, err := h.deps.RemoveTeam(r.Context(), mux.Vars(r)["id"], team)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type submitRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
	Reconcile      bool   `json:"reconcile"`
}

// HandleSubmit handles POST /editors/{id}/submission requests.
func (h *EditorsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	payload, err := h.deps.Submit(r.Context(), mux.Vars(r)["id"], req.IdempotencyKey, req.Reconcile)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, payload)
}

func parseKind(s string) (grid.Kind, error) {
	switch s {
	case "players":
		return grid.PlayerRows, nil
	case "teams":
		return grid.TeamRows, nil
	case "team_players":
		return grid.TeamPlayerRows, nil
	default:
		return 0, ErrBadRequest
	}
}

func parseMode(s string) (session.Mode, error) {
	switch s {
	case "individual":
		return session.Individual, nil
	case "team":
		return session.TeamPlay, nil
	default:
		return 0, ErrBadRequest
	}
}
