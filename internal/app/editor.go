package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rankdesk/rankdesk/internal/adapters/catalog"
	"github.com/rankdesk/rankdesk/internal/domain/convert"
	"github.com/rankdesk/rankdesk/internal/domain/grid"
	"github.com/rankdesk/rankdesk/internal/domain/session"
	"github.com/rankdesk/rankdesk/internal/domain/submit"
)

// Editor is one in-flight editing surface over a single session. All access
// goes through its own mutex; editors never share mutable state, so one slow
// edit cannot block another.
type Editor struct {
	mu sync.Mutex

	id        uuid.UUID
	gameID    int64
	config    catalog.GameConfig
	mode      session.Mode
	op        submit.Op
	grid      *grid.Grid
	createdAt time.Time
}

// newEditor builds an editor for one game. A nil existing session opens an
// add form at the game's minimum table size; an existing session opens an
// edit form projected from it.
func newEditor(gameID int64, cfg catalog.GameConfig, existing *session.Session) (*Editor, error) {
	e := &Editor{
		id:        uuid.New(),
		gameID:    gameID,
		config:    cfg,
		mode:      cfg.DefaultMode(),
		op:        submit.Add,
		createdAt: time.Now(),
		grid: grid.New(
			grid.WithPlayerBounds(grid.Bounds{Min: cfg.MinPlayers, Max: cfg.MaxPlayers}),
			grid.WithTeamBounds(grid.Bounds{Min: cfg.MinTeams, Max: cfg.MaxTeams}),
			grid.WithTeamPlayerBounds(grid.Bounds{Min: cfg.MinPlayersPerTeam, Max: cfg.MaxPlayersPerTeam}),
		),
	}

	if existing != nil {
		if !cfg.Supports(existing.Mode) {
			return nil, fmt.Errorf("%s sessions: %w", existing.Mode, ErrUnsupportedMode)
		}
		e.mode = existing.Mode
		e.op = submit.Edit
		e.project(existing)
		return e, nil
	}

	if _, err := e.grid.Resize(activeKind(e.mode), 0, 0); err != nil {
		return nil, err
	}
	e.grid.ApplyDefaults()
	return e, nil
}

// activeKind is the outer row kind of a mode's table.
func activeKind(m session.Mode) grid.Kind {
	if m == session.TeamPlay {
		return grid.TeamRows
	}
	return grid.PlayerRows
}

// project sizes the active table to fit s and applies it.
func (e *Editor) project(s *session.Session) {
	if s.Mode == session.TeamPlay {
		_, _ = e.grid.Resize(grid.TeamRows, 0, len(s.Teams))
		for ti, t := range s.Teams {
			if ti >= len(e.grid.Teams()) {
				break
			}
			_, _ = e.grid.Resize(grid.TeamPlayerRows, ti, len(t.Members))
		}
	} else {
		_, _ = e.grid.Resize(grid.PlayerRows, 0, len(s.Ranks))
	}
	e.grid.Apply(s)
}

// switchMode converts the current table contents to the target mode.
// Identities stranded by the lossy conversion surface as advisory deletions
// on the next edit-mode submission.
func (e *Editor) switchMode(target session.Mode) error {
	if target == e.mode {
		return nil
	}
	if !e.config.Supports(target) {
		return fmt.Errorf("%s sessions: %w", target, ErrUnsupportedMode)
	}

	s, err := e.grid.ToSession(e.mode)
	if err != nil {
		return err
	}

	var converted *session.Session
	if target == session.TeamPlay {
		converted, err = convert.ToTeamMode(s, e.config.MinPlayersPerTeam, e.config.MinTeams, e.config.MaxTeams)
	} else {
		converted, err = convert.ToIndividualMode(s)
	}
	if err != nil {
		return err
	}

	e.project(converted)
	e.mode = target
	return nil
}

// snapshot builds the read view under the caller's lock.
func (e *Editor) snapshot() EditorView {
	view := EditorView{
		ID:        e.id.String(),
		GameID:    e.gameID,
		Game:      e.config.Name,
		Mode:      e.mode.String(),
		Op:        e.op.String(),
		CreatedAt: e.createdAt,
	}
	for _, slot := range e.grid.PlayerSlots() {
		view.Players = append(view.Players, playerRow(slot))
	}
	for _, unit := range e.grid.Teams() {
		tr := TeamRowView{
			Row:       unit.Index,
			Name:      unit.Name,
			AutoNamed: unit.AutoNamed,
			Position:  unit.Position,
			Score:     unit.Score,
		}
		for _, slot := range unit.Players() {
			tr.Players = append(tr.Players, playerRow(slot))
		}
		view.Teams = append(view.Teams, tr)
	}
	return view
}

func playerRow(slot *grid.Slot) PlayerRowView {
	return PlayerRowView{
		Row:      slot.Index,
		PlayerID: int64(slot.Values.Player),
		Position: slot.Values.Position,
		Score:    slot.Values.Score,
		Weight:   slot.Values.Weight,
	}
}

// EditorView is the JSON-ready projection of one editor's table.
type EditorView struct {
	ID        string          `json:"id"`
	GameID    int64           `json:"game_id"`
	Game      string          `json:"game"`
	Mode      string          `json:"mode"`
	Op        string          `json:"operation"`
	CreatedAt time.Time       `json:"created_at"`
	Players   []PlayerRowView `json:"players,omitempty"`
	Teams     []TeamRowView   `json:"teams,omitempty"`
}

// PlayerRowView is one flat or nested player row.
type PlayerRowView struct {
	Row      int     `json:"row"`
	PlayerID int64   `json:"player_id,omitempty"`
	Position int     `json:"position"`
	Score    *int    `json:"score,omitempty"`
	Weight   float64 `json:"weight"`
}

// TeamRowView is one team unit with its nested rows.
type TeamRowView struct {
	Row       int             `json:"row"`
	Name      string          `json:"name"`
	AutoNamed bool            `json:"auto_named"`
	Position  int             `json:"position"`
	Score     *int            `json:"score,omitempty"`
	Players   []PlayerRowView `json:"players,omitempty"`
}
