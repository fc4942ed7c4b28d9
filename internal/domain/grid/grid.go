// Package grid implements the dynamic ranking table model: a slot arena per
// row kind with a LIFO trash pool, so transient resizes within one editing
// session never destroy entered values or external identities.
//
// Rows are addressed by structural index only. External identities live in
// the slots and travel with them through the trash pool untouched.
package grid

import (
	"fmt"

	"github.com/rankdesk/rankdesk/internal/domain/session"
)

// Kind selects which row population a resize targets.
type Kind int

const (
	// PlayerRows are the flat rows of an individual-mode table.
	PlayerRows Kind = iota
	// TeamRows are team units; each occupies a paired body and detail row.
	TeamRows
	// TeamPlayerRows are the nested player rows inside one team.
	TeamPlayerRows
)

func (k Kind) String() string {
	switch k {
	case PlayerRows:
		return "players"
	case TeamRows:
		return "teams"
	case TeamPlayerRows:
		return "team_players"
	default:
		return "unknown"
	}
}

// Bounds clamp a requested row count. They come from the game configuration,
// not from the grid itself.
type Bounds struct {
	Min int
	Max int
}

func (b Bounds) clamp(n int) int {
	if b.Min < 1 {
		b.Min = 1 // a table never drops to zero data rows
	}
	if n < b.Min {
		return b.Min
	}
	if b.Max >= b.Min && n > b.Max {
		return b.Max
	}
	return n
}

// Values holds what a user can type into one row.
type Values struct {
	Player   session.PlayerRef
	Position int
	Score    *int
	Weight   float64
}

// Slot is one data row with a stable structural index and the external
// identities embedded in it. Nested team rows carry a composite index: the
// owning team's index in Team plus the row index within the team.
type Slot struct {
	Team   int // -1 for flat player rows
	Index  int
	RankID session.EntityID
	PerfID session.EntityID
	Values Values
}

// TeamUnit is one team's paired rows plus its nested player table.
type TeamUnit struct {
	Index     int
	RankID    session.EntityID
	TeamID    session.EntityID
	Name      string
	AutoNamed bool
	Position  int
	Score     *int

	// OriginRanks mirrors the team rank's folded member rank identities so a
	// reconstructed session can still undo the fold.
	OriginRanks []session.EntityID

	players arena[*Slot]
}

// Players returns the live nested rows of the team.
func (t *TeamUnit) Players() []*Slot { return t.players.live }

// arena is a slot pool with a LIFO free list. Trashing marks a slot free with
// its data retained; growth pops the most recently freed slot first.
type arena[T any] struct {
	live     []T
	trash    []T
	headered bool
	next     int // next structural index ever minted
}

// resize brings the arena to want rows, recycling before minting. mint builds
// a brand-new unit for a structural index; reindex stamps an index onto a
// recycled or shifted unit.
func (a *arena[T]) resize(want int, mint func(index int) T, reindex func(u T, index int)) {
	for len(a.live) > want {
		last := a.live[len(a.live)-1]
		a.live = a.live[:len(a.live)-1]
		a.trash = append(a.trash, last)
	}
	for len(a.live) < want {
		if n := len(a.trash); n > 0 {
			u := a.trash[n-1]
			a.trash = a.trash[:n-1]
			reindex(u, len(a.live))
			a.live = append(a.live, u)
			continue
		}
		u := mint(a.next)
		a.next++
		a.live = append(a.live, u)
	}
	if len(a.live) > 0 {
		a.headered = true
	}
}

// Grid owns the row populations for both presentation modes of one editor.
type Grid struct {
	players arena[*Slot]
	teams   arena[*TeamUnit]

	playerBounds     Bounds
	teamBounds       Bounds
	teamPlayerBounds Bounds
}

// Option applies a configuration option to the Grid.
type Option func(*Grid)

// WithPlayerBounds sets the clamp for flat player rows.
func WithPlayerBounds(b Bounds) Option {
	return func(g *Grid) { g.playerBounds = b }
}

// WithTeamBounds sets the clamp for team units.
func WithTeamBounds(b Bounds) Option {
	return func(g *Grid) { g.teamBounds = b }
}

// WithTeamPlayerBounds sets the clamp for nested rows within one team.
func WithTeamPlayerBounds(b Bounds) Option {
	return func(g *Grid) { g.teamPlayerBounds = b }
}

// New creates an empty grid. Both tables start in the Empty state; the first
// growth materializes their headers.
func New(opts ...Option) *Grid {
	g := &Grid{
		playerBounds:     Bounds{Min: 1, Max: 0},
		teamBounds:       Bounds{Min: 1, Max: 0},
		teamPlayerBounds: Bounds{Min: 1, Max: 0},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Resize brings the row population of kind to want rows, clamped to the
// configured bounds, and returns the resulting count. team selects the target
// for TeamPlayerRows and is ignored otherwise. Resizing to the current count
// is a no-op; no identities churn.
func (g *Grid) Resize(kind Kind, team, want int) (int, error) {
	switch kind {
	case PlayerRows:
		want = g.playerBounds.clamp(want)
		g.players.resize(want, newSlot, reindexSlot)
		return len(g.players.live), nil

	case TeamRows:
		want = g.teamBounds.clamp(want)
		g.teams.resize(want, g.newTeam, reindexTeam)
		return len(g.teams.live), nil

	case TeamPlayerRows:
		if team < 0 || team >= len(g.teams.live) {
			return 0, fmt.Errorf("%w: %d", ErrNoSuchTeam, team)
		}
		// Only this team's nested table is touched; sibling teams and the
		// outer team table stay as they are.
		t := g.teams.live[team]
		want = g.teamPlayerBounds.clamp(want)
		t.players.resize(want, newSlotIn(t), reindexSlot)
		return len(t.players.live), nil

	default:
		return 0, fmt.Errorf("%w: kind %d", ErrUnknownKind, kind)
	}
}

func newSlot(index int) *Slot {
	return &Slot{
		Team:   -1,
		Index:  index,
		RankID: session.Pending(index),
		PerfID: session.Pending(index),
		Values: Values{Weight: 1},
	}
}

func newSlotIn(t *TeamUnit) func(index int) *Slot {
	return func(index int) *Slot {
		s := newSlot(index)
		s.Team = t.Index
		return s
	}
}

func reindexSlot(s *Slot, index int) { s.Index = index }

func (g *Grid) newTeam(index int) *TeamUnit {
	t := &TeamUnit{
		Index:     index,
		RankID:    session.Pending(index),
		TeamID:    session.Pending(index),
		Name:      fmt.Sprintf("Team %d", index+1),
		AutoNamed: true,
	}
	min := g.teamPlayerBounds.Min
	if min < 1 {
		min = 1
	}
	t.players.resize(min, newSlotIn(t), reindexSlot)
	return t
}

func reindexTeam(t *TeamUnit, index int) {
	t.Index = index
	if t.AutoNamed {
		t.Name = fmt.Sprintf("Team %d", index+1)
	}
	// Nested rows carry a composite (team, row) index; the team half moved,
	// so every dependent row is renumbered with it.
	for _, s := range t.players.live {
		s.Team = index
	}
	for _, s := range t.players.trash {
		s.Team = index
	}
}

// RemoveTeam trashes the team at index i and renumbers every following team
// together with its nested rows.
func (g *Grid) RemoveTeam(i int) error {
	if i < 0 || i >= len(g.teams.live) {
		return fmt.Errorf("%w: %d", ErrNoSuchTeam, i)
	}
	if len(g.teams.live) <= 1 {
		return ErrLastRow
	}
	t := g.teams.live[i]
	g.teams.live = append(g.teams.live[:i], g.teams.live[i+1:]...)
	g.teams.trash = append(g.teams.trash, t)
	for j := i; j < len(g.teams.live); j++ {
		reindexTeam(g.teams.live[j], j)
	}
	return nil
}

// PlayerSlots returns the live flat rows.
func (g *Grid) PlayerSlots() []*Slot { return g.players.live }

// Teams returns the live team units.
func (g *Grid) Teams() []*TeamUnit { return g.teams.live }

// Populated reports whether the table for kind has materialized its header.
// Teardown back to Empty is not supported.
func (g *Grid) Populated(kind Kind) bool {
	if kind == TeamRows || kind == TeamPlayerRows {
		return g.teams.headered
	}
	return g.players.headered
}
