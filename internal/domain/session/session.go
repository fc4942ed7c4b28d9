// Package session holds the normalized outcome of one played game session:
// ranks, performances and, in team play, teams. It is the single source of
// truth during an edit; rendered rows are a projection of it.
package session

import (
	"fmt"
	"strconv"
)

// Mode selects between the two presentation shapes of a session.
type Mode int

const (
	// Individual means one competitive unit per player.
	Individual Mode = iota
	// TeamPlay means players are grouped into teams sharing one rank.
	TeamPlay
)

func (m Mode) String() string {
	switch m {
	case Individual:
		return "individual"
	case TeamPlay:
		return "team"
	default:
		return "unknown"
	}
}

// ScoringDirection states which way scores sort.
type ScoringDirection int

const (
	// HigherWins ranks larger scores first.
	HigherWins ScoringDirection = iota
	// LowerWins ranks smaller scores first (golf style).
	LowerWins
)

func (d ScoringDirection) String() string {
	if d == LowerWins {
		return "lower_wins"
	}
	return "higher_wins"
}

// OwnerKind states what kind of entity owns a rank.
type OwnerKind int

const (
	// PlayerOwned ranks belong to a single player (individual mode).
	PlayerOwned OwnerKind = iota
	// TeamOwned ranks belong to a team (team mode).
	TeamOwned
)

// PlayerRef is the external identity of a player. Players always exist in the
// directory before they appear in a session; zero means "not selected yet".
type PlayerRef int64

// EntityID identifies a rank, performance or team in the external system of
// record. An id is either Assigned (already persisted) or Pending (exists only
// within the current edit, keyed by the structural index of the row that
// created it). A Pending id must never be serialized as a real identity.
type EntityID struct {
	assigned bool
	id       int64
	slot     int
}

// Assigned wraps a persisted external identity.
func Assigned(id int64) EntityID {
	return EntityID{assigned: true, id: id}
}

// Pending marks an identity that has not been persisted yet.
func Pending(slot int) EntityID {
	return EntityID{slot: slot}
}

// IsAssigned reports whether the id refers to a persisted entity.
func (e EntityID) IsAssigned() bool { return e.assigned }

// IsZero reports whether the id is the zero value (no identity at all).
func (e EntityID) IsZero() bool { return e == EntityID{} }

// Value returns the external identity and whether it is assigned.
func (e EntityID) Value() (int64, bool) { return e.id, e.assigned }

// Slot returns the structural index a pending id was minted for.
func (e EntityID) Slot() int { return e.slot }

func (e EntityID) String() string {
	if e.assigned {
		return strconv.FormatInt(e.id, 10)
	}
	return fmt.Sprintf("pending(%d)", e.slot)
}

// Rank is one competitive placement outcome. Exactly one rank exists per
// competitive unit: a player in individual mode, a team in team mode.
type Rank struct {
	ID       EntityID
	Position int  // 1 = first place; ties allowed
	Score    *int // nil when no score was entered
	Kind     OwnerKind
	Owner    EntityID // player id or team id depending on Kind

	// OriginRanks carries, in member order, the individual rank identities a
	// team rank was folded from. The reverse conversion consumes it to give
	// every member its old rank back.
	OriginRanks []EntityID
}

// Performance is one player's participation record within the session. It
// exists once per player regardless of mode.
type Performance struct {
	ID     EntityID
	Player PlayerRef
	Score  *int    // individual score tracked inside team mode, optional
	Weight float64 // partial-play weight in (0,1], 1 = full game
}

// Team groups players sharing one rank. Team mode only.
type Team struct {
	ID        EntityID
	Name      string
	AutoNamed bool // auto-generated default name, never submitted as meaningful
	Members   []PlayerRef
}

// Deletions collects advisory delete flags for entities removed during the
// edit. The system of record may refuse a deletion if other sessions still
// reference the entity.
type Deletions struct {
	Ranks        []EntityID
	Performances []EntityID
	Teams        []EntityID
}

// Session aggregates one game session's outcome.
type Session struct {
	Mode         Mode
	Ranks        []Rank
	Performances []Performance
	Teams        []Team // empty in individual mode
	Deleted      Deletions
}

// Clone returns a deep copy. Converters and reconciliation operate on copies
// so a failed operation leaves the caller's session untouched.
func (s *Session) Clone() *Session {
	out := &Session{
		Mode:         s.Mode,
		Ranks:        make([]Rank, len(s.Ranks)),
		Performances: make([]Performance, len(s.Performances)),
		Teams:        make([]Team, len(s.Teams)),
		Deleted: Deletions{
			Ranks:        append([]EntityID(nil), s.Deleted.Ranks...),
			Performances: append([]EntityID(nil), s.Deleted.Performances...),
			Teams:        append([]EntityID(nil), s.Deleted.Teams...),
		},
	}
	for i, r := range s.Ranks {
		out.Ranks[i] = r
		if r.Score != nil {
			v := *r.Score
			out.Ranks[i].Score = &v
		}
		out.Ranks[i].OriginRanks = append([]EntityID(nil), r.OriginRanks...)
	}
	for i, p := range s.Performances {
		out.Performances[i] = p
		if p.Score != nil {
			v := *p.Score
			out.Performances[i].Score = &v
		}
	}
	for i, t := range s.Teams {
		out.Teams[i] = t
		out.Teams[i].Members = append([]PlayerRef(nil), t.Members...)
	}
	return out
}

// Score is a convenience constructor for optional score values.
func Score(v int) *int { return &v }
