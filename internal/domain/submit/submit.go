// Package submit turns a session into the form-submission payload the system
// of record consumes: per-entity row sets with initial/total counters,
// explicit delete markers, and add-vs-edit identity elision.
package submit

import (
	"fmt"

	"github.com/rankdesk/rankdesk/internal/domain/session"
)

// Op distinguishes a first submission from an edit of persisted data.
type Op int

const (
	// Add submits a brand-new session; identity fields are always omitted so
	// the system of record assigns fresh ones.
	Add Op = iota
	// Edit submits changes to persisted data; assigned identities are sent,
	// pending ones are omitted.
	Edit
)

func (o Op) String() string {
	if o == Edit {
		return "edit"
	}
	return "add"
}

// ParseOp maps the wire value onto an Op.
func ParseOp(s string) (Op, error) {
	switch s {
	case "add", "":
		return Add, nil
	case "edit":
		return Edit, nil
	default:
		return Add, fmt.Errorf("%w: %q", ErrUnknownOp, s)
	}
}

// Row is one submitted entity. A deletion row carries only its identity and
// the delete marker.
type Row struct {
	ID     *int64         `json:"id,omitempty"`
	Delete bool           `json:"delete,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

// RowSet is the submission surface for one entity kind. InitialCount is the
// number of entities that existed before this edit; TotalCount counts the
// submitted rows including deletion placeholders appended past the live rows.
type RowSet struct {
	InitialCount int   `json:"initial_count"`
	TotalCount   int   `json:"total_count"`
	Rows         []Row `json:"rows"`
}

// Payload is the full serialized submission.
type Payload struct {
	Op           string `json:"operation"`
	Ranks        RowSet `json:"ranks"`
	Performances RowSet `json:"performances"`
	Teams        RowSet `json:"teams"`
}

// Serialize reads the session destructively-for-submission: live entities in
// order, then deletion placeholders. On Add every identity is dropped and the
// deletion lists are ignored (nothing persisted exists to delete).
func Serialize(s *session.Session, op Op) (*Payload, error) {
	if s == nil {
		return nil, ErrNilSession
	}

	p := &Payload{Op: op.String()}

	p.Ranks = rowSet(op, len(s.Ranks), s.Deleted.Ranks, func(i int) Row {
		r := s.Ranks[i]
		fields := map[string]any{
			"position":   r.Position,
			"owner_kind": ownerKind(r.Kind),
		}
		if r.Score != nil {
			fields["score"] = *r.Score
		}
		if id, ok := r.Owner.Value(); ok {
			fields["owner"] = id
		}
		return Row{ID: identity(op, r.ID), Fields: fields}
	})

	p.Performances = rowSet(op, len(s.Performances), s.Deleted.Performances, func(i int) Row {
		perf := s.Performances[i]
		fields := map[string]any{
			"player": int64(perf.Player),
			"weight": perf.Weight,
		}
		if perf.Score != nil {
			fields["score"] = *perf.Score
		}
		return Row{ID: identity(op, perf.ID), Fields: fields}
	})

	p.Teams = rowSet(op, len(s.Teams), s.Deleted.Teams, func(i int) Row {
		t := s.Teams[i]
		fields := map[string]any{}
		// An auto-generated name is a display default, not user data.
		if !t.AutoNamed && t.Name != "" {
			fields["name"] = t.Name
		}
		members := make([]int64, 0, len(t.Members))
		for _, m := range t.Members {
			if m != 0 {
				members = append(members, int64(m))
			}
		}
		fields["members"] = members
		return Row{ID: identity(op, t.ID), Fields: fields}
	})

	return p, nil
}

// rowSet assembles one entity kind: live rows first, deletion placeholders
// appended past them. Counters are recomputed from what is actually emitted.
func rowSet(op Op, live int, deleted []session.EntityID, row func(i int) Row) RowSet {
	set := RowSet{Rows: make([]Row, 0, live+len(deleted))}
	assigned := 0
	for i := 0; i < live; i++ {
		r := row(i)
		if r.ID != nil {
			assigned++
		}
		set.Rows = append(set.Rows, r)
	}
	if op == Edit {
		for _, id := range deleted {
			v, ok := id.Value()
			if !ok {
				continue // a pending entity was never persisted
			}
			set.Rows = append(set.Rows, Row{ID: &v, Delete: true})
			assigned++
		}
	}
	set.TotalCount = len(set.Rows)
	if op == Edit {
		set.InitialCount = assigned
	}
	return set
}

// identity resolves which identity value a row submits: none on Add, the
// assigned id on Edit, nothing for pending ids.
func identity(op Op, id session.EntityID) *int64 {
	if op == Add {
		return nil
	}
	if v, ok := id.Value(); ok {
		return &v
	}
	return nil
}

func ownerKind(k session.OwnerKind) string {
	if k == session.TeamOwned {
		return "team"
	}
	return "player"
}
