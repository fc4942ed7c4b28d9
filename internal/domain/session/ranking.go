package session

import "sort"

// Unresolved marks a performance whose rank cannot be derived yet, e.g. a
// player that has not been placed into any team mid-edit. It is a recoverable
// data-entry state, not an error.
const Unresolved = -1

// DerivePerformanceToRank maps every performance, in order, to the index of
// the rank it resolves to. In individual mode a player maps straight to the
// rank it owns; in team mode the player maps through its team to the team's
// rank. Entries that cannot be resolved hold Unresolved.
//
// The mapping is always recomputed from ownership; it is never stored as an
// independent foreign key that could go stale.
func (s *Session) DerivePerformanceToRank() []int {
	out := make([]int, len(s.Performances))

	switch s.Mode {
	case Individual:
		byPlayer := make(map[int64]int, len(s.Ranks))
		for i, r := range s.Ranks {
			if id, ok := r.Owner.Value(); ok {
				byPlayer[id] = i
			}
		}
		for i, p := range s.Performances {
			out[i] = Unresolved
			if p.Player == 0 {
				continue
			}
			if ri, ok := byPlayer[int64(p.Player)]; ok {
				out[i] = ri
			}
		}
		return out

	case TeamPlay:
		teamOf := make(map[PlayerRef]int)
		for ti, t := range s.Teams {
			for _, m := range t.Members {
				if m != 0 {
					teamOf[m] = ti
				}
			}
		}
		rankOfTeam := make(map[EntityID]int, len(s.Ranks))
		for i, r := range s.Ranks {
			rankOfTeam[r.Owner] = i
		}
		for i, p := range s.Performances {
			out[i] = Unresolved
			if p.Player == 0 {
				continue
			}
			ti, ok := teamOf[p.Player]
			if !ok {
				continue
			}
			if ri, ok := rankOfTeam[s.Teams[ti].ID]; ok {
				out[i] = ri
			}
		}
		return out
	}

	for i := range out {
		out[i] = Unresolved
	}
	return out
}

// DetectTies reports whether two or more ranks share the same score. The
// caller uses this to decide whether manual tie-breaking (explicit position
// entry) must be exposed. Ranks without a score never tie.
func (s *Session) DetectTies() bool {
	seen := make(map[int]struct{}, len(s.Ranks))
	for _, r := range s.Ranks {
		if r.Score == nil {
			continue
		}
		if _, dup := seen[*r.Score]; dup {
			return true
		}
		seen[*r.Score] = struct{}{}
	}
	return false
}

// ReconcilePositions returns a copy of the session with every rank's position
// recomputed as a competition ranking over the scores: equal scores share a
// position and the next distinct score resumes at its 1-based order, so
// [10,10,7] yields [1,1,3].
//
// Ranks without a score sort after scored ranks, keep their relative order and
// each take their own position. Callers editing pre-reconciled data must not
// invoke this unconditionally or manually entered tie-breaks are lost.
func (s *Session) ReconcilePositions(dir ScoringDirection) *Session {
	out := s.Clone()
	order := make([]int, len(out.Ranks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := out.Ranks[order[a]], out.Ranks[order[b]]
		switch {
		case ra.Score == nil && rb.Score == nil:
			return false
		case ra.Score == nil:
			return false
		case rb.Score == nil:
			return true
		case dir == LowerWins:
			return *ra.Score < *rb.Score
		default:
			return *ra.Score > *rb.Score
		}
	})

	pos := 0
	var prev *int
	for n, idx := range order {
		r := &out.Ranks[idx]
		if r.Score != nil && prev != nil && *r.Score == *prev {
			// tied with the previous entry, position carries over
		} else {
			pos = n + 1
		}
		r.Position = pos
		prev = r.Score
	}
	return out
}
