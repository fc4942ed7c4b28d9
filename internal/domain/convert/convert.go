// Package convert transforms a session between individual and team shape
// under deterministic, documented-lossy rules. Both conversions are pure:
// the input session is never mutated and a failed conversion returns the
// caller's session untouched.
package convert

import (
	"fmt"

	"github.com/rankdesk/rankdesk/internal/domain/session"
)

// ToTeamMode folds an individual session into team shape. The ordered list of
// performances is partitioned into consecutive groups of minTeamSize, the last
// group taking the remainder; blank performances are padded in when minTeams
// demands more groups than the players can fill.
//
// The fold is lossy: a team rank inherits position from the group's first
// member only, and member rank identities beyond the first are flagged for
// deletion in case the switch is submitted without reversal. Every origin
// rank id is retained in order on the team rank so ToIndividualMode can hand
// them back.
func ToTeamMode(s *session.Session, minTeamSize, minTeams, maxTeams int) (*session.Session, error) {
	if s.Mode != session.Individual {
		return nil, fmt.Errorf("%w: expected an individual session", ErrWrongMode)
	}
	if minTeamSize < 1 {
		minTeamSize = 1
	}
	if minTeams < 1 {
		minTeams = 1
	}
	if maxTeams < minTeams {
		maxTeams = minTeams
	}

	src := s.Clone()
	rankOf := src.DerivePerformanceToRank()

	perfs := src.Performances
	teamCount := len(perfs) / minTeamSize
	if teamCount < 1 {
		teamCount = 1
	}
	if teamCount < minTeams {
		teamCount = minTeams
		// Pad the player count upward so every team reaches minTeamSize.
		for len(perfs) < teamCount*minTeamSize {
			perfs = append(perfs, session.Performance{
				ID:     session.Pending(len(perfs)),
				Weight: 1,
			})
			rankOf = append(rankOf, session.Unresolved)
		}
	}
	if teamCount > maxTeams {
		teamCount = maxTeams
	}

	out := &session.Session{
		Mode:         session.TeamPlay,
		Performances: perfs,
		Deleted:      src.Deleted,
	}

	for ti := 0; ti < teamCount; ti++ {
		lo := ti * minTeamSize
		hi := lo + minTeamSize
		if ti == teamCount-1 || hi > len(perfs) {
			hi = len(perfs) // last group takes the remainder
		}
		group := perfs[lo:hi]

		team := session.Team{
			ID:        session.Pending(ti),
			Name:      fmt.Sprintf("Team %d", ti+1),
			AutoNamed: true,
		}
		for _, p := range group {
			team.Members = append(team.Members, p.Player)
		}

		rank := session.Rank{
			Kind:  session.TeamOwned,
			Owner: team.ID,
		}
		sum := 0
		complete := true
		for gi := range group {
			ri := rankOf[lo+gi]
			if ri == session.Unresolved {
				rank.OriginRanks = append(rank.OriginRanks, session.Pending(lo+gi))
				complete = false
				continue
			}
			origin := src.Ranks[ri]
			rank.OriginRanks = append(rank.OriginRanks, origin.ID)
			if gi == 0 {
				// Only the first member's placement survives the fold.
				rank.ID = origin.ID
				rank.Position = origin.Position
			} else if origin.ID.IsAssigned() {
				out.Deleted.Ranks = append(out.Deleted.Ranks, origin.ID)
			}
			if origin.Score == nil {
				complete = false
			} else {
				sum += *origin.Score
			}
		}
		if complete && len(group) > 0 {
			rank.Score = session.Score(sum)
		}
		if rank.ID.IsZero() {
			rank.ID = session.Pending(ti)
		}

		out.Teams = append(out.Teams, team)
		out.Ranks = append(out.Ranks, rank)
	}

	return out, nil
}

// ToIndividualMode unfolds a team session back to one rank per player. Each
// member recovers the rank identity stored for its slot in the team rank's
// origin list, or a pending placeholder when none exists. Members inherit the
// team's position, introducing a tie among former teammates. A member's score
// is its own performance score when present, otherwise the team score split
// evenly with the remainder handed out one unit at a time from the front so
// the member scores sum exactly to the team score.
func ToIndividualMode(s *session.Session) (*session.Session, error) {
	if s.Mode != session.TeamPlay {
		return nil, fmt.Errorf("%w: expected a team session", ErrWrongMode)
	}

	src := s.Clone()
	out := &session.Session{
		Mode:         session.Individual,
		Performances: src.Performances,
		Deleted:      src.Deleted,
	}

	rankOfTeam := make(map[session.EntityID]int, len(src.Ranks))
	for i, r := range src.Ranks {
		rankOfTeam[r.Owner] = i
	}
	perfOf := make(map[session.PlayerRef]*session.Performance, len(src.Performances))
	for i := range src.Performances {
		p := &src.Performances[i]
		if p.Player != 0 {
			perfOf[p.Player] = p
		}
	}

	slot := 0
	for ti, team := range src.Teams {
		ri, ok := rankOfTeam[team.ID]
		if !ok {
			return nil, fmt.Errorf("%w: team %d has no rank", ErrWrongMode, ti)
		}
		teamRank := src.Ranks[ri]

		shares, err := memberScores(teamRank, team, perfOf)
		if err != nil {
			return nil, err
		}

		for mi, member := range team.Members {
			rank := session.Rank{
				ID:       session.Pending(slot),
				Position: teamRank.Position,
				Score:    shares[mi],
				Kind:     session.PlayerOwned,
				Owner:    session.Assigned(int64(member)),
			}
			if mi < len(teamRank.OriginRanks) && teamRank.OriginRanks[mi].IsAssigned() {
				rank.ID = teamRank.OriginRanks[mi]
			}
			out.Ranks = append(out.Ranks, rank)
			slot++
		}

		// The fold is undone; drop any origin ids that were queued for
		// deletion while the session sat in team shape.
		out.Deleted.Ranks = withoutOrigins(out.Deleted.Ranks, teamRank.OriginRanks)

		if team.ID.IsAssigned() {
			out.Deleted.Teams = append(out.Deleted.Teams, team.ID)
		}
	}

	return out, nil
}

// memberScores computes one score per member. Members with their own
// performance score keep it; the rest split the team score with floor shares
// plus one remainder unit each from the front. The shares of the splitting
// members must sum exactly to the undistributed portion of the team score.
func memberScores(teamRank session.Rank, team session.Team, perfOf map[session.PlayerRef]*session.Performance) ([]*int, error) {
	shares := make([]*int, len(team.Members))

	if teamRank.Score == nil {
		for mi, member := range team.Members {
			if p, ok := perfOf[member]; ok && p.Score != nil {
				shares[mi] = session.Score(*p.Score)
			}
		}
		return shares, nil
	}

	total := *teamRank.Score
	rest := total
	var splitting []int
	for mi, member := range team.Members {
		if p, ok := perfOf[member]; ok && p.Score != nil {
			shares[mi] = session.Score(*p.Score)
			rest -= *p.Score
			continue
		}
		splitting = append(splitting, mi)
	}

	if len(splitting) > 0 {
		base := rest / len(splitting)
		rem := rest % len(splitting)
		if rem < 0 {
			base--
			rem += len(splitting)
		}
		for i, mi := range splitting {
			v := base
			if i < rem {
				v++
			}
			shares[mi] = session.Score(v)
		}
	}

	// Internal consistency: the distributed shares must reproduce the team
	// score exactly. A violation is a conversion bug, never a data problem.
	if len(splitting) > 0 {
		sum := 0
		for _, sc := range shares {
			if sc != nil {
				sum += *sc
			}
		}
		if sum != total {
			return nil, fmt.Errorf("%w: member scores sum to %d, team score is %d", ErrConversionInvariant, sum, total)
		}
	}

	return shares, nil
}

// withoutOrigins strips ids that appear in origins from the deletion list.
func withoutOrigins(deleted, origins []session.EntityID) []session.EntityID {
	if len(deleted) == 0 || len(origins) == 0 {
		return deleted
	}
	drop := make(map[session.EntityID]struct{}, len(origins))
	for _, id := range origins {
		drop[id] = struct{}{}
	}
	out := deleted[:0]
	for _, id := range deleted {
		if _, hit := drop[id]; !hit {
			out = append(out, id)
		}
	}
	return out
}
