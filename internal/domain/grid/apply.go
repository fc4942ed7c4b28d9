package grid

import (
	"fmt"

	"github.com/rankdesk/rankdesk/internal/domain/session"
)

// Apply projects a session onto the live rows, matching by structural index.
// The structural index is the only thing guaranteed stable during a resize,
// so external identities are taken from the session wholesale rather than
// matched. Rows past the session's data receive policy defaults. A nil
// session applies defaults everywhere.
func (g *Grid) Apply(s *session.Session) {
	if s == nil {
		g.ApplyDefaults()
		return
	}
	switch s.Mode {
	case session.Individual:
		g.applyIndividual(s)
	case session.TeamPlay:
		g.applyTeam(s)
	}
}

func (g *Grid) applyIndividual(s *session.Session) {
	for i, slot := range g.players.live {
		if i < len(s.Ranks) {
			r := s.Ranks[i]
			slot.RankID = r.ID
			slot.Values.Position = r.Position
			slot.Values.Score = copyScore(r.Score)
		} else {
			slot.Values.Position = i + 1
			slot.Values.Score = nil
		}
		if i < len(s.Performances) {
			p := s.Performances[i]
			slot.PerfID = p.ID
			slot.Values.Player = p.Player
			slot.Values.Weight = p.Weight
		}
	}
}

func (g *Grid) applyTeam(s *session.Session) {
	rankOfTeam := make(map[session.EntityID]int, len(s.Ranks))
	for i, r := range s.Ranks {
		rankOfTeam[r.Owner] = i
	}
	perfOf := make(map[session.PlayerRef]session.Performance, len(s.Performances))
	for _, p := range s.Performances {
		if p.Player != 0 {
			perfOf[p.Player] = p
		}
	}

	for ti, unit := range g.teams.live {
		if ti >= len(s.Teams) {
			unit.Position = ti + 1
			unit.Score = nil
			continue
		}
		team := s.Teams[ti]
		unit.TeamID = team.ID
		unit.Name = team.Name
		unit.AutoNamed = team.AutoNamed

		var rank session.Rank
		if ri, ok := rankOfTeam[team.ID]; ok {
			rank = s.Ranks[ri]
			unit.RankID = rank.ID
			unit.Position = rank.Position
			unit.Score = copyScore(rank.Score)
			unit.OriginRanks = append([]session.EntityID(nil), rank.OriginRanks...)
		}

		unit.players.resize(max(len(team.Members), 1), newSlotIn(unit), reindexSlot)
		for mi, slot := range unit.players.live {
			if mi >= len(team.Members) {
				break
			}
			member := team.Members[mi]
			slot.Values.Player = member
			if mi < len(rank.OriginRanks) {
				slot.RankID = rank.OriginRanks[mi]
			}
			if p, ok := perfOf[member]; ok {
				slot.PerfID = p.ID
				slot.Values.Score = copyScore(p.Score)
				slot.Values.Weight = p.Weight
			}
		}
	}
}

// ApplyDefaults fills rows with the add-form policy defaults: sequential
// positions, no scores, full play weight.
func (g *Grid) ApplyDefaults() {
	for i, slot := range g.players.live {
		slot.Values.Position = i + 1
		slot.Values.Score = nil
		if slot.Values.Weight == 0 {
			slot.Values.Weight = 1
		}
	}
	for i, unit := range g.teams.live {
		unit.Position = i + 1
		unit.Score = nil
	}
}

// SetPlayerValues stores user-entered values into a flat row.
func (g *Grid) SetPlayerValues(row int, v Values) error {
	if row < 0 || row >= len(g.players.live) {
		return fmt.Errorf("%w: player row %d", ErrNoSuchRow, row)
	}
	if v.Weight == 0 {
		v.Weight = 1
	}
	g.players.live[row].Values = v
	return nil
}

// SetTeamPlayerValues stores user-entered values into a nested team row.
func (g *Grid) SetTeamPlayerValues(team, row int, v Values) error {
	if team < 0 || team >= len(g.teams.live) {
		return fmt.Errorf("%w: %d", ErrNoSuchTeam, team)
	}
	t := g.teams.live[team]
	if row < 0 || row >= len(t.players.live) {
		return fmt.Errorf("%w: team %d row %d", ErrNoSuchRow, team, row)
	}
	if v.Weight == 0 {
		v.Weight = 1
	}
	t.players.live[row].Values = v
	return nil
}

// SetTeam stores user-entered team fields. An empty name keeps the
// auto-generated one; naming a team explicitly clears the auto flag.
func (g *Grid) SetTeam(team int, name string, position int, score *int) error {
	if team < 0 || team >= len(g.teams.live) {
		return fmt.Errorf("%w: %d", ErrNoSuchTeam, team)
	}
	t := g.teams.live[team]
	if name != "" {
		t.Name = name
		t.AutoNamed = false
	}
	t.Position = position
	t.Score = copyScore(score)
	return nil
}

// ToSession reconstructs the session the rows currently describe. Trashed
// rows contribute their assigned identities as advisory deletions, appended
// for the submission counters.
func (g *Grid) ToSession(mode session.Mode) (*session.Session, error) {
	switch mode {
	case session.Individual:
		return g.individualSession()
	case session.TeamPlay:
		return g.teamSession()
	default:
		return nil, fmt.Errorf("%w: mode %d", ErrUnknownKind, mode)
	}
}

func (g *Grid) individualSession() (*session.Session, error) {
	ranks := make([]session.Rank, 0, len(g.players.live))
	perfs := make([]session.Performance, 0, len(g.players.live))
	for _, slot := range g.players.live {
		ranks = append(ranks, session.Rank{
			ID:       slot.RankID,
			Position: slot.Values.Position,
			Score:    copyScore(slot.Values.Score),
			Kind:     session.PlayerOwned,
			Owner:    session.Assigned(int64(slot.Values.Player)),
		})
		perfs = append(perfs, session.Performance{
			ID:     slot.PerfID,
			Player: slot.Values.Player,
			Weight: slot.Values.Weight,
		})
	}
	s, err := session.Build(session.Individual, ranks, perfs, nil)
	if err != nil {
		return nil, err
	}
	for _, slot := range g.players.trash {
		if slot.RankID.IsAssigned() {
			s.Deleted.Ranks = append(s.Deleted.Ranks, slot.RankID)
		}
		if slot.PerfID.IsAssigned() {
			s.Deleted.Performances = append(s.Deleted.Performances, slot.PerfID)
		}
	}
	return s, nil
}

func (g *Grid) teamSession() (*session.Session, error) {
	var (
		ranks []session.Rank
		perfs []session.Performance
		teams []session.Team
	)
	for _, unit := range g.teams.live {
		team := session.Team{
			ID:        unit.TeamID,
			Name:      unit.Name,
			AutoNamed: unit.AutoNamed,
		}
		rank := session.Rank{
			ID:          unit.RankID,
			Position:    unit.Position,
			Score:       copyScore(unit.Score),
			Kind:        session.TeamOwned,
			Owner:       unit.TeamID,
			OriginRanks: append([]session.EntityID(nil), unit.OriginRanks...),
		}
		for _, slot := range unit.players.live {
			team.Members = append(team.Members, slot.Values.Player)
			perfs = append(perfs, session.Performance{
				ID:     slot.PerfID,
				Player: slot.Values.Player,
				Score:  copyScore(slot.Values.Score),
				Weight: slot.Values.Weight,
			})
		}
		teams = append(teams, team)
		ranks = append(ranks, rank)
	}
	s, err := session.Build(session.TeamPlay, ranks, perfs, teams)
	if err != nil {
		return nil, err
	}
	for _, unit := range g.teams.trash {
		if unit.TeamID.IsAssigned() {
			s.Deleted.Teams = append(s.Deleted.Teams, unit.TeamID)
		}
		if unit.RankID.IsAssigned() {
			s.Deleted.Ranks = append(s.Deleted.Ranks, unit.RankID)
		}
		for _, slot := range unit.players.live {
			if slot.PerfID.IsAssigned() {
				s.Deleted.Performances = append(s.Deleted.Performances, slot.PerfID)
			}
		}
	}
	for _, unit := range g.teams.live {
		for _, slot := range unit.players.trash {
			if slot.PerfID.IsAssigned() {
				s.Deleted.Performances = append(s.Deleted.Performances, slot.PerfID)
			}
		}
	}
	return s, nil
}

func copyScore(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
