package session

import "fmt"

// Build constructs a Session from column-oriented inputs and validates the
// structural invariants. All failures wrap ErrMalformedSession; a session is
// never returned partially built.
func Build(mode Mode, ranks []Rank, performances []Performance, teams []Team) (*Session, error) {
	s := &Session{
		Mode:         mode,
		Ranks:        ranks,
		Performances: performances,
		Teams:        teams,
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) validate() error {
	for i, p := range s.Performances {
		if p.Weight <= 0 || p.Weight > 1 {
			return fmt.Errorf("%w: performance %d has weight %v outside (0,1]", ErrMalformedSession, i, p.Weight)
		}
	}
	seen := make(map[PlayerRef]struct{}, len(s.Performances))
	for _, p := range s.Performances {
		if p.Player == 0 {
			continue // unselected player row, legal mid-edit
		}
		if _, dup := seen[p.Player]; dup {
			return fmt.Errorf("%w: player %d has more than one performance", ErrMalformedSession, p.Player)
		}
		seen[p.Player] = struct{}{}
	}

	switch s.Mode {
	case Individual:
		return s.validateIndividual()
	case TeamPlay:
		return s.validateTeam()
	default:
		return fmt.Errorf("%w: unknown mode %d", ErrMalformedSession, s.Mode)
	}
}

func (s *Session) validateIndividual() error {
	if len(s.Teams) != 0 {
		return fmt.Errorf("%w: individual session carries %d teams", ErrMalformedSession, len(s.Teams))
	}
	if len(s.Ranks) != len(s.Performances) {
		return fmt.Errorf("%w: %d ranks for %d performances", ErrMalformedSession, len(s.Ranks), len(s.Performances))
	}
	for i, r := range s.Ranks {
		if r.Kind != PlayerOwned {
			return fmt.Errorf("%w: rank %d is not player-owned", ErrMalformedSession, i)
		}
	}
	return nil
}

func (s *Session) validateTeam() error {
	if len(s.Teams) == 0 {
		return fmt.Errorf("%w: team session without teams", ErrMalformedSession)
	}
	if len(s.Ranks) != len(s.Teams) {
		return fmt.Errorf("%w: %d ranks for %d teams", ErrMalformedSession, len(s.Ranks), len(s.Teams))
	}
	members := 0
	owned := make(map[PlayerRef]int) // player -> owning team index
	for ti, t := range s.Teams {
		if len(t.Members) < 1 {
			return fmt.Errorf("%w: team %d has no members", ErrMalformedSession, ti)
		}
		members += len(t.Members)
		for _, m := range t.Members {
			if m == 0 {
				continue
			}
			if prev, ok := owned[m]; ok {
				return fmt.Errorf("%w: player %d belongs to teams %d and %d", ErrMalformedSession, m, prev, ti)
			}
			owned[m] = ti
		}
	}
	if members != len(s.Performances) {
		return fmt.Errorf("%w: teams hold %d members for %d performances", ErrMalformedSession, members, len(s.Performances))
	}
	for i, r := range s.Ranks {
		if r.Kind != TeamOwned {
			return fmt.Errorf("%w: rank %d is not team-owned", ErrMalformedSession, i)
		}
	}
	// Every selected player with a performance must sit in some team.
	for _, p := range s.Performances {
		if p.Player == 0 {
			continue
		}
		if _, ok := owned[p.Player]; !ok {
			return fmt.Errorf("%w: performance of player %d references no team", ErrMalformedSession, p.Player)
		}
	}
	return nil
}
