package session_test

import (
	"errors"
	"testing"

	"github.com/rankdesk/rankdesk/internal/domain/session"
	. "github.com/smartystreets/goconvey/convey"
)

func individualSession(scores ...int) *session.Session {
	ranks := make([]session.Rank, len(scores))
	perfs := make([]session.Performance, len(scores))
	for i, sc := range scores {
		player := session.PlayerRef(i + 1)
		ranks[i] = session.Rank{
			ID:       session.Assigned(int64(100 + i)),
			Position: i + 1,
			Score:    session.Score(sc),
			Kind:     session.PlayerOwned,
			Owner:    session.Assigned(int64(player)),
		}
		perfs[i] = session.Performance{
			ID:     session.Assigned(int64(200 + i)),
			Player: player,
			Weight: 1,
		}
	}
	s, err := session.Build(session.Individual, ranks, perfs, nil)
	if err != nil {
		panic(err)
	}
	return s
}

func TestBuild(t *testing.T) {
	Convey("Given column-oriented session data", t, func() {
		Convey("When ranks and performances line up", func() {
			s := individualSession(10, 7)

			Convey("Then the session is built in individual mode", func() {
				So(s.Mode, ShouldEqual, session.Individual)
				So(s.Ranks, ShouldHaveLength, 2)
				So(s.Performances, ShouldHaveLength, 2)
			})
		})

		Convey("When rank and performance counts differ", func() {
			_, err := session.Build(session.Individual,
				[]session.Rank{{Kind: session.PlayerOwned}},
				nil, nil)

			Convey("Then it fails with ErrMalformedSession", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, session.ErrMalformedSession), ShouldBeTrue)
			})
		})

		Convey("When a player appears twice", func() {
			_, err := session.Build(session.Individual,
				[]session.Rank{
					{Kind: session.PlayerOwned, Owner: session.Assigned(1)},
					{Kind: session.PlayerOwned, Owner: session.Assigned(1)},
				},
				[]session.Performance{
					{Player: 1, Weight: 1},
					{Player: 1, Weight: 1},
				}, nil)

			So(errors.Is(err, session.ErrMalformedSession), ShouldBeTrue)
		})

		Convey("When a performance weight falls outside (0,1]", func() {
			_, err := session.Build(session.Individual,
				[]session.Rank{{Kind: session.PlayerOwned, Owner: session.Assigned(1)}},
				[]session.Performance{{Player: 1, Weight: 1.5}}, nil)

			So(errors.Is(err, session.ErrMalformedSession), ShouldBeTrue)
		})

		Convey("When a team session holds a performance outside every team", func() {
			_, err := session.Build(session.TeamPlay,
				[]session.Rank{{Kind: session.TeamOwned, Owner: session.Pending(0)}},
				[]session.Performance{
					{Player: 1, Weight: 1},
					{Player: 9, Weight: 1},
				},
				[]session.Team{{ID: session.Pending(0), Members: []session.PlayerRef{1, 9}}})
			So(err, ShouldBeNil)

			_, err = session.Build(session.TeamPlay,
				[]session.Rank{{Kind: session.TeamOwned, Owner: session.Pending(0)}},
				[]session.Performance{
					{Player: 1, Weight: 1},
					{Player: 9, Weight: 1},
				},
				[]session.Team{{ID: session.Pending(0), Members: []session.PlayerRef{1, 2}}})

			So(errors.Is(err, session.ErrMalformedSession), ShouldBeTrue)
		})
	})
}

func TestDerivePerformanceToRank(t *testing.T) {
	Convey("Given an individual session", t, func() {
		s := individualSession(10, 7, 3)

		Convey("Then every performance maps to the rank its player owns", func() {
			mapping := s.DerivePerformanceToRank()
			So(mapping, ShouldResemble, []int{0, 1, 2})
		})
	})

	Convey("Given a team session", t, func() {
		teamID := session.Assigned(50)
		s, err := session.Build(session.TeamPlay,
			[]session.Rank{{
				ID:    session.Assigned(500),
				Kind:  session.TeamOwned,
				Owner: teamID,
				Score: session.Score(12),
			}},
			[]session.Performance{
				{Player: 1, Weight: 1},
				{Player: 2, Weight: 1},
			},
			[]session.Team{{ID: teamID, Name: "Team 1", AutoNamed: true, Members: []session.PlayerRef{1, 2}}},
		)
		So(err, ShouldBeNil)

		Convey("Then members map through the team to its rank", func() {
			So(s.DerivePerformanceToRank(), ShouldResemble, []int{0, 0})
		})

		Convey("When a member is pulled out of its team mid-edit", func() {
			s.Teams[0].Members = []session.PlayerRef{1, 0}

			Convey("Then that performance is marked unresolved, not an error", func() {
				So(s.DerivePerformanceToRank(), ShouldResemble, []int{0, session.Unresolved})
			})
		})
	})
}

func TestDetectTies(t *testing.T) {
	Convey("Given sessions with and without equal scores", t, func() {
		So(individualSession(10, 10, 7).DetectTies(), ShouldBeTrue)
		So(individualSession(10, 9, 7).DetectTies(), ShouldBeFalse)

		Convey("And missing scores never tie", func() {
			s := individualSession(10, 9)
			s.Ranks[0].Score = nil
			s.Ranks[1].Score = nil
			So(s.DetectTies(), ShouldBeFalse)
		})
	})
}

func TestReconcilePositions(t *testing.T) {
	Convey("Given scores under higher-score-wins", t, func() {
		Convey("Then [10,10,7] yields positions [1,1,3]", func() {
			s := individualSession(10, 10, 7).ReconcilePositions(session.HigherWins)
			So(positions(s), ShouldResemble, []int{1, 1, 3})
		})

		Convey("Then [5,5,5] yields positions [1,1,1]", func() {
			s := individualSession(5, 5, 5).ReconcilePositions(session.HigherWins)
			So(positions(s), ShouldResemble, []int{1, 1, 1})
		})

		Convey("Then [20,15,15,10] yields positions [1,2,2,4]", func() {
			s := individualSession(20, 15, 15, 10).ReconcilePositions(session.HigherWins)
			So(positions(s), ShouldResemble, []int{1, 2, 2, 4})
		})
	})

	Convey("Given scores under lower-score-wins", t, func() {
		s := individualSession(54, 49, 49).ReconcilePositions(session.LowerWins)
		So(positions(s), ShouldResemble, []int{3, 1, 1})
	})

	Convey("Reconciliation returns a copy", t, func() {
		orig := individualSession(7, 10)
		_ = orig.ReconcilePositions(session.HigherWins)
		So(positions(orig), ShouldResemble, []int{1, 2})
	})
}

func positions(s *session.Session) []int {
	out := make([]int, len(s.Ranks))
	for i, r := range s.Ranks {
		out[i] = r.Position
	}
	return out
}
