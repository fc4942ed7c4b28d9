package convert_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rankdesk/rankdesk/internal/domain/convert"
	"github.com/rankdesk/rankdesk/internal/domain/session"
	. "github.com/smartystreets/goconvey/convey"
)

func individualSession(scores ...int) *session.Session {
	ranks := make([]session.Rank, len(scores))
	perfs := make([]session.Performance, len(scores))
	for i, sc := range scores {
		player := session.PlayerRef(i + 1)
		ranks[i] = session.Rank{
			ID:    session.Assigned(int64(100 + i)),
			Score: session.Score(sc),
			Kind:  session.PlayerOwned,
			Owner: session.Assigned(int64(player)),
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
	return s.ReconcilePositions(session.HigherWins)
}

func teamSession(teamScore int, members ...session.PlayerRef) *session.Session {
	teamID := session.Assigned(50)
	perfs := make([]session.Performance, len(members))
	for i, m := range members {
		perfs[i] = session.Performance{ID: session.Assigned(int64(200 + i)), Player: m, Weight: 1}
	}
	s, err := session.Build(session.TeamPlay,
		[]session.Rank{{
			ID:       session.Assigned(500),
			Position: 1,
			Score:    session.Score(teamScore),
			Kind:     session.TeamOwned,
			Owner:    teamID,
		}},
		perfs,
		[]session.Team{{ID: teamID, Name: "Team 1", AutoNamed: true, Members: members}},
	)
	if err != nil {
		panic(err)
	}
	return s
}

func TestToTeamMode(t *testing.T) {
	Convey("Given the 4-player session [20,15,15,10] under higher-wins", t, func() {
		ind := individualSession(20, 15, 15, 10)

		Convey("When converted with minTeamSize=2", func() {
			team, err := convert.ToTeamMode(ind, 2, 1, 8)
			So(err, ShouldBeNil)

			Convey("Then two teams of two emerge", func() {
				So(team.Teams, ShouldHaveLength, 2)
				So(team.Teams[0].Members, ShouldResemble, []session.PlayerRef{1, 2})
				So(team.Teams[1].Members, ShouldResemble, []session.PlayerRef{3, 4})
				So(team.Teams[0].AutoNamed, ShouldBeTrue)
			})

			Convey("And team scores are the exact member sums", func() {
				So(*team.Ranks[0].Score, ShouldEqual, 35)
				So(*team.Ranks[1].Score, ShouldEqual, 25)
			})

			Convey("And team positions come from each group's first member", func() {
				So(team.Ranks[0].Position, ShouldEqual, 1)
				So(team.Ranks[1].Position, ShouldEqual, 2)
			})

			Convey("And every origin rank id is retained in member order", func() {
				So(team.Ranks[0].OriginRanks, ShouldResemble,
					[]session.EntityID{session.Assigned(100), session.Assigned(101)})
				So(team.Ranks[1].OriginRanks, ShouldResemble,
					[]session.EntityID{session.Assigned(102), session.Assigned(103)})
			})

			Convey("And the folded-away rank ids are flagged for deletion", func() {
				So(team.Deleted.Ranks, ShouldResemble,
					[]session.EntityID{session.Assigned(101), session.Assigned(103)})
			})

			Convey("And the input session is untouched", func() {
				So(ind.Mode, ShouldEqual, session.Individual)
				So(ind.Teams, ShouldBeEmpty)
				So(ind.Deleted.Ranks, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a member without a score", t, func() {
		ind := individualSession(20, 15)
		ind.Ranks[1].Score = nil

		Convey("Then the team score degrades to nil instead of guessing", func() {
			team, err := convert.ToTeamMode(ind, 2, 1, 8)
			So(err, ShouldBeNil)
			So(team.Ranks[0].Score, ShouldBeNil)
		})
	})

	Convey("Given fewer players than minTeams demands", t, func() {
		ind := individualSession(20, 15)

		Convey("Then blank performances are padded in", func() {
			team, err := convert.ToTeamMode(ind, 2, 3, 8)
			So(err, ShouldBeNil)
			So(team.Teams, ShouldHaveLength, 3)
			So(team.Performances, ShouldHaveLength, 6)
			So(team.Performances[5].Player, ShouldEqual, session.PlayerRef(0))
		})
	})

	Convey("Given a session already in team mode", t, func() {
		_, err := convert.ToTeamMode(teamSession(10, 1, 2), 2, 1, 8)
		So(errors.Is(err, convert.ErrWrongMode), ShouldBeTrue)
	})
}

func TestToIndividualMode(t *testing.T) {
	Convey("Given a team of three with score 10", t, func() {
		team := teamSession(10, 1, 2, 3)

		Convey("When unfolded", func() {
			ind, err := convert.ToIndividualMode(team)
			So(err, ShouldBeNil)

			Convey("Then every member gets a rank at the team's position", func() {
				So(ind.Ranks, ShouldHaveLength, 3)
				for _, r := range ind.Ranks {
					So(r.Position, ShouldEqual, 1)
					So(r.Kind, ShouldEqual, session.PlayerOwned)
				}
			})

			Convey("And the shares sum exactly to the team score", func() {
				So(*ind.Ranks[0].Score, ShouldEqual, 4)
				So(*ind.Ranks[1].Score, ShouldEqual, 3)
				So(*ind.Ranks[2].Score, ShouldEqual, 3)
			})

			Convey("And the team is flagged for deletion", func() {
				So(ind.Deleted.Teams, ShouldResemble, []session.EntityID{session.Assigned(50)})
			})
		})
	})

	Convey("Given members with their own performance scores", t, func() {
		team := teamSession(10, 1, 2)
		team.Performances[0].Score = session.Score(7)

		Convey("Then own scores win and the rest is distributed", func() {
			ind, err := convert.ToIndividualMode(team)
			So(err, ShouldBeNil)
			So(*ind.Ranks[0].Score, ShouldEqual, 7)
			So(*ind.Ranks[1].Score, ShouldEqual, 3)
		})
	})

	Convey("Given a team rank without a score", t, func() {
		team := teamSession(10, 1, 2)
		team.Ranks[0].Score = nil

		Convey("Then members end up without scores", func() {
			ind, err := convert.ToIndividualMode(team)
			So(err, ShouldBeNil)
			So(ind.Ranks[0].Score, ShouldBeNil)
			So(ind.Ranks[1].Score, ShouldBeNil)
		})
	})

	Convey("Given a session already in individual mode", t, func() {
		_, err := convert.ToIndividualMode(individualSession(5))
		So(errors.Is(err, convert.ErrWrongMode), ShouldBeTrue)
	})
}

func TestRoundTrip(t *testing.T) {
	Convey("Given any individual session", t, func() {
		for _, n := range []int{1, 2, 3, 5, 8} {
			scores := make([]int, n)
			for i := range scores {
				scores[i] = 10 * (n - i)
			}
			ind := individualSession(scores...)

			Convey(then("a %d-player session keeps its players across a round trip", n), func() {
				team, err := convert.ToTeamMode(ind, 2, 1, 8)
				So(err, ShouldBeNil)
				back, err := convert.ToIndividualMode(team)
				So(err, ShouldBeNil)

				So(back.Performances, ShouldHaveLength, n)
				for i, p := range back.Performances {
					So(p.Player, ShouldEqual, ind.Performances[i].Player)
				}
			})

			Convey(then("a %d-player round trip restores rank identities", n), func() {
				team, err := convert.ToTeamMode(ind, 2, 1, 8)
				So(err, ShouldBeNil)
				back, err := convert.ToIndividualMode(team)
				So(err, ShouldBeNil)

				for i, r := range back.Ranks {
					So(r.ID, ShouldResemble, ind.Ranks[i].ID)
				}
				So(back.Deleted.Ranks, ShouldBeEmpty)
			})
		}
	})
}

func TestScoreDistributionExactness(t *testing.T) {
	Convey("For all S >= 0 and k >= 1 the shares sum exactly to S", t, func() {
		for s := 0; s <= 25; s++ {
			for k := 1; k <= 6; k++ {
				members := make([]session.PlayerRef, k)
				for i := range members {
					members[i] = session.PlayerRef(i + 1)
				}
				ind, err := convert.ToIndividualMode(teamSession(s, members...))
				So(err, ShouldBeNil)

				sum := 0
				for _, r := range ind.Ranks {
					So(r.Score, ShouldNotBeNil)
					sum += *r.Score
				}
				So(sum, ShouldEqual, s)
			}
		}
	})
}

func then(format string, args ...any) string {
	return fmt.Sprintf("Then "+format, args...)
}
