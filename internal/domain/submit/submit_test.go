package submit_test

import (
	"errors"
	"testing"

	"github.com/rankdesk/rankdesk/internal/domain/session"
	"github.com/rankdesk/rankdesk/internal/domain/submit"
	. "github.com/smartystreets/goconvey/convey"
)

func editSession() *session.Session {
	s, err := session.Build(session.Individual,
		[]session.Rank{
			{ID: session.Assigned(100), Position: 1, Score: session.Score(20), Kind: session.PlayerOwned, Owner: session.Assigned(1)},
			{ID: session.Pending(1), Position: 2, Kind: session.PlayerOwned, Owner: session.Assigned(2)},
		},
		[]session.Performance{
			{ID: session.Assigned(200), Player: 1, Weight: 1},
			{ID: session.Pending(1), Player: 2, Weight: 1},
		},
		nil,
	)
	if err != nil {
		panic(err)
	}
	s.Deleted.Ranks = []session.EntityID{session.Assigned(101)}
	s.Deleted.Performances = []session.EntityID{session.Assigned(201), session.Pending(9)}
	return s
}

func TestSerializeEdit(t *testing.T) {
	Convey("Given an edited session with one new and one persisted row", t, func() {
		p, err := submit.Serialize(editSession(), submit.Edit)
		So(err, ShouldBeNil)

		Convey("Then assigned identities are submitted and pending ones omitted", func() {
			So(p.Ranks.Rows[0].ID, ShouldNotBeNil)
			So(*p.Ranks.Rows[0].ID, ShouldEqual, int64(100))
			So(p.Ranks.Rows[1].ID, ShouldBeNil)
		})

		Convey("Then deletion placeholders are appended past the live rows", func() {
			So(p.Ranks.Rows, ShouldHaveLength, 3)
			last := p.Ranks.Rows[2]
			So(last.Delete, ShouldBeTrue)
			So(*last.ID, ShouldEqual, int64(101))
		})

		Convey("Then a pending deletion is dropped, it never persisted", func() {
			So(p.Performances.Rows, ShouldHaveLength, 3)
			So(p.Performances.Rows[2].Delete, ShouldBeTrue)
			So(*p.Performances.Rows[2].ID, ShouldEqual, int64(201))
		})

		Convey("Then counters reflect pre-edit and submitted entity counts", func() {
			// 1 persisted live rank + 1 deletion placeholder existed before.
			So(p.Ranks.InitialCount, ShouldEqual, 2)
			So(p.Ranks.TotalCount, ShouldEqual, 3)
			So(p.Performances.InitialCount, ShouldEqual, 2)
			So(p.Performances.TotalCount, ShouldEqual, 3)
		})

		Convey("Then field values ride along", func() {
			So(p.Ranks.Rows[0].Fields["score"], ShouldEqual, 20)
			So(p.Ranks.Rows[0].Fields["position"], ShouldEqual, 1)
			So(p.Ranks.Rows[1].Fields, ShouldNotContainKey, "score")
		})
	})
}

func TestSerializeAdd(t *testing.T) {
	Convey("Given the same session submitted as a brand-new record", t, func() {
		p, err := submit.Serialize(editSession(), submit.Add)
		So(err, ShouldBeNil)

		Convey("Then no identity fields are submitted at all", func() {
			for _, row := range p.Ranks.Rows {
				So(row.ID, ShouldBeNil)
			}
			for _, row := range p.Performances.Rows {
				So(row.ID, ShouldBeNil)
			}
		})

		Convey("Then no deletion placeholders exist", func() {
			So(p.Ranks.TotalCount, ShouldEqual, 2)
			So(p.Ranks.InitialCount, ShouldEqual, 0)
		})
	})
}

func TestSerializeTeams(t *testing.T) {
	Convey("Given a team session with one auto-named and one named team", t, func() {
		a, b := session.Assigned(50), session.Assigned(51)
		s, err := session.Build(session.TeamPlay,
			[]session.Rank{
				{ID: session.Assigned(500), Position: 1, Kind: session.TeamOwned, Owner: a},
				{ID: session.Assigned(501), Position: 2, Kind: session.TeamOwned, Owner: b},
			},
			[]session.Performance{
				{Player: 1, Weight: 1},
				{Player: 2, Weight: 1},
			},
			[]session.Team{
				{ID: a, Name: "Team 1", AutoNamed: true, Members: []session.PlayerRef{1}},
				{ID: b, Name: "Dice & Destroy", Members: []session.PlayerRef{2}},
			},
		)
		So(err, ShouldBeNil)

		p, err := submit.Serialize(s, submit.Edit)
		So(err, ShouldBeNil)

		Convey("Then the auto-generated name is never submitted as data", func() {
			So(p.Teams.Rows[0].Fields, ShouldNotContainKey, "name")
			So(p.Teams.Rows[1].Fields["name"], ShouldEqual, "Dice & Destroy")
		})
	})
}

func TestParseOp(t *testing.T) {
	Convey("Operation parsing accepts add, edit and the empty default", t, func() {
		op, err := submit.ParseOp("edit")
		So(err, ShouldBeNil)
		So(op, ShouldEqual, submit.Edit)

		op, err = submit.ParseOp("")
		So(err, ShouldBeNil)
		So(op, ShouldEqual, submit.Add)

		_, err = submit.ParseOp("upsert")
		So(errors.Is(err, submit.ErrUnknownOp), ShouldBeTrue)
	})

	Convey("Serializing a nil session fails", t, func() {
		_, err := submit.Serialize(nil, submit.Add)
		So(errors.Is(err, submit.ErrNilSession), ShouldBeTrue)
	})
}
