package seed_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/rankdesk/rankdesk/internal/adapters/catalog"
	"github.com/rankdesk/rankdesk/internal/seed"
	"github.com/rankdesk/rankdesk/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func writeFixtureFile(t *testing.T, content string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), "fixtures-*.yaml")
	if err != nil {
		t.Fatalf("failed to create fixtures file: %v", err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("failed to write fixtures file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close fixtures file: %v", err)
	}

	return tmpFile.Name()
}

func TestLoadFixtures(t *testing.T) {
	convey.Convey("Given a fixtures file", t, func() {
		convey.Convey("When the file lists games and players", func() {
			path := writeFixtureFile(t, `
games:
  - name: Crokinole
    scoring_direction: higher_wins
    supports_individual: true
    supports_team: true
    min_players: 2
    max_players: 8
    min_players_per_team: 2
    max_players_per_team: 4
    min_teams: 2
    max_teams: 4
players:
  - display_name: Ada
  - display_name: Grace
`)

			f, err := seed.Load(path)

			convey.Convey("Then both sections should be parsed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(f.Games, convey.ShouldHaveLength, 1)
				convey.So(f.Games[0].Name, convey.ShouldEqual, "Crokinole")
				convey.So(f.Games[0].MaxPlayers, convey.ShouldEqual, 8)
				convey.So(f.Players, convey.ShouldHaveLength, 2)
			})
		})

		convey.Convey("When the file is empty", func() {
			path := writeFixtureFile(t, "games: []\nplayers: []\n")

			f, err := seed.Load(path)

			convey.Convey("Then loading should fail", func() {
				convey.So(errors.Is(err, seed.ErrEmptyFixture), convey.ShouldBeTrue)
				convey.So(f, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the file does not exist", func() {
			f, err := seed.Load("/non/existent/fixtures.yaml")

			convey.Convey("Then loading should fail", func() {
				convey.So(errors.Is(err, seed.ErrLoadFixture), convey.ShouldBeTrue)
				convey.So(f, convey.ShouldBeNil)
			})
		})
	})
}

func TestApplyFixtures(t *testing.T) {
	convey.Convey("Given a catalog and parsed fixtures", t, func() {
		cat, err := catalog.Open(":memory:")
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = cat.Close() }()

		ctx := context.Background()
		fixture := &seed.Fixture{
			Games: []seed.Game{{
				Name:               "Solitaire League",
				ScoringDirection:   "lower_wins",
				SupportsIndividual: true,
				MinPlayers:         1,
				MaxPlayers:         4,
			}},
			Players: []seed.Player{
				{DisplayName: "Ada"},
				{DisplayName: "Grace"},
			},
		}

		convey.Convey("When applying the fixtures", func() {
			err := seed.Apply(ctx, cat, fixture)

			convey.Convey("Then games and players should land in the catalog", func() {
				convey.So(err, convey.ShouldBeNil)

				games, err := cat.ListGames(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(games, convey.ShouldHaveLength, 1)
				convey.So(games[0].Name, convey.ShouldEqual, "Solitaire League")

				players, err := cat.ListPlayers(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(players, convey.ShouldHaveLength, 2)
			})
		})

		convey.Convey("When applying the same fixtures twice", func() {
			convey.So(seed.Apply(ctx, cat, fixture), convey.ShouldBeNil)
			convey.So(seed.Apply(ctx, cat, fixture), convey.ShouldBeNil)

			convey.Convey("Then entries should not be duplicated", func() {
				games, err := cat.ListGames(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(games, convey.ShouldHaveLength, 1)

				players, err := cat.ListPlayers(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(players, convey.ShouldHaveLength, 2)
			})
		})
	})
}
