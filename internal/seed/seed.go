// Package seed loads game and player fixtures into the catalog database.
package seed

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/rankdesk/rankdesk/internal/adapters/catalog"
	"github.com/rankdesk/rankdesk/pkg/logger"
)

// Game describes one game entry in a fixtures file.
type Game struct {
	Name               string `koanf:"name"`
	ScoringDirection   string `koanf:"scoring_direction"`
	SupportsIndividual bool   `koanf:"supports_individual"`
	SupportsTeam       bool   `koanf:"supports_team"`
	MinPlayers         int    `koanf:"min_players"`
	MaxPlayers         int    `koanf:"max_players"`
	MinPlayersPerTeam  int    `koanf:"min_players_per_team"`
	MaxPlayersPerTeam  int    `koanf:"max_players_per_team"`
	MinTeams           int    `koanf:"min_teams"`
	MaxTeams           int    `koanf:"max_teams"`
}

// Player describes one player entry in a fixtures file.
type Player struct {
	DisplayName string `koanf:"display_name"`
}

// Fixture is the parsed content of a fixtures file.
type Fixture struct {
	Games   []Game   `koanf:"games"`
	Players []Player `koanf:"players"`
}

// Load parses a YAML fixtures file.
func Load(path string) (*Fixture, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFixture, err)
	}

	var f Fixture
	if err := k.Unmarshal("", &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFixture, err)
	}

	if len(f.Games) == 0 && len(f.Players) == 0 {
		return nil, fmt.Errorf("%w: no games or players in %s", ErrEmptyFixture, path)
	}

	return &f, nil
}

// Apply upserts all fixture entries into the catalog. Entries are keyed by
// name, so re-running against the same database is safe.
func Apply(ctx context.Context, cat *catalog.Catalog, f *Fixture) error {
	log := logger.Get().Named("seed")

	for _, g := range f.Games {
		id, err := cat.UpsertGame(ctx, catalog.GameConfig{
			Name:               g.Name,
			ScoringDirection:   g.ScoringDirection,
			SupportsIndividual: g.SupportsIndividual,
			SupportsTeam:       g.SupportsTeam,
			MinPlayers:         g.MinPlayers,
			MaxPlayers:         g.MaxPlayers,
			MinPlayersPerTeam:  g.MinPlayersPerTeam,
			MaxPlayersPerTeam:  g.MaxPlayersPerTeam,
			MinTeams:           g.MinTeams,
			MaxTeams:           g.MaxTeams,
		})
		if err != nil {
			return fmt.Errorf("seeding game %q: %w", g.Name, err)
		}
		log.Debug(ctx, "seeded game", logger.String("name", g.Name), logger.Int64("id", id))
	}

	for _, p := range f.Players {
		id, err := cat.UpsertPlayer(ctx, catalog.Player{DisplayName: p.DisplayName})
		if err != nil {
			return fmt.Errorf("seeding player %q: %w", p.DisplayName, err)
		}
		log.Debug(ctx, "seeded player", logger.String("name", p.DisplayName), logger.Int64("id", id))
	}

	log.Info(ctx, "fixtures applied",
		logger.Int("games", len(f.Games)),
		logger.Int("players", len(f.Players)),
	)
	return nil
}
