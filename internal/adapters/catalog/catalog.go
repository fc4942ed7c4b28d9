// Package catalog is the system of record for game configurations and the
// player directory. Sessions only ever reference players and games that exist
// here; the editor reads configs at open time and resolves display names on
// demand.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/rankdesk/rankdesk/internal/domain/session"
	"github.com/rankdesk/rankdesk/pkg/logger"
)

const openTimeout = 5 * time.Second

// note: no AUTOINCREMENT on INTEGER PRIMARY KEY columns; SQLite's default
// rowid behaviour is nearly identical with less overhead.
var schemaStmts = []string{
	`PRAGMA journal_mode=WAL;`,
	`PRAGMA foreign_keys=ON;`,
	`CREATE TABLE IF NOT EXISTS games (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		scoring_direction TEXT NOT NULL DEFAULT 'higher_wins',
		supports_individual INTEGER NOT NULL DEFAULT 1,
		supports_team INTEGER NOT NULL DEFAULT 0,
		min_players INTEGER NOT NULL DEFAULT 1,
		max_players INTEGER NOT NULL DEFAULT 8,
		min_players_per_team INTEGER NOT NULL DEFAULT 1,
		max_players_per_team INTEGER NOT NULL DEFAULT 8,
		min_teams INTEGER NOT NULL DEFAULT 2,
		max_teams INTEGER NOT NULL DEFAULT 8,
		UNIQUE(name)
		CHECK (scoring_direction IN ('higher_wins', 'lower_wins'))
		CHECK (min_players >= 1 AND max_players >= min_players)
		CHECK (min_teams >= 1 AND max_teams >= min_teams)
		CHECK (min_players_per_team >= 1 AND max_players_per_team >= min_players_per_team)
		CHECK (supports_individual = 1 OR supports_team = 1)
	);`,
	`CREATE TABLE IF NOT EXISTS players (
		id INTEGER PRIMARY KEY,
		display_name TEXT NOT NULL,
		UNIQUE(display_name)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_games_name ON games(name);`,
}

// GameConfig describes how sessions of one game are shaped and scored.
type GameConfig struct {
	ID                 int64  `db:"id"`
	Name               string `db:"name"`
	ScoringDirection   string `db:"scoring_direction"`
	SupportsIndividual bool   `db:"supports_individual"`
	SupportsTeam       bool   `db:"supports_team"`
	MinPlayers         int    `db:"min_players"`
	MaxPlayers         int    `db:"max_players"`
	MinPlayersPerTeam  int    `db:"min_players_per_team"`
	MaxPlayersPerTeam  int    `db:"max_players_per_team"`
	MinTeams           int    `db:"min_teams"`
	MaxTeams           int    `db:"max_teams"`
}

// Direction maps the stored scoring direction onto the session domain type.
func (g GameConfig) Direction() session.ScoringDirection {
	if g.ScoringDirection == session.LowerWins.String() {
		return session.LowerWins
	}
	return session.HigherWins
}

// DefaultMode returns the mode an editor opens in for this game.
func (g GameConfig) DefaultMode() session.Mode {
	if !g.SupportsIndividual && g.SupportsTeam {
		return session.TeamPlay
	}
	return session.Individual
}

// Supports reports whether the game allows sessions in the given mode.
func (g GameConfig) Supports(m session.Mode) bool {
	if m == session.TeamPlay {
		return g.SupportsTeam
	}
	return g.SupportsIndividual
}

// Player is one entry in the player directory.
type Player struct {
	ID          int64  `db:"id"`
	DisplayName string `db:"display_name"`
}

// Catalog provides access to game configs and the player directory.
type Catalog struct {
	db     *sqlx.DB
	logger logger.Logger
}

// Open opens (and migrates) the catalog database at path. Use ":memory:" for
// an ephemeral catalog.
func Open(path string, opts ...Option) (*Catalog, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// keep it predictable; this is a single-instance service.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	for _, stmt := range schemaStmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate catalog: %w", err)
		}
	}

	c := &Catalog{
		db:     db,
		logger: logger.Get().Named("catalog"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger.Debug(ctx, "catalog ready", logger.String("path", path))
	return c, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// GameConfig returns the configuration of one game.
func (c *Catalog) GameConfig(ctx context.Context, id int64) (GameConfig, error) {
	var g GameConfig
	err := c.db.GetContext(ctx, &g, `SELECT * FROM games WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return GameConfig{}, fmt.Errorf("game %d: %w", id, ErrGameNotFound)
	}
	if err != nil {
		return GameConfig{}, fmt.Errorf("load game %d: %w", id, err)
	}
	return g, nil
}

// ListGames returns all game configurations ordered by name.
func (c *Catalog) ListGames(ctx context.Context) ([]GameConfig, error) {
	var out []GameConfig
	if err := c.db.SelectContext(ctx, &out, `SELECT * FROM games ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return out, nil
}

// UpsertGame inserts or updates a game config and returns its id.
func (c *Catalog) UpsertGame(ctx context.Context, g GameConfig) (int64, error) {
	if g.MinPlayers < 1 || g.MaxPlayers < g.MinPlayers {
		return 0, fmt.Errorf("players %d..%d: %w", g.MinPlayers, g.MaxPlayers, ErrInvalidConfig)
	}
	if !g.SupportsIndividual && !g.SupportsTeam {
		return 0, fmt.Errorf("game supports no mode: %w", ErrInvalidConfig)
	}
	if g.ScoringDirection == "" {
		g.ScoringDirection = session.HigherWins.String()
	}

	res, err := c.db.NamedExecContext(ctx, `
		INSERT INTO games (
			name, scoring_direction, supports_individual, supports_team,
			min_players, max_players, min_players_per_team, max_players_per_team,
			min_teams, max_teams
		) VALUES (
			:name, :scoring_direction, :supports_individual, :supports_team,
			:min_players, :max_players, :min_players_per_team, :max_players_per_team,
			:min_teams, :max_teams
		)
		ON CONFLICT(name) DO UPDATE SET
			scoring_direction = excluded.scoring_direction,
			supports_individual = excluded.supports_individual,
			supports_team = excluded.supports_team,
			min_players = excluded.min_players,
			max_players = excluded.max_players,
			min_players_per_team = excluded.min_players_per_team,
			max_players_per_team = excluded.max_players_per_team,
			min_teams = excluded.min_teams,
			max_teams = excluded.max_teams`, g)
	if err != nil {
		return 0, fmt.Errorf("upsert game %q: %w", g.Name, err)
	}
	if id, err := res.LastInsertId(); err == nil && id > 0 {
		// On conflict SQLite reports the rowid of the updated row.
		var stored int64
		if err := c.db.GetContext(ctx, &stored, `SELECT id FROM games WHERE name = ?`, g.Name); err == nil {
			return stored, nil
		}
		return id, nil
	}
	return 0, fmt.Errorf("upsert game %q: no id", g.Name)
}

// PlayerName resolves a player id to its display name.
func (c *Catalog) PlayerName(ctx context.Context, id int64) (string, error) {
	var name string
	err := c.db.GetContext(ctx, &name, `SELECT display_name FROM players WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("player %d: %w", id, ErrPlayerNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("resolve player %d: %w", id, err)
	}
	return name, nil
}

// UpsertPlayer inserts or renames a player in the directory.
func (c *Catalog) UpsertPlayer(ctx context.Context, p Player) (int64, error) {
	if p.DisplayName == "" {
		return 0, fmt.Errorf("empty display name: %w", ErrInvalidConfig)
	}
	if p.ID > 0 {
		_, err := c.db.ExecContext(ctx,
			`INSERT INTO players (id, display_name) VALUES (?, ?)
			 ON CONFLICT(id) DO UPDATE SET display_name = excluded.display_name`,
			p.ID, p.DisplayName)
		if err != nil {
			return 0, fmt.Errorf("upsert player %d: %w", p.ID, err)
		}
		return p.ID, nil
	}
	res, err := c.db.ExecContext(ctx,
		`INSERT INTO players (display_name) VALUES (?)
		 ON CONFLICT(display_name) DO UPDATE SET display_name = excluded.display_name`,
		p.DisplayName)
	if err != nil {
		return 0, fmt.Errorf("insert player %q: %w", p.DisplayName, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert player %q: %w", p.DisplayName, err)
	}
	return id, nil
}

// ListPlayers returns the directory ordered by display name.
func (c *Catalog) ListPlayers(ctx context.Context) ([]Player, error) {
	var out []Player
	if err := c.db.SelectContext(ctx, &out, `SELECT * FROM players ORDER BY display_name`); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return out, nil
}
