// Package standings defines the per-game standings store and errors.
package standings

import "context"

// Entry is one leaderboard row for a game.
type Entry struct {
	Rank     int     `json:"rank"`
	PlayerID int64   `json:"player_id"`
	Points   float64 `json:"points"`
	Wins     int     `json:"wins"`
	Played   int     `json:"played"`
}

// PlayerResult is one player's outcome from a single session.
type PlayerResult struct {
	PlayerID int64
	Points   float64
	Won      bool
}

// Store provides read/write access to per-game standings.
type Store interface {
	// Record accumulates one session's results into a game's standings.
	Record(ctx context.Context, gameID int64, results []PlayerResult) error

	// TopN returns the top-N entries for a game ordered by points desc,
	// with competition-style rank positions (ties share a rank).
	TopN(ctx context.Context, gameID int64, n int) ([]Entry, error)

	// Standing returns the entry for one player in one game.
	// Returns ErrNotFound when the player has no recorded sessions.
	Standing(ctx context.Context, gameID, playerID int64) (Entry, error)

	// Count returns the number of ranked players for a game.
	Count(ctx context.Context, gameID int64) int
}
