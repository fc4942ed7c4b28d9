package standings

import "errors"

// Sentinel kinds for standings errors.
var (
	ErrNotFound     = errors.New("player not ranked")
	ErrUnknownGame  = errors.New("game has no standings")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
