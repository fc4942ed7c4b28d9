package catalog

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrGameNotFound   = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidConfig  = errors.New("invalid game config")
)
