package grid

import "errors"

// Sentinel kinds for grid errors. Bound violations are clamped silently and
// never surface here; these cover structural misuse only.
var (
	ErrUnknownKind = errors.New("unknown row kind")
	ErrNoSuchTeam  = errors.New("no such team")
	ErrNoSuchRow   = errors.New("no such row")
	ErrLastRow     = errors.New("cannot remove the last row")
)
