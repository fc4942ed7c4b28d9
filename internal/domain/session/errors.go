package session

import "errors"

// Sentinel kinds for session construction errors. These allow errors.Is from
// callers; the wrapped detail names the violated invariant.
var (
	// ErrMalformedSession indicates input data violating the session
	// invariants. This is an upstream data-contract bug, not user input.
	ErrMalformedSession = errors.New("malformed session")
)
