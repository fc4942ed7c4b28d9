package seed

import "errors"

// Sentinel errors for fixture loading.
var (
	ErrLoadFixture  = errors.New("failed to load fixtures")
	ErrEmptyFixture = errors.New("fixtures file has no entries")
)
