package submit

import "errors"

// Sentinel kinds for serialization errors.
var (
	ErrNilSession = errors.New("nil session")
	ErrUnknownOp  = errors.New("unknown operation")
)
