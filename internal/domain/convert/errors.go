package convert

import "errors"

// Sentinel kinds for conversion errors.
var (
	// ErrWrongMode indicates a conversion applied to a session already in
	// the target shape.
	ErrWrongMode = errors.New("wrong session mode")

	// ErrConversionInvariant indicates the score distribution check failed.
	// This is an internal logic defect; the conversion aborts and the input
	// session is left untouched.
	ErrConversionInvariant = errors.New("conversion invariant violated")
)
