package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted          = errors.New("service not started")
	ErrEditorNotFound      = errors.New("editor not found")
	ErrUnsupportedMode     = errors.New("game does not support mode")
	ErrDuplicateSubmission = errors.New("duplicate submission")
	ErrBackpressure        = errors.New("submission queue full")
)
