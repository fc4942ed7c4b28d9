// Package model contains domain records passed between layers.
package model

import (
	"time"

	"github.com/rankdesk/rankdesk/internal/domain/session"
	"github.com/rankdesk/rankdesk/internal/domain/submit"
)

// Submission is one accepted session result on its way to the standings.
type Submission struct {
	SubmissionID string // unique id for idempotency
	GameID       int64
	Op           submit.Op
	Session      *session.Session // normalized outcome, already reconciled
	SubmittedAt  time.Time
}
