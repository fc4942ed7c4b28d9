// Package worker defines worker contracts for applying accepted submissions
// to the standings asynchronously.
package worker

import (
	"github.com/rankdesk/rankdesk/pkg/logger"
)

// Option applies a configuration option to the SubmissionWorker.
type Option func(*SubmissionWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *SubmissionWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *SubmissionWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}
