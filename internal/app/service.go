// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rankdesk/rankdesk/internal/adapters/catalog"
	submissionqueue "github.com/rankdesk/rankdesk/internal/adapters/mq/queue"
	workerpool "github.com/rankdesk/rankdesk/internal/adapters/mq/worker"
	"github.com/rankdesk/rankdesk/internal/adapters/standings"
	"github.com/rankdesk/rankdesk/internal/domain/dedupe"
	"github.com/rankdesk/rankdesk/internal/domain/grid"
	"github.com/rankdesk/rankdesk/internal/domain/model"
	"github.com/rankdesk/rankdesk/internal/domain/session"
	"github.com/rankdesk/rankdesk/internal/domain/submit"
	"github.com/rankdesk/rankdesk/pkg/logger"
	"github.com/rankdesk/rankdesk/pkg/metrics"
)

// ConfigSource is the catalog surface the service depends on.
type ConfigSource interface {
	GameConfig(ctx context.Context, id int64) (catalog.GameConfig, error)
	PlayerName(ctx context.Context, id int64) (string, error)
	ListGames(ctx context.Context) ([]catalog.GameConfig, error)
}

// Service implements the API dependencies for the session editing system.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog   ConfigSource
	standings standings.Store
	deduper   dedupe.Deduper
	queue     submissionqueue.Queue
	pool      *workerpool.Pool

	// Editor registry
	editors map[uuid.UUID]*Editor

	// Configuration
	workerCount         int
	queueSize           int
	dedupeSize          int
	maxLeaderboardLimit int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the submission queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxLeaderboardLimit caps how many entries one leaderboard read returns.
func WithMaxLeaderboardLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxLeaderboardLimit = limit
		}
	}
}

// WithStandings injects a standings store, replacing the in-memory default.
func WithStandings(store standings.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.standings = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service over the given catalog.
func New(catalog ConfigSource, opts ...Option) *Service {
	s := &Service{
		catalog:             catalog,
		editors:             make(map[uuid.UUID]*Editor),
		workerCount:         4,
		queueSize:           10000,
		dedupeSize:          50000,
		maxLeaderboardLimit: 100,
		logger:              nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting session service...")

	if s.standings == nil {
		s.standings = standings.NewMemoryStore()
	}
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = submissionqueue.NewInMemoryQueue(
		submissionqueue.WithCapacity(s.queueSize),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.standings)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "session service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping session service...")

	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}

	s.started = false
	s.logger.Info(ctx, "session service stopped")
}

// OpenEditor opens an add-form editor for a game.
func (s *Service) OpenEditor(ctx context.Context, gameID int64) (EditorView, error) {
	return s.openEditor(ctx, gameID, nil)
}

// OpenEditorWith opens an edit-form editor projected from an existing session.
func (s *Service) OpenEditorWith(ctx context.Context, gameID int64, existing *session.Session) (EditorView, error) {
	return s.openEditor(ctx, gameID, existing)
}

func (s *Service) openEditor(ctx context.Context, gameID int64, existing *session.Session) (EditorView, error) {
	cfg, err := s.catalog.GameConfig(ctx, gameID)
	if err != nil {
		return EditorView{}, err
	}

	e, err := newEditor(gameID, cfg, existing)
	if err != nil {
		return EditorView{}, err
	}

	s.mu.Lock()
	s.editors[e.id] = e
	active := len(s.editors)
	s.mu.Unlock()

	metrics.RecordEditorOpened()
	metrics.UpdateActiveEditors(active)
	s.logger.Debug(ctx, "editor opened",
		logger.String("editorID", e.id.String()),
		logger.Int64("gameID", gameID),
		logger.String("op", e.op.String()),
	)
	return e.snapshot(), nil
}

// Editor returns the current view of one editor.
func (s *Service) Editor(_ context.Context, id string) (EditorView, error) {
	e, err := s.editor(id)
	if err != nil {
		return EditorView{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot(), nil
}

// CloseEditor discards an editor and everything typed into it.
func (s *Service) CloseEditor(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrEditorNotFound, id)
	}

	s.mu.Lock()
	_, ok := s.editors[uid]
	delete(s.editors, uid)
	active := len(s.editors)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrEditorNotFound, id)
	}
	metrics.RecordEditorClosed()
	metrics.UpdateActiveEditors(active)
	s.logger.Debug(ctx, "editor closed", logger.String("editorID", id))
	return nil
}

// Resize changes the row population of one table in an editor.
func (s *Service) Resize(_ context.Context, id string, kind grid.Kind, team, want int) (EditorView, error) {
	e, err := s.editor(id)
	if err != nil {
		return EditorView{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.grid.Resize(kind, team, want); err != nil {
		return EditorView{}, err
	}
	metrics.RecordGridResize(kind.String())
	return e.snapshot(), nil
}

// RemoveTeam removes one team row, renumbering the rest.
func (s *Service) RemoveTeam(_ context.Context, id string, team int) (EditorView, error) {
	e, err := s.editor(id)
	if err != nil {
		return EditorView{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.grid.RemoveTeam(team); err != nil {
		return EditorView{}, err
	}
	return e.snapshot(), nil
}

// SwitchMode converts the editor's table between individual and team play.
func (s *Service) SwitchMode(ctx context.Context, id string, target session.Mode) (EditorView, error) {
	e, err := s.editor(id)
	if err != nil {
		return EditorView{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.switchMode(target); err != nil {
		return EditorView{}, err
	}
	metrics.RecordModeConversion(target.String())
	s.logger.Debug(ctx, "editor mode switched",
		logger.String("editorID", id),
		logger.String("mode", target.String()),
	)
	return e.snapshot(), nil
}

// SetPlayerValues stores user-entered values into a flat row.
func (s *Service) SetPlayerValues(_ context.Context, id string, row int, v grid.Values) (EditorView, error) {
	e, err := s.editor(id)
	if err != nil {
		return EditorView{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.grid.SetPlayerValues(row, v); err != nil {
		return EditorView{}, err
	}
	return e.snapshot(), nil
}

// SetTeamPlayerValues stores user-entered values into a nested team row.
func (s *Service) SetTeamPlayerValues(_ context.Context, id string, team, row int, v grid.Values) (EditorView, error) {
	e, err := s.editor(id)
	if err != nil {
		return EditorView{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.grid.SetTeamPlayerValues(team, row, v); err != nil {
		return EditorView{}, err
	}
	return e.snapshot(), nil
}

// SetTeam stores user-entered team fields.
func (s *Service) SetTeam(_ context.Context, id string, team int, name string, position int, score *int) (EditorView, error) {
	e, err := s.editor(id)
	if err != nil {
		return EditorView{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.grid.SetTeam(team, name, position, score); err != nil {
		return EditorView{}, err
	}
	return e.snapshot(), nil
}

// Submit serializes the editor's session and queues it for the standings.
// idemKey deduplicates retries; an empty key gets a fresh one. reconcile
// recomputes positions from scores before serializing and must stay off when
// the user entered manual tie-breaks.
func (s *Service) Submit(ctx context.Context, id, idemKey string, reconcile bool) (*submit.Payload, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	e, err := s.editor(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, err := e.grid.ToSession(e.mode)
	if err != nil {
		return nil, err
	}
	if reconcile {
		sess = sess.ReconcilePositions(e.config.Direction())
		e.grid.Apply(sess)
	}

	payload, err := submit.Serialize(sess, e.op)
	if err != nil {
		return nil, err
	}

	if idemKey == "" {
		idemKey = uuid.NewString()
	}
	if s.deduper.SeenAndRecord(ctx, idemKey) {
		metrics.RecordSubmissionDuplicate()
		return nil, fmt.Errorf("%w: %q", ErrDuplicateSubmission, idemKey)
	}

	ok := s.queue.Enqueue(ctx, model.Submission{
		SubmissionID: idemKey,
		GameID:       e.gameID,
		Op:           e.op,
		Session:      sess,
		SubmittedAt:  time.Now(),
	})
	if !ok {
		// Free the key so the client can retry once pressure clears.
		s.deduper.Unrecord(ctx, idemKey)
		metrics.RecordSubmissionRejected("backpressure")
		return nil, ErrBackpressure
	}

	metrics.RecordSubmissionAccepted()
	s.logger.Info(ctx, "submission accepted",
		logger.String("editorID", id),
		logger.String("submissionID", idemKey),
		logger.String("op", e.op.String()),
	)
	return payload, nil
}

// Leaderboard returns the top entries for a game, capped by the configured
// read limit.
func (s *Service) Leaderboard(ctx context.Context, gameID int64, n int) ([]standings.Entry, error) {
	if s.standings == nil {
		return nil, ErrNotStarted
	}
	if n < 1 || n > s.maxLeaderboardLimit {
		n = s.maxLeaderboardLimit
	}
	return s.standings.TopN(ctx, gameID, n)
}

// Standing returns one player's entry in a game's standings.
func (s *Service) Standing(ctx context.Context, gameID, playerID int64) (standings.Entry, error) {
	if s.standings == nil {
		return standings.Entry{}, ErrNotStarted
	}
	return s.standings.Standing(ctx, gameID, playerID)
}

// GameConfig returns one game's configuration.
func (s *Service) GameConfig(ctx context.Context, gameID int64) (catalog.GameConfig, error) {
	return s.catalog.GameConfig(ctx, gameID)
}

// ListGames returns all configured games.
func (s *Service) ListGames(ctx context.Context) ([]catalog.GameConfig, error) {
	return s.catalog.ListGames(ctx)
}

// PlayerName resolves a player id to its display name.
func (s *Service) PlayerName(ctx context.Context, playerID int64) (string, error) {
	return s.catalog.PlayerName(ctx, playerID)
}

// Stats is one monitoring snapshot of the service. Queue length and dedupe
// entry counts are live readings taken only while the service runs; the rest
// is configuration.
type Stats struct {
	Started             bool `json:"started"`
	WorkerCount         int  `json:"worker_count"`
	QueueCapacity       int  `json:"queue_capacity"`
	DedupeCapacity      int  `json:"dedupe_capacity"`
	ActiveEditors       int  `json:"active_editors"`
	QueuedSubmissions   int  `json:"queued_submissions"`
	IdempotencyKeysHeld int  `json:"idempotency_keys_held"`
}

// GetStats returns a statistics snapshot for monitoring.
func (s *Service) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		Started:        s.started,
		WorkerCount:    s.workerCount,
		QueueCapacity:  s.queueSize,
		DedupeCapacity: s.dedupeSize,
		ActiveEditors:  len(s.editors),
	}

	if s.started {
		stats.QueuedSubmissions = s.queue.Len(context.Background())
		stats.IdempotencyKeysHeld = int(s.deduper.Size())

		metrics.UpdateQueueSize(stats.QueuedSubmissions)
		metrics.UpdateActiveEditors(stats.ActiveEditors)
	}

	return stats
}

// editor looks an editor up by its string id.
func (s *Service) editor(id string) (*Editor, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrEditorNotFound, id)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.editors[uid]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEditorNotFound, id)
	}
	return e, nil
}
