package standings

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rankdesk/rankdesk/pkg/metrics"
)

// record is the accumulated state for one player in one game.
type record struct {
	points float64
	wins   int
	played int
}

// gameBoard holds one game's standings plus a sorted snapshot that is
// invalidated on write and rebuilt lazily on read.
type gameBoard struct {
	players  map[int64]*record
	snapshot []Entry
	dirty    bool
}

// MemoryStore implements Store in memory. Reads take a shared lock; the
// snapshot rebuild upgrades to exclusive only when a write happened since.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[int64]*gameBoard
}

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// NewMemoryStore creates an empty standings store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		games: make(map[int64]*gameBoard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record accumulates one session's results into the game's standings.
func (s *MemoryStore) Record(_ context.Context, gameID int64, results []PlayerResult) error {
	start := time.Now()
	defer func() {
		metrics.RecordStandingsUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	board, ok := s.games[gameID]
	if !ok {
		board = &gameBoard{players: make(map[int64]*record)}
		s.games[gameID] = board
	}
	for _, res := range results {
		rec, ok := board.players[res.PlayerID]
		if !ok {
			rec = &record{}
			board.players[res.PlayerID] = rec
		}
		rec.points += res.Points
		rec.played++
		if res.Won {
			rec.wins++
		}
	}
	board.dirty = true
	metrics.RecordStandingsUpdate()
	return nil
}

// TopN returns up to n entries for a game, best first.
func (s *MemoryStore) TopN(_ context.Context, gameID int64, n int) ([]Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	entries, err := s.ranked(gameID)
	if err != nil {
		return nil, err
	}
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]Entry, n)
	copy(out, entries[:n])
	return out, nil
}

// Standing returns the entry for one player in one game.
func (s *MemoryStore) Standing(_ context.Context, gameID, playerID int64) (Entry, error) {
	entries, err := s.ranked(gameID)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.PlayerID == playerID {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

// Count returns the number of ranked players for a game.
func (s *MemoryStore) Count(_ context.Context, gameID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if board, ok := s.games[gameID]; ok {
		return len(board.players)
	}
	return 0
}

// ranked returns the game's snapshot, rebuilding it when stale.
func (s *MemoryStore) ranked(gameID int64) ([]Entry, error) {
	s.mu.RLock()
	board, ok := s.games[gameID]
	if !ok {
		s.mu.RUnlock()
		return nil, ErrUnknownGame
	}
	if !board.dirty {
		snap := board.snapshot
		s.mu.RUnlock()
		return snap, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if board.dirty {
		board.snapshot = rebuild(board.players)
		board.dirty = false
	}
	return board.snapshot, nil
}

// rebuild sorts players by points desc and assigns competition-style rank
// positions: equal points share a rank, the next distinct score resumes at
// its 1-based order.
func rebuild(players map[int64]*record) []Entry {
	entries := make([]Entry, 0, len(players))
	for id, rec := range players {
		entries = append(entries, Entry{
			PlayerID: id,
			Points:   rec.points,
			Wins:     rec.wins,
			Played:   rec.played,
		})
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].Points != entries[b].Points {
			return entries[a].Points > entries[b].Points
		}
		if entries[a].Wins != entries[b].Wins {
			return entries[a].Wins > entries[b].Wins
		}
		return entries[a].PlayerID < entries[b].PlayerID
	})
	for i := range entries {
		if i > 0 && entries[i].Points == entries[i-1].Points && entries[i].Wins == entries[i-1].Wins {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}
	return entries
}
