package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"seabattle/internal/ports"
)

// Store is a mutex-guarded in-memory session store. It stands in for the
// platform's document store in tests and single-instance deployments.
type Store struct {
	mu      sync.RWMutex
	clk     func() time.Time
	records map[string]*ports.SessionRecord // roomID -> record
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		clk:     time.Now,
		records: make(map[string]*ports.SessionRecord),
	}
}

// WithClock swaps the time source, for tests.
func (s *Store) WithClock(clock func() time.Time) *Store {
	if clock != nil {
		s.clk = clock
	}
	return s
}

var _ ports.SessionStore = (*Store)(nil)

// FindSessionByRoom returns a deep copy of the room's snapshot, so callers
// can never alias stored state.
func (s *Store) FindSessionByRoom(ctx context.Context, roomID string) (*ports.SessionRecord, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[roomID]
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	return copyRecord(rec), nil
}

// SaveSession creates or replaces the room's snapshot.
func (s *Store) SaveSession(ctx context.Context, record *ports.SessionRecord) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := copyRecord(record)
	if prev, ok := s.records[record.RoomID]; ok {
		stored.ID = prev.ID
	} else if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.UpdatedAt = s.clk()
	s.records[record.RoomID] = stored
	return nil
}

// DeleteSession removes the room's snapshot. Deleting a missing session is
// not an error.
func (s *Store) DeleteSession(ctx context.Context, roomID string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, roomID)
	return nil
}

func copyRecord(rec *ports.SessionRecord) *ports.SessionRecord {
	out := *rec
	if rec.State != nil {
		out.State = rec.State.Clone()
	}
	return &out
}
