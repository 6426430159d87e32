package ports

import (
	"context"
	"errors"
	"time"

	"seabattle/internal/domain"
)

// ErrSessionNotFound is returned when no session exists for a room.
var ErrSessionNotFound = errors.New("session not found")

// SessionRecord is the persisted snapshot of one game session.
type SessionRecord struct {
	ID        string
	RoomID    string
	GameID    string
	State     *domain.GameState
	UpdatedAt time.Time
}

// SessionStore defines the persistence boundary for game sessions. The
// engine and orchestrator know nothing about the backing store; a document
// database adapter would implement the same interface.
type SessionStore interface {
	// FindSessionByRoom returns the current snapshot for the room.
	FindSessionByRoom(ctx context.Context, roomID string) (*SessionRecord, error)

	// SaveSession creates or replaces the snapshot for record.RoomID.
	SaveSession(ctx context.Context, record *SessionRecord) error

	// DeleteSession removes the session for the room, if any.
	DeleteSession(ctx context.Context, roomID string) error
}
