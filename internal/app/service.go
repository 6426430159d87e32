package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"seabattle/internal/domain"
	"seabattle/internal/engine"
	"seabattle/internal/ports"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExists    = errors.New("session already exists for room")
	ErrTooFewPlayers    = errors.New("not enough players to start")
	ErrTooManyPlayers   = errors.New("too many players to start")
	ErrActionRejected   = errors.New("action rejected by validation")
	ErrSessionCompleted = errors.New("session already completed")
)

// Service is the session orchestrator: it owns the authoritative GameState
// for every room it manages and serializes writes, one mutation per room at
// a time. Both human clients (via the transport adapter) and the bot driver
// act through SubmitAction, so the engine's validate-then-execute gate is
// the single path for every actor.
type Service struct {
	eng   engine.Engine[*domain.GameState]
	store ports.SessionStore

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	mu    sync.Mutex
	state *domain.GameState
}

// NewService constructs the orchestrator around an engine and a session
// store.
func NewService(eng engine.Engine[*domain.GameState], store ports.SessionStore) *Service {
	return &Service{
		eng:      eng,
		store:    store,
		sessions: make(map[string]*session),
	}
}

// CreateSession initializes a new game for the room with the given players
// in turn order, checking cardinality against the engine metadata, and
// persists the starting snapshot.
func (s *Service) CreateSession(ctx context.Context, roomID string, playerIDs []string) (*domain.GameState, error) {
	meta := s.eng.Metadata()
	if len(playerIDs) < meta.MinPlayers {
		return nil, ErrTooFewPlayers
	}
	if len(playerIDs) > meta.MaxPlayers {
		return nil, ErrTooManyPlayers
	}

	s.mu.Lock()
	if _, exists := s.sessions[roomID]; exists {
		s.mu.Unlock()
		return nil, ErrSessionExists
	}
	state, err := s.eng.InitializeState(playerIDs)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("initialize state: %w", err)
	}
	s.sessions[roomID] = &session{state: state}
	s.mu.Unlock()

	if err := s.persist(ctx, roomID, state); err != nil {
		return nil, err
	}
	return state.Clone(), nil
}

// FindSessionByRoom returns a point-in-time snapshot of the room's state.
// The snapshot is a deep copy; mutating it has no effect on the session.
func (s *Service) FindSessionByRoom(ctx context.Context, roomID string) (*domain.GameState, error) {
	_ = ctx
	sess, err := s.session(roomID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state.Clone(), nil
}

// SubmitAction validates and executes one action for one actor. Rule
// violations surface as ErrActionRejected without any mutation; execution
// failures come back as an unsuccessful Result. After a successful
// execution the orchestrator runs win detection and, once the engine
// reports the game over, records the winner and moves the session to the
// terminal phase.
func (s *Service) SubmitAction(ctx context.Context, roomID, userID, action string, payload json.RawMessage) (engine.Result[*domain.GameState], error) {
	var zero engine.Result[*domain.GameState]
	sess, err := s.session(roomID)
	if err != nil {
		return zero, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state.Phase == domain.PhaseCompleted {
		return zero, ErrSessionCompleted
	}

	actor := engine.ActorContext{UserID: userID}
	if !s.eng.ValidateAction(sess.state, action, actor, payload) {
		return zero, ErrActionRejected
	}

	res, err := s.eng.ExecuteAction(sess.state, action, actor, payload)
	if err != nil {
		return res, err
	}
	if !res.Success {
		return res, nil
	}

	if s.eng.IsGameOver(res.State) {
		s.eng.Winners(res.State)
		res.State.Phase = domain.PhaseCompleted
	}

	sess.state = res.State
	if err := s.persist(ctx, roomID, res.State); err != nil {
		return res, err
	}
	return res, nil
}

// RemovePlayer marks a participant as departed and runs the same win
// detection as SubmitAction, since a departure can decide the game.
func (s *Service) RemovePlayer(ctx context.Context, roomID, userID string) (engine.Result[*domain.GameState], error) {
	var zero engine.Result[*domain.GameState]
	sess, err := s.session(roomID)
	if err != nil {
		return zero, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	res, err := s.eng.RemovePlayer(sess.state, userID)
	if err != nil {
		return res, err
	}
	if s.eng.IsGameOver(res.State) {
		s.eng.Winners(res.State)
		res.State.Phase = domain.PhaseCompleted
	}
	sess.state = res.State
	if err := s.persist(ctx, roomID, res.State); err != nil {
		return res, err
	}
	return res, nil
}

// SanitizeForViewer redacts the room's current state for one viewer.
func (s *Service) SanitizeForViewer(ctx context.Context, roomID, viewerID string) (*domain.GameState, []string, error) {
	sess, err := s.session(roomID)
	if err != nil {
		return nil, nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	_ = ctx
	view := s.eng.SanitizeStateForPlayer(sess.state, viewerID)
	return view, s.eng.AvailableActions(sess.state, viewerID), nil
}

// EndSession drops the room's session from the registry and the store.
func (s *Service) EndSession(ctx context.Context, roomID string) error {
	s.mu.Lock()
	delete(s.sessions, roomID)
	s.mu.Unlock()
	return s.store.DeleteSession(ctx, roomID)
}

// Metadata exposes the engine descriptor to the transport layer.
func (s *Service) Metadata() engine.Metadata {
	return s.eng.Metadata()
}

func (s *Service) session(roomID string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[roomID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Service) persist(ctx context.Context, roomID string, state *domain.GameState) error {
	if err := s.store.SaveSession(ctx, &ports.SessionRecord{
		RoomID: roomID,
		GameID: s.eng.Metadata().GameID,
		State:  state,
	}); err != nil {
		return fmt.Errorf("save session %s: %w", roomID, err)
	}
	return nil
}
