package engine

import "encoding/json"

// Metadata is the static descriptor a game engine advertises to the platform.
type Metadata struct {
	GameID      string `json:"game_id"`
	Name        string `json:"name"`
	MinPlayers  int    `json:"min_players"`
	MaxPlayers  int    `json:"max_players"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// ActorContext identifies who is performing an action.
type ActorContext struct {
	UserID string `json:"user_id"`
}

// Result is the outcome of a state-mutating engine call. State is always a
// fresh value with no aliasing back to the input state.
type Result[S any] struct {
	State   S
	Success bool
	Message string
}

// Engine is the contract every game variant implements, parameterized over
// the game-specific state type. Implementations must be pure: every call
// takes an input state and returns a new one, with no hidden shared state,
// so a single engine value is safe for any number of concurrent callers.
//
// ValidateAction is the single authorization gate. Callers must invoke it
// before ExecuteAction; ExecuteAction assumes the action already passed and
// only reports errors for truly exceptional conditions, never for expected
// rule violations.
type Engine[S any] interface {
	// Metadata returns the static descriptor. No side effects.
	Metadata() Metadata

	// InitializeState builds the starting state for the given participants,
	// in turn order. Fails if playerIDs is empty or contains duplicates;
	// cardinality against Min/MaxPlayers is the caller's responsibility.
	InitializeState(playerIDs []string) (S, error)

	// ValidateAction reports whether the action is legal for this actor in
	// this state. Pure predicate: no mutation, no logging, and malformed
	// payloads simply yield false.
	ValidateAction(state S, action string, actor ActorContext, payload json.RawMessage) bool

	// ExecuteAction applies a previously validated action and returns the
	// successor state. The input state is never mutated.
	ExecuteAction(state S, action string, actor ActorContext, payload json.RawMessage) (Result[S], error)

	// IsGameOver reports whether the win condition has been reached. The
	// transition to a terminal phase remains the orchestrator's job.
	IsGameOver(state S) bool

	// Winners records the winner on the state when exactly one player
	// remains, and returns the winning player ids. Empty while the game is
	// still contested.
	Winners(state S) []string

	// SanitizeStateForPlayer returns a deep copy of the state with all
	// information hidden from the viewer redacted. This is the
	// hidden-information boundary: it must run before any state crosses to
	// a client.
	SanitizeStateForPlayer(state S, viewerID string) S

	// AvailableActions derives the verb set currently usable by the player.
	AvailableActions(state S, playerID string) []string

	// RemovePlayer marks a participant as eliminated. Players are never
	// deleted from the state.
	RemovePlayer(state S, playerID string) (Result[S], error)
}
