package nakama

import (
	"encoding/json"

	"seabattle/internal/domain"
)

// ActionEnvelope is the single client message shape for game actions. The
// action name and payload pass straight through the engine contract, so
// this adapter stays game-agnostic.
type ActionEnvelope struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// LobbySeat describes one participant in the pre-game lobby broadcast.
type LobbySeat struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	IsBot       bool   `json:"is_bot"`
	Owner       bool   `json:"owner"`
}

// LobbyStateEvent is broadcast whenever lobby membership changes.
type LobbyStateEvent struct {
	Seats      []LobbySeat `json:"seats"`
	MinPlayers int         `json:"min_players"`
	MaxPlayers int         `json:"max_players"`
}

// StateUpdateEvent carries one viewer's redacted state and their currently
// available actions. It is always sent per recipient, never broadcast,
// because every viewer sees a different redaction.
type StateUpdateEvent struct {
	State   *domain.GameState `json:"state"`
	Actions []string          `json:"actions"`
}

// ActionRejectedEvent tells a client their action failed validation or
// execution.
type ActionRejectedEvent struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

// GameEndedEvent announces the terminal result.
type GameEndedEvent struct {
	WinnerID string `json:"winner_id"`
}

// Label is the match label advertised for quick-match queries. Open counts
// free seats so the listing query can filter on "open:>=1".
type Label struct {
	Open  int    `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}
