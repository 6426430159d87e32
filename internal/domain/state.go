package domain

// Coord addresses a single board cell.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Board is a player's grid. Being an array value, assignment copies it.
type Board [BoardSize][BoardSize]CellState

// Ship is one placed fleet member. Sunk is a one-way transition that
// happens exactly when Hits reaches Size.
type Ship struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Size  int     `json:"size"`
	Cells []Coord `json:"cells"`
	Hits  int     `json:"hits"`
	Sunk  bool    `json:"sunk"`
}

// PlayerState holds per-participant state. Players are marked dead rather
// than removed, so indices into PlayerOrder stay valid for the whole
// session. Invariant: ShipsRemaining == count of placed, unsunk ships.
type PlayerState struct {
	PlayerID          string `json:"player_id"`
	Alive             bool   `json:"alive"`
	Board             Board  `json:"board"`
	Ships             []Ship `json:"ships"`
	ShipsRemaining    int    `json:"ships_remaining"`
	PlacementComplete bool   `json:"placement_complete"`
}

// LogEntry is one append-only session log record. Entries scoped private
// are only ever shown to their own sender when the state is redacted.
type LogEntry struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Scope    string `json:"scope,omitempty"`
	SenderID string `json:"sender_id,omitempty"`
}

// AttackRecord snapshots the most recent attack for UI and audit purposes.
type AttackRecord struct {
	AttackerID string        `json:"attacker_id"`
	TargetID   string        `json:"target_id"`
	Cell       Coord         `json:"cell"`
	Outcome    AttackOutcome `json:"outcome"`
	ShipName   string        `json:"ship_name,omitempty"`
}

// GameState is the authoritative state of one Sea Battle session. It is
// owned by the orchestrator; the engine receives it read-only and returns
// fresh values produced by Clone.
type GameState struct {
	Phase            Phase         `json:"phase"`
	Players          []PlayerState `json:"players"`
	PlayerOrder      []string      `json:"player_order"`
	CurrentTurnIndex int           `json:"current_turn_index"`
	Logs             []LogEntry    `json:"logs"`
	LastAttack       *AttackRecord `json:"last_attack,omitempty"`
	WinnerID         string        `json:"winner_id,omitempty"`
}

// Player returns a pointer into the state's player slice, or nil if the id
// is not a participant.
func (s *GameState) Player(playerID string) *PlayerState {
	for i := range s.Players {
		if s.Players[i].PlayerID == playerID {
			return &s.Players[i]
		}
	}
	return nil
}

// CurrentTurnID returns the id of the player whose turn it is, or "" when
// the session is not in battle.
func (s *GameState) CurrentTurnID() string {
	if s.Phase != PhaseBattle {
		return ""
	}
	if s.CurrentTurnIndex < 0 || s.CurrentTurnIndex >= len(s.PlayerOrder) {
		return ""
	}
	return s.PlayerOrder[s.CurrentTurnIndex]
}

// AliveCount returns the number of living players.
func (s *GameState) AliveCount() int {
	n := 0
	for i := range s.Players {
		if s.Players[i].Alive {
			n++
		}
	}
	return n
}

// Clone produces a deep copy with no aliasing back to the receiver.
func (s *GameState) Clone() *GameState {
	out := &GameState{
		Phase:            s.Phase,
		Players:          make([]PlayerState, len(s.Players)),
		PlayerOrder:      append([]string(nil), s.PlayerOrder...),
		CurrentTurnIndex: s.CurrentTurnIndex,
		Logs:             append([]LogEntry(nil), s.Logs...),
		WinnerID:         s.WinnerID,
	}
	for i := range s.Players {
		out.Players[i] = s.Players[i].clone()
	}
	if s.LastAttack != nil {
		la := *s.LastAttack
		out.LastAttack = &la
	}
	return out
}

func (p PlayerState) clone() PlayerState {
	out := p // Board is an array, copied by value
	out.Ships = make([]Ship, len(p.Ships))
	for i, sh := range p.Ships {
		sh.Cells = append([]Coord(nil), sh.Cells...)
		out.Ships[i] = sh
	}
	return out
}
