package domain

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"seabattle/internal/engine"
)

// GameID is the registry identifier of the Sea Battle engine.
const GameID = "seabattle"

// PlaceShipPayload is the payload of the place_ship action.
type PlaceShipPayload struct {
	ShipID string  `json:"ship_id"`
	Cells  []Coord `json:"cells"`
}

// AttackPayload is the payload of the attack action.
type AttackPayload struct {
	TargetPlayerID string `json:"target_player_id"`
	Row            int    `json:"row"`
	Col            int    `json:"col"`
}

// ChatPayload is the payload of the chat action. Scope defaults to all.
type ChatPayload struct {
	Message string `json:"message"`
	Scope   string `json:"scope,omitempty"`
}

// SeaBattle implements the engine contract for the naval combat game.
// Every call clones the input state before mutating, so a single value is
// safe for concurrent callers.
type SeaBattle struct {
	rng *rand.Rand
}

// NewEngine constructs the Sea Battle engine with the provided rng or a
// time-seeded default.
func NewEngine(rng *rand.Rand) *SeaBattle {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SeaBattle{rng: rng}
}

var _ engine.Engine[*GameState] = (*SeaBattle)(nil)

// Metadata returns the static Sea Battle descriptor.
func (e *SeaBattle) Metadata() engine.Metadata {
	return engine.Metadata{
		GameID:      GameID,
		Name:        "Sea Battle",
		MinPlayers:  2,
		MaxPlayers:  4,
		Version:     "1.0.0",
		Description: "Hidden-information naval combat on 10x10 boards.",
		Category:    "board",
	}
}

// InitializeState builds the starting state: one player per id with an
// empty board and the full fleet quota still to place, phase placement.
func (e *SeaBattle) InitializeState(playerIDs []string) (*GameState, error) {
	if len(playerIDs) == 0 {
		return nil, fmt.Errorf("seabattle: no players")
	}
	seen := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		if id == "" || seen[id] {
			return nil, fmt.Errorf("seabattle: invalid or duplicate player id %q", id)
		}
		seen[id] = true
	}

	state := &GameState{
		Phase:       PhasePlacement,
		Players:     make([]PlayerState, len(playerIDs)),
		PlayerOrder: append([]string(nil), playerIDs...),
	}
	for i, id := range playerIDs {
		state.Players[i] = PlayerState{PlayerID: id, Alive: true}
	}
	state.Logs = append(state.Logs, LogEntry{
		Type:    LogSystem,
		Message: fmt.Sprintf("Game started with %d players. Place your fleets.", len(playerIDs)),
		Scope:   ScopeAll,
	})
	return state, nil
}

// ValidateAction is the single authorization gate for every action kind.
// Malformed payloads and unknown actions yield false, never an error.
func (e *SeaBattle) ValidateAction(state *GameState, action string, actor engine.ActorContext, payload json.RawMessage) bool {
	switch action {
	case ActionPlaceShip:
		var p PlaceShipPayload
		if json.Unmarshal(payload, &p) != nil {
			return false
		}
		return CanPlaceShip(state, actor.UserID, p.ShipID, p.Cells)
	case ActionAutoPlace:
		return CanAutoPlace(state, actor.UserID)
	case ActionConfirmPlacement:
		return CanConfirmPlacement(state, actor.UserID)
	case ActionResetPlacement:
		return CanResetPlacement(state, actor.UserID)
	case ActionAttack:
		var p AttackPayload
		if json.Unmarshal(payload, &p) != nil {
			return false
		}
		return CanAttack(state, actor.UserID, p.TargetPlayerID, Coord{Row: p.Row, Col: p.Col})
	case ActionChat:
		var p ChatPayload
		if json.Unmarshal(payload, &p) != nil {
			return false
		}
		return p.Message != "" && CanChat(state, actor.UserID)
	}
	return false
}

// ExecuteAction applies a previously validated action to a clone of the
// state. Error results are reserved for conditions validation cannot have
// filtered, such as the actor vanishing between validate and execute.
func (e *SeaBattle) ExecuteAction(state *GameState, action string, actor engine.ActorContext, payload json.RawMessage) (engine.Result[*GameState], error) {
	next := state.Clone()
	p := next.Player(actor.UserID)
	if p == nil {
		return engine.Result[*GameState]{State: next}, fmt.Errorf("seabattle: actor %q not in game", actor.UserID)
	}

	switch action {
	case ActionPlaceShip:
		var pl PlaceShipPayload
		if err := json.Unmarshal(payload, &pl); err != nil {
			return engine.Result[*GameState]{State: next}, fmt.Errorf("seabattle: bad place_ship payload: %w", err)
		}
		class, ok := FleetClass(pl.ShipID)
		if !ok {
			return engine.Result[*GameState]{State: next}, fmt.Errorf("seabattle: unknown ship %q", pl.ShipID)
		}
		p.PlaceShip(class, pl.Cells)
		next.Logs = append(next.Logs, LogEntry{
			Type:     LogAction,
			Message:  fmt.Sprintf("You placed %s (%d/%d).", class.Name, len(p.Ships), FleetSize),
			Scope:    ScopePrivate,
			SenderID: actor.UserID,
		})
		return engine.Result[*GameState]{State: next, Success: true}, nil

	case ActionAutoPlace:
		if !AutoPlaceFleet(e.rng, p) {
			// a failed attempt never partially applies; the caller may retry
			return engine.Result[*GameState]{
				State:   next,
				Message: "auto placement exhausted its attempts, try again",
			}, nil
		}
		next.Logs = append(next.Logs, LogEntry{
			Type:     LogAction,
			Message:  "Your fleet was placed automatically.",
			Scope:    ScopePrivate,
			SenderID: actor.UserID,
		})
		return engine.Result[*GameState]{State: next, Success: true}, nil

	case ActionConfirmPlacement:
		p.PlacementComplete = true
		next.Logs = append(next.Logs, LogEntry{
			Type:    LogSystem,
			Message: fmt.Sprintf("%s is ready for battle.", actor.UserID),
			Scope:   ScopeAll,
		})
		e.maybeBeginBattle(next)
		return engine.Result[*GameState]{State: next, Success: true}, nil

	case ActionResetPlacement:
		p.ClearPlacement()
		next.Logs = append(next.Logs, LogEntry{
			Type:     LogAction,
			Message:  "You cleared your fleet placement.",
			Scope:    ScopePrivate,
			SenderID: actor.UserID,
		})
		return engine.Result[*GameState]{State: next, Success: true}, nil

	case ActionAttack:
		var pl AttackPayload
		if err := json.Unmarshal(payload, &pl); err != nil {
			return engine.Result[*GameState]{State: next}, fmt.Errorf("seabattle: bad attack payload: %w", err)
		}
		return e.executeAttack(next, actor.UserID, pl)

	case ActionChat:
		var pl ChatPayload
		if err := json.Unmarshal(payload, &pl); err != nil {
			return engine.Result[*GameState]{State: next}, fmt.Errorf("seabattle: bad chat payload: %w", err)
		}
		scope := pl.Scope
		if scope == "" {
			scope = ScopeAll
		}
		next.Logs = append(next.Logs, LogEntry{
			Type:     LogMessage,
			Message:  pl.Message,
			Scope:    scope,
			SenderID: actor.UserID,
		})
		return engine.Result[*GameState]{State: next, Success: true}, nil
	}

	return engine.Result[*GameState]{State: next}, fmt.Errorf("seabattle: unknown action %q", action)
}

// maybeBeginBattle flips the phase once every living player has confirmed
// placement, seeding the turn at the first living player in order.
func (e *SeaBattle) maybeBeginBattle(s *GameState) {
	if s.AliveCount() == 0 {
		return
	}
	for i := range s.Players {
		if s.Players[i].Alive && !s.Players[i].PlacementComplete {
			return
		}
	}
	s.Phase = PhaseBattle
	for i, id := range s.PlayerOrder {
		if p := s.Player(id); p != nil && p.Alive {
			s.CurrentTurnIndex = i
			break
		}
	}
	s.Logs = append(s.Logs, LogEntry{
		Type:    LogSystem,
		Message: fmt.Sprintf("All fleets deployed. Battle begins: %s moves first.", s.PlayerOrder[s.CurrentTurnIndex]),
		Scope:   ScopeAll,
	})
}

// executeAttack resolves an attack on the given (already cloned) state.
// A miss ends the attacker's turn; a hit or sunk keeps it.
func (e *SeaBattle) executeAttack(next *GameState, attackerID string, pl AttackPayload) (engine.Result[*GameState], error) {
	target := next.Player(pl.TargetPlayerID)
	if target == nil {
		return engine.Result[*GameState]{State: next}, fmt.Errorf("seabattle: target %q not in game", pl.TargetPlayerID)
	}
	cell := Coord{Row: pl.Row, Col: pl.Col}

	record := AttackRecord{AttackerID: attackerID, TargetID: pl.TargetPlayerID, Cell: cell}

	switch target.Board[cell.Row][cell.Col] {
	case CellShip:
		target.Board[cell.Row][cell.Col] = CellHit
		ship := shipAt(target, cell)
		if ship == nil {
			return engine.Result[*GameState]{State: next}, fmt.Errorf("seabattle: no ship under marked cell (%d,%d)", cell.Row, cell.Col)
		}
		ship.Hits++
		record.Outcome = OutcomeHit
		if ship.Hits == ship.Size {
			ship.Sunk = true
			target.ShipsRemaining--
			record.Outcome = OutcomeSunk
			record.ShipName = ship.Name
			floodSunkBorder(target, ship)
			if target.ShipsRemaining == 0 {
				target.Alive = false
				next.Logs = append(next.Logs, LogEntry{
					Type:    LogSystem,
					Message: fmt.Sprintf("%s's fleet is destroyed.", target.PlayerID),
					Scope:   ScopeAll,
				})
			}
		}
	case CellEmpty:
		target.Board[cell.Row][cell.Col] = CellMiss
		record.Outcome = OutcomeMiss
	default:
		return engine.Result[*GameState]{State: next}, fmt.Errorf("seabattle: cell (%d,%d) already attacked", cell.Row, cell.Col)
	}

	next.LastAttack = &record
	next.Logs = append(next.Logs, LogEntry{
		Type:    LogAction,
		Message: attackMessage(record),
		Scope:   ScopeAll,
	})

	if record.Outcome == OutcomeMiss {
		advanceTurn(next)
	}
	return engine.Result[*GameState]{State: next, Success: true}, nil
}

func attackMessage(r AttackRecord) string {
	switch r.Outcome {
	case OutcomeSunk:
		return fmt.Sprintf("%s sank %s's %s at (%d,%d)!", r.AttackerID, r.TargetID, r.ShipName, r.Cell.Row, r.Cell.Col)
	case OutcomeHit:
		return fmt.Sprintf("%s hit %s at (%d,%d).", r.AttackerID, r.TargetID, r.Cell.Row, r.Cell.Col)
	default:
		return fmt.Sprintf("%s attacked %s at (%d,%d) and missed.", r.AttackerID, r.TargetID, r.Cell.Row, r.Cell.Col)
	}
}

// shipAt finds the ship occupying a cell.
func shipAt(p *PlayerState, cell Coord) *Ship {
	for i := range p.Ships {
		for _, c := range p.Ships[i].Cells {
			if c == cell {
				return &p.Ships[i]
			}
		}
	}
	return nil
}

// floodSunkBorder marks every still-empty neighbor of a sunk ship as a
// miss. Once a ship is fully revealed its border cannot hold another ship.
func floodSunkBorder(p *PlayerState, ship *Ship) {
	for _, c := range ship.Cells {
		for _, n := range Neighbors(c) {
			if p.Board[n.Row][n.Col] == CellEmpty {
				p.Board[n.Row][n.Col] = CellMiss
			}
		}
	}
}

// advanceTurn moves the turn to the next living player, scanning forward
// circularly. With no other survivor the index stays put; IsGameOver
// catches that case before another attack can occur.
func advanceTurn(s *GameState) {
	n := len(s.PlayerOrder)
	for step := 1; step < n; step++ {
		idx := (s.CurrentTurnIndex + step) % n
		if p := s.Player(s.PlayerOrder[idx]); p != nil && p.Alive {
			s.CurrentTurnIndex = idx
			return
		}
	}
}

// IsGameOver reports whether at most one player remains alive in battle.
func (e *SeaBattle) IsGameOver(state *GameState) bool {
	return state.Phase == PhaseBattle && state.AliveCount() <= 1
}

// Winners records the winner on the state when exactly one player remains
// alive, and returns that player's id. Empty otherwise.
func (e *SeaBattle) Winners(state *GameState) []string {
	if state.AliveCount() != 1 {
		return nil
	}
	for i := range state.Players {
		if state.Players[i].Alive {
			state.WinnerID = state.Players[i].PlayerID
			return []string{state.Players[i].PlayerID}
		}
	}
	return nil
}

// SanitizeStateForPlayer deep-copies the state and redacts everything the
// viewer may not see: unsunk ship positions of other players disappear from
// their boards and ship cell lists (sunk ships are public knowledge), and
// private log entries from other senders are filtered out. Redaction must
// run before any state crosses to a client.
func (e *SeaBattle) SanitizeStateForPlayer(state *GameState, viewerID string) *GameState {
	out := state.Clone()
	for i := range out.Players {
		p := &out.Players[i]
		if p.PlayerID == viewerID {
			continue
		}
		for r := 0; r < BoardSize; r++ {
			for c := 0; c < BoardSize; c++ {
				if p.Board[r][c] == CellShip {
					p.Board[r][c] = CellEmpty
				}
			}
		}
		for j := range p.Ships {
			if !p.Ships[j].Sunk {
				p.Ships[j].Cells = nil
			}
		}
	}

	logs := make([]LogEntry, 0, len(out.Logs))
	for _, entry := range out.Logs {
		if entry.Scope == ScopePrivate && entry.SenderID != viewerID {
			continue
		}
		logs = append(logs, entry)
	}
	out.Logs = logs
	return out
}

// AvailableActions derives the verb set usable by the player right now.
func (e *SeaBattle) AvailableActions(state *GameState, playerID string) []string {
	p := state.Player(playerID)
	if p == nil || !p.Alive {
		return nil
	}
	actions := []string{ActionChat}
	switch state.Phase {
	case PhasePlacement:
		if p.PlacementComplete {
			break
		}
		actions = append(actions, ActionPlaceShip, ActionAutoPlace)
		if len(p.Ships) == FleetSize {
			actions = append(actions, ActionConfirmPlacement)
		}
		if len(p.Ships) > 0 {
			actions = append(actions, ActionResetPlacement)
		}
	case PhaseBattle:
		if state.CurrentTurnID() == playerID {
			actions = append(actions, ActionAttack)
		}
	}
	return actions
}

// RemovePlayer marks a participant dead and logs the departure. The board
// and ships stay in place; nothing is transferred. If the departing player
// held the turn it advances so the match cannot wedge.
func (e *SeaBattle) RemovePlayer(state *GameState, playerID string) (engine.Result[*GameState], error) {
	next := state.Clone()
	p := next.Player(playerID)
	if p == nil {
		return engine.Result[*GameState]{State: next}, fmt.Errorf("seabattle: player %q not in game", playerID)
	}
	if !p.Alive {
		return engine.Result[*GameState]{State: next, Success: true}, nil
	}
	p.Alive = false
	next.Logs = append(next.Logs, LogEntry{
		Type:    LogSystem,
		Message: fmt.Sprintf("%s left the game.", playerID),
		Scope:   ScopeAll,
	})
	if next.Phase == PhaseBattle && next.PlayerOrder[next.CurrentTurnIndex] == playerID {
		advanceTurn(next)
	}
	if next.Phase == PhasePlacement {
		e.maybeBeginBattle(next)
	}
	return engine.Result[*GameState]{State: next, Success: true}, nil
}
