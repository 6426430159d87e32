package domain

// Action validators. Each is a pure predicate answering "is this action
// legal for this actor in this state". They never mutate, never log, and
// answer false rather than failing, because an illegal action is an
// expected, frequent outcome.

// actor resolves a living participant, or nil.
func actor(s *GameState, userID string) *PlayerState {
	p := s.Player(userID)
	if p == nil || !p.Alive {
		return nil
	}
	return p
}

// CanPlaceShip reports whether the actor may place the given roster ship on
// the given cells.
func CanPlaceShip(s *GameState, userID, shipID string, cells []Coord) bool {
	p := actor(s, userID)
	if p == nil || s.Phase != PhasePlacement || p.PlacementComplete {
		return false
	}
	class, ok := FleetClass(shipID)
	if !ok || p.HasShip(shipID) {
		return false
	}
	return ValidPlacement(p.Board, class.Size, cells)
}

// CanAutoPlace reports whether the actor may auto-place their fleet.
func CanAutoPlace(s *GameState, userID string) bool {
	p := actor(s, userID)
	return p != nil && s.Phase == PhasePlacement && !p.PlacementComplete
}

// CanConfirmPlacement reports whether the actor may lock in their fleet.
// Every roster ship must be on the board.
func CanConfirmPlacement(s *GameState, userID string) bool {
	p := actor(s, userID)
	if p == nil || s.Phase != PhasePlacement || p.PlacementComplete {
		return false
	}
	return len(p.Ships) == FleetSize
}

// CanResetPlacement reports whether the actor may discard their current
// placement and start over.
func CanResetPlacement(s *GameState, userID string) bool {
	p := actor(s, userID)
	if p == nil || s.Phase != PhasePlacement || p.PlacementComplete {
		return false
	}
	return len(p.Ships) > 0
}

// CanAttack reports whether the actor may attack the target cell: battle
// phase, the actor's turn, a living target other than the actor, and a cell
// that has never been attacked.
func CanAttack(s *GameState, userID, targetID string, cell Coord) bool {
	p := actor(s, userID)
	if p == nil || s.Phase != PhaseBattle {
		return false
	}
	if s.CurrentTurnID() != userID {
		return false
	}
	if targetID == userID {
		return false
	}
	target := actor(s, targetID)
	if target == nil {
		return false
	}
	if !InBounds(cell) {
		return false
	}
	switch target.Board[cell.Row][cell.Col] {
	case CellHit, CellMiss:
		return false
	}
	return true
}

// CanChat reports whether the actor may post a chat message. Chat stays
// available to living players in every phase.
func CanChat(s *GameState, userID string) bool {
	return actor(s, userID) != nil
}
