package domain

// BoardSize is the side length of every player board.
const BoardSize = 10

// FleetSize is the total number of ships each player places.
const FleetSize = 10

// MaxPlacementAttempts bounds the random tries per ship during
// auto-placement before the whole attempt is discarded.
const MaxPlacementAttempts = 100

// Phase represents the lifecycle stage of a Sea Battle session.
type Phase string

const (
	// PhaseLobby is the pre-game state before a session is initialized.
	PhaseLobby Phase = "lobby"
	// PhasePlacement is the state where players position their fleets.
	PhasePlacement Phase = "placement"
	// PhaseBattle is the active combat state.
	PhaseBattle Phase = "battle"
	// PhaseCompleted is the terminal state after a winner is decided.
	PhaseCompleted Phase = "completed"
)

// CellState is the content of a single board cell.
type CellState int

const (
	CellEmpty CellState = iota
	CellShip
	CellHit
	CellMiss
)

// AttackOutcome classifies the result of an attack action.
type AttackOutcome string

const (
	OutcomeMiss AttackOutcome = "miss"
	OutcomeHit  AttackOutcome = "hit"
	OutcomeSunk AttackOutcome = "sunk"
)

// Action names dispatched through the engine contract.
const (
	ActionPlaceShip        = "place_ship"
	ActionAutoPlace        = "auto_place"
	ActionConfirmPlacement = "confirm_placement"
	ActionResetPlacement   = "reset_placement"
	ActionAttack           = "attack"
	ActionChat             = "chat"
)

// Log entry types.
const (
	LogSystem  = "system"
	LogAction  = "action"
	LogMessage = "message"
)

// Log entry scopes.
const (
	ScopeAll     = "all"
	ScopePlayers = "players"
	ScopePrivate = "private"
)

// ShipClass describes one roster entry of the fleet.
type ShipClass struct {
	ID   string
	Name string
	Size int
}

// Fleet is the full roster every player must place, largest ships first.
// Ship ids are stable so clients and payloads can reference them.
var Fleet = []ShipClass{
	{ID: "battleship-1", Name: "Battleship", Size: 4},
	{ID: "cruiser-1", Name: "Cruiser", Size: 3},
	{ID: "cruiser-2", Name: "Cruiser", Size: 3},
	{ID: "destroyer-1", Name: "Destroyer", Size: 2},
	{ID: "destroyer-2", Name: "Destroyer", Size: 2},
	{ID: "destroyer-3", Name: "Destroyer", Size: 2},
	{ID: "submarine-1", Name: "Submarine", Size: 1},
	{ID: "submarine-2", Name: "Submarine", Size: 1},
	{ID: "submarine-3", Name: "Submarine", Size: 1},
	{ID: "submarine-4", Name: "Submarine", Size: 1},
}

// FleetClass returns the roster entry for a ship id.
func FleetClass(shipID string) (ShipClass, bool) {
	for _, c := range Fleet {
		if c.ID == shipID {
			return c, true
		}
	}
	return ShipClass{}, false
}
