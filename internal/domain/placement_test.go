package domain

import (
	"math/rand"
	"testing"
)

func run(row, col, size int, horizontal bool) []Coord {
	cells := make([]Coord, size)
	for i := 0; i < size; i++ {
		if horizontal {
			cells[i] = Coord{Row: row, Col: col + i}
		} else {
			cells[i] = Coord{Row: row + i, Col: col}
		}
	}
	return cells
}

func TestIsStraightRun(t *testing.T) {
	tests := []struct {
		name     string
		cells    []Coord
		expected bool
	}{
		{
			name:     "Empty",
			cells:    nil,
			expected: false,
		},
		{
			name:     "SingleCell",
			cells:    []Coord{{Row: 3, Col: 3}},
			expected: true,
		},
		{
			name:     "HorizontalRun",
			cells:    run(2, 4, 3, true),
			expected: true,
		},
		{
			name:     "VerticalRun",
			cells:    run(5, 0, 4, false),
			expected: true,
		},
		{
			name:     "UnorderedRunStillStraight",
			cells:    []Coord{{Row: 2, Col: 6}, {Row: 2, Col: 4}, {Row: 2, Col: 5}},
			expected: true,
		},
		{
			name:     "Diagonal",
			cells:    []Coord{{Row: 0, Col: 0}, {Row: 1, Col: 1}},
			expected: false,
		},
		{
			name:     "GapInRun",
			cells:    []Coord{{Row: 2, Col: 4}, {Row: 2, Col: 6}},
			expected: false,
		},
		{
			name:     "DuplicateCells",
			cells:    []Coord{{Row: 2, Col: 4}, {Row: 2, Col: 4}},
			expected: false,
		},
		{
			name:     "Bent7Shape",
			cells:    []Coord{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 1}},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStraightRun(tt.cells); got != tt.expected {
				t.Errorf("IsStraightRun() = %t, want %t", got, tt.expected)
			}
		})
	}
}

func TestValidPlacement(t *testing.T) {
	var occupied Board
	// Destroyer at (5,5)-(5,6).
	occupied[5][5] = CellShip
	occupied[5][6] = CellShip

	tests := []struct {
		name     string
		board    Board
		size     int
		cells    []Coord
		expected bool
	}{
		{
			name:     "HorizontalOnEmptyBoard",
			size:     4,
			cells:    run(0, 0, 4, true),
			expected: true,
		},
		{
			name:     "VerticalOnEmptyBoard",
			size:     3,
			cells:    run(7, 9, 3, false),
			expected: true,
		},
		{
			name:     "SizeMismatch",
			size:     3,
			cells:    run(0, 0, 2, true),
			expected: false,
		},
		{
			name:     "OutOfBounds",
			size:     2,
			cells:    []Coord{{Row: 9, Col: 9}, {Row: 9, Col: 10}},
			expected: false,
		},
		{
			name:     "NegativeCoordinate",
			size:     1,
			cells:    []Coord{{Row: -1, Col: 0}},
			expected: false,
		},
		{
			name:     "OverlapsExistingShip",
			board:    occupied,
			size:     2,
			cells:    run(5, 6, 2, true),
			expected: false,
		},
		{
			name:     "TouchesExistingShipOrthogonally",
			board:    occupied,
			size:     2,
			cells:    run(6, 5, 2, true),
			expected: false,
		},
		{
			name:     "TouchesExistingShipDiagonally",
			board:    occupied,
			size:     1,
			cells:    []Coord{{Row: 4, Col: 4}},
			expected: false,
		},
		{
			name:     "ClearOfExistingShip",
			board:    occupied,
			size:     3,
			cells:    run(7, 5, 3, true),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidPlacement(tt.board, tt.size, tt.cells); got != tt.expected {
				t.Errorf("ValidPlacement() = %t, want %t", got, tt.expected)
			}
		})
	}
}

func TestPlaceShipMarksBoardAndRoster(t *testing.T) {
	p := PlayerState{PlayerID: "p1", Alive: true}
	class, _ := FleetClass("destroyer-1")
	cells := run(3, 3, 2, true)

	p.PlaceShip(class, cells)

	if len(p.Ships) != 1 || p.ShipsRemaining != 1 {
		t.Fatalf("expected 1 placed ship, got ships=%d remaining=%d", len(p.Ships), p.ShipsRemaining)
	}
	for _, c := range cells {
		if p.Board[c.Row][c.Col] != CellShip {
			t.Errorf("cell (%d,%d) not marked as ship", c.Row, c.Col)
		}
	}
	if !p.HasShip("destroyer-1") {
		t.Errorf("HasShip(destroyer-1) = false after placement")
	}

	// The ship keeps its own copy of the cells.
	cells[0] = Coord{Row: 9, Col: 9}
	if p.Ships[0].Cells[0] != (Coord{Row: 3, Col: 3}) {
		t.Errorf("ship cells alias the caller's slice")
	}
}

func TestClearPlacement(t *testing.T) {
	p := PlayerState{PlayerID: "p1", Alive: true}
	class, _ := FleetClass("cruiser-1")
	p.PlaceShip(class, run(0, 0, 3, true))
	p.PlacementComplete = true

	p.ClearPlacement()

	if len(p.Ships) != 0 || p.ShipsRemaining != 0 || p.PlacementComplete {
		t.Fatalf("expected empty placement, got ships=%d remaining=%d complete=%t", len(p.Ships), p.ShipsRemaining, p.PlacementComplete)
	}
	if p.Board != (Board{}) {
		t.Errorf("expected empty board after clear")
	}
}

func TestAutoPlaceFleet(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 20; trial++ {
		p := PlayerState{PlayerID: "p1", Alive: true}
		if !AutoPlaceFleet(rng, &p) {
			t.Fatalf("trial %d: auto placement failed", trial)
		}
		assertFleetLegal(t, &p)
	}
}

func TestAutoPlaceFleetKeepsManualShips(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := PlayerState{PlayerID: "p1", Alive: true}
	class, _ := FleetClass("battleship-1")
	manual := run(0, 0, 4, true)
	p.PlaceShip(class, manual)

	if !AutoPlaceFleet(rng, &p) {
		t.Fatalf("auto placement failed")
	}
	assertFleetLegal(t, &p)

	ship := shipByID(t, &p, "battleship-1")
	for i, c := range ship.Cells {
		if c != manual[i] {
			t.Fatalf("manual battleship moved: got %v, want %v", ship.Cells, manual)
		}
	}
}

func TestAutoPlaceFleetFailureLeavesPlayerUntouched(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := PlayerState{PlayerID: "p1", Alive: true}
	// Saturate the board so no run can avoid touching a ship cell.
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			p.Board[r][c] = CellShip
		}
	}

	if AutoPlaceFleet(rng, &p) {
		t.Fatalf("auto placement succeeded on a saturated board")
	}
	if len(p.Ships) != 0 || p.ShipsRemaining != 0 {
		t.Errorf("failed attempt partially applied: ships=%d remaining=%d", len(p.Ships), p.ShipsRemaining)
	}
}

func assertFleetLegal(t *testing.T, p *PlayerState) {
	t.Helper()
	if len(p.Ships) != FleetSize {
		t.Fatalf("expected %d ships, got %d", FleetSize, len(p.Ships))
	}
	if p.ShipsRemaining != FleetSize {
		t.Fatalf("expected %d ships remaining, got %d", FleetSize, p.ShipsRemaining)
	}

	shipCells := 0
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			if p.Board[r][c] == CellShip {
				shipCells++
			}
		}
	}
	total := 0
	for _, class := range Fleet {
		total += class.Size
	}
	if shipCells != total {
		t.Fatalf("expected %d ship cells on board, got %d", total, shipCells)
	}

	// No two ships overlap or touch, including diagonally.
	for i := range p.Ships {
		for j := i + 1; j < len(p.Ships); j++ {
			for _, a := range p.Ships[i].Cells {
				for _, b := range p.Ships[j].Cells {
					dr := a.Row - b.Row
					dc := a.Col - b.Col
					if dr >= -1 && dr <= 1 && dc >= -1 && dc <= 1 {
						t.Fatalf("ships %s and %s touch at %v/%v", p.Ships[i].ID, p.Ships[j].ID, a, b)
					}
				}
			}
		}
	}
}

func shipByID(t *testing.T, p *PlayerState, shipID string) *Ship {
	t.Helper()
	for i := range p.Ships {
		if p.Ships[i].ID == shipID {
			return &p.Ships[i]
		}
	}
	t.Fatalf("ship %s not placed", shipID)
	return nil
}
