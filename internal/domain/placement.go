package domain

import "math/rand"

// ValidPlacement reports whether the candidate cells are a legal position
// for a ship of the given size on this board: in-bounds, a single straight
// contiguous run of exactly size cells, and neither overlapping nor
// 8-adjacent to any existing ship cell. The no-touching rule is stricter
// than classic Battleship and is deliberate.
func ValidPlacement(b Board, size int, cells []Coord) bool {
	if len(cells) != size {
		return false
	}
	for _, c := range cells {
		if !InBounds(c) {
			return false
		}
	}
	if !IsStraightRun(cells) {
		return false
	}
	for _, c := range cells {
		if touchesShip(b, c) {
			return false
		}
	}
	return true
}

// HasShip reports whether the player already placed the given roster ship.
func (p *PlayerState) HasShip(shipID string) bool {
	for i := range p.Ships {
		if p.Ships[i].ID == shipID {
			return true
		}
	}
	return false
}

// PlaceShip commits a validated placement onto the player, marking board
// cells and appending the ship. ShipsRemaining tracks placed, unsunk ships.
func (p *PlayerState) PlaceShip(class ShipClass, cells []Coord) {
	for _, c := range cells {
		p.Board[c.Row][c.Col] = CellShip
	}
	p.Ships = append(p.Ships, Ship{
		ID:    class.ID,
		Name:  class.Name,
		Size:  class.Size,
		Cells: append([]Coord(nil), cells...),
	})
	p.ShipsRemaining++
}

// ClearPlacement discards every placed ship and empties the board.
func (p *PlayerState) ClearPlacement() {
	p.Board = Board{}
	p.Ships = nil
	p.ShipsRemaining = 0
	p.PlacementComplete = false
}

// AutoPlaceFleet randomly places every ship the player has not placed yet,
// largest first. Each ship gets a bounded number of random attempts; if any
// ship exhausts its budget the player is left untouched and false is
// returned, so a failed attempt is never partially applied.
func AutoPlaceFleet(rng *rand.Rand, p *PlayerState) bool {
	scratch := p.clone()
	for _, class := range Fleet {
		if scratch.HasShip(class.ID) {
			continue
		}
		placed := false
		for attempt := 0; attempt < MaxPlacementAttempts; attempt++ {
			cells := randomRun(rng, class.Size)
			if ValidPlacement(scratch.Board, class.Size, cells) {
				scratch.PlaceShip(class, cells)
				placed = true
				break
			}
		}
		if !placed {
			return false
		}
	}
	*p = scratch
	return true
}

// randomRun picks a random in-bounds straight run of the given length.
func randomRun(rng *rand.Rand, size int) []Coord {
	horizontal := rng.Intn(2) == 0
	var origin Coord
	if horizontal {
		origin = Coord{Row: rng.Intn(BoardSize), Col: rng.Intn(BoardSize - size + 1)}
	} else {
		origin = Coord{Row: rng.Intn(BoardSize - size + 1), Col: rng.Intn(BoardSize)}
	}
	cells := make([]Coord, size)
	for i := 0; i < size; i++ {
		if horizontal {
			cells[i] = Coord{Row: origin.Row, Col: origin.Col + i}
		} else {
			cells[i] = Coord{Row: origin.Row + i, Col: origin.Col}
		}
	}
	return cells
}
