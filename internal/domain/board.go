package domain

import "sort"

// InBounds reports whether the coordinate lies on the board.
func InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < BoardSize && c.Col >= 0 && c.Col < BoardSize
}

// Neighbors returns the in-bounds 8-neighborhood of a cell.
func Neighbors(c Coord) []Coord {
	out := make([]Coord, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			n := Coord{Row: c.Row + dr, Col: c.Col + dc}
			if InBounds(n) {
				out = append(out, n)
			}
		}
	}
	return out
}

// IsStraightRun reports whether the cells form a single straight contiguous
// run along one axis. Single cells qualify trivially; duplicates do not.
func IsStraightRun(cells []Coord) bool {
	if len(cells) == 0 {
		return false
	}
	if len(cells) == 1 {
		return true
	}

	sameRow := true
	sameCol := true
	for _, c := range cells[1:] {
		if c.Row != cells[0].Row {
			sameRow = false
		}
		if c.Col != cells[0].Col {
			sameCol = false
		}
	}
	if !sameRow && !sameCol {
		return false
	}

	keys := make([]int, len(cells))
	for i, c := range cells {
		if sameRow {
			keys[i] = c.Col
		} else {
			keys[i] = c.Row
		}
	}
	sort.Ints(keys)
	for i := 1; i < len(keys); i++ {
		if keys[i] != keys[i-1]+1 {
			return false
		}
	}
	return true
}

// touchesShip reports whether the cell overlaps or is 8-adjacent to any
// ship cell already on the board.
func touchesShip(b Board, c Coord) bool {
	if b[c.Row][c.Col] == CellShip {
		return true
	}
	for _, n := range Neighbors(c) {
		if b[n.Row][n.Col] == CellShip {
			return true
		}
	}
	return false
}
