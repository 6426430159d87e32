package bot

import (
	"math/rand"

	"seabattle/internal/domain"
)

// ChooseTarget picks an opponent and a cell for the bot's next attack.
//
// Target selection prefers any living opponent with a damaged-but-unsunk
// ship (locked-on priority) over a uniformly random living opponent. Cell
// selection on the chosen opponent prefers the next unguessed cell of a
// damaged ship (finish it) over a uniformly random unguessed cell (hunt
// mode).
func ChooseTarget(rng *rand.Rand, s *domain.GameState, botID string) (string, domain.Coord, bool) {
	var living, damaged []*domain.PlayerState
	for i := range s.Players {
		p := &s.Players[i]
		if p.PlayerID == botID || !p.Alive {
			continue
		}
		living = append(living, p)
		if hasDamagedShip(p) {
			damaged = append(damaged, p)
		}
	}
	if len(living) == 0 {
		return "", domain.Coord{}, false
	}

	pool := living
	if len(damaged) > 0 {
		pool = damaged
	}
	target := pool[rng.Intn(len(pool))]

	if cell, ok := nextDamagedShipCell(target); ok {
		return target.PlayerID, cell, true
	}
	cell, ok := randomUnguessedCell(rng, target)
	return target.PlayerID, cell, ok
}

func hasDamagedShip(p *domain.PlayerState) bool {
	for i := range p.Ships {
		if p.Ships[i].Hits > 0 && !p.Ships[i].Sunk {
			return true
		}
	}
	return false
}

// nextDamagedShipCell returns the first unguessed cell of the first
// damaged, unsunk ship on the player's board.
func nextDamagedShipCell(p *domain.PlayerState) (domain.Coord, bool) {
	for i := range p.Ships {
		ship := &p.Ships[i]
		if ship.Hits == 0 || ship.Sunk {
			continue
		}
		for _, c := range ship.Cells {
			if p.Board[c.Row][c.Col] == domain.CellShip {
				return c, true
			}
		}
	}
	return domain.Coord{}, false
}

// randomUnguessedCell picks uniformly among cells never attacked before.
func randomUnguessedCell(rng *rand.Rand, p *domain.PlayerState) (domain.Coord, bool) {
	var candidates []domain.Coord
	for r := 0; r < domain.BoardSize; r++ {
		for c := 0; c < domain.BoardSize; c++ {
			switch p.Board[r][c] {
			case domain.CellEmpty, domain.CellShip:
				candidates = append(candidates, domain.Coord{Row: r, Col: c})
			}
		}
	}
	if len(candidates) == 0 {
		return domain.Coord{}, false
	}
	return candidates[rng.Intn(len(candidates))], true
}
