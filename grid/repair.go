package grid

const holeThreshold = 5

// Repair closes gaps in the connective terrain so that paths relying on
// 4-connectivity are not severed. It first fills cells surrounded by at least
// five connective neighbours and then closes diagonal-only contacts between
// connective cells. Both passes scan in row-major order and see their own
// earlier edits. A connective id outside 0-255 disables both passes.
func (g *Grid) Repair(connective int) (holesFilled, diagonalGapsFixed int) {
	if connective < 0 || connective > 0xff {
		return 0, 0
	}
	id := uint8(connective)

	holesFilled = g.fillHoles(id)
	diagonalGapsFixed = g.fixDiagonals(id)

	return holesFilled, diagonalGapsFixed
}

func (g *Grid) neighbours(x, y int, id uint8) (n int) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if g.At(x+dx, y+dy) == id {
				n++
			}
		}
	}
	return
}

// Border cells are never filled
func (g *Grid) fillHoles(id uint8) (filled int) {
	for y := 1; y < g.Height-1; y++ {
		for x := 1; x < g.Width-1; x++ {
			if g.At(x, y) == id {
				continue
			}
			if g.neighbours(x, y, id) >= holeThreshold {
				g.Set(x, y, id)
				filled++
			}
		}
	}
	return
}

// For each 2x2 block
//
//	a b
//	c d
//
// a connective a-d diagonal with b and c both not connective (or the mirror
// case) gets the other pair filled.
func (g *Grid) fixDiagonals(id uint8) (fixed int) {
	for y := 0; y < g.Height-1; y++ {
		for x := 0; x < g.Width-1; x++ {
			a := g.At(x, y) == id
			b := g.At(x+1, y) == id
			c := g.At(x, y+1) == id
			d := g.At(x+1, y+1) == id

			switch {
			case a && d && !b && !c:
				g.Set(x+1, y, id)
				g.Set(x, y+1, id)
				fixed++
			case b && c && !a && !d:
				g.Set(x, y, id)
				g.Set(x+1, y+1, id)
				fixed++
			}
		}
	}
	return
}
