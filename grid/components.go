package grid

var (
	offsets4 = [][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	offsets8 = [][2]int{{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}}
)

// Components returns the number of connected regions of cells holding id.
// Cells connect orthogonally, or also diagonally if eight is set.
func (g *Grid) Components(id uint8, eight bool) int {
	offsets := offsets4
	if eight {
		offsets = offsets8
	}

	seen := make([]bool, len(g.Cells))
	var queue []int
	n := 0

	for i, c := range g.Cells {
		if c != id || seen[i] {
			continue
		}
		n++

		// BFS to mark the whole region
		seen[i] = true
		queue = append(queue[:0], i)
		for qi := 0; qi < len(queue); qi++ {
			ux, uy := queue[qi]%g.Width, queue[qi]/g.Width
			for _, d := range offsets {
				vx, vy := ux+d[0], uy+d[1]
				if !g.In(vx, vy) {
					continue
				}
				vi := g.offset(vx, vy)
				if g.Cells[vi] == id && !seen[vi] {
					seen[vi] = true
					queue = append(queue, vi)
				}
			}
		}
	}

	return n
}
