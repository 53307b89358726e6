/*
Package grid implements the classified terrain grid: a row-major array of
terrain ids, one byte per cell, along with the morphological repairs applied
to the connective terrain after classification.
*/
package grid

// Grid is a mutable row-major array of terrain ids
type Grid struct {
	Width, Height int
	Cells         []uint8
}

// New returns a grid of the given dimensions with every cell set to 0
func New(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Cells:  make([]uint8, width*height),
	}
}

func (g *Grid) offset(x, y int) int {
	return y*g.Width + x
}

// In reports whether (x, y) lies within the grid
func (g *Grid) In(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// At returns the terrain id at (x, y)
func (g *Grid) At(x, y int) uint8 {
	return g.Cells[g.offset(x, y)]
}

// Set stores the terrain id at (x, y)
func (g *Grid) Set(x, y int, id uint8) {
	g.Cells[g.offset(x, y)] = id
}

// Histogram returns the number of cells holding each terrain id
func (g *Grid) Histogram() (h [256]int) {
	for _, c := range g.Cells {
		h[c]++
	}
	return
}
