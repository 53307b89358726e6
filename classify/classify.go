/*
Package classify converts a source map chunk into a grid of terrain ids.

Each output cell takes the colour of a single source pixel, the centre of the
cell's footprint, and resolves it against the palette. Colours are never
blended as that would produce shades no terrain definition matches. Because a
single sample easily misses features one source pixel wide, cells that did
not resolve to the connective terrain are re-examined at five points around
the footprint centre and switched to the connective terrain if at least two
of them match it.
*/
package classify

import (
	"image"
	"image/color"

	"github.com/bodgit/terrain/grid"
	"github.com/bodgit/terrain/palette"
)

const rescueThreshold = 2

// Source is a read-only packed RGB raster
type Source struct {
	Width, Height int
	Pix           []uint8
}

// NewSource returns a black source of the given dimensions
func NewSource(width, height int) *Source {
	return &Source{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

// FromImage copies m into a Source, discarding any alpha channel. Colour
// channels keep their straight, non-premultiplied values so a translucent
// pixel classifies the same as its opaque colour.
func FromImage(m image.Image) *Source {
	b := m.Bounds()
	s := NewSource(b.Dx(), b.Dy())

	switch pm := m.(type) {
	case *image.NRGBA:
		for y := 0; y < s.Height; y++ {
			row := pm.Pix[pm.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < s.Width; x++ {
				copy(s.Pix[s.offset(x, y):s.offset(x, y)+3], row[x*4:x*4+3])
			}
		}
	default:
		for y := 0; y < s.Height; y++ {
			for x := 0; x < s.Width; x++ {
				c := color.NRGBAModel.Convert(m.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				i := s.offset(x, y)
				s.Pix[i+0], s.Pix[i+1], s.Pix[i+2] = c.R, c.G, c.B
			}
		}
	}

	return s
}

func (s *Source) offset(x, y int) int {
	return (y*s.Width + x) * 3
}

// At returns the colour at (x, y)
func (s *Source) At(x, y int) palette.Color {
	i := s.offset(x, y)
	return palette.Color{R: s.Pix[i], G: s.Pix[i+1], B: s.Pix[i+2]}
}

// Set stores the colour at (x, y)
func (s *Source) Set(x, y int, c palette.Color) {
	i := s.offset(x, y)
	s.Pix[i+0], s.Pix[i+1], s.Pix[i+2] = c.R, c.G, c.B
}

// clampedAt returns the colour at (x, y) with both coordinates clamped to the
// raster
func (s *Source) clampedAt(x, y int) palette.Color {
	return s.At(clamp(x, 0, s.Width-1), clamp(y, 0, s.Height-1))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sample maps output coordinate i of n onto a source axis of length size,
// returning the pixel nearest the centre of i's footprint
func sample(i, n, size int) int {
	return clamp((2*i+1)*size/(2*n), 0, size-1)
}

// Downsample returns the nearest neighbour reduction of s to size x size
func Downsample(s *Source, size int) *Source {
	d := NewSource(size, size)
	for y := 0; y < size; y++ {
		sy := sample(y, size, s.Height)
		for x := 0; x < size; x++ {
			d.Set(x, y, s.At(sample(x, size, s.Width), sy))
		}
	}
	return d
}

// rescue reports whether at least two of the five points in a "+" pattern
// around (cx, cy) match the connective terrain
func rescue(s *Source, p *palette.Palette, cx, cy, dx, dy int) bool {
	points := [5][2]int{
		{cx, cy},
		{cx - dx, cy},
		{cx + dx, cy},
		{cx, cy - dy},
		{cx, cy + dy},
	}

	n := 0
	for _, pt := range points {
		if p.IsConnective(s.clampedAt(pt[0], pt[1])) {
			if n++; n >= rescueThreshold {
				return true
			}
		}
	}
	return false
}

// Classify returns a size x size grid of terrain ids for s
func Classify(s *Source, size int, p *palette.Palette) *grid.Grid {
	g := grid.New(size, size)

	connective := p.Connective()

	// Offsets of the rescue samples, a third of the integer stride
	dx, dy := s.Width/size/3, s.Height/size/3

	for y := 0; y < size; y++ {
		sy := sample(y, size, s.Height)
		for x := 0; x < size; x++ {
			sx := sample(x, size, s.Width)

			id := p.Match(s.At(sx, sy))
			if connective != palette.NoConnective && int(id) != connective {
				if rescue(s, p, sx, sy, dx, dy) {
					id = uint8(connective)
				}
			}

			g.Set(x, y, id)
		}
	}

	return g
}
