package image

import (
	"image"
	"image/color"

	"github.com/bodgit/terrain/classify"
	"github.com/bodgit/terrain/grid"
)

func blend(orig, over uint8, alpha float64) uint8 {
	return uint8(float64(orig)*(1-alpha) + float64(over)*alpha)
}

// Overlay tints each cell of the sampled map colours in cells by the colour
// mapped to its terrain id in g. Cells whose id has no mapping keep their
// sampled colour. cells and g must be the same size.
func Overlay(cells *classify.Source, g *grid.Grid, colors map[uint8]color.NRGBA) *image.NRGBA {
	if cells.Width != g.Width || cells.Height != g.Height {
		panic("image: overlay size mismatch")
	}

	m := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			orig := cells.At(x, y)
			c := color.NRGBA{orig.R, orig.G, orig.B, 0xff}

			if over, ok := colors[g.At(x, y)]; ok {
				a := float64(over.A) / 255.0
				c.R = blend(orig.R, over.R, a)
				c.G = blend(orig.G, over.G, a)
				c.B = blend(orig.B, over.B, a)
			}

			m.SetNRGBA(x, y, c)
		}
	}

	return m
}
