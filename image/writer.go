package image

import (
	"errors"
	"image"
	"image/png"
	"io"

	"github.com/bodgit/terrain/grid"
)

var errEmpty = errors.New("image: grid is empty")

// Encode writes g to w as an 8-bit greyscale PNG
func Encode(w io.Writer, g *grid.Grid) error {
	if g.Width <= 0 || g.Height <= 0 || len(g.Cells) != g.Width*g.Height {
		return errEmpty
	}

	m := &image.Gray{
		Pix:    g.Cells,
		Stride: g.Width,
		Rect:   image.Rect(0, 0, g.Width, g.Height),
	}

	e := png.Encoder{CompressionLevel: png.BestCompression}

	return e.Encode(w, m)
}
