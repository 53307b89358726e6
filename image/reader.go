package image

import (
	"errors"
	"image"
	"image/png"
	"io"

	"github.com/bodgit/terrain/grid"
)

var errNotGray = errors.New("image: data texture is not 8-bit greyscale")

// Decode reads a data texture from r and returns it as a grid
func Decode(r io.Reader) (*grid.Grid, error) {
	m, err := png.Decode(r)
	if err != nil {
		return nil, err
	}

	gm, ok := m.(*image.Gray)
	if !ok {
		return nil, errNotGray
	}

	b := gm.Bounds()
	g := grid.New(b.Dx(), b.Dy())
	for y := 0; y < g.Height; y++ {
		copy(g.Cells[y*g.Width:(y+1)*g.Width], gm.Pix[gm.PixOffset(b.Min.X, b.Min.Y+y):])
	}

	return g, nil
}
