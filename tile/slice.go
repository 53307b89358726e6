package tile

import (
	"errors"
	"image"
	"image/draw"
)

var errTooSmall = errors.New("tile: image is smaller than one tile")

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// Slice cuts m into size x size tiles and calls fn for each one, column by
// column. Any partial tiles at the right and bottom edges are dropped.
func Slice(m image.Image, size int, fn func(Coordinate, image.Image) error) error {
	if size <= 0 {
		return errTileSize
	}

	b := m.Bounds()
	cols, rows := b.Dx()/size, b.Dy()/size
	if cols == 0 || rows == 0 {
		return errTooSmall
	}

	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			r := image.Rect(x*size, y*size, (x+1)*size, (y+1)*size).Add(b.Min)

			var t image.Image
			if sm, ok := m.(subImager); ok {
				t = sm.SubImage(r)
			} else {
				dup := image.NewNRGBA(image.Rect(0, 0, size, size))
				draw.Draw(dup, dup.Bounds(), m, r.Min, draw.Src)
				t = dup
			}

			if err := fn(Coordinate{x, y}, t); err != nil {
				return err
			}
		}
	}

	return nil
}
