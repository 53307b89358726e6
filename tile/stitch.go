package tile

import (
	"errors"
	"image"
	"image/draw"
	_ "image/png" // debug overlays are PNG
	"os"

	"go.uber.org/zap"
)

var (
	// ErrNoTiles is returned when there is nothing to stitch
	ErrNoTiles = errors.New("tile: no tiles to stitch")

	errTileSize = errors.New("tile: tile size must be positive")
	errTooLarge = errors.New("tile: tile lies outside the largest possible mosaic")
)

// Largest width or height of a mosaic in pixels
const maxMosaicSide = 1 << 15

// fits reports whether the tile at c keeps the mosaic within maxMosaicSide
func fits(c Coordinate, size int) bool {
	limit := maxMosaicSide / size
	return c.X < limit && c.Y < limit
}

func mosaicBounds(coords []Coordinate, size int) image.Rectangle {
	var maxX, maxY int
	for _, c := range coords {
		if c.X > maxX {
			maxX = c.X
		}
		if c.Y > maxY {
			maxY = c.Y
		}
	}
	return image.Rect(0, 0, (maxX+1)*size, (maxY+1)*size)
}

func paste(dst *image.NRGBA, src image.Image, c Coordinate, size int) {
	r := image.Rect(c.X*size, c.Y*size, (c.X+1)*size, (c.Y+1)*size)
	draw.Draw(dst, r, src, src.Bounds().Min, draw.Src)
}

// Stitch pastes each tile at its coordinate into a single image. The mosaic
// covers every coordinate up to the largest seen on each axis; positions with
// no tile are left transparent. Tiles are assumed to be size x size.
func Stitch(tiles map[Coordinate]image.Image, size int) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, errTileSize
	}
	if len(tiles) == 0 {
		return nil, ErrNoTiles
	}

	coords := make([]Coordinate, 0, len(tiles))
	for c := range tiles {
		if !fits(c, size) {
			return nil, errTooLarge
		}
		coords = append(coords, c)
	}

	m := image.NewNRGBA(mosaicBounds(coords, size))
	for c, t := range tiles {
		paste(m, t, c, size)
	}

	return m, nil
}

func decodeFile(file string) (image.Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	return m, err
}

// StitchFiles stitches the tiles named by files, reading the coordinate of
// each from its file name. Any file that cannot be read or decoded is logged
// and left blank in the mosaic. The files actually pasted are returned.
func StitchFiles(files []string, size int, logger *zap.Logger) (*image.NRGBA, []string, error) {
	if size <= 0 {
		return nil, nil, errTileSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	coords := make(map[string]Coordinate, len(files))
	all := make([]Coordinate, 0, len(files))
	for _, file := range files {
		_, c, err := Parse(file)
		if err != nil {
			logger.Warn("Ignoring file", zap.String("file", file), zap.Error(err))
			continue
		}
		if !fits(c, size) {
			logger.Warn("Ignoring file", zap.String("file", file), zap.Error(errTooLarge))
			continue
		}
		coords[file] = c
		all = append(all, c)
	}
	if len(all) == 0 {
		return nil, nil, ErrNoTiles
	}

	m := image.NewNRGBA(mosaicBounds(all, size))

	var used []string
	for _, file := range files {
		c, ok := coords[file]
		if !ok {
			continue
		}

		t, err := decodeFile(file)
		if err != nil {
			logger.Warn("Failed to stitch tile", zap.String("file", file), zap.Error(err))
			continue
		}

		paste(m, t, c, size)
		used = append(used, file)
	}

	return m, used, nil
}
