/*
Package tile implements the tile coordinate contract shared by the slicer,
the baker and the stitcher.

A large map is cut into equally sized square chunks. Each chunk's position
in the grid of chunks is carried in its file name as two integers after a
prefix, for example map_10_5.png is the chunk in column 10, row 5. Baked
data textures and debug overlays keep the coordinate and swap the prefix.
*/
package tile

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// SourcePrefix is the prefix of source map chunks
	SourcePrefix = "map"
	// DataPrefix is the prefix of baked data textures
	DataPrefix = "data"
	// DebugPrefix is the prefix of debug overlays
	DebugPrefix = "debug"

	// MosaicFilename is the name of the stitched debug overlay
	MosaicFilename = "FULL_DEBUG_MAP.png"

	separator = "_"

	maxCoordinate = 1<<16 - 1
)

var errBadName = errors.New("tile: file name has no tile coordinate")

// Coordinate is the position of a tile in the grid of tiles
type Coordinate struct {
	X, Y int
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

// Name returns the PNG file name for the tile at c
func Name(prefix string, c Coordinate) string {
	return fmt.Sprintf("%s%s%d%s%d.png", prefix, separator, c.X, separator, c.Y)
}

// Parse splits a file name such as "map_10_5.png" into its prefix and
// coordinate. Any directory and extension are ignored.
func Parse(name string) (string, Coordinate, error) {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	parts := strings.Split(base, separator)
	if len(parts) < 3 {
		return "", Coordinate{}, errBadName
	}

	n := len(parts)
	x, err := strconv.Atoi(parts[n-2])
	if err != nil || x < 0 || x > maxCoordinate {
		return "", Coordinate{}, errBadName
	}
	y, err := strconv.Atoi(parts[n-1])
	if err != nil || y < 0 || y > maxCoordinate {
		return "", Coordinate{}, errBadName
	}

	return strings.Join(parts[:n-2], separator), Coordinate{x, y}, nil
}
