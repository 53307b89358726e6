package terrain

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/bodgit/terrain/classify"
	"github.com/bodgit/terrain/grid"
	timage "github.com/bodgit/terrain/image"
	"github.com/bodgit/terrain/palette"
)

// Options controls the baking of a single chunk. It is shared read-only
// between workers.
type Options struct {
	Palette *palette.Palette
	Size    int
	Colors  map[uint8]color.NRGBA
	Debug   bool
}

// Result is the outcome of baking a single chunk
type Result struct {
	Grid    *grid.Grid
	Overlay *image.NRGBA // only when Options.Debug is set

	HolesFilled       int
	DiagonalGapsFixed int

	// 4-connected regions of the connective terrain either side of repair
	ComponentsBefore int
	ComponentsAfter  int
}

// BakeTile classifies m into an Options.Size square grid and repairs the
// connective terrain. It depends on nothing but its arguments so chunks can
// be baked in any order or in parallel with identical results.
func BakeTile(m image.Image, opts Options) *Result {
	src := classify.FromImage(m)
	g := classify.Classify(src, opts.Size, opts.Palette)

	r := &Result{Grid: g}

	if c := opts.Palette.Connective(); c != palette.NoConnective {
		r.ComponentsBefore = g.Components(uint8(c), false)
		r.HolesFilled, r.DiagonalGapsFixed = g.Repair(c)
		r.ComponentsAfter = g.Components(uint8(c), false)
	}

	if opts.Debug {
		r.Overlay = timage.Overlay(classify.Downsample(src, opts.Size), g, opts.Colors)
	}

	return r
}

// VerifyTexture checks file is a data texture of the expected size
func VerifyTexture(file string, size int) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	g, err := timage.Decode(f)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	if g.Width != size || g.Height != size {
		return fmt.Errorf("%s: %dx%d texture, expected %dx%d", file, g.Width, g.Height, size, size)
	}
	return nil
}
