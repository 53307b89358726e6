/*
Package terrain is a library for baking painted map chunks into terrain data
textures.

Each chunk is reduced to a square grid of terrain ids by matching sampled
colours against an ordered palette, with extra sampling and repair for the
connective terrain so that thin rivers survive the reduction and stay
4-connected. Optionally a tinted overlay of every chunk is produced and the
overlays are stitched into one image for review.
*/
package terrain

import (
	"errors"
	"image/color"

	"github.com/bodgit/terrain/config"
	"github.com/bodgit/terrain/palette"
	"go.uber.org/zap"
)

// Baker bakes every chunk in the configured input directory
type Baker struct {
	cfg         *config.Config
	opts        Options
	ledger      *Ledger
	logger      *zap.Logger
	incremental bool
}

// New returns a Baker for cfg. ledger may be nil in which case nothing is
// recorded and incremental baking is unavailable.
func New(cfg *config.Config, ledger *Ledger, logger *zap.Logger) (*Baker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	p, err := cfg.Palette()
	if err != nil {
		return nil, err
	}

	if p.Connective() == palette.NoConnective {
		logger.Warn("No connective terrain defined, rescue sampling and repair disabled",
			zap.String("terrain", config.Connective))
	}

	var colors map[uint8]color.NRGBA
	if cfg.Debug {
		colors = cfg.OverlayColors()
	}

	return &Baker{
		cfg: cfg,
		opts: Options{
			Palette: p,
			Size:    cfg.TargetSize,
			Colors:  colors,
			Debug:   cfg.Debug,
		},
		ledger: ledger,
		logger: logger,
	}, nil
}

// SetIncremental enables skipping chunks that are unchanged since they were
// last baked with the same configuration
func (b *Baker) SetIncremental(incremental bool) error {
	if incremental && b.ledger == nil {
		return errors.New("terrain: incremental baking needs a ledger")
	}
	b.incremental = incremental
	return nil
}
