// Package config handles loading and validation of the bake configuration.
package config

import (
	"crypto/sha1"
	"errors"
	"fmt"
	"image/color"

	timage "github.com/bodgit/terrain/image"
	"github.com/bodgit/terrain/palette"
)

// Connective is the terrain type name that designates the connective terrain
const Connective = "WATER"

const (
	defaultTargetSize = 512
	defaultDebugDir   = "map_debug"
)

var (
	errNoTerrains = errors.New("config: no terrain types defined")
	errNoInput    = errors.New("config: input_dir is required")
	errNoOutput   = errors.New("config: output_dir is required")
)

// Config holds all bake settings.
type Config struct {
	InputDir     string           `yaml:"input_dir"`
	OutputDir    string           `yaml:"output_dir"`
	TargetSize   int              `yaml:"target_size"`
	TerrainTypes TerrainTypes     `yaml:"terrain_types"`
	Debug        bool             `yaml:"debug"`
	DebugDir     string           `yaml:"debug_dir"`
	DebugColors  map[string][]int `yaml:"debug_colors"`
}

// Terrain is a single entry of terrain_types.
type Terrain struct {
	Name      string  `yaml:"-"`
	ID        int     `yaml:"id"`
	Color     []int   `yaml:"color"`
	Tolerance float64 `yaml:"tolerance"`
}

// Default returns a Config with default values and no terrain types.
func Default() *Config {
	return &Config{
		TargetSize: defaultTargetSize,
		DebugDir:   defaultDebugDir,
	}
}

func channel(v int) bool {
	return v >= 0 && v <= 0xff
}

// Validate checks the configuration is usable, in particular that every
// terrain id fits in a byte.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return errNoInput
	}
	if c.OutputDir == "" {
		return errNoOutput
	}
	if c.TargetSize < 1 {
		return fmt.Errorf("config: invalid target_size %d", c.TargetSize)
	}
	if len(c.TerrainTypes) == 0 {
		return errNoTerrains
	}

	for _, t := range c.TerrainTypes {
		if !channel(t.ID) {
			return fmt.Errorf("config: terrain %q id %d outside 0-255", t.Name, t.ID)
		}
		if len(t.Color) != 3 {
			return fmt.Errorf("config: terrain %q color must be [r, g, b]", t.Name)
		}
		for _, v := range t.Color {
			if !channel(v) {
				return fmt.Errorf("config: terrain %q color value %d outside 0-255", t.Name, v)
			}
		}
	}

	for name, rgba := range c.DebugColors {
		if _, ok := c.TerrainTypes.lookup(name); !ok {
			return fmt.Errorf("config: debug color for unknown terrain %q", name)
		}
		if len(rgba) != 4 {
			return fmt.Errorf("config: debug color for %q must be [r, g, b, a]", name)
		}
		for _, v := range rgba {
			if !channel(v) {
				return fmt.Errorf("config: debug color for %q value %d outside 0-255", name, v)
			}
		}
	}

	// Catches duplicate and reserved ids and negative tolerances
	_, err := c.Palette()
	return err
}

// HasConnective reports whether the connective terrain is defined.
func (c *Config) HasConnective() bool {
	_, ok := c.TerrainTypes.lookup(Connective)
	return ok
}

// Palette builds the terrain palette in declaration order.
func (c *Config) Palette() (*palette.Palette, error) {
	defs := make([]palette.Definition, 0, len(c.TerrainTypes))
	for _, t := range c.TerrainTypes {
		if !channel(t.ID) || len(t.Color) != 3 {
			return nil, fmt.Errorf("config: invalid terrain %q", t.Name)
		}
		defs = append(defs, palette.Definition{
			Name:      t.Name,
			ID:        uint8(t.ID),
			Color:     palette.Color{R: uint8(t.Color[0]), G: uint8(t.Color[1]), B: uint8(t.Color[2])},
			Tolerance: t.Tolerance,
		})
	}

	connective := ""
	if c.HasConnective() {
		connective = Connective
	}

	return palette.New(defs, connective)
}

// OverlayColors returns the debug overlay tint for each terrain id, falling
// back to the default tints if none are configured.
func (c *Config) OverlayColors() map[uint8]color.NRGBA {
	if len(c.DebugColors) == 0 {
		return timage.DefaultColors()
	}

	p, err := c.Palette()
	if err != nil {
		return timage.DefaultColors()
	}

	colors := make(map[uint8]color.NRGBA, len(c.DebugColors))
	for name, rgba := range c.DebugColors {
		d, ok := p.Lookup(name)
		if !ok || len(rgba) != 4 {
			continue
		}
		colors[d.ID] = color.NRGBA{uint8(rgba[0]), uint8(rgba[1]), uint8(rgba[2]), uint8(rgba[3])}
	}
	return colors
}

// Fingerprint returns a digest of every setting that affects the baked data
// textures.
func (c *Config) Fingerprint() string {
	h := sha1.New()
	fmt.Fprintf(h, "size=%d\n", c.TargetSize)
	for _, t := range c.TerrainTypes {
		fmt.Fprintf(h, "%s=%d,%v,%g\n", t.Name, t.ID, t.Color, t.Tolerance)
	}
	return fmt.Sprintf("%X", h.Sum(nil))
}
