package config

import (
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/terrain/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonConfig = `{
  "input_dir": "map_chunks",
  "output_dir": "map_data",
  "terrain_types": {
    "SNOW": {"id": 2, "color": [240, 240, 240], "tolerance": 20},
    "SAND": {"id": 1, "color": [230, 200, 120], "tolerance": 30},
    "WATER": {"id": 3, "color": [40, 70, 160], "tolerance": 25.5}
  }
}`

func writeConfig(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 512, cfg.TargetSize)
	assert.Equal(t, "map_debug", cfg.DebugDir)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.TerrainTypes)
}

func TestLoadJSON(t *testing.T) {
	cfg, err := Load(writeConfig(t, "terrain_config.json", jsonConfig))
	require.NoError(t, err)

	assert.Equal(t, "map_chunks", cfg.InputDir)
	assert.Equal(t, "map_data", cfg.OutputDir)
	assert.Equal(t, 512, cfg.TargetSize)

	// Declaration order, not sorted or hashed
	require.Len(t, cfg.TerrainTypes, 3)
	assert.Equal(t, "SNOW", cfg.TerrainTypes[0].Name)
	assert.Equal(t, "SAND", cfg.TerrainTypes[1].Name)
	assert.Equal(t, "WATER", cfg.TerrainTypes[2].Name)
	assert.Equal(t, 25.5, cfg.TerrainTypes[2].Tolerance)
	assert.Equal(t, []int{40, 70, 160}, cfg.TerrainTypes[2].Color)

	assert.True(t, cfg.HasConnective())

	p, err := cfg.Palette()
	require.NoError(t, err)
	assert.Equal(t, 3, p.Connective())
	defs := p.Definitions()
	assert.Equal(t, uint8(2), defs[0].ID)
	assert.Equal(t, palette.Color{R: 230, G: 200, B: 120}, defs[1].Color)
}

func TestLoadYAML(t *testing.T) {
	content := `
input_dir: in
output_dir: out
target_size: 256
debug: true
debug_dir: dbg
terrain_types:
  SAND:
    id: 1
    color: [230, 200, 120]
    tolerance: 30
debug_colors:
  SAND: [255, 0, 0, 128]
`
	cfg, err := Load(writeConfig(t, "terrain.yaml", content))
	require.NoError(t, err)

	assert.Equal(t, 256, cfg.TargetSize)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "dbg", cfg.DebugDir)
	assert.False(t, cfg.HasConnective())

	p, err := cfg.Palette()
	require.NoError(t, err)
	assert.Equal(t, palette.NoConnective, p.Connective())

	assert.Equal(t, map[uint8]color.NRGBA{1: {255, 0, 0, 128}}, cfg.OverlayColors())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"id too large", `{"input_dir": "a", "output_dir": "b", "terrain_types": {"SAND": {"id": 256, "color": [1, 2, 3], "tolerance": 1}}}`},
		{"negative id", `{"input_dir": "a", "output_dir": "b", "terrain_types": {"SAND": {"id": -1, "color": [1, 2, 3], "tolerance": 1}}}`},
		{"reserved id", `{"input_dir": "a", "output_dir": "b", "terrain_types": {"SAND": {"id": 0, "color": [1, 2, 3], "tolerance": 1}}}`},
		{"duplicate id", `{"input_dir": "a", "output_dir": "b", "terrain_types": {"SAND": {"id": 1, "color": [1, 2, 3], "tolerance": 1}, "SNOW": {"id": 1, "color": [1, 2, 3], "tolerance": 1}}}`},
		{"duplicate name", `{"input_dir": "a", "output_dir": "b", "terrain_types": {"SAND": {"id": 1, "color": [1, 2, 3], "tolerance": 1}, "SAND": {"id": 2, "color": [1, 2, 3], "tolerance": 1}}}`},
		{"short color", `{"input_dir": "a", "output_dir": "b", "terrain_types": {"SAND": {"id": 1, "color": [1, 2], "tolerance": 1}}}`},
		{"color overflow", `{"input_dir": "a", "output_dir": "b", "terrain_types": {"SAND": {"id": 1, "color": [1, 2, 300], "tolerance": 1}}}`},
		{"negative tolerance", `{"input_dir": "a", "output_dir": "b", "terrain_types": {"SAND": {"id": 1, "color": [1, 2, 3], "tolerance": -1}}}`},
		{"no terrain", `{"input_dir": "a", "output_dir": "b"}`},
		{"terrain list", `{"input_dir": "a", "output_dir": "b", "terrain_types": [1, 2]}`},
		{"no input", `{"output_dir": "b", "terrain_types": {"SAND": {"id": 1, "color": [1, 2, 3], "tolerance": 1}}}`},
		{"no output", `{"input_dir": "a", "terrain_types": {"SAND": {"id": 1, "color": [1, 2, 3], "tolerance": 1}}}`},
		{"bad size", `{"input_dir": "a", "output_dir": "b", "target_size": 0, "terrain_types": {"SAND": {"id": 1, "color": [1, 2, 3], "tolerance": 1}}}`},
		{"unknown debug color", `{"input_dir": "a", "output_dir": "b", "terrain_types": {"SAND": {"id": 1, "color": [1, 2, 3], "tolerance": 1}}, "debug_colors": {"SNOW": [1, 2, 3, 4]}}`},
		{"short debug color", `{"input_dir": "a", "output_dir": "b", "terrain_types": {"SAND": {"id": 1, "color": [1, 2, 3], "tolerance": 1}}, "debug_colors": {"SAND": [1, 2, 3]}}`},
		{"malformed", `{"input_dir": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.json", tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestOverlayColorsDefault(t *testing.T) {
	cfg, err := Load(writeConfig(t, "terrain_config.json", jsonConfig))
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0, 0, 255, 180}, cfg.OverlayColors()[3])
}

func TestOverlayColorsByName(t *testing.T) {
	cfg, err := Load(writeConfig(t, "terrain_config.json", jsonConfig))
	require.NoError(t, err)

	cfg.DebugColors = map[string][]int{
		"WATER": {0, 0, 200, 255},
		"SNOW":  {255, 255, 255, 64},
	}
	assert.Equal(t, map[uint8]color.NRGBA{
		3: {0, 0, 200, 255},
		2: {255, 255, 255, 64},
	}, cfg.OverlayColors())
}

func TestFingerprint(t *testing.T) {
	a, err := Load(writeConfig(t, "a.json", jsonConfig))
	require.NoError(t, err)
	b, err := Load(writeConfig(t, "b.json", jsonConfig))
	require.NoError(t, err)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	// Debug settings do not change the data textures
	b.Debug = true
	b.DebugDir = "elsewhere"
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.TargetSize = 256
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())

	b.TargetSize = a.TargetSize
	b.TerrainTypes[0], b.TerrainTypes[1] = b.TerrainTypes[1], b.TerrainTypes[0]
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}
