package image

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/bodgit/terrain/classify"
	"github.com/bodgit/terrain/grid"
	"github.com/bodgit/terrain/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	g := grid.New(3, 2)
	g.Cells = []uint8{0, 1, 2, 3, 255, 7}

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, g))

	m, err := png.Decode(bytes.NewReader(b.Bytes()))
	require.NoError(t, err)
	gm, ok := m.(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, uint8(255), gm.GrayAt(1, 1).Y)
	assert.Equal(t, uint8(7), gm.GrayAt(2, 1).Y)

	dec, err := Decode(bytes.NewReader(b.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, g, dec)
}

func TestEncodeEmpty(t *testing.T) {
	assert.Error(t, Encode(new(bytes.Buffer), grid.New(0, 0)))
}

func TestDecodeRejects(t *testing.T) {
	b := new(bytes.Buffer)
	require.NoError(t, png.Encode(b, image.NewNRGBA(image.Rect(0, 0, 2, 2))))
	_, err := Decode(b)
	assert.Equal(t, errNotGray, err)

	_, err = Decode(bytes.NewReader([]byte("not a png")))
	assert.Error(t, err)
}

func TestOverlay(t *testing.T) {
	cells := classify.NewSource(2, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			cells.Set(x, y, palette.Color{R: 100, G: 100, B: 100})
		}
	}

	g := grid.New(2, 2)
	g.Cells = []uint8{0, 3, 1, 9}

	colors := map[uint8]color.NRGBA{
		3: {0, 0, 255, 180},
		1: {255, 255, 0, 0},
		9: {10, 20, 30, 255},
	}

	m := Overlay(cells, g, colors)
	require.Equal(t, image.Rect(0, 0, 2, 2), m.Bounds())

	tests := []struct {
		x, y int
		want color.NRGBA
	}{
		{0, 0, color.NRGBA{100, 100, 100, 255}},
		{1, 0, color.NRGBA{29, 29, 209, 255}},
		{0, 1, color.NRGBA{100, 100, 100, 255}},
		{1, 1, color.NRGBA{10, 20, 30, 255}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.NRGBAAt(tt.x, tt.y), "cell (%d, %d)", tt.x, tt.y)
	}
}

func TestOverlayMismatch(t *testing.T) {
	assert.Panics(t, func() {
		Overlay(classify.NewSource(2, 2), grid.New(3, 3), DefaultColors())
	})
}

func TestDefaultColors(t *testing.T) {
	c := DefaultColors()
	assert.Len(t, c, 3)
	assert.Equal(t, color.NRGBA{0, 0, 255, 180}, c[3])
}
