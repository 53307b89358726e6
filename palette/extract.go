package palette

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/cenkalti/dominantcolor"
	"github.com/ericpauley/go-quantize/quantize"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/nfnt/resize"
)

// Method selects the algorithm used by Extract
type Method int

const (
	// MethodMedianCut uses median cut quantization
	MethodMedianCut Method = iota
	// MethodKMeans uses k-means clustering in RGB space
	MethodKMeans
	// MethodDominant uses weighted dominant colour detection
	MethodDominant
)

const (
	thumbnailSize = 2048
	maxSamples    = 12000
)

var errNoColors = errors.New("palette: no candidate colors found")

func (m Method) String() string {
	switch m {
	case MethodKMeans:
		return "kmeans"
	case MethodDominant:
		return "dominant"
	default:
		return "median"
	}
}

// ParseMethod returns the Method named by s
func ParseMethod(s string) (Method, error) {
	for _, m := range []Method{MethodMedianCut, MethodKMeans, MethodDominant} {
		if m.String() == s {
			return m, nil
		}
	}
	return MethodMedianCut, fmt.Errorf("palette: unknown method %q", s)
}

// Candidate is a suggested terrain colour along with the number of thumbnail
// pixels closest to it
type Candidate struct {
	Color Color
	Count int
}

// Hex returns the colour formatted as #rrggbb
func (c Candidate) Hex() string {
	return toColorful(c.Color).Hex()
}

func toColorful(c Color) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

func fromColor(c color.Color) Color {
	r, g, b, _ := c.RGBA()
	return Color{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
}

// Thumbnail reduces m to at most 2048x2048 using nearest neighbour sampling
// so that no blended colours are introduced
func Thumbnail(m image.Image) image.Image {
	b := m.Bounds()
	if b.Dx() <= thumbnailSize && b.Dy() <= thumbnailSize {
		return m
	}
	return resize.Resize(thumbnailSize, thumbnailSize, m, resize.NearestNeighbor)
}

func medianCut(m image.Image, k int) []Color {
	q := quantize.MedianCutQuantizer{}
	var out []Color
	for _, c := range q.Quantize(make(color.Palette, 0, k), m) {
		out = append(out, fromColor(c))
	}
	return out
}

func kMeans(m image.Image, k int) ([]Color, error) {
	b := m.Bounds()
	width, height := b.Dx(), b.Dy()

	// Subsample to keep kmeans tractable
	step := 1
	if width*height > maxSamples {
		step = int(math.Sqrt(float64(width*height)/float64(maxSamples))) + 1
	}

	var dataset clusters.Observations
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r, g, bl, a := m.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r) / 65535.0,
				float64(g) / 65535.0,
				float64(bl) / 65535.0,
			})
		}
	}
	if len(dataset) == 0 {
		return nil, errNoColors
	}
	if k > len(dataset) {
		k = len(dataset)
	}

	cc, err := kmeans.New().Partition(dataset, k)
	if err != nil {
		return nil, err
	}

	var out []Color
	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		r, g, bl := col.RGB255()
		out = append(out, Color{r, g, bl})
	}
	return out, nil
}

func dominant(m image.Image, k int) []Color {
	var out []Color
	for _, c := range dominantcolor.FindWeight(m, k) {
		out = append(out, fromColor(c.RGBA))
	}
	return out
}

func luminance(c Color) float64 {
	r, g, b := toColorful(c).LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// Extract suggests up to k candidate terrain colours for m, sorted from
// darkest to brightest
func Extract(m image.Image, k int, method Method) ([]Candidate, error) {
	if k <= 0 {
		return nil, errors.New("palette: k must be positive")
	}

	thumb := Thumbnail(m)

	var (
		colors []Color
		err    error
	)
	switch method {
	case MethodKMeans:
		colors, err = kMeans(thumb, k)
	case MethodDominant:
		colors = dominant(thumb, k)
	default:
		colors = medianCut(thumb, k)
	}
	if err != nil {
		return nil, err
	}
	if len(colors) == 0 {
		return nil, errNoColors
	}

	candidates := make([]Candidate, len(colors))
	for i, c := range colors {
		candidates[i].Color = c
	}

	// Attribute every thumbnail pixel to its closest candidate
	b := thumb.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px := fromColor(thumb.At(x, y))
			best, bestDist := 0, math.MaxFloat64
			for i, c := range candidates {
				if d := c.Color.Distance(px); d < bestDist {
					best, bestDist = i, d
				}
			}
			candidates[best].Count++
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return luminance(candidates[i].Color) < luminance(candidates[j].Color)
	})

	return candidates, nil
}
