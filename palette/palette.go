/*
Package palette implements the ordered set of terrain colour definitions used
to classify map pixels.

Matching is first-match-wins in declaration order: a pixel is assigned the id
of the first definition whose Euclidean RGB distance to the pixel is within
that definition's tolerance, or 0 if no definition matches. Tolerance windows
may overlap so the order is significant.
*/
package palette

import (
	"errors"
	"fmt"
	"math"
)

const (
	// Default is the id assigned to pixels that match no definition
	Default = 0

	// NoConnective is returned by Connective when no connective terrain is
	// designated
	NoConnective = -1
)

var (
	errNoDefinitions = errors.New("palette: no terrain definitions")
	errReservedID    = errors.New("palette: id 0 is reserved")
	errTolerance     = errors.New("palette: tolerance must not be negative")
)

// Color is an 8-bit RGB triple
type Color struct {
	R, G, B uint8
}

// Distance returns the Euclidean distance between c and o over the 0-255
// channel range
func (c Color) Distance(o Color) float64 {
	dr := float64(c.R) - float64(o.R)
	dg := float64(c.G) - float64(o.G)
	db := float64(c.B) - float64(o.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// Definition describes a single terrain type
type Definition struct {
	Name      string
	ID        uint8
	Color     Color
	Tolerance float64
}

func (d Definition) matches(c Color) bool {
	return d.Color.Distance(c) <= d.Tolerance
}

// Palette is an immutable ordered list of terrain definitions
type Palette struct {
	defs       []Definition
	connective int
}

// New returns a palette matching defs in the order given. If connective is
// not empty it names the definition that receives rescue sampling and
// connectivity repair.
func New(defs []Definition, connective string) (*Palette, error) {
	if len(defs) == 0 {
		return nil, errNoDefinitions
	}

	p := &Palette{
		defs:       make([]Definition, len(defs)),
		connective: NoConnective,
	}
	copy(p.defs, defs)

	seen := make(map[uint8]string, len(defs))
	for i, d := range p.defs {
		if d.ID == Default {
			return nil, fmt.Errorf("%w: %q", errReservedID, d.Name)
		}
		if d.Tolerance < 0 || math.IsNaN(d.Tolerance) {
			return nil, fmt.Errorf("%w: %q", errTolerance, d.Name)
		}
		if other, ok := seen[d.ID]; ok {
			return nil, fmt.Errorf("palette: %q and %q share id %d", other, d.Name, d.ID)
		}
		seen[d.ID] = d.Name

		if connective != "" && d.Name == connective {
			p.connective = i
		}
	}

	if connective != "" && p.connective == NoConnective {
		return nil, fmt.Errorf("palette: connective terrain %q not defined", connective)
	}

	return p, nil
}

// Match returns the id of the first definition within tolerance of c, or
// Default if none match
func (p *Palette) Match(c Color) uint8 {
	for _, d := range p.defs {
		if d.matches(c) {
			return d.ID
		}
	}
	return Default
}

// Connective returns the id of the connective terrain or NoConnective
func (p *Palette) Connective() int {
	if p.connective == NoConnective {
		return NoConnective
	}
	return int(p.defs[p.connective].ID)
}

// IsConnective reports whether c is within tolerance of the connective
// terrain, ignoring any higher priority definitions
func (p *Palette) IsConnective(c Color) bool {
	if p.connective == NoConnective {
		return false
	}
	return p.defs[p.connective].matches(c)
}

// Definitions returns a copy of the definitions in priority order
func (p *Palette) Definitions() []Definition {
	return append([]Definition(nil), p.defs...)
}

// Lookup returns the definition with the given name
func (p *Palette) Lookup(name string) (Definition, bool) {
	for _, d := range p.defs {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}
