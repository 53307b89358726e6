/*
Package image implements the terrain data texture encoder and decoder along
with the debug overlay used to review a classification.

A data texture is an 8-bit greyscale PNG with one pixel per grid cell where
the grey value is the terrain id. The overlay is an RGBA image of the same
size showing the sampled map colours tinted by terrain.
*/
package image

import "image/color"

// DefaultColors returns the overlay tints used when none are configured:
// sand is yellow, snow is cyan and water is mostly solid blue
func DefaultColors() map[uint8]color.NRGBA {
	return map[uint8]color.NRGBA{
		1: {255, 255, 0, 100},
		2: {0, 255, 255, 100},
		3: {0, 0, 255, 180},
	}
}
