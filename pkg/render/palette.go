// Package render draws hulls for people: distinct colours per tree and
// planar snapshots of hulls over their points.
package render

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Colours used when a reconstruction is split into compartments.
var (
	AxonColor     = mustHex("#00ffff") // cyan
	DendriteColor = mustHex("#ffa500") // orange

	// Planar hulls are outlined in a darker tone than their points.
	AxonHull2DColor     = mustHex("#ff0000") // red
	DendriteHull2DColor = mustHex("#006400") // darkgreen
	AxonTree2DColor     = mustHex("#0000ff") // blue
	DendriteTree2DColor = mustHex("#ff00ff") // magenta
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseColor accepts "#rrggbb" or "#rgb".
func ParseColor(s string) (colorful.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("parse colour %q: %w", s, err)
	}
	return c, nil
}

// Palette returns n colours with evenly spaced hues. The result depends
// only on n, so repeated runs colour trees identically.
func Palette(n int) []colorful.Color {
	if n <= 0 {
		return nil
	}
	colors := make([]colorful.Color, n)
	for i := range n {
		hue := 360 * float64(i) / float64(n)
		colors[i] = colorful.Hsl(hue, 0.7, 0.5).Clamped()
	}
	return colors
}

// Darken returns c with its lightness reduced by f in [0, 1].
func Darken(c colorful.Color, f float64) colorful.Color {
	h, s, l := c.Hsl()
	return colorful.Hsl(h, s, l*(1-f)).Clamped()
}
