package backend

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// paletteColor picks a color for a series that did not name one. Hues step
// by the golden ratio so neighbouring series stay far apart.
func paletteColor(i int) color.NRGBA {
	hue := math.Mod(float64(i+1)*math.Phi, 1) * 360
	r, g, b := colorful.Hcl(hue, .55, .55).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}
