package refiner

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Oklab is a perceptually-uniform lightness-chroma color triple used for all
// quantization distance computations in this package.
type Oklab struct {
	L, A, B float64
}

// sRGBToOklab converts 8-bit sRGB channels to Oklab via go-colorful's
// implementation of Björn Ottosson's Oklab transform. For integer RGB
// inputs the round trip through oklabToSRGB returns each channel within
// ±1, matching the property required by spec.md §8.
func sRGBToOklab(r, g, b uint8) Oklab {
	c := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
	l, a, bb := c.OkLab()
	return Oklab{L: l, A: a, B: bb}
}

// oklabToSRGB reverses sRGBToOklab, clamping each resulting channel to
// [0,255] with round-half-up (go-colorful's RGB255 rounds to nearest).
func oklabToSRGB(c Oklab) (uint8, uint8, uint8) {
	col := colorful.OkLab(c.L, c.A, c.B).Clamped()
	r, g, b := col.RGB255()
	return r, g, b
}

// oklabDistSq returns the squared Euclidean distance between two Oklab
// colors. Squared distance avoids a sqrt on every comparison in the
// quantizer's inner loops.
func oklabDistSq(a, b Oklab) float64 {
	dl := a.L - b.L
	da := a.A - b.A
	db := a.B - b.B
	return dl*dl + da*da + db*db
}

// rgbDistSq returns the squared Euclidean distance between two colors in
// normalized (0..1 per channel) RGB space, used by the fixed-palette
// dark-pixel disambiguation bias in quantize_fixed.go.
func rgbDistSq(r1, g1, b1, r2, g2, b2 uint8) float64 {
	dr := (float64(r1) - float64(r2)) / 255.0
	dg := (float64(g1) - float64(g2)) / 255.0
	db := (float64(b1) - float64(b2)) / 255.0
	return dr*dr + dg*dg + db*db
}
