package refiner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapToPaletteEmptyPaletteNoop(t *testing.T) {
	bmp := NewBitmap(2, 2)
	bmp.Set(0, 0, 10, 20, 30, 255)
	out := SnapToPalette(bmp, Palette{})
	assert.Equal(t, bmp.Pix, out.Pix)
}

func TestSnapToPaletteLeavesTransparentPixelsUntouched(t *testing.T) {
	bmp := NewBitmap(1, 1)
	bmp.Set(0, 0, 10, 20, 30, 0)
	out := SnapToPalette(bmp, Palette{Colors: [][3]uint8{{255, 0, 0}}})
	r, g, b, a := out.Get(0, 0)
	assert.Equal(t, [4]uint8{10, 20, 30, 0}, [4]uint8{r, g, b, a})
}

// TestSnapToPaletteExactColorsMapToThemselves checks the quantified
// invariant that a pixel whose RGB exactly matches a palette entry snaps to
// that entry, for both a bright entry (no dark-pixel bias engages at all)
// and black (the bias terms only ever favor black further, so an exact
// black source still maps to itself).
func TestSnapToPaletteExactColorsMapToThemselves(t *testing.T) {
	palette := Palette{Colors: [][3]uint8{{0, 0, 0}, {255, 255, 255}, {128, 64, 200}}}
	bmp := NewBitmap(3, 1)
	bmp.Set(0, 0, 255, 255, 255, 255)
	bmp.Set(1, 0, 0, 0, 0, 255)
	bmp.Set(2, 0, 128, 64, 200, 255)

	out := SnapToPalette(bmp, palette)
	r, g, b, _ := out.Get(0, 0)
	assert.Equal(t, [3]uint8{255, 255, 255}, [3]uint8{r, g, b})
	r, g, b, _ = out.Get(1, 0)
	assert.Equal(t, [3]uint8{0, 0, 0}, [3]uint8{r, g, b})
	r, g, b, _ = out.Get(2, 0)
	assert.Equal(t, [3]uint8{128, 64, 200}, [3]uint8{r, g, b})
}

func TestSnapToPaletteSameSourceColorMapsConsistently(t *testing.T) {
	palette := Palette{Colors: [][3]uint8{{0, 0, 0}, {90, 110, 130}, {255, 255, 255}}}
	bmp := NewBitmap(2, 1)
	bmp.Set(0, 0, 77, 88, 99, 255)
	bmp.Set(1, 0, 77, 88, 99, 255)

	out := SnapToPalette(bmp, palette)
	r1, g1, b1, _ := out.Get(0, 0)
	r2, g2, b2, _ := out.Get(1, 0)
	assert.Equal(t, [3]uint8{r1, g1, b1}, [3]uint8{r2, g2, b2})
}

func TestNearestPaletteColorSingleCandidateAlwaysWins(t *testing.T) {
	palette := Palette{Colors: [][3]uint8{{12, 34, 56}}}
	got := nearestPaletteColor(200, 5, 5, palette)
	assert.Equal(t, [3]uint8{12, 34, 56}, got)
}
