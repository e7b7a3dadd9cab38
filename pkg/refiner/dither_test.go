package refiner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// bucketSnap quantizes each channel independently to {0,100,255} so the
// arithmetic of error accumulation can be verified by hand, without
// involving Oklab.
func bucketSnap(r, g, b uint8) (uint8, uint8, uint8) {
	q := func(v uint8) uint8 {
		switch {
		case v < 50:
			return 0
		case v < 150:
			return 100
		default:
			return 255
		}
	}
	return q(r), q(g), q(b)
}

func grayRow(n int, v uint8) Bitmap {
	bmp := NewBitmap(n, 1)
	for x := 0; x < n; x++ {
		bmp.Set(x, 0, v, v, v, 255)
	}
	return bmp
}

func TestDitherStrengthZeroMatchesPlainSnapPerPixel(t *testing.T) {
	bmp := grayRow(3, 145)
	out := Dither(bmp, bucketSnap, 0)
	for x := 0; x < 3; x++ {
		r, g, b, _ := out.Get(x, 0)
		assert.Equal(t, [3]uint8{100, 100, 100}, [3]uint8{r, g, b})
	}
}

// TestDitherAccumulatesErrorAcrossRow hand-verifies that diffused
// quantization error, not just the original pixel value, drives later
// pixels' snap decisions: a row of identical gray(145) pixels snaps to
// 100 at x=0, crosses into the 255 bucket at x=1 once diffused error
// pushes it over the threshold, then lands back at 100 at x=2 once the
// (now negative) error from x=1 diffuses in.
func TestDitherAccumulatesErrorAcrossRow(t *testing.T) {
	bmp := grayRow(3, 145)
	out := Dither(bmp, bucketSnap, 1.0)

	want := [][3]uint8{{100, 100, 100}, {255, 255, 255}, {100, 100, 100}}
	for x := 0; x < 3; x++ {
		r, g, b, _ := out.Get(x, 0)
		assert.Equal(t, want[x], [3]uint8{r, g, b}, "pixel %d", x)
	}
}

func TestDitherLeavesTransparentPixelsUntouchedAndDropsDiffusionIntoThem(t *testing.T) {
	bmp := NewBitmap(2, 1)
	bmp.Set(0, 0, 145, 145, 145, 255)
	bmp.Set(1, 0, 9, 9, 9, 0)

	out := Dither(bmp, bucketSnap, 1.0)

	r, g, b, a := out.Get(0, 0)
	assert.Equal(t, [4]uint8{100, 100, 100, 255}, [4]uint8{r, g, b, a})

	r, g, b, a = out.Get(1, 0)
	assert.Equal(t, [4]uint8{9, 9, 9, 0}, [4]uint8{r, g, b, a})
}

func TestPaletteSnapperUsesNearestPaletteColor(t *testing.T) {
	snap := PaletteSnapper(Palette{Colors: [][3]uint8{{0, 0, 0}, {255, 255, 255}}})
	r, g, b := snap(255, 255, 255)
	assert.Equal(t, [3]uint8{255, 255, 255}, [3]uint8{r, g, b})
}
