package refiner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/pixelrefine/internal/testutil"
)

// TestProcessForcedSizeDropsFloatingNoiseBeforeCrop hand-verifies that, with
// floatingMaxPixels set, an isolated noise pixel is erased before the
// forced-size path computes its opaque bbox, so the crop (and therefore the
// downsample) reflects only the real content block.
func TestProcessForcedSizeDropsFloatingNoiseBeforeCrop(t *testing.T) {
	bmp := NewBitmap(8, 8)
	for y := 2; y <= 5; y++ {
		for x := 2; x <= 5; x++ {
			bmp.Set(x, y, 200, 50, 50, 255)
		}
	}
	bmp.Set(0, 0, 10, 10, 10, 255) // isolated single-pixel noise

	opts := DefaultOptions()
	opts.PreRemoveBackground = false
	opts.PostRemoveBackground = false
	opts.FloatingMaxPixels = 2
	opts.ForcePixelsW = 2
	opts.ForcePixelsH = 2
	opts.SampleWindow = 1

	result, err := Process(bmp, opts)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Grid.CropW)
	assert.Equal(t, 4, result.Grid.CropH)
	require.Equal(t, 2, result.Bitmap.W)
	require.Equal(t, 2, result.Bitmap.H)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			r, g, b, a := result.Bitmap.Get(x, y)
			assert.Equal(t, [4]uint8{200, 50, 50, 255}, [4]uint8{r, g, b, a})
		}
	}
}

// TestProcessGridDisabledRemovesEnclosedInnerBackgroundHole hand-verifies
// the donut-hole scenario: a ring of foreground color encloses a hole that
// happens to match the image's true background color. Ordinary flood-fill
// from the top-left corner can't reach the hole (the ring blocks
// connectivity), so only removeInnerBackground's global color match erases
// it, leaving the trimmed result as a hollow ring.
func TestProcessGridDisabledRemovesEnclosedInnerBackgroundHole(t *testing.T) {
	bg := [3]uint8{240, 240, 240}
	fg := [3]uint8{10, 10, 10}

	bmp := NewBitmap(10, 10)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			bmp.Set(x, y, bg[0], bg[1], bg[2], 255)
		}
	}
	for y := 2; y <= 7; y++ {
		for x := 2; x <= 7; x++ {
			if x == 2 || x == 7 || y == 2 || y == 7 {
				bmp.Set(x, y, fg[0], fg[1], fg[2], 255)
			}
		}
	}

	opts := DefaultOptions()
	opts.PreRemoveBackground = true
	opts.PostRemoveBackground = false
	opts.BackgroundTolerance = 0
	opts.RemoveInnerBackground = true
	opts.EnableGridDetection = false
	opts.TrimToContent = true
	opts.FloatingMaxPixels = 0

	result, err := Process(bmp, opts)
	require.NoError(t, err)

	require.Equal(t, 6, result.Bitmap.W)
	require.Equal(t, 6, result.Bitmap.H)
	assert.Equal(t, 1.0, result.Grid.CellW)
	assert.Equal(t, 1.0, result.Grid.CellH)

	for ly := 0; ly < 6; ly++ {
		for lx := 0; lx < 6; lx++ {
			_, _, _, a := result.Bitmap.Get(lx, ly)
			onRing := lx == 0 || lx == 5 || ly == 0 || ly == 5
			if onRing {
				assert.Equal(t, uint8(255), a, "(%d,%d) ring pixel should stay opaque", lx, ly)
			} else {
				assert.Equal(t, uint8(0), a, "(%d,%d) enclosed hole should be removed", lx, ly)
			}
		}
	}
}

// TestProcessGridDisabledTrimIsExactPixelCrop hand-verifies §8's
// grid-disabled scenario: with detection off, the result is a pure crop to
// the opaque bbox, not a downsample -- every output pixel matches its
// source pixel exactly.
func TestProcessGridDisabledTrimIsExactPixelCrop(t *testing.T) {
	bmp := NewBitmap(6, 6)
	for y := 1; y <= 3; y++ {
		for x := 1; x <= 2; x++ {
			bmp.Set(x, y, uint8(10*x+1), uint8(10*y+2), 7, 255)
		}
	}

	opts := DefaultOptions()
	opts.PreRemoveBackground = false
	opts.PostRemoveBackground = false
	opts.FloatingMaxPixels = 0
	opts.EnableGridDetection = false
	opts.TrimToContent = true

	result, err := Process(bmp, opts)
	require.NoError(t, err)

	require.Equal(t, 2, result.Bitmap.W)
	require.Equal(t, 3, result.Bitmap.H)
	assert.Equal(t, 1.0, result.Grid.CellW)
	assert.Equal(t, 1.0, result.Grid.CellH)

	for ly := 0; ly < 3; ly++ {
		for lx := 0; lx < 2; lx++ {
			wr, wg, wb, wa := bmp.Get(lx+1, ly+1)
			gr, gg, gb, ga := result.Bitmap.Get(lx, ly)
			assert.Equal(t, [4]uint8{wr, wg, wb, wa}, [4]uint8{gr, gg, gb, ga})
		}
	}
}

// TestProcessForcedSizeUnitCellIsIdentity boundary-checks sampleWindow=1
// with forcePixelsW/H equal to the trimmed content's own dimensions
// (cellW=cellH=1 exactly): the result must reproduce the input bitwise.
func TestProcessForcedSizeUnitCellIsIdentity(t *testing.T) {
	bmp := NewBitmap(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			bmp.Set(x, y, uint8(20*x+1), uint8(20*y+2), 9, 255)
		}
	}

	opts := DefaultOptions()
	opts.PreRemoveBackground = false
	opts.PostRemoveBackground = false
	opts.FloatingMaxPixels = 0
	opts.ForcePixelsW = 4
	opts.ForcePixelsH = 4
	opts.SampleWindow = 1

	result, err := Process(bmp, opts)
	require.NoError(t, err)
	assert.Equal(t, bmp.Pix, result.Bitmap.Pix)
}

// TestProcessDetectionQuantStepOneStillDetectsGrid boundary-checks that
// detectionQuantStep=1 (posterize step of 1, i.e. no effective
// posterization) still lets the full detector recover the correct grid --
// the detector keys strictly on posterized-color equality, never
// magnitude, so collapsing the posterize step to a no-op doesn't change
// which pixels are grouped together.
func TestProcessDetectionQuantStepOneStillDetectsGrid(t *testing.T) {
	bmp := testutil.Checkerboard(16, 16, 8, [3]uint8{0, 0, 0}, [3]uint8{255, 255, 255})

	opts := DefaultOptions()
	opts.PreRemoveBackground = false
	opts.PostRemoveBackground = false
	opts.FloatingMaxPixels = 0
	opts.EnableGridDetection = true
	opts.AutoGridFromTrimmed = false
	opts.TrimToContent = false
	opts.DetectionQuantStep = 1
	opts.AutoMaxCellsW = 2
	opts.AutoMaxCellsH = 2

	result, err := Process(bmp, opts)
	require.NoError(t, err)
	assert.Equal(t, 8.0, result.Grid.CellW)
	assert.Equal(t, 8.0, result.Grid.CellH)
}

func TestProcessUniformImageFailsGridDetection(t *testing.T) {
	bmp := testutil.SolidRect(16, 16, 0, 0, 16, 16, [3]uint8{100, 100, 100})

	opts := DefaultOptions()
	opts.PreRemoveBackground = false
	opts.PostRemoveBackground = false
	opts.FloatingMaxPixels = 0
	opts.EnableGridDetection = true
	opts.AutoGridFromTrimmed = false

	_, err := Process(bmp, opts)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindGridDetectionFailed))
}

func TestProcessEmptyAlphaWithForcePixelsFailsContentNotFound(t *testing.T) {
	bmp := NewBitmap(4, 4)
	opts := DefaultOptions()
	opts.ForcePixelsW = 2
	opts.ForcePixelsH = 2

	_, err := Process(bmp, opts)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindContentNotFound))
}
