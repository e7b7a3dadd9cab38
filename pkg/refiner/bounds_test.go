package refiner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOpaqueBoundsTightestRect(t *testing.T) {
	bmp := NewBitmap(10, 10)
	bmp.Set(3, 4, 1, 1, 1, 255)
	bmp.Set(6, 7, 1, 1, 1, 255)
	bmp.Set(4, 9, 1, 1, 1, 255)

	rect, ok := FindOpaqueBounds(bmp, 1)
	require.True(t, ok)
	assert.Equal(t, Rect{X: 3, Y: 4, W: 4, H: 6}, rect)
}

func TestFindOpaqueBoundsEmpty(t *testing.T) {
	bmp := NewBitmap(4, 4)
	_, ok := FindOpaqueBounds(bmp, 1)
	assert.False(t, ok)
}

func TestFindOpaqueBoundsThreshold(t *testing.T) {
	bmp := NewBitmap(4, 4)
	bmp.Set(1, 1, 1, 1, 1, 10)
	_, ok := FindOpaqueBounds(bmp, 16)
	assert.False(t, ok, "a pixel below threshold must not count as opaque")
}

func TestCrop(t *testing.T) {
	bmp := NewBitmap(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			bmp.Set(x, y, uint8(x), uint8(y), 0, 255)
		}
	}

	out := Crop(bmp, 1, 1, 2, 2)
	require.Equal(t, 2, out.W)
	require.Equal(t, 2, out.H)
	r, g, _, _ := out.Get(0, 0)
	assert.Equal(t, [2]uint8{1, 1}, [2]uint8{r, g})
	r, g, _, _ = out.Get(1, 1)
	assert.Equal(t, [2]uint8{2, 2}, [2]uint8{r, g})
}

func TestCropClampsOutOfRange(t *testing.T) {
	bmp := NewBitmap(4, 4)
	out := Crop(bmp, 2, 2, 100, 100)
	assert.Equal(t, 2, out.W)
	assert.Equal(t, 2, out.H)
}

func TestCropZeroSize(t *testing.T) {
	bmp := NewBitmap(4, 4)
	out := Crop(bmp, 0, 0, 0, 0)
	assert.Equal(t, 0, out.W)
	assert.Equal(t, 0, out.H)
}
