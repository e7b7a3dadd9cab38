package refiner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloodFillBasic(t *testing.T) {
	bmp := NewBitmap(5, 5)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			bmp.Set(x, y, 255, 255, 255, 255)
		}
	}
	// A 1x1 foreground island in the middle, distinct from the white field.
	bmp.Set(2, 2, 0, 0, 0, 255)

	FloodFill(bmp, 0, 0, 0, nil)

	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			_, _, _, a := bmp.Get(x, y)
			if x == 2 && y == 2 {
				assert.Equal(t, uint8(255), a, "island pixel must survive the fill")
			} else {
				assert.Equal(t, uint8(0), a, "background pixel (%d,%d) should be erased", x, y)
			}
		}
	}
}

// TestFloodFillIdempotent checks that running FloodFill a second time with
// the same seed and tolerance against the already-filled bitmap leaves every
// alpha value unchanged: already-transparent pixels are never revisited as
// unvisited+opaque.
func TestFloodFillIdempotent(t *testing.T) {
	bmp := NewBitmap(6, 6)
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			bmp.Set(x, y, 200, 200, 200, 255)
		}
	}
	bmp.Set(3, 3, 10, 10, 10, 255)

	FloodFill(bmp, 0, 0, 5, nil)
	after1 := append([]byte(nil), bmp.Pix...)

	FloodFill(bmp, 0, 0, 5, nil)
	after2 := bmp.Pix

	assert.Equal(t, after1, after2)
}

func TestFloodFillToleranceRespectsChannelDiff(t *testing.T) {
	bmp := NewBitmap(3, 1)
	bmp.Set(0, 0, 100, 100, 100, 255)
	bmp.Set(1, 0, 105, 100, 100, 255)
	bmp.Set(2, 0, 200, 100, 100, 255)

	FloodFill(bmp, 0, 0, 5, nil)

	_, _, _, a0 := bmp.Get(0, 0)
	_, _, _, a1 := bmp.Get(1, 0)
	_, _, _, a2 := bmp.Get(2, 0)
	assert.Equal(t, uint8(0), a0)
	assert.Equal(t, uint8(0), a1)
	assert.Equal(t, uint8(255), a2, "pixel outside tolerance must not be filled")
}

func TestFloodFillSharedBitset(t *testing.T) {
	bmp := NewBitmap(4, 1)
	bmp.Set(0, 0, 255, 255, 255, 255)
	bmp.Set(1, 0, 255, 255, 255, 255)
	bmp.Set(2, 0, 0, 0, 0, 255)
	bmp.Set(3, 0, 255, 255, 255, 255)

	visited := NewBitset(4)
	FloodFill(bmp, 0, 0, 0, visited)
	FloodFill(bmp, 3, 0, 0, visited)

	_, _, _, a2 := bmp.Get(2, 0)
	assert.Equal(t, uint8(255), a2, "black island must survive both seeds")
}
