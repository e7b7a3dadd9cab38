// Package testutil provides testing utilities for the pixelrefine module.
package testutil

import (
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"testing"

	"github.com/willibrandon/pixelrefine/pkg/refiner"
)

// TempSpriteDir returns a temporary directory for sprite files.
func TempSpriteDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

// TempSpritePath returns a path for a temporary sprite file.
func TempSpritePath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

// DecodeImage decodes an image from a reader and returns the image and format.
func DecodeImage(r io.Reader) (image.Image, string, error) {
	return image.Decode(r)
}

// PixelData represents a pixel with coordinates and color for testing.
type PixelData struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Color string `json:"color"`
}

// ParsePixelData parses JSON pixel data.
func ParsePixelData(jsonData string) ([]PixelData, error) {
	var pixels []PixelData
	if err := json.Unmarshal([]byte(jsonData), &pixels); err != nil {
		return nil, fmt.Errorf("failed to parse pixel data: %w", err)
	}
	return pixels, nil
}

// FormatPixelPos formats a pixel position as a string for use as a map key.
func FormatPixelPos(x, y int) string {
	return fmt.Sprintf("%d,%d", x, y)
}

// Checkerboard builds a w*h bitmap of cellSize-px checker tiles alternating
// between a and b, fully opaque. Useful for grid-detection fixtures with a
// known, exact cell size.
func Checkerboard(w, h, cellSize int, a, b [3]uint8) refiner.Bitmap {
	bmp := refiner.NewBitmap(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tile := (x/cellSize + y/cellSize) % 2
			c := a
			if tile == 1 {
				c = b
			}
			bmp.Set(x, y, c[0], c[1], c[2], 255)
		}
	}
	return bmp
}

// Stripes builds a w*h bitmap of vertical stripes of width cellSize,
// cycling through colors, fully opaque.
func Stripes(w, h, cellSize int, colors [][3]uint8) refiner.Bitmap {
	bmp := refiner.NewBitmap(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := colors[(x/cellSize)%len(colors)]
			bmp.Set(x, y, c[0], c[1], c[2], 255)
		}
	}
	return bmp
}

// floorDiv returns floor(a/b) for b>0, unlike Go's native integer division
// which truncates toward zero.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

// floorMod returns a non-negative remainder for b>0.
func floorMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// OffsetStripes is Stripes shifted right by offset pixels before tiling,
// for grid-detector fixtures exercising a nonzero offsetX.
func OffsetStripes(w, h, cellSize, offset int, colors [][3]uint8) refiner.Bitmap {
	bmp := refiner.NewBitmap(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tile := floorDiv(x-offset, cellSize)
			c := colors[floorMod(tile, len(colors))]
			bmp.Set(x, y, c[0], c[1], c[2], 255)
		}
	}
	return bmp
}

// OffsetCheckerboard is Checkerboard shifted by offset pixels on both axes
// before tiling, for grid-detector fixtures exercising a nonzero offset on
// both cellW and cellH simultaneously.
func OffsetCheckerboard(w, h, cellSize, offset int, a, b [3]uint8) refiner.Bitmap {
	bmp := refiner.NewBitmap(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tileX := floorDiv(x-offset, cellSize)
			tileY := floorDiv(y-offset, cellSize)
			c := a
			if floorMod(tileX+tileY, 2) == 1 {
				c = b
			}
			bmp.Set(x, y, c[0], c[1], c[2], 255)
		}
	}
	return bmp
}

// SolidRect paints a w*h transparent bitmap with a single opaque rectangle
// of the given color, for bbox/trim fixtures.
func SolidRect(w, h, rx, ry, rw, rh int, color [3]uint8) refiner.Bitmap {
	bmp := refiner.NewBitmap(w, h)
	for y := ry; y < ry+rh && y < h; y++ {
		for x := rx; x < rx+rw && x < w; x++ {
			bmp.Set(x, y, color[0], color[1], color[2], 255)
		}
	}
	return bmp
}

// RingWithHole paints an opaque square ring (donut) leaving a hole in the
// middle either transparent or filled with holeColor, for
// inner-background-removal fixtures.
func RingWithHole(size, thickness int, ringColor, holeColor [3]uint8, holeOpaque bool) refiner.Bitmap {
	bmp := refiner.NewBitmap(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			onRing := x < thickness || x >= size-thickness || y < thickness || y >= size-thickness
			if onRing {
				bmp.Set(x, y, ringColor[0], ringColor[1], ringColor[2], 255)
			} else if holeOpaque {
				bmp.Set(x, y, holeColor[0], holeColor[1], holeColor[2], 255)
			}
		}
	}
	return bmp
}

// ScatterNoise sets n single pixels to color at positions derived
// deterministically from a simple linear congruential sequence seeded by
// seed, for floating-component-filter fixtures. Positions landing inside
// [ex,ex+ew)x[ey,ey+eh) (the main content region) are skipped so the noise
// stays isolated from the content.
func ScatterNoise(bmp refiner.Bitmap, n int, color [3]uint8, seed int, ex, ey, ew, eh int) refiner.Bitmap {
	out := bmp.Clone()
	s := uint32(seed)
	next := func() uint32 {
		s = s*1664525 + 1013904223
		return s
	}
	placed := 0
	for attempts := 0; attempts < n*20 && placed < n; attempts++ {
		x := int(next() % uint32(out.W))
		y := int(next() % uint32(out.H))
		if x >= ex && x < ex+ew && y >= ey && y < ey+eh {
			continue
		}
		out.Set(x, y, color[0], color[1], color[2], 255)
		placed++
	}
	return out
}
