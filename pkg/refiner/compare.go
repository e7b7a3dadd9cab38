package refiner

import (
	"image"
	"image/color"

	"github.com/nfnt/resize"
)

// resizeNearestTo produces a nearest-neighbor resize of bmp to exactly
// targetW x targetH, for the orchestrator's "before" comparison views. A
// zero-size target or source returns an empty bitmap rather than calling
// into resize with degenerate dimensions.
func resizeNearestTo(bmp Bitmap, targetW, targetH int) Bitmap {
	if targetW <= 0 || targetH <= 0 || bmp.W <= 0 || bmp.H <= 0 {
		return Bitmap{}
	}

	src := image.NewNRGBA(image.Rect(0, 0, bmp.W, bmp.H))
	for y := 0; y < bmp.H; y++ {
		for x := 0; x < bmp.W; x++ {
			r, g, b, a := bmp.Get(x, y)
			src.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: a})
		}
	}

	resized := resize.Resize(uint(targetW), uint(targetH), src, resize.NearestNeighbor)

	out := NewBitmap(targetW, targetH)
	bounds := resized.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := resized.At(x, y).RGBA()
			out.Set(x-bounds.Min.X, y-bounds.Min.Y, uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8))
		}
	}
	return out
}
