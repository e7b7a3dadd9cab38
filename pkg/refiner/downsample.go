package refiner

import "math"

// Downsample produces an outW x outH bitmap by taking the per-channel
// median of a sampleWindow x sampleWindow neighborhood centered on each
// destination cell's source-space center, per grid.
//
// sampleWindow is clamped to [1,9]. Pixel i occupies source-space
// [i,i+1), so the cell center is floored to find the pixel index it
// falls in before the window is placed. Within the window, only pixels
// with alpha>=16 are considered "opaque samples" and contribute to the
// color median; if none qualify, every sampled pixel (including
// transparent ones) is used instead, so a fully transparent cell still
// downsamples deterministically rather than producing black. The output
// alpha is always the median over the full window, regardless of the
// qualifying-filter outcome.
func Downsample(bmp Bitmap, grid Grid, sampleWindow int) Bitmap {
	w := clampInt(sampleWindow, 1, 9)
	out := NewBitmap(grid.OutW, grid.OutH)

	for oy := 0; oy < grid.OutH; oy++ {
		for ox := 0; ox < grid.OutW; ox++ {
			cx := grid.OffsetX + (float64(ox)+0.5)*grid.CellW
			cy := grid.OffsetY + (float64(oy)+0.5)*grid.CellH
			sx := int(math.Floor(cx))
			sy := int(math.Floor(cy))

			r, g, b, a := sampleCellMedian(bmp, sx, sy, w)
			out.Set(ox, oy, r, g, b, a)
		}
	}
	return out
}

// sampleCellMedian gathers the w x w window centered on (cx,cy) (clamped to
// bmp bounds) and returns the per-channel median, preferring pixels with
// alpha>=16 when any exist in the window.
func sampleCellMedian(bmp Bitmap, cx, cy, w int) (r, g, b, a uint8) {
	half := w / 2
	var allR, allG, allB, allA []uint8
	var opR, opG, opB []uint8

	for dy := -half; dy < w-half; dy++ {
		for dx := -half; dx < w-half; dx++ {
			x := clampInt(cx+dx, 0, bmp.W-1)
			y := clampInt(cy+dy, 0, bmp.H-1)
			pr, pg, pb, pa := bmp.Get(x, y)
			allR = append(allR, pr)
			allG = append(allG, pg)
			allB = append(allB, pb)
			allA = append(allA, pa)
			if pa >= 16 {
				opR = append(opR, pr)
				opG = append(opG, pg)
				opB = append(opB, pb)
			}
		}
	}

	a = medianUint8(allA)
	if len(opR) > 0 {
		return medianUint8(opR), medianUint8(opG), medianUint8(opB), a
	}
	return medianUint8(allR), medianUint8(allG), medianUint8(allB), a
}
