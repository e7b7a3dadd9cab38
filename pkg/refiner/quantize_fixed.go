package refiner

// SnapToPalette rewrites every opaque pixel of bmp to its nearest Oklab
// match in palette, memoized per source RGB triple. Transparent pixels
// pass through unchanged.
//
// Two bias terms nudge dark pixels toward black, compensating for Oklab's
// tendency to favor slightly-lighter candidates near the bottom of the
// lightness range: a candidate that is exact black gets its squared
// distance reduced by ((0.2-L)*1.5)^2 whenever the source pixel's
// lightness L is below 0.2, and every candidate's distance is nudged by
// rgbDistSq*(0.5-L) whenever L is below 0.1 (disambiguating near-black
// hues that Oklab alone treats as equidistant).
func SnapToPalette(bmp Bitmap, palette Palette) Bitmap {
	out := bmp.Clone()
	if len(palette.Colors) == 0 {
		return out
	}

	cache := make(map[[3]uint8][3]uint8)
	for i := 0; i+3 < len(out.Pix); i += 4 {
		if out.Pix[i+3] == 0 {
			continue
		}
		r, g, b := out.Pix[i], out.Pix[i+1], out.Pix[i+2]
		k := [3]uint8{r, g, b}
		match, ok := cache[k]
		if !ok {
			match = nearestPaletteColor(r, g, b, palette)
			cache[k] = match
		}
		out.Pix[i], out.Pix[i+1], out.Pix[i+2] = match[0], match[1], match[2]
	}
	return out
}

func nearestPaletteColor(r, g, b uint8, palette Palette) [3]uint8 {
	lab := sRGBToOklab(r, g, b)
	best := palette.Colors[0]
	bestDist := biasedPaletteDistSq(r, g, b, lab, best)
	for _, c := range palette.Colors[1:] {
		d := biasedPaletteDistSq(r, g, b, lab, c)
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func biasedPaletteDistSq(r, g, b uint8, lab Oklab, candidate [3]uint8) float64 {
	cLab := sRGBToOklab(candidate[0], candidate[1], candidate[2])
	dist := oklabDistSq(lab, cLab)

	if lab.L < 0.2 && candidate[0] == 0 && candidate[1] == 0 && candidate[2] == 0 {
		bias := (0.2 - lab.L) * 1.5
		dist -= bias * bias
	}
	if lab.L < 0.1 {
		dist += rgbDistSq(r, g, b, candidate[0], candidate[1], candidate[2]) * (0.5 - lab.L)
	}
	return dist
}
