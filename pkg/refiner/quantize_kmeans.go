package refiner

import "math/rand/v2"

// histEntry is one distinct opaque RGB triple observed in a bitmap, with
// its Oklab coordinates precomputed and its occurrence count as a
// clustering weight.
type histEntry struct {
	rgb   [3]uint8
	lab   Oklab
	count int
}

// QuantizeKMeans reduces bmp to at most maxColors colors via weighted
// K-means over Oklab, and returns the quantized bitmap alongside the
// palette it converged to. Transparent pixels (alpha==0) pass through
// unmodified and never contribute to the histogram or palette.
//
// preRoundStep, when >0, floors each RGB channel to the nearest multiple
// of preRoundStep before histogramming (the SFC reduction modes round to
// multiples of 8 so the resulting palette aligns to a hardware-friendly
// grid).
//
// seed fixes the initial-centroid sampling and empty-cluster reseeding for
// reproducible output; nil draws from process entropy.
func QuantizeKMeans(bmp Bitmap, maxColors, maxIterations int, tolerance float64, seed *int64, preRoundStep int) (Bitmap, Palette, error) {
	if maxColors <= 0 {
		return Bitmap{}, Palette{}, newAxisError(KindInvalidInput, "maxColors", maxColors, "maxColors must be positive")
	}
	if maxIterations <= 0 {
		maxIterations = 20
	}
	if tolerance <= 0 {
		tolerance = 0.001
	}

	hist, order := buildHistogram(bmp, preRoundStep)
	if len(hist) == 0 {
		return bmp.Clone(), Palette{}, nil
	}

	rng := newRNG(seed)

	if len(hist) <= maxColors {
		palette := make([][3]uint8, 0, len(hist))
		for _, k := range order {
			palette = append(palette, k)
		}
		out := applyPalette(bmp, hist, preRoundStep, func(e *histEntry) [3]uint8 { return e.rgb })
		return out, Palette{Colors: palette}, nil
	}

	centroids := initCentroids(order, hist, maxColors, rng)

	assign := make([]int, len(order))
	for iter := 0; iter < maxIterations; iter++ {
		for i, k := range order {
			e := hist[k]
			best := 0
			bestDist := oklabDistSq(e.lab, centroids[0])
			for c := 1; c < len(centroids); c++ {
				d := oklabDistSq(e.lab, centroids[c])
				if d < bestDist {
					bestDist = d
					best = c
				}
			}
			assign[i] = best
		}

		newCentroids := make([]Oklab, len(centroids))
		weights := make([]float64, len(centroids))
		for i, k := range order {
			e := hist[k]
			c := assign[i]
			w := float64(e.count)
			newCentroids[c].L += e.lab.L * w
			newCentroids[c].A += e.lab.A * w
			newCentroids[c].B += e.lab.B * w
			weights[c] += w
		}
		for c := range newCentroids {
			if weights[c] > 0 {
				newCentroids[c].L /= weights[c]
				newCentroids[c].A /= weights[c]
				newCentroids[c].B /= weights[c]
			} else {
				newCentroids[c] = hist[order[rng.IntN(len(order))]].lab
			}
		}

		maxMove := 0.0
		for c := range centroids {
			d := oklabDistSq(centroids[c], newCentroids[c])
			if d > maxMove {
				maxMove = d
			}
		}
		centroids = newCentroids
		if maxMove < tolerance*tolerance {
			break
		}
	}

	palette := make([][3]uint8, len(centroids))
	for i, c := range centroids {
		r, g, b := oklabToSRGB(c)
		palette[i] = [3]uint8{r, g, b}
	}

	labelOf := make(map[[3]uint8]int, len(order))
	for i, k := range order {
		labelOf[k] = assign[i]
	}

	out := applyPalette(bmp, hist, preRoundStep, func(e *histEntry) [3]uint8 {
		return palette[labelOf[e.rgb]]
	})
	return out, Palette{Colors: palette}, nil
}

// buildHistogram groups bmp's opaque pixels by (optionally pre-rounded)
// RGB triple, returning the histogram map and a stable iteration order.
func buildHistogram(bmp Bitmap, preRoundStep int) (map[[3]uint8]*histEntry, [][3]uint8) {
	hist := make(map[[3]uint8]*histEntry)
	var order [][3]uint8
	for i := 0; i+3 < len(bmp.Pix); i += 4 {
		if bmp.Pix[i+3] == 0 {
			continue
		}
		r, g, b := bmp.Pix[i], bmp.Pix[i+1], bmp.Pix[i+2]
		if preRoundStep > 0 {
			r = posterizeChannel(r, preRoundStep)
			g = posterizeChannel(g, preRoundStep)
			b = posterizeChannel(b, preRoundStep)
		}
		k := [3]uint8{r, g, b}
		e, ok := hist[k]
		if !ok {
			e = &histEntry{rgb: k, lab: sRGBToOklab(r, g, b)}
			hist[k] = e
			order = append(order, k)
		}
		e.count++
	}
	return hist, order
}

// applyPalette rewrites bmp's opaque pixels through pick, leaving
// transparent pixels untouched.
func applyPalette(bmp Bitmap, hist map[[3]uint8]*histEntry, preRoundStep int, pick func(*histEntry) [3]uint8) Bitmap {
	out := bmp.Clone()
	for i := 0; i+3 < len(out.Pix); i += 4 {
		if out.Pix[i+3] == 0 {
			continue
		}
		r, g, b := out.Pix[i], out.Pix[i+1], out.Pix[i+2]
		if preRoundStep > 0 {
			r = posterizeChannel(r, preRoundStep)
			g = posterizeChannel(g, preRoundStep)
			b = posterizeChannel(b, preRoundStep)
		}
		e := hist[[3]uint8{r, g, b}]
		rgb := pick(e)
		out.Pix[i], out.Pix[i+1], out.Pix[i+2] = rgb[0], rgb[1], rgb[2]
	}
	return out
}

// initCentroids samples maxColors distinct histogram entries without
// replacement as the initial centroids.
func initCentroids(order [][3]uint8, hist map[[3]uint8]*histEntry, maxColors int, rng *rand.Rand) []Oklab {
	idx := rng.Perm(len(order))
	centroids := make([]Oklab, maxColors)
	for i := 0; i < maxColors; i++ {
		centroids[i] = hist[order[idx[i]]].lab
	}
	return centroids
}

func newRNG(seed *int64) *rand.Rand {
	if seed == nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s := uint64(*seed)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}
