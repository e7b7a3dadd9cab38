package refiner

import "math"

// AutoGridFromTrimmed derives a Grid directly from a content-trimmed
// bitmap's dimensions, without the strip/run detector in grid.go. It
// searches candidate output heights in
// [max(2,floor(H/32)), min(128,floor(H/4))], deriving outW = max(2,
// round(outH*W/H)) capped at 256, and scores each candidate by mean
// reconstruction L1 error over mask's opaque pixels plus a
// 0.0025*outW*outH complexity penalty. Candidates whose derived cell size
// is <=1 on either axis are skipped (AutoGridFromTrimmed produces a
// pixel-art downscale, not a passthrough). mask must share bmp's
// dimensions; a pixel is opaque when its alpha is nonzero.
//
// legacy selects a linear scan over every candidate height; the default
// (fast) strategy instead coarsens the step size and refines around the
// best coarse candidate, trading a small chance of missing the global
// optimum for far fewer reconstruction passes on large images.
func AutoGridFromTrimmed(bmp, mask Bitmap, legacy bool) (Grid, error) {
	if bmp.W <= 0 || bmp.H <= 0 {
		return Grid{}, newError(KindInvalidInput, "bitmap has zero extent")
	}
	if mask.W != bmp.W || mask.H != bmp.H {
		return Grid{}, newError(KindInternalInvariant, "bitmap and mask dimensions mismatch in auto-grid search")
	}

	minOutH := maxInt(2, bmp.H/32)
	maxOutH := minInt(128, maxInt(2, bmp.H/4))
	if maxOutH < minOutH {
		maxOutH = minOutH
	}

	var heights []int
	if legacy {
		for h := minOutH; h <= maxOutH; h++ {
			heights = append(heights, h)
		}
	} else {
		heights = coarseToFineHeights(minOutH, maxOutH)
	}

	best, ok := searchBestAutoGrid(bmp, mask, heights)
	if !ok {
		return Grid{}, newError(KindGridDetectionFailed, "no auto-grid candidate produced cells >1px on both axes")
	}
	return best, nil
}

// coarseToFineHeights samples every 4th height in [minH,maxH], always
// including maxH. The dense scan around the best coarse candidate is done
// afterwards by searchBestAutoGrid.
func coarseToFineHeights(minH, maxH int) []int {
	const coarseStep = 4
	var coarse []int
	for h := minH; h <= maxH; h += coarseStep {
		coarse = append(coarse, h)
	}
	if len(coarse) == 0 || coarse[len(coarse)-1] != maxH {
		coarse = append(coarse, maxH)
	}
	return coarse
}

// searchBestAutoGrid scores every candidate height and, for the fast
// strategy's coarse pass, additionally refines around the winner; callers
// pass the already-expanded height list so both strategies share one
// scoring loop.
func searchBestAutoGrid(bmp, mask Bitmap, heights []int) (Grid, bool) {
	bestScore := math.Inf(1)
	var best Grid
	found := false
	bestH := 0

	for _, h := range heights {
		g, ok := buildCandidateGrid(bmp, h)
		if !ok {
			continue
		}
		score := reconstructionScore(bmp, mask, g)
		g.Score = score
		if score < bestScore {
			bestScore = score
			best = g
			bestH = h
			found = true
		}
	}

	if found && len(heights) > 1 && heights[1]-heights[0] > 1 {
		lo := maxInt(heights[0], bestH-3)
		hi := minInt(bestH+3, heights[len(heights)-1])
		for h := lo; h <= hi; h++ {
			if h == bestH {
				continue
			}
			g, ok := buildCandidateGrid(bmp, h)
			if !ok {
				continue
			}
			score := reconstructionScore(bmp, mask, g)
			g.Score = score
			if score < bestScore {
				bestScore = score
				best = g
				found = true
			}
		}
	}

	return best, found
}

// buildCandidateGrid derives outW from outH preserving aspect ratio, and
// rejects candidates whose cell size is <=1 on either axis.
func buildCandidateGrid(bmp Bitmap, outH int) (Grid, bool) {
	outW := maxInt(2, int(math.Round(float64(outH)*float64(bmp.W)/float64(bmp.H))))
	outW = minInt(outW, 256)

	cellW := float64(bmp.W) / float64(outW)
	cellH := float64(bmp.H) / float64(outH)
	if cellW <= 1 || cellH <= 1 {
		return Grid{}, false
	}

	return Grid{
		CellW: cellW, CellH: cellH,
		OffsetX: 0, OffsetY: 0,
		CropX: 0, CropY: 0,
		CropW: bmp.W, CropH: bmp.H,
		OutW: outW, OutH: outH,
	}, true
}

// reconstructionScore downsamples bmp under g, nearest-upscales the result
// back to g's crop dimensions, and returns the mean per-channel L1
// difference against the original -- restricted to pixels where mask is
// opaque, so background RGB that happens to survive under working's alpha
// doesn't pollute the comparison -- plus a complexity penalty favoring
// fewer output cells. A candidate with no opaque mask pixels in its crop
// scores as complexity alone.
func reconstructionScore(bmp, mask Bitmap, g Grid) float64 {
	down := Downsample(bmp, g, 3)
	var l1 float64
	var opaqueCount int
	for oy := 0; oy < g.OutH; oy++ {
		cellH := int(math.Round(g.CellH))
		if cellH < 1 {
			cellH = 1
		}
		cellW := int(math.Round(g.CellW))
		if cellW < 1 {
			cellW = 1
		}
		for ox := 0; ox < g.OutW; ox++ {
			dr, dg, db, da := down.Get(ox, oy)
			y0 := oy * cellH
			x0 := ox * cellW
			for dy := 0; dy < cellH; dy++ {
				sy := y0 + dy
				if sy >= bmp.H {
					continue
				}
				for dx := 0; dx < cellW; dx++ {
					sx := x0 + dx
					if sx >= bmp.W {
						continue
					}
					if mask.Alpha(sx, sy) == 0 {
						continue
					}
					sr, sg, sb, sa := bmp.Get(sx, sy)
					l1 += math.Abs(float64(dr)-float64(sr)) +
						math.Abs(float64(dg)-float64(sg)) +
						math.Abs(float64(db)-float64(sb)) +
						math.Abs(float64(da)-float64(sa))
					opaqueCount++
				}
			}
		}
	}
	complexity := 0.0025 * float64(g.OutW) * float64(g.OutH)
	if opaqueCount == 0 {
		return complexity
	}
	return l1/float64(opaqueCount) + complexity
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
