package refiner

import (
	"math"
)

// gridDetectConfig bundles the detector knobs pulled from Options so grid.go
// has no direct dependency on the Options type's full shape.
type gridDetectConfig struct {
	quantStep      int
	strips         int
	trimAlpha      uint8
	autoMaxCells   int
	targetCellsW   int // 0 means "no target"
	targetCellsH   int
}

// colorKey packs a posterized RGB triple for use as a map key.
type colorKey [3]uint8

// detectGrid runs §4.7 of the spec over bmp (not cropped) and returns a
// fully assembled Grid, or a *Error(KindGridDetectionFailed) if either axis
// produced no candidate.
func detectGrid(bmp Bitmap, cfg gridDetectConfig) (Grid, error) {
	posterized := bmp.Posterize(cfg.quantStep)
	bg := backgroundColors(posterized, cfg.trimAlpha)

	cellW, offsetX, scoreX, okX := detectAxisGrid(posterized, bg, cfg, AxisY, bmp.W, bmp.H, cfg.targetCellsW)
	if !okX {
		return Grid{}, newAxisError(KindGridDetectionFailed, "x", nil, "no candidate cell size found along x axis")
	}
	cellH, offsetY, scoreY, okY := detectAxisGrid(posterized, bg, cfg, AxisX, bmp.H, bmp.W, cfg.targetCellsH)
	if !okY {
		return Grid{}, newAxisError(KindGridDetectionFailed, "y", nil, "no candidate cell size found along y axis")
	}

	return assembleGrid(bmp.W, bmp.H, cellW, cellH, offsetX, offsetY, (scoreX+scoreY)/2), nil
}

// backgroundColors collects the dominant posterized RGB triple as the
// background, then folds in further colors only while they are minor shade
// variants (under 12% of total opaque pixels each) rather than a second
// roughly-equal color -- otherwise a 50/50 bicolor pattern (e.g. a
// checkerboard) would have both its colors classified as "background",
// leaving no foreground signal for the strip selector to key on. Collection
// still stops once cumulative coverage reaches 70%, or after 8 colors.
func backgroundColors(posterized Bitmap, trimAlpha uint8) map[colorKey]bool {
	counts := make(map[colorKey]int)
	total := 0
	for y := 0; y < posterized.H; y++ {
		for x := 0; x < posterized.W; x++ {
			r, g, b, a := posterized.Get(x, y)
			if a < trimAlpha {
				continue
			}
			counts[colorKey{r, g, b}]++
			total++
		}
	}
	if total == 0 {
		return map[colorKey]bool{}
	}

	type kc struct {
		k colorKey
		n int
	}
	list := make([]kc, 0, len(counts))
	for k, n := range counts {
		list = append(list, kc{k, n})
	}
	// simple descending selection sort is fine: at most a handful of
	// distinct posterized colors for typical inputs, and we stop at 8.
	bg := make(map[colorKey]bool)
	covered := 0
	for len(bg) < 8 && len(list) > 0 {
		if len(bg) > 0 {
			if float64(covered)/float64(total) >= 0.70 {
				break
			}
		}
		best := 0
		for i := 1; i < len(list); i++ {
			if list[i].n > list[best].n {
				best = i
			}
		}
		if len(bg) > 0 && float64(list[best].n)/float64(total) >= 0.12 {
			break
		}
		bg[list[best].k] = true
		covered += list[best].n
		list[best] = list[len(list)-1]
		list = list[:len(list)-1]
	}
	return bg
}

// detectAxisGrid detects the cell size and offset along one axis.
// extractAxis=AxisY means we scan rows (producing x-direction boundaries,
// i.e. cellW); extractAxis=AxisX means we scan columns (producing cellH).
// axisLen is the length of each strip (the dimension we're solving for);
// stripCount is the number of candidate strip positions (the other
// dimension).
func detectAxisGrid(posterized Bitmap, bg map[colorKey]bool, cfg gridDetectConfig, extractAxis Axis, axisLen, stripCount int, targetCells int) (size, offset, score float64, ok bool) {
	positions := selectDenseStrips(posterized, bg, cfg, extractAxis, axisLen, stripCount)
	if len(positions) == 0 {
		return 0, 0, 0, false
	}

	var allRunLens []int
	var boundaries []int
	occurrence := make(map[int]int)

	for _, pos := range positions {
		strip := posterized.ExtractStrip(extractAxis, float64(pos))
		for _, seg := range extractRuns(strip, cfg.trimAlpha) {
			for _, run := range seg.Runs {
				if run.Length >= 2 {
					allRunLens = append(allRunLens, run.Length)
					occurrence[run.Length]++
				}
				boundaries = append(boundaries, run.Start)
			}
		}
	}

	expectedMax := cfg.autoMaxCells
	expectedMin := 8
	if targetCells > 0 {
		expectedMin = targetCells
		expectedMax = targetCells
	}

	candidates := candidateSizes(allRunLens, axisLen, expectedMin, expectedMax)
	if len(candidates) == 0 {
		return 0, 0, 0, false
	}

	bestSize, bestOffset, bestScore, ok := searchBestSize(candidates, boundaries, occurrence, axisLen, expectedMin, expectedMax, targetCells > 0)
	if !ok {
		return 0, 0, 0, false
	}

	derivedCells := axisLen / bestSize
	if derivedCells > 96 {
		relaxedMax := 64
		relaxed := candidateSizes(allRunLens, axisLen, expectedMin, relaxedMax)
		if s2, o2, sc2, ok2 := searchBestSize(relaxed, boundaries, occurrence, axisLen, expectedMin, relaxedMax, targetCells > 0); ok2 {
			bestSize, bestOffset, bestScore = s2, o2, sc2
		}
	}

	return float64(bestSize), float64(bestOffset), bestScore, true
}

// selectDenseStrips picks up to cfg.strips positions along [0,stripCount)
// with the most non-background opaque pixels, under a minimum separation
// of stripCount/(6*count) to avoid clustering.
func selectDenseStrips(posterized Bitmap, bg map[colorKey]bool, cfg gridDetectConfig, extractAxis Axis, axisLen, stripCount int) []int {
	type scored struct {
		pos   int
		count int
	}
	scores := make([]scored, 0, stripCount)
	for pos := 0; pos < stripCount; pos++ {
		strip := posterized.ExtractStrip(extractAxis, float64(pos))
		n := 0
		for _, px := range strip {
			if px.A < cfg.trimAlpha {
				continue
			}
			if !bg[colorKey{px.R, px.G, px.B}] {
				n++
			}
		}
		scores = append(scores, scored{pos, n})
	}

	numStrips := cfg.strips
	if numStrips <= 0 {
		numStrips = 12
	}
	minSep := float64(stripCount) / (6.0 * float64(numStrips))

	selected := make([]int, 0, numStrips)
	used := make([]bool, len(scores))
	for len(selected) < numStrips {
		best := -1
		for i, s := range scores {
			if used[i] || s.count == 0 {
				continue
			}
			tooClose := false
			for _, p := range selected {
				if math.Abs(float64(s.pos-p)) < minSep {
					tooClose = true
					break
				}
			}
			if tooClose {
				continue
			}
			if best == -1 || s.count > scores[best].count {
				best = i
			}
		}
		if best == -1 {
			break
		}
		selected = append(selected, scores[best].pos)
		used[best] = true
	}
	return selected
}

// extractRuns splits a strip into maximal opaque (alpha>=threshold)
// segments, each covered by runs of equal posterized RGB. Single-pixel
// runs whose left and right neighbor runs share the same color are
// absorbed, together with the following run, into the preceding run
// (noise smoothing).
func extractRuns(strip []Pixel, trimAlpha uint8) []Segment {
	var segments []Segment
	i := 0
	n := len(strip)
	for i < n {
		if strip[i].A < trimAlpha {
			i++
			continue
		}
		segStart := i
		var runs []Run
		for i < n && strip[i].A >= trimAlpha {
			runStart := i
			r, g, b := strip[i].R, strip[i].G, strip[i].B
			for i < n && strip[i].A >= trimAlpha && strip[i].R == r && strip[i].G == g && strip[i].B == b {
				i++
			}
			runs = append(runs, Run{Start: runStart, Length: i - runStart, R: r, G: g, B: b})
		}
		runs = absorbSinglePixelRuns(runs)
		segments = append(segments, Segment{Start: segStart, Runs: runs})
	}
	return segments
}

func absorbSinglePixelRuns(runs []Run) []Run {
	for {
		changed := false
		for i := 1; i < len(runs)-1; i++ {
			if runs[i].Length != 1 {
				continue
			}
			prev, next := runs[i-1], runs[i+1]
			if prev.R == next.R && prev.G == next.G && prev.B == next.B {
				merged := Run{Start: prev.Start, Length: prev.Length + runs[i].Length + next.Length, R: prev.R, G: prev.G, B: prev.B}
				out := make([]Run, 0, len(runs)-1)
				out = append(out, runs[:i-1]...)
				out = append(out, merged)
				out = append(out, runs[i+2:]...)
				runs = out
				changed = true
				break
			}
		}
		if !changed {
			break
		}
	}
	return runs
}

// candidateSizes unions observed run lengths >=2 with round(axisLen/cells)
// for cells in [expectedMin,expectedMax], plus +-1 around every candidate.
func candidateSizes(runLens []int, axisLen, expectedMin, expectedMax int) []int {
	set := make(map[int]bool)
	add := func(s int) {
		if s >= 1 {
			set[s] = true
			set[s-1] = true
			set[s+1] = true
		}
	}
	for _, l := range runLens {
		add(l)
	}
	if expectedMin < 1 {
		expectedMin = 1
	}
	if expectedMax < expectedMin {
		expectedMax = expectedMin
	}
	for cells := expectedMin; cells <= expectedMax; cells++ {
		s := int(math.Round(float64(axisLen) / float64(cells)))
		add(s)
	}
	delete(set, 0)

	out := make([]int, 0, len(set))
	for s := range set {
		if s >= 1 {
			out = append(out, s)
		}
	}
	return out
}

// searchBestSize evaluates every candidate size, picking the best-scoring
// (offset, score) pair per §4.7 step 6, with the step-6 tie-break: within
// 0.35 of the best score, prefer the larger size when no target cell count
// was requested.
func searchBestSize(candidates []int, boundaries []int, occurrence map[int]int, axisLen, expectedMin, expectedMax int, hasTarget bool) (size, offset int, score float64, ok bool) {
	if len(boundaries) == 0 || len(candidates) == 0 {
		return 0, 0, 0, false
	}

	type result struct {
		size, offset int
		score        float64
	}
	var results []result

	for _, s := range candidates {
		if s < 1 {
			continue
		}
		o, sc := bestOffsetForSize(s, boundaries)
		penalty := rangePenalty(axisLen, s, expectedMin, expectedMax)
		bonus := -0.25 * math.Log(1+float64(occurrence[s]))
		total := sc + penalty + bonus
		results = append(results, result{s, o, total})
	}
	if len(results) == 0 {
		return 0, 0, 0, false
	}

	best := 0
	for i := 1; i < len(results); i++ {
		if results[i].score < results[best].score {
			best = i
		}
	}

	if !hasTarget {
		minScore := results[best].score
		for i := range results {
			if i == best {
				continue
			}
			if results[i].score-minScore <= 0.35 && results[i].size > results[best].size {
				best = i
			}
		}
	}

	return results[best].size, results[best].offset, results[best].score, true
}

// bestOffsetForSize finds the offset in [0,s) minimizing the median
// boundary deviation, then returns that median plus 0.35*percentile90 of
// the deviations at that offset.
func bestOffsetForSize(s int, boundaries []int) (offset int, score float64) {
	bestOffset := 0
	bestMedian := math.MaxFloat64
	var bestDevs []float64

	for o := 0; o < s; o++ {
		devs := make([]float64, len(boundaries))
		for i, b := range boundaries {
			m := ((b - o) % s)
			if m < 0 {
				m += s
			}
			d := m
			if s-m < d {
				d = s - m
			}
			devs[i] = float64(d)
		}
		med := Median(append([]float64(nil), devs...))
		if med < bestMedian {
			bestMedian = med
			bestOffset = o
			bestDevs = devs
		}
	}

	p90 := Percentile(append([]float64(nil), bestDevs...), 90)
	return bestOffset, bestMedian + 0.35*p90
}

// rangePenalty pushes the derived cell count back toward [min,max].
func rangePenalty(axisLen, size, min, max int) float64 {
	if size <= 0 {
		return math.Inf(1)
	}
	derived := float64(axisLen) / float64(size)
	const weight = 0.1
	if derived < float64(min) {
		return (float64(min) - derived) * weight
	}
	if derived > float64(max) {
		return (derived - float64(max)) * weight
	}
	return 0
}

// assembleGrid rounds cell sizes to integers >=1, normalizes offsets into
// [0,cell), and derives the crop/output dimensions per §4.7 step 8.
func assembleGrid(w, h int, cellW, cellH, offsetX, offsetY, score float64) Grid {
	cw := maxInt(int(math.Round(cellW)), 1)
	ch := maxInt(int(math.Round(cellH)), 1)

	ox := math.Mod(offsetX, float64(cw))
	if ox < 0 {
		ox += float64(cw)
	}
	oy := math.Mod(offsetY, float64(ch))
	if oy < 0 {
		oy += float64(ch)
	}

	outW := int(float64(w-int(ox)) / float64(cw))
	outH := int(float64(h-int(oy)) / float64(ch))
	if outW < 0 {
		outW = 0
	}
	if outH < 0 {
		outH = 0
	}

	return Grid{
		CellW: float64(cw), CellH: float64(ch),
		OffsetX: ox, OffsetY: oy,
		CropX: int(ox), CropY: int(oy),
		CropW: outW * cw, CropH: outH * ch,
		OutW: outW, OutH: outH,
		Score: score,
	}
}
