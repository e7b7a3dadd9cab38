package refiner

// FilterFloatingComponents 4-connected-BFS-labels every opaque (alpha >=
// threshold) component of mask, then erases (in both mask and bmp, alpha
// set to 0) every component whose pixel count is <= maxPixels — except the
// single largest component overall, which is always preserved regardless
// of size. maxPixels<=0 is a no-op. Returns the number of erased components
// and the total number of erased pixels.
//
// mask and bmp must share dimensions; a mismatch is a defensive
// KindInternalInvariant error, since it indicates a caller bug rather than
// bad input data.
func FilterFloatingComponents(bmp, mask Bitmap, threshold uint8, maxPixels int) (removedComponents, removedPixels int, err error) {
	if bmp.W != mask.W || bmp.H != mask.H {
		return 0, 0, newError(KindInternalInvariant, "working and mask dimensions mismatch in component filter")
	}
	if maxPixels <= 0 {
		return 0, 0, nil
	}

	w, h := mask.W, mask.H
	n := w * h
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	type component struct {
		id    int
		size  int
		start int
	}
	var components []component

	isOpaque := func(i int) bool {
		return mask.Pix[4*i+3] >= threshold
	}

	idx := func(x, y int) int { return y*w + x }

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			start := idx(x, y)
			if labels[start] != -1 || !isOpaque(start) {
				continue
			}
			id := len(components)
			size := 0

			type point struct{ x, y int }
			queue := []point{{x, y}}
			labels[start] = id
			for len(queue) > 0 {
				p := queue[0]
				queue = queue[1:]
				size++
				neighbors := [4]point{
					{p.x - 1, p.y}, {p.x + 1, p.y}, {p.x, p.y - 1}, {p.x, p.y + 1},
				}
				for _, nb := range neighbors {
					if nb.x < 0 || nb.x >= w || nb.y < 0 || nb.y >= h {
						continue
					}
					ni := idx(nb.x, nb.y)
					if labels[ni] != -1 || !isOpaque(ni) {
						continue
					}
					labels[ni] = id
					queue = append(queue, nb)
				}
			}
			components = append(components, component{id: id, size: size, start: start})
		}
	}

	if len(components) == 0 {
		return 0, 0, nil
	}

	largest := 0
	for i, c := range components {
		if c.size > components[largest].size {
			largest = i
		}
	}
	largestID := components[largest].id

	for _, c := range components {
		if c.id == largestID {
			continue
		}
		if c.size > maxPixels {
			continue
		}
		removedComponents++
		removedPixels += c.size
	}

	if removedComponents == 0 {
		return 0, 0, nil
	}

	removeSet := make(map[int]bool, removedComponents)
	for _, c := range components {
		if c.id != largestID && c.size <= maxPixels {
			removeSet[c.id] = true
		}
	}

	for i := 0; i < n; i++ {
		if labels[i] != -1 && removeSet[labels[i]] {
			mask.Pix[4*i+3] = 0
			bmp.Pix[4*i+3] = 0
		}
	}

	return removedComponents, removedPixels, nil
}
