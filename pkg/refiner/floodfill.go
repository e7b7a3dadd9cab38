package refiner

// Bitset is a packed W*H bit array of visited pixels for FloodFill, so
// callers can batch several flood seeds without reprocessing the same
// pixels twice. The connected-component filter does not use it; it keeps
// its own per-pixel label slice.
type Bitset struct {
	n    int
	bits []byte
}

// NewBitset allocates a cleared bitset sized for n pixels.
func NewBitset(n int) *Bitset {
	return &Bitset{n: n, bits: make([]byte, (n+7)/8)}
}

// Get reports whether bit i is set.
func (s *Bitset) Get(i int) bool {
	return s.bits[i>>3]&(1<<uint(i&7)) != 0
}

// Set marks bit i.
func (s *Bitset) Set(i int) {
	s.bits[i>>3] |= 1 << uint(i&7)
}

// FloodFill samples the seed pixel's RGB as the target color, then
// iteratively visits 4-neighbors of already-accepted pixels. A neighbor is
// accepted iff it is unvisited, its alpha is non-zero, and its per-channel
// absolute difference from the target is <= tolerance on every channel. On
// acceptance its alpha is set to 0 (RGB preserved). Complexity O(W*H).
//
// If visited is nil, a fresh bitset is allocated; passing one in lets
// multiple seeds share visited-pixel state across calls (amortizing the
// traversal when flood-filling from several background corners).
// FloodFill is idempotent: a second call with the same seed and tolerance,
// against the already-filled bitmap, leaves the alpha field unchanged
// (already-zero-alpha pixels are never revisited as unvisited+opaque).
func FloodFill(bmp Bitmap, x0, y0 int, tolerance int, visited *Bitset) {
	if bmp.W <= 0 || bmp.H <= 0 {
		return
	}
	x0 = clampInt(x0, 0, bmp.W-1)
	y0 = clampInt(y0, 0, bmp.H-1)
	if visited == nil {
		visited = NewBitset(bmp.W * bmp.H)
	}

	tr, tg, tb, ta := bmp.Get(x0, y0)
	if ta == 0 {
		// Seed itself is already transparent; nothing to match against.
		return
	}

	idx := func(x, y int) int { return y*bmp.W + x }

	type point struct{ x, y int }
	stack := make([]point, 0, 1024)
	stack = append(stack, point{x0, y0})

	accept := func(x, y int) bool {
		i := idx(x, y)
		if visited.Get(i) {
			return false
		}
		r, g, b, a := bmp.Get(x, y)
		if a == 0 {
			return false
		}
		dr := absDiff(r, tr)
		dg := absDiff(g, tg)
		db := absDiff(b, tb)
		return dr <= tolerance && dg <= tolerance && db <= tolerance
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		i := idx(p.x, p.y)
		if visited.Get(i) {
			continue
		}
		if !accept(p.x, p.y) {
			continue
		}
		visited.Set(i)
		bmp.SetAlpha(p.x, p.y, 0)

		if p.x > 0 {
			stack = append(stack, point{p.x - 1, p.y})
		}
		if p.x < bmp.W-1 {
			stack = append(stack, point{p.x + 1, p.y})
		}
		if p.y > 0 {
			stack = append(stack, point{p.x, p.y - 1})
		}
		if p.y < bmp.H-1 {
			stack = append(stack, point{p.x, p.y + 1})
		}
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
