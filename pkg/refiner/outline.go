package refiner

// OutlineStyle selects the adjacency test Outline uses to decide which
// transparent border pixels become outline pixels.
type OutlineStyle int

const (
	// OutlineNone disables outlining; Outline is a no-op clone.
	OutlineNone OutlineStyle = iota
	// OutlineSharp fills a transparent pixel adjacent (4-connected) to an
	// opaque pixel, producing square corners.
	OutlineSharp
	// OutlineRounded fills a transparent pixel adjacent (8-connected,
	// including diagonals) to an opaque pixel, producing softened corners.
	OutlineRounded
)

// Outline expands bmp by one pixel on every side and fills every
// transparent pixel adjacent to an opaque one with color at full alpha,
// per style. OutlineNone returns an unexpanded clone.
func Outline(bmp Bitmap, style OutlineStyle, color [3]uint8) Bitmap {
	if style == OutlineNone {
		return bmp.Clone()
	}

	out := NewBitmap(bmp.W+2, bmp.H+2)
	for y := 0; y < bmp.H; y++ {
		for x := 0; x < bmp.W; x++ {
			r, g, b, a := bmp.Get(x, y)
			out.Set(x+1, y+1, r, g, b, a)
		}
	}

	neighbors := sharpNeighbors
	if style == OutlineRounded {
		neighbors = roundedNeighbors
	}

	type point struct{ x, y int }
	var toFill []point
	for y := 0; y < out.H; y++ {
		for x := 0; x < out.W; x++ {
			if out.Alpha(x, y) != 0 {
				continue
			}
			for _, d := range neighbors {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || nx >= out.W || ny < 0 || ny >= out.H {
					continue
				}
				if out.Alpha(nx, ny) != 0 {
					toFill = append(toFill, point{x, y})
					break
				}
			}
		}
	}

	for _, p := range toFill {
		out.Set(p.x, p.y, color[0], color[1], color[2], 255)
	}
	return out
}

var sharpNeighbors = [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

var roundedNeighbors = [][2]int{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {1, -1}, {-1, 1}, {1, 1},
}
