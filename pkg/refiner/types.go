// Package refiner implements the deterministic image-refinement pipeline:
// grid detection, median downsampling, background masking via flood-fill
// and connected-component filtering, content-bounds trimming, Oklab color
// quantization (K-means and fixed-palette snapping), and Floyd-Steinberg
// dithering.
//
// The package is a pure, synchronous library over in-memory RGBA buffers.
// It never decodes or encodes an image file format, never schedules work
// off the calling goroutine, and never retains a buffer across calls — see
// Process for the single entry point.
package refiner

// Pixel is a single 4-byte RGBA sample with position, used by callers that
// want positional pixel data rather than a raw buffer offset.
type Pixel struct {
	X, Y       int
	R, G, B, A uint8
}

// Run is a maximal contiguous sub-sequence of a detector strip sharing an
// identical posterized RGB triple and opaque alpha.
type Run struct {
	Start  int
	Length int
	R, G, B uint8
}

// Segment is a maximal opaque stretch of a strip, covered by an ordered,
// non-overlapping sequence of Runs.
type Segment struct {
	Start int
	Runs  []Run
}

// Grid describes the detected or forced sampling grid applied to an input
// bitmap by the downsampler.
type Grid struct {
	CellW, CellH     float64
	OffsetX, OffsetY float64
	CropX, CropY     int
	CropW, CropH     int
	OutW, OutH       int
	Score            float64
}

// Palette is an ordered list of RGB triples; quantization results reference
// colors by index into a Palette.
type Palette struct {
	Colors [][3]uint8
}

// Result is the output of Process: the refined bitmap, the grid metadata
// and extracted palette used to produce it, and two resized "before" views
// for UI comparison.
type Result struct {
	Bitmap                Bitmap
	Grid                  Grid
	ExtractedPalette      Palette
	CompareBeforeOriginal Bitmap
	CompareBeforeSanitized Bitmap
}

// DebugTap is invoked synchronously by Process at fixed stage names with a
// borrowed view of an intermediate bitmap and a string-keyed metadata map.
// Implementations must not retain the Bitmap past the call — its backing
// buffer may be reused or mutated by later pipeline stages. A panic raised
// inside a DebugTap is recovered and discarded: debug instrumentation is
// never a source of pipeline failure.
type DebugTap func(stage string, bmp Bitmap, meta map[string]any)
