package refiner

import "github.com/willibrandon/mtlog/core"

// ReduceColorMode selects the quantizer (if any) Process applies after
// downsampling.
type ReduceColorMode string

const (
	ReduceColorModeNone       ReduceColorMode = "none"
	ReduceColorModeAuto       ReduceColorMode = "auto"
	ReduceColorModeMono       ReduceColorMode = "mono"
	ReduceColorModeFixed      ReduceColorMode = "fixed"
	ReduceColorModeGBLegacy   ReduceColorMode = "gb_legacy"
	ReduceColorModeGBPocket   ReduceColorMode = "gb_pocket"
	ReduceColorModeGBLight    ReduceColorMode = "gb_light"
	ReduceColorModePico8      ReduceColorMode = "pico8"
	ReduceColorModeNES        ReduceColorMode = "nes"
	ReduceColorModePC98       ReduceColorMode = "pc98"
	ReduceColorModeMSX        ReduceColorMode = "msx"
	ReduceColorModeC64        ReduceColorMode = "c64"
	ReduceColorModeArne16     ReduceColorMode = "arne16"
	ReduceColorModeSFCSprite  ReduceColorMode = "sfc_sprite"
	ReduceColorModeSFCBg      ReduceColorMode = "sfc_bg"
)

// DitherMode selects the error-diffusion algorithm applied after
// quantization.
type DitherMode string

const (
	DitherModeNone           DitherMode = "none"
	DitherModeFloydSteinberg DitherMode = "floyd-steinberg"
)

// BgExtractionMethod selects the seed pixel (or fixed color) used for
// background flood-fill and inner-background matching.
type BgExtractionMethod string

const (
	BgMethodNone        BgExtractionMethod = "none"
	BgMethodTopLeft     BgExtractionMethod = "top-left"
	BgMethodBottomLeft  BgExtractionMethod = "bottom-left"
	BgMethodTopRight    BgExtractionMethod = "top-right"
	BgMethodBottomRight BgExtractionMethod = "bottom-right"
	BgMethodRGB         BgExtractionMethod = "rgb"
)

// Options configures a single Process invocation. Every field has a
// declared clamp range and default below. A zero-value Options is not
// equivalent to DefaultOptions(): Process clamps out-of-range zeros to the
// nearest bound (e.g. ColorCount=0 becomes 2) and every bool stays false.
// Construct via DefaultOptions and override instead.
type Options struct {
	DetectionQuantStep int // 1..128, default 64
	SampleWindow       int // 1..9, default 3

	BackgroundTolerance int  // 0..255, default 64
	TrimAlphaThreshold  uint8 // 1..255, default 16
	FloatingMaxPixels   int  // 0..1_000_000, default 0

	ForcePixelsW, ForcePixelsH int // 1..1024, 0 means unset

	ColorCount    int     // 2..256, default 32
	DitherStrength float64 // 0..100 (percent), default 0

	PreRemoveBackground    bool
	PostRemoveBackground   bool
	RemoveInnerBackground  bool
	TrimToContent          bool
	AutoGridFromTrimmed    bool
	FastAutoGridFromTrimmed bool
	EnableGridDetection    bool

	ReduceColorMode ReduceColorMode
	DitherMode      DitherMode

	BgExtractionMethod BgExtractionMethod
	BgRGB              [3]uint8
	BgRGBSet           bool

	FixedPalette Palette

	OutlineStyle OutlineStyle
	OutlineColor [3]uint8

	// AutoMaxCellsW/H, when nonzero, pin the grid detector's expected cell
	// count on that axis to exactly this value (both the lower and upper
	// bound) and turn off its prefer-larger-cell tie-break; 0 keeps the
	// default expected range of 8..128 cells.
	AutoMaxCellsW, AutoMaxCellsH int

	// Seed fixes K-means initialization and empty-cluster reseeding for
	// reproducible output; nil draws from process entropy.
	Seed *int64

	// Logger receives structured diagnostics from Process; nil disables
	// logging (logging is ambient instrumentation, never load-bearing).
	Logger core.Logger

	// DebugTap, if set, is invoked at each fixed stage name in §4.13. See
	// DebugTap's doc comment for its panic-recovery contract.
	DebugTap DebugTap
}

// DefaultOptions returns the documented defaults from the options table:
// detection/downsampling enabled, both background passes enabled, content
// trimming and auto-grid-from-trimmed (fast strategy) enabled, no color
// reduction, no dithering, no outline.
func DefaultOptions() Options {
	return Options{
		DetectionQuantStep:      64,
		SampleWindow:            3,
		BackgroundTolerance:     64,
		TrimAlphaThreshold:      16,
		FloatingMaxPixels:       0,
		ColorCount:              32,
		DitherStrength:          0,
		PreRemoveBackground:     true,
		PostRemoveBackground:    true,
		RemoveInnerBackground:   false,
		TrimToContent:           true,
		AutoGridFromTrimmed:     true,
		FastAutoGridFromTrimmed: true,
		EnableGridDetection:     true,
		ReduceColorMode:         ReduceColorModeNone,
		DitherMode:              DitherModeNone,
		BgExtractionMethod:      BgMethodTopLeft,
		OutlineStyle:            OutlineNone,
		OutlineColor:            [3]uint8{255, 255, 255},
	}
}

// normalize clamps every numeric field into its declared range, leaving
// unset optional fields (ForcePixelsW/H, Seed, FixedPalette) untouched.
func (o Options) normalize() Options {
	o.DetectionQuantStep = clampInt(o.DetectionQuantStep, 1, 128)
	o.SampleWindow = clampInt(o.SampleWindow, 1, 9)
	o.BackgroundTolerance = clampInt(o.BackgroundTolerance, 0, 255)
	o.TrimAlphaThreshold = uint8(clampInt(int(o.TrimAlphaThreshold), 1, 255))
	o.FloatingMaxPixels = clampInt(o.FloatingMaxPixels, 0, 1_000_000)
	if o.ForcePixelsW != 0 {
		o.ForcePixelsW = clampInt(o.ForcePixelsW, 1, 1024)
	}
	if o.ForcePixelsH != 0 {
		o.ForcePixelsH = clampInt(o.ForcePixelsH, 1, 1024)
	}
	o.ColorCount = clampInt(o.ColorCount, 2, 256)
	if o.DitherStrength < 0 {
		o.DitherStrength = 0
	}
	if o.DitherStrength > 100 {
		o.DitherStrength = 100
	}
	return o
}
