package refiner

import (
	"github.com/google/uuid"
	"github.com/willibrandon/mtlog/core"
)

type point struct{ x, y int }

// Process runs the full refinement pipeline over bitmap per opts,
// selecting the forced-size, grid-disabled, or auto path described by the
// orchestrator, and returns the refined bitmap with its grid metadata and
// extracted palette. It is the package's single entry point: no other
// function in this package mutates bitmap or retains it past the call.
func Process(bitmap Bitmap, opts Options) (Result, error) {
	if err := bitmap.validate(); err != nil {
		return Result{}, err
	}
	opts = opts.normalize()

	runID := uuid.New().String()
	logger := opts.Logger
	if logger != nil {
		logger.Information("refiner run {RunID} started: {W}x{H}", runID, bitmap.W, bitmap.H)
	}

	tap := func(stage string, bmp Bitmap, meta map[string]any) {
		if opts.DebugTap == nil {
			return
		}
		defer func() { recover() }()
		if meta == nil {
			meta = map[string]any{}
		}
		meta["runId"] = runID
		opts.DebugTap(stage, bmp, meta)
	}

	tap("00-input", bitmap, nil)

	working := bitmap.Clone()
	mask := bitmap.Clone()
	if opts.PreRemoveBackground {
		mask = maskPass(mask, opts)
		applyMaskAlpha(working, mask)
	}
	tap("01-working", working, nil)

	if opts.FloatingMaxPixels > 0 {
		w2, m2, err := stripFloating(working, mask, opts)
		if err != nil {
			return Result{}, err
		}
		working, mask = w2, m2
	}
	tap("01b-working-ignore-floating", working, nil)

	var result Result
	var err error

	switch {
	case opts.ForcePixelsW > 0 && opts.ForcePixelsH > 0:
		result, err = forcedSizePath(working, mask, opts, tap)
	case !opts.EnableGridDetection:
		result, err = gridDisabledPath(working, mask, opts, tap)
	default:
		result, err = autoPath(working, mask, opts, tap)
	}
	if err != nil {
		if logger != nil {
			logger.Error("refiner run {RunID} failed: {Error}", runID, err)
		}
		return Result{}, err
	}

	preQuantize := result.Bitmap
	final := result.Bitmap
	palette := result.ExtractedPalette

	if opts.ReduceColorMode != ReduceColorModeNone && opts.ReduceColorMode != "" {
		final, palette, err = quantizeStage(final, opts, logger)
		if err != nil {
			return Result{}, err
		}
	}
	// Dithering performs its own per-pixel snap against palette, so it must
	// see the continuous-tone bitmap from before quantizeStage's full snap
	// -- snapping twice would leave zero quantization error to diffuse.
	final = ditherStage(preQuantize, palette, opts, final)

	if opts.OutlineStyle != OutlineNone {
		final = Outline(final, opts.OutlineStyle, opts.OutlineColor)
	}

	result.Bitmap = final
	result.ExtractedPalette = palette
	result.CompareBeforeOriginal = resizeNearestTo(bitmap, final.W, final.H)
	result.CompareBeforeSanitized = resizeNearestTo(working, final.W, final.H)

	tap("99-result", final, map[string]any{"grid": result.Grid})

	if logger != nil {
		logger.Information("refiner run {RunID} completed: {OutW}x{OutH}", runID, final.W, final.H)
	}
	return result, nil
}

// forcedSizePath implements §4.13's forced-size path.
func forcedSizePath(working, mask Bitmap, opts Options, tap DebugTap) (Result, error) {
	tap("02-pre-downsample-masked", working, nil)

	rect, ok := FindOpaqueBounds(mask, opts.TrimAlphaThreshold)
	if !ok {
		return Result{}, newError(KindContentNotFound, "forced-size path requires opaque content")
	}
	cropped := Crop(working, rect.X, rect.Y, rect.W, rect.H)
	tap("03-pre-downsample-bg-trimmed", cropped, nil)

	cellW := float64(rect.W) / float64(opts.ForcePixelsW)
	cellH := float64(rect.H) / float64(opts.ForcePixelsH)
	grid := Grid{
		CellW: cellW, CellH: cellH,
		OffsetX: 0, OffsetY: 0,
		CropX: rect.X, CropY: rect.Y,
		CropW: rect.W, CropH: rect.H,
		OutW: opts.ForcePixelsW, OutH: opts.ForcePixelsH,
	}
	tap("04-grid-crop", cropped, map[string]any{"grid": grid})

	window := opts.SampleWindow
	if cellW < 1 || cellH < 1 {
		window = 1
	}
	down := Downsample(cropped, grid, window)
	tap("05-downsampled", down, nil)

	if opts.PostRemoveBackground {
		down = maskPass(down, opts)
	}
	tap("06-post-downsample-masked", down, nil)

	return Result{Bitmap: down, Grid: grid}, nil
}

// gridDisabledPath implements §4.13's grid-disabled path: mask, optionally
// strip floating components (already applied by Process), optionally crop
// to the opaque bbox, and report a unit grid.
func gridDisabledPath(working, mask Bitmap, opts Options, tap DebugTap) (Result, error) {
	tap("02-pre-downsample-masked", working, nil)

	out := working
	grid := Grid{CellW: 1, CellH: 1, OutW: working.W, OutH: working.H, CropW: working.W, CropH: working.H}

	if opts.TrimToContent {
		rect, ok := FindOpaqueBounds(mask, opts.TrimAlphaThreshold)
		if !ok {
			return Result{}, newError(KindContentNotFound, "grid-disabled trim requires opaque content")
		}
		out = Crop(working, rect.X, rect.Y, rect.W, rect.H)
		grid.CropX, grid.CropY = rect.X, rect.Y
		grid.CropW, grid.CropH = rect.W, rect.H
		grid.OutW, grid.OutH = rect.W, rect.H
	}
	tap("03-pre-downsample-bg-trimmed", out, nil)
	tap("05-downsampled", out, nil)

	if opts.PostRemoveBackground {
		out = maskPass(out, opts)
	}
	tap("06-post-downsample-masked", out, nil)

	return Result{Bitmap: out, Grid: grid}, nil
}

// autoPath implements §4.13's auto path: auto-grid-from-trimmed applied to
// the full working bitmap when requested, else the full §4.7 detector.
func autoPath(working, mask Bitmap, opts Options, tap DebugTap) (Result, error) {
	var grid Grid
	var err error

	if opts.AutoGridFromTrimmed {
		rect, ok := FindOpaqueBounds(mask, opts.TrimAlphaThreshold)
		if !ok {
			return Result{}, newError(KindContentNotFound, "auto-grid-from-trimmed requires opaque content")
		}
		croppedForSearch := Crop(working, rect.X, rect.Y, rect.W, rect.H)
		croppedMaskForSearch := Crop(mask, rect.X, rect.Y, rect.W, rect.H)
		tap("03-pre-downsample-bg-trimmed", croppedForSearch, nil)

		trimGrid, aerr := AutoGridFromTrimmed(croppedForSearch, croppedMaskForSearch, !opts.FastAutoGridFromTrimmed)
		if aerr != nil {
			return Result{}, aerr
		}
		grid = Grid{
			CellW: trimGrid.CellW, CellH: trimGrid.CellH,
			OffsetX: float64(rect.X), OffsetY: float64(rect.Y),
			CropX: rect.X, CropY: rect.Y,
			CropW: int(trimGrid.CellW) * trimGrid.OutW, CropH: int(trimGrid.CellH) * trimGrid.OutH,
			OutW: trimGrid.OutW, OutH: trimGrid.OutH,
			Score: trimGrid.Score,
		}
	} else {
		cfg := gridDetectConfig{
			quantStep:    opts.DetectionQuantStep,
			strips:       12,
			trimAlpha:    opts.TrimAlphaThreshold,
			autoMaxCells: 128,
			targetCellsW: opts.AutoMaxCellsW,
			targetCellsH: opts.AutoMaxCellsH,
		}
		grid, err = detectGrid(working, cfg)
		if err != nil {
			return Result{}, err
		}
	}
	tap("02-pre-downsample-masked", working, nil)

	windowed := Crop(working, grid.CropX, grid.CropY, grid.CropW, grid.CropH)
	localGrid := grid
	localGrid.OffsetX -= float64(grid.CropX)
	localGrid.OffsetY -= float64(grid.CropY)
	tap("04-grid-crop", windowed, map[string]any{"grid": grid})

	down := Downsample(windowed, localGrid, opts.SampleWindow)
	tap("05-downsampled", down, nil)

	if opts.PostRemoveBackground {
		down = maskPass(down, opts)
	}
	tap("06-post-downsample-masked", down, nil)

	if opts.TrimToContent {
		downMask := down.Clone()
		if opts.PostRemoveBackground {
			downMask = maskPass(downMask, opts)
		}
		rect, ok := FindOpaqueBounds(downMask, opts.TrimAlphaThreshold)
		if ok {
			trimmed := Crop(down, rect.X, rect.Y, rect.W, rect.H)
			grid.OffsetX += float64(rect.X) * grid.CellW
			grid.OffsetY += float64(rect.Y) * grid.CellH
			grid.OutW, grid.OutH = rect.W, rect.H
			grid.CropW, grid.CropH = rect.W, rect.H
			down = trimmed
		}
	}
	tap("07-trimmed", down, nil)

	return Result{Bitmap: down, Grid: grid}, nil
}

// maskPass runs background flood-fill (and, if requested, global
// inner-background matching) against a clone of bmp and returns it; mask
// alpha is read by callers to drive bbox/trim decisions, the RGB stays
// intact for later stages.
func maskPass(bmp Bitmap, opts Options) Bitmap {
	out := bmp.Clone()
	seeds := floodFillSeeds(out, opts)
	if len(seeds) == 0 {
		return out
	}
	visited := NewBitset(out.W * out.H)
	for _, s := range seeds {
		FloodFill(out, s.x, s.y, opts.BackgroundTolerance, visited)
	}
	if opts.RemoveInnerBackground {
		applyInnerBackgroundMatch(out, seeds[0], opts)
	}
	return out
}

// applyMaskAlpha copies mask's alpha channel onto working at every index,
// so a background erased by maskPass (running against a separate mask
// copy) is reflected in the bitmap stages actually operate on.
func applyMaskAlpha(working, mask Bitmap) {
	for i := 3; i < len(working.Pix); i += 4 {
		if mask.Pix[i] == 0 {
			working.Pix[i] = 0
		}
	}
}

func floodFillSeeds(bmp Bitmap, opts Options) []point {
	switch opts.BgExtractionMethod {
	case BgMethodTopLeft:
		return []point{{0, 0}}
	case BgMethodBottomLeft:
		return []point{{0, bmp.H - 1}}
	case BgMethodTopRight:
		return []point{{bmp.W - 1, 0}}
	case BgMethodBottomRight:
		return []point{{bmp.W - 1, bmp.H - 1}}
	case BgMethodRGB:
		if !opts.BgRGBSet {
			return nil
		}
		var seeds []point
		check := func(x, y int) {
			r, g, b, a := bmp.Get(x, y)
			if a == 0 {
				return
			}
			if absDiff(r, opts.BgRGB[0]) <= opts.BackgroundTolerance &&
				absDiff(g, opts.BgRGB[1]) <= opts.BackgroundTolerance &&
				absDiff(b, opts.BgRGB[2]) <= opts.BackgroundTolerance {
				seeds = append(seeds, point{x, y})
			}
		}
		for x := 0; x < bmp.W; x++ {
			check(x, 0)
			check(x, bmp.H-1)
		}
		for y := 0; y < bmp.H; y++ {
			check(0, y)
			check(bmp.W-1, y)
		}
		return seeds
	default:
		return nil
	}
}

// applyInnerBackgroundMatch erases every opaque pixel within tolerance of
// the background color, regardless of flood-fill connectivity, so bg
// regions fully enclosed by content (e.g. a donut hole) are also removed.
func applyInnerBackgroundMatch(bmp Bitmap, seed point, opts Options) {
	r0, g0, b0, _ := bmp.Get(seed.x, seed.y)
	if opts.BgExtractionMethod == BgMethodRGB && opts.BgRGBSet {
		r0, g0, b0 = opts.BgRGB[0], opts.BgRGB[1], opts.BgRGB[2]
	}
	tol := opts.BackgroundTolerance
	for i := 0; i+3 < len(bmp.Pix); i += 4 {
		if bmp.Pix[i+3] == 0 {
			continue
		}
		if absDiff(bmp.Pix[i], r0) <= tol && absDiff(bmp.Pix[i+1], g0) <= tol && absDiff(bmp.Pix[i+2], b0) <= tol {
			bmp.Pix[i+3] = 0
		}
	}
}

func stripFloating(working, mask Bitmap, opts Options) (Bitmap, Bitmap, error) {
	w := working.Clone()
	m := mask.Clone()
	_, _, err := FilterFloatingComponents(w, m, opts.TrimAlphaThreshold, opts.FloatingMaxPixels)
	if err != nil {
		return Bitmap{}, Bitmap{}, err
	}
	return w, m, nil
}

// quantizeStage dispatches opts.ReduceColorMode to a K-means run or a
// fixed-palette snap. An unrecognized mode string falls back to auto
// (K-means targeting ColorCount) per §7's UnknownPalette recovery.
func quantizeStage(bmp Bitmap, opts Options, logger core.Logger) (Bitmap, Palette, error) {
	switch opts.ReduceColorMode {
	case ReduceColorModeAuto:
		return QuantizeKMeans(bmp, opts.ColorCount, 20, 0.001, opts.Seed, 0)
	case ReduceColorModeMono:
		return SnapToPalette(bmp, PaletteMonochrome), PaletteMonochrome, nil
	case ReduceColorModeFixed:
		if len(opts.FixedPalette.Colors) == 0 {
			return bmp, Palette{}, newError(KindInvalidInput, "fixedPalette is required for reduceColorMode=fixed")
		}
		return SnapToPalette(bmp, opts.FixedPalette), opts.FixedPalette, nil
	case ReduceColorModeGBLegacy:
		return SnapToPalette(bmp, PaletteGameBoyLegacy), PaletteGameBoyLegacy, nil
	case ReduceColorModeGBPocket:
		return SnapToPalette(bmp, PaletteGameBoyPocket), PaletteGameBoyPocket, nil
	case ReduceColorModeGBLight:
		return SnapToPalette(bmp, PaletteGameBoyLight), PaletteGameBoyLight, nil
	case ReduceColorModePico8:
		return SnapToPalette(bmp, PalettePico8), PalettePico8, nil
	case ReduceColorModeNES:
		return SnapToPalette(bmp, PaletteNES), PaletteNES, nil
	case ReduceColorModePC98:
		return SnapToPalette(bmp, PalettePC98), PalettePC98, nil
	case ReduceColorModeMSX:
		return SnapToPalette(bmp, PaletteMSX1), PaletteMSX1, nil
	case ReduceColorModeC64:
		return SnapToPalette(bmp, PaletteC64), PaletteC64, nil
	case ReduceColorModeArne16:
		return SnapToPalette(bmp, PaletteArne16), PaletteArne16, nil
	case ReduceColorModeSFCSprite:
		return QuantizeKMeans(bmp, 16, 20, 0.001, opts.Seed, 8)
	case ReduceColorModeSFCBg:
		return QuantizeKMeans(bmp, 256, 20, 0.001, opts.Seed, 8)
	default:
		if logger != nil {
			logger.Error("unknown reduceColorMode {Mode}, falling back to auto", opts.ReduceColorMode)
		}
		return QuantizeKMeans(bmp, opts.ColorCount, 20, 0.001, opts.Seed, 0)
	}
}

// ditherStage runs Floyd-Steinberg over preQuantize (the bitmap as it stood
// before quantizeStage's snap) when dithering is enabled, so the diffused
// error reflects the true quantization error rather than the zero error
// left over from an already-snapped bitmap; otherwise it returns quantized
// unchanged.
func ditherStage(preQuantize Bitmap, palette Palette, opts Options, quantized Bitmap) Bitmap {
	if opts.DitherMode != DitherModeFloydSteinberg || len(palette.Colors) == 0 || opts.DitherStrength <= 0 {
		return quantized
	}
	return Dither(preQuantize, PaletteSnapper(palette), opts.DitherStrength/100.0)
}
