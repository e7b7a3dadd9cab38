// Command pixelrefine runs the refiner pipeline over a PNG file and writes
// the refined sprite back out as PNG.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/willibrandon/mtlog"
	"github.com/willibrandon/mtlog/core"
	"github.com/willibrandon/mtlog/sinks"
	"github.com/willibrandon/pixelrefine/pkg/config"
	"github.com/willibrandon/pixelrefine/pkg/refiner"
	ximagedraw "golang.org/x/image/draw"
)

// debugViewMinSide is the minimum edge length a dumped debug-tap PNG is
// upscaled to, since several stages (grid-crop, downsampled) are only a
// few pixels across and unreadable at native size.
const debugViewMinSide = 256

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	var (
		showVersion     = flag.Bool("version", false, "Show version information")
		inPath          = flag.String("in", "", "Input PNG path (required)")
		outPath         = flag.String("out", "", "Output PNG path (required)")
		debugDir        = flag.String("debug-dir", "", "Directory to dump debug-tap snapshots as PNGs")
		reduceColorMode = flag.String("reduce-color-mode", "", "Override reduceColorMode (none/auto/mono/fixed/gb_legacy/gb_pocket/gb_light/pico8/nes/pc98/msx/c64/arne16/sfc_sprite/sfc_bg)")
		colorCount      = flag.Int("color-count", 0, "Override colorCount (2..256)")
		ditherMode      = flag.String("dither-mode", "", "Override ditherMode (none/floyd-steinberg)")
		ditherStrength  = flag.Float64("dither-strength", -1, "Override ditherStrength (0..100)")
		forceW          = flag.Int("force-w", 0, "Force output width in pixels (disables grid auto-detection)")
		forceH          = flag.Int("force-h", 0, "Force output height in pixels (disables grid auto-detection)")
		seed            = flag.Int64("seed", 0, "Seed for K-means initialization (0 = process entropy)")
		debugMode       = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("pixelrefine version %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *debugMode {
		cfg.LogLevel = "debug"
	}

	logger := createLogger(cfg.LogLevel)

	if *inPath == "" || *outPath == "" {
		logger.Error("both -in and -out are required")
		flag.Usage()
		os.Exit(1)
	}

	opts := optionsFromConfig(cfg.Defaults)
	opts.Logger = logger
	if *reduceColorMode != "" {
		opts.ReduceColorMode = refiner.ReduceColorMode(*reduceColorMode)
	}
	if *colorCount != 0 {
		opts.ColorCount = *colorCount
	}
	if *ditherMode != "" {
		opts.DitherMode = refiner.DitherMode(*ditherMode)
	}
	if *ditherStrength >= 0 {
		opts.DitherStrength = *ditherStrength
	}
	if *forceW > 0 {
		opts.ForcePixelsW = *forceW
	}
	if *forceH > 0 {
		opts.ForcePixelsH = *forceH
	}
	if *seed != 0 {
		opts.Seed = seed
	}

	var dumper *debugDumper
	if *debugDir != "" {
		dumper = newDebugDumper(*debugDir, logger)
		opts.DebugTap = dumper.tap
	}

	bitmap, err := decodePNG(*inPath)
	if err != nil {
		logger.Error("failed to decode input {Path}: {Error}", *inPath, err)
		os.Exit(1)
	}

	start := time.Now()
	result, err := refiner.Process(bitmap, opts)
	if cfg.EnableTiming {
		logger.Information("request {RequestID}: refiner run took {Duration}", uuid.New().String(), time.Since(start))
	}
	if err != nil {
		logger.Error("refiner failed: {Error}", err)
		os.Exit(1)
	}

	if err := encodePNG(*outPath, result.Bitmap); err != nil {
		logger.Error("failed to write output {Path}: {Error}", *outPath, err)
		os.Exit(1)
	}

	logger.Information("wrote {Path}: {W}x{H}, {Colors} palette entries", *outPath, result.Bitmap.W, result.Bitmap.H, len(result.ExtractedPalette.Colors))
}

// createLogger creates a configured logger instance.
func createLogger(logLevel string) core.Logger {
	sink := sinks.NewConsoleSink()
	var opts []mtlog.Option
	opts = append(opts, mtlog.WithSink(sink))

	switch logLevel {
	case "debug":
		opts = append(opts, mtlog.WithMinimumLevel(core.DebugLevel))
	case "warn":
		opts = append(opts, mtlog.WithMinimumLevel(core.WarningLevel))
	case "error":
		opts = append(opts, mtlog.WithMinimumLevel(core.ErrorLevel))
	default:
		opts = append(opts, mtlog.WithMinimumLevel(core.InformationLevel))
	}

	return mtlog.New(opts...)
}

// optionsFromConfig builds a refiner.Options seeded from the config's
// default profile, falling back to refiner.DefaultOptions() for any field
// the profile leaves at its zero value.
func optionsFromConfig(profile config.DefaultProfile) refiner.Options {
	opts := refiner.DefaultOptions()
	if profile.DetectionQuantStep != 0 {
		opts.DetectionQuantStep = profile.DetectionQuantStep
	}
	if profile.SampleWindow != 0 {
		opts.SampleWindow = profile.SampleWindow
	}
	if profile.BackgroundTolerance != 0 {
		opts.BackgroundTolerance = profile.BackgroundTolerance
	}
	if profile.TrimAlphaThreshold != 0 {
		opts.TrimAlphaThreshold = uint8(profile.TrimAlphaThreshold)
	}
	if profile.ColorCount != 0 {
		opts.ColorCount = profile.ColorCount
	}
	opts.DitherStrength = profile.DitherStrength
	if profile.ReduceColorMode != "" {
		opts.ReduceColorMode = refiner.ReduceColorMode(profile.ReduceColorMode)
	}
	if profile.DitherMode != "" {
		opts.DitherMode = refiner.DitherMode(profile.DitherMode)
	}
	if profile.BgExtractionMethod != "" {
		opts.BgExtractionMethod = refiner.BgExtractionMethod(profile.BgExtractionMethod)
	}
	return opts
}

func decodePNG(path string) (refiner.Bitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return refiner.Bitmap{}, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return refiner.Bitmap{}, err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)

	bmp := refiner.NewBitmap(w, h)
	copy(bmp.Pix, nrgba.Pix)
	return bmp, nil
}

func encodePNG(path string, bmp refiner.Bitmap) error {
	img := image.NewNRGBA(image.Rect(0, 0, bmp.W, bmp.H))
	copy(img.Pix, bmp.Pix)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}

// debugDumper writes each debug-tap bitmap to <dir>/<stage>.png.
type debugDumper struct {
	dir    string
	logger core.Logger
}

func newDebugDumper(dir string, logger core.Logger) *debugDumper {
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("failed to create debug dir {Dir}: {Error}", dir, err)
	}
	return &debugDumper{dir: dir, logger: logger}
}

func (d *debugDumper) tap(stage string, bmp refiner.Bitmap, meta map[string]any) {
	path := filepath.Join(d.dir, stage+".png")
	view := upscaleForViewing(bmp)
	if err := encodePNG(path, view); err != nil {
		d.logger.Error("failed to write debug snapshot {Path}: {Error}", path, err)
	}
}

// upscaleForViewing nearest-neighbor scales bmp up to debugViewMinSide on
// its shorter side, using the block-aware x/image/draw scaler so pixel-art
// edges stay crisp rather than blurring like a filtered resize would.
func upscaleForViewing(bmp refiner.Bitmap) refiner.Bitmap {
	if bmp.W <= 0 || bmp.H <= 0 {
		return bmp
	}
	shortSide := bmp.W
	if bmp.H < shortSide {
		shortSide = bmp.H
	}
	if shortSide >= debugViewMinSide {
		return bmp
	}
	factor := (debugViewMinSide + shortSide - 1) / shortSide
	if factor < 1 {
		factor = 1
	}

	src := image.NewNRGBA(image.Rect(0, 0, bmp.W, bmp.H))
	copy(src.Pix, bmp.Pix)

	dstRect := image.Rect(0, 0, bmp.W*factor, bmp.H*factor)
	dst := image.NewNRGBA(dstRect)
	ximagedraw.NearestNeighbor.Scale(dst, dstRect, src, src.Bounds(), ximagedraw.Src, nil)

	out := refiner.NewBitmap(dst.Rect.Dx(), dst.Rect.Dy())
	copy(out.Pix, dst.Pix)
	return out
}
