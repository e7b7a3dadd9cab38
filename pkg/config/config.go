// Package config provides configuration management for the pixelrefine CLI.
//
// Configuration is loaded from an optional JSON file at
// ~/.config/pixelrefine/config.json; a missing file is not an error, since
// every field has a usable default profile. Explicit CLI flags always
// override the loaded config.
//
// Example config file:
//
//	{
//	  "log_level": "info",
//	  "log_file": "",
//	  "enable_timing": false,
//	  "defaults": {
//	    "color_count": 32,
//	    "dither_strength": 0,
//	    "reduce_color_mode": "none"
//	  }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultProfile mirrors the subset of refiner.Options a caller typically
// wants to override from a config file, expressed with JSON-friendly
// scalar types rather than importing pkg/refiner directly (config stays a
// leaf package).
type DefaultProfile struct {
	DetectionQuantStep  int     `json:"detection_quant_step"`
	SampleWindow        int     `json:"sample_window"`
	BackgroundTolerance int     `json:"background_tolerance"`
	TrimAlphaThreshold  int     `json:"trim_alpha_threshold"`
	ColorCount          int     `json:"color_count"`
	DitherStrength      float64 `json:"dither_strength"`
	ReduceColorMode     string  `json:"reduce_color_mode"`
	DitherMode          string  `json:"dither_mode"`
	BgExtractionMethod  string  `json:"bg_extraction_method"`
}

// Config holds the pixelrefine CLI configuration.
type Config struct {
	// LogLevel is the logging verbosity level.
	// Valid values: "debug", "info", "warn", "error". Defaults to "info".
	LogLevel string `json:"log_level"`

	// LogFile is read from the config file, but the CLI does not open it:
	// logs always go to the console sink.
	LogFile string `json:"log_file"`

	// EnableTiming makes the CLI log a per-run request ID and the duration
	// of the refiner run.
	EnableTiming bool `json:"enable_timing"`

	// Defaults seeds refiner.Options for runs that don't override a field
	// via flag.
	Defaults DefaultProfile `json:"defaults"`
}

// DefaultLogLevel is applied when the config file omits log_level.
const DefaultLogLevel = "info"

// DefaultDefaults is the baked-in option profile used when the config
// file is absent or omits the defaults block, matching refiner's own
// documented option defaults.
func DefaultDefaults() DefaultProfile {
	return DefaultProfile{
		DetectionQuantStep:  64,
		SampleWindow:        3,
		BackgroundTolerance: 64,
		TrimAlphaThreshold:  16,
		ColorCount:          32,
		DitherStrength:      0,
		ReduceColorMode:     "none",
		DitherMode:          "none",
		BgExtractionMethod:  "top-left",
	}
}

// configJSON is a temporary struct for unmarshaling the raw config file.
// It's kept distinct from Config/DefaultProfile so a field the file omits
// reads back as Go's zero value, which loadFromFile treats as "not
// present" and leaves untouched rather than stomping the caller-seeded
// default with it.
type configJSON struct {
	LogLevel     string         `json:"log_level"`
	LogFile      string         `json:"log_file"`
	EnableTiming bool           `json:"enable_timing"`
	Defaults     DefaultProfile `json:"defaults"`
}

// Load loads configuration from the default config file location. A
// missing file is not an error — it returns a Config populated entirely
// from defaults. A present-but-malformed file is an error.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel: DefaultLogLevel,
		Defaults: DefaultDefaults(),
	}

	if err := cfg.loadFromFile(); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFromFile reads the config file at getConfigFilePath and overlays
// every field it explicitly sets onto c, leaving fields it omits at
// whatever value the caller (Load) seeded beforehand.
func (c *Config) loadFromFile() error {
	path := getConfigFilePath()

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var cj configJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if cj.LogLevel != "" {
		c.LogLevel = cj.LogLevel
	}
	c.LogFile = cj.LogFile
	c.EnableTiming = cj.EnableTiming
	overlayDefaultProfile(&c.Defaults, cj.Defaults)
	return nil
}

// overlayDefaultProfile copies each field of override onto base that
// isn't its zero value, leaving base's existing value (typically a
// DefaultDefaults() field) in place for anything the file omitted.
func overlayDefaultProfile(base *DefaultProfile, override DefaultProfile) {
	if override.DetectionQuantStep != 0 {
		base.DetectionQuantStep = override.DetectionQuantStep
	}
	if override.SampleWindow != 0 {
		base.SampleWindow = override.SampleWindow
	}
	if override.BackgroundTolerance != 0 {
		base.BackgroundTolerance = override.BackgroundTolerance
	}
	if override.TrimAlphaThreshold != 0 {
		base.TrimAlphaThreshold = override.TrimAlphaThreshold
	}
	if override.ColorCount != 0 {
		base.ColorCount = override.ColorCount
	}
	if override.DitherStrength != 0 {
		base.DitherStrength = override.DitherStrength
	}
	if override.ReduceColorMode != "" {
		base.ReduceColorMode = override.ReduceColorMode
	}
	if override.DitherMode != "" {
		base.DitherMode = override.DitherMode
	}
	if override.BgExtractionMethod != "" {
		base.BgExtractionMethod = override.BgExtractionMethod
	}
}

// setDefaults fills in any field still at its zero value once
// loadFromFile has run. Load already seeds cfg with defaults before
// calling loadFromFile, so in practice this only guards the case where a
// config file is present but explicitly sets log_level to "" — kept as
// its own step, after loadFromFile and before Validate, matching the
// reference config package's shape.
func (c *Config) setDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate checks that the configuration's scalar fields are in range.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.LogLevel)
	}
	if c.Defaults.ColorCount != 0 && (c.Defaults.ColorCount < 2 || c.Defaults.ColorCount > 256) {
		return fmt.Errorf("defaults.color_count must be in [2,256], got %d", c.Defaults.ColorCount)
	}
	if c.Defaults.DitherStrength < 0 || c.Defaults.DitherStrength > 100 {
		return fmt.Errorf("defaults.dither_strength must be in [0,100], got %v", c.Defaults.DitherStrength)
	}
	return nil
}

// getConfigFilePath is a function variable that returns the default config
// file path. Can be overridden in tests.
var getConfigFilePath = func() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "pixelrefine", "config.json")
}
