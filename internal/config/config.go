package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-photosheet/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength      = 4096
	MaxPresetLength    = 20 // "TABLOID", "4x6"
	MaxDimensionLength = 40 // "595.28,841.89"
	MaxExtensionCount  = 32
	MaxExtensionLength = 10
	MaxNameLength      = 20 // engine, filter, mode
)

// Value ranges.
const (
	MaxQuality   = 100
	MaxSharpen   = 10.0
	MaxScale     = 8.0
	MaxBatchSize = 1000
)

// AppDir is the directory searched under the user config directory.
const AppDir = "go-photosheet"

// Config holds the settings of a conversion. Zero values mean "not set":
// the caller falls back to flags, prompts or library defaults.
type Config struct {
	Output string      `yaml:"output,omitempty"`
	Input  InputConfig `yaml:"input"`
	Page   PageConfig  `yaml:"page"`
	Cell   CellConfig  `yaml:"cell"`
	Image  ImageConfig `yaml:"image"`
	Run    RunConfig   `yaml:"run"`
}

// InputConfig selects the source images.
type InputConfig struct {
	Dir        string   `yaml:"dir,omitempty"`
	Extensions []string `yaml:"extensions,omitempty"`
	Filter     string   `yaml:"filter,omitempty"` // "include" or "exclude"
}

// PageConfig defines the paper and the margin around the grid, in points.
type PageConfig struct {
	Paper   string   `yaml:"paper,omitempty"`   // preset name or "width,height"
	Margins *float64 `yaml:"margins,omitempty"` // nil = unset, 0 is valid
}

// CellConfig defines the grid cell.
type CellConfig struct {
	Dimensions string  `yaml:"dimensions,omitempty"` // preset name or "width,height"
	Scale      float64 `yaml:"scale,omitempty"`      // pixels per point
}

// ImageConfig controls resizing and re-encoding.
type ImageConfig struct {
	Quality int      `yaml:"quality,omitempty"` // JPEG quality 1-100
	Sharpen *float64 `yaml:"sharpen,omitempty"` // nil = default, 0 disables
	Filter  string   `yaml:"filter,omitempty"`  // resample filter
}

// RunConfig controls execution.
type RunConfig struct {
	Timeout   string `yaml:"timeout,omitempty"` // milliseconds or Go duration
	Engine    string `yaml:"engine,omitempty"`
	Workers   int    `yaml:"workers,omitempty"`
	BatchSize int    `yaml:"batchSize,omitempty"`
}

// Validate checks lengths and ranges. Preset names, filters and engines are
// resolved later against the library tables.
func (c *Config) Validate() error {
	checks := []struct {
		field string
		value string
		max   int
	}{
		{"output", c.Output, MaxPathLength},
		{"input.dir", c.Input.Dir, MaxPathLength},
		{"input.filter", c.Input.Filter, MaxNameLength},
		{"page.paper", c.Page.Paper, MaxDimensionLength},
		{"cell.dimensions", c.Cell.Dimensions, MaxDimensionLength},
		{"image.filter", c.Image.Filter, MaxNameLength},
		{"run.timeout", c.Run.Timeout, MaxNameLength},
		{"run.engine", c.Run.Engine, MaxNameLength},
	}
	for _, ch := range checks {
		if err := validateFieldLength(ch.field, ch.value, ch.max); err != nil {
			return err
		}
	}

	if len(c.Input.Extensions) > MaxExtensionCount {
		return fmt.Errorf("%w: input.extensions has %d entries (max %d)", ErrInvalidValue, len(c.Input.Extensions), MaxExtensionCount)
	}
	for i, ext := range c.Input.Extensions {
		if err := validateFieldLength(fmt.Sprintf("input.extensions[%d]", i), ext, MaxExtensionLength); err != nil {
			return err
		}
	}

	switch strings.ToLower(c.Input.Filter) {
	case "", "include", "exclude":
	default:
		return fmt.Errorf("%w: input.filter %q (must be include or exclude)", ErrInvalidValue, c.Input.Filter)
	}

	// Negated range checks so NaN fails them too.
	if m := c.Page.Margins; m != nil && (!(*m >= 0) || math.IsInf(*m, 1)) {
		return fmt.Errorf("%w: page.margins must be a finite number >= 0, got %g", ErrInvalidValue, *c.Page.Margins)
	}
	if !(c.Cell.Scale >= 0 && c.Cell.Scale <= MaxScale) {
		return fmt.Errorf("%w: cell.scale must be between 0 and %g, got %g", ErrInvalidValue, MaxScale, c.Cell.Scale)
	}
	if c.Image.Quality < 0 || c.Image.Quality > MaxQuality {
		return fmt.Errorf("%w: image.quality must be between 1 and %d, got %d", ErrInvalidValue, MaxQuality, c.Image.Quality)
	}
	if c.Image.Sharpen != nil && !(*c.Image.Sharpen >= 0 && *c.Image.Sharpen <= MaxSharpen) {
		return fmt.Errorf("%w: image.sharpen must be between 0 and %g, got %g", ErrInvalidValue, MaxSharpen, *c.Image.Sharpen)
	}
	if c.Run.Workers < 0 {
		return fmt.Errorf("%w: run.workers must be >= 0, got %d", ErrInvalidValue, c.Run.Workers)
	}
	if c.Run.BatchSize < 0 || c.Run.BatchSize > MaxBatchSize {
		return fmt.Errorf("%w: run.batchSize must be between 1 and %d, got %d", ErrInvalidValue, MaxBatchSize, c.Run.BatchSize)
	}
	if _, err := ParseTimeout(c.Run.Timeout); err != nil {
		return fmt.Errorf("run.timeout: %w", err)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// ParseTimeout reads a timeout given either as whole milliseconds ("300000")
// or as a Go duration ("5m"). An empty string returns 0.
func ParseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	var d time.Duration
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		d = time.Duration(ms) * time.Millisecond
	} else {
		d, err = time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("%w: timeout %q (use milliseconds or a duration like 90s)", ErrInvalidValue, s)
		}
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: timeout must be >= 0, got %s", ErrInvalidValue, s)
	}
	return d, nil
}

// DefaultConfig returns an empty configuration; nothing overrides flags,
// prompts or library defaults.
func DefaultConfig() *Config {
	return &Config{}
}

// ExampleConfig returns a fully populated configuration, written by
// "photosheet config" as a starting point.
func ExampleConfig() *Config {
	margins := 10.0
	sharpen := 1.0
	return &Config{
		Output: "sheet.pdf",
		Input: InputConfig{
			Dir:        ".",
			Extensions: []string{"jpg", "jpeg", "png"},
			Filter:     "include",
		},
		Page:  PageConfig{Paper: "A4", Margins: &margins},
		Cell:  CellConfig{Dimensions: "3x4", Scale: 1},
		Image: ImageConfig{Quality: 100, Sharpen: &sharpen, Filter: "lanczos"},
		Run:   RunConfig{Timeout: "5m", Engine: "fpdf", Workers: 10, BatchSize: 10},
	}
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yamlutil.Marshal(c)
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator or a YAML extension, it's treated
// as a file path. Otherwise it is searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	if strings.ContainsAny(s, "/\\") {
		return true
	}
	ext := strings.ToLower(filepath.Ext(s))
	return ext == ".yaml" || ext == ".yml"
}

// SearchPaths returns the files tried for a config name, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, AppDir, name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in the current
// directory, then in the user config directory.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
