package photosheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-photosheet/internal/layout"
	"github.com/alnah/go-photosheet/internal/pipeline"
)

// Geometry and image types shared with the layout and resize stages.
type (
	Size   = layout.Size
	Rect   = layout.Rect
	Cursor = layout.Cursor
	Grid   = layout.Grid
	Image  = pipeline.Image
	Batch  = pipeline.Batch
)

// Defaults applied by DefaultInput and the CLI.
const (
	DefaultMargin  = 10.0
	DefaultTimeout = 5 * time.Minute
)

// Preset is a named size in points.
type Preset struct {
	Name string
	Size Size
}

// Paper sizes in points.
var paperPresets = []Preset{
	{Name: "A3", Size: Size{Width: 841.89, Height: 1190.55}},
	{Name: "A4", Size: Size{Width: 595.28, Height: 841.89}},
	{Name: "A5", Size: Size{Width: 419.53, Height: 595.28}},
	{Name: "B5", Size: Size{Width: 498.9, Height: 708.66}},
	{Name: "EXECUTIVE", Size: Size{Width: 521.86, Height: 756.0}},
	{Name: "FOLIO", Size: Size{Width: 612.0, Height: 936.0}},
	{Name: "LEGAL", Size: Size{Width: 612.0, Height: 1008.0}},
	{Name: "LETTER", Size: Size{Width: 612.0, Height: 792.0}},
	{Name: "TABLOID", Size: Size{Width: 792.0, Height: 1224.0}},
}

// Photo print sizes in points.
var cellPresets = []Preset{
	{Name: "2x3", Size: Size{Width: 61, Height: 79}},
	{Name: "3x4", Size: Size{Width: 79, Height: 108}},
	{Name: "4x6", Size: Size{Width: 108, Height: 158}},
}

// PaperPresets returns the paper size table in display order.
func PaperPresets() []Preset {
	return append([]Preset(nil), paperPresets...)
}

// CellPresets returns the cell size table in display order.
func CellPresets() []Preset {
	return append([]Preset(nil), cellPresets...)
}

// LookupPaper resolves a paper preset name, case-insensitively.
func LookupPaper(name string) (Size, error) {
	return lookup(paperPresets, "paper", name)
}

// LookupCell resolves a cell preset name, case-insensitively.
func LookupCell(name string) (Size, error) {
	return lookup(cellPresets, "cell", name)
}

func lookup(table []Preset, kind, name string) (Size, error) {
	for _, p := range table {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p.Size, nil
		}
	}
	return Size{}, fmt.Errorf("%w: %s %q", ErrUnknownPreset, kind, name)
}

// SizeSpec selects a size either by preset name or by explicit dimensions.
// The zero value selects nothing.
type SizeSpec struct {
	Preset string
	Custom Size
}

// PresetSize selects a named preset.
func PresetSize(name string) SizeSpec {
	return SizeSpec{Preset: name}
}

// CustomSize selects explicit dimensions in points.
func CustomSize(width, height float64) SizeSpec {
	return SizeSpec{Custom: Size{Width: width, Height: height}}
}

// IsZero reports whether no size was selected.
func (s SizeSpec) IsZero() bool {
	return s.Preset == "" && s.Custom == (Size{})
}

// String returns the preset name or WIDTH,HEIGHT.
func (s SizeSpec) String() string {
	if s.Preset != "" {
		return s.Preset
	}
	return strconv.FormatFloat(s.Custom.Width, 'f', -1, 64) + "," +
		strconv.FormatFloat(s.Custom.Height, 'f', -1, 64)
}

// ParseSizeSpec parses "A4" style preset names and "WIDTH,HEIGHT" pairs.
// A pair must contain exactly two positive finite numbers.
func ParseSizeSpec(s string) (SizeSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SizeSpec{}, fmt.Errorf("%w: empty value", ErrInvalidDimensions)
	}
	if !strings.Contains(s, ",") {
		return PresetSize(s), nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return SizeSpec{}, fmt.Errorf("%w: %q (want WIDTH,HEIGHT)", ErrInvalidDimensions, s)
	}

	var dims [2]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || !layout.Positive(v) {
			return SizeSpec{}, fmt.Errorf("%w: %q (want two positive finite numbers)", ErrInvalidDimensions, s)
		}
		dims[i] = v
	}
	return CustomSize(dims[0], dims[1]), nil
}

// resolve turns s into dimensions using the given preset lookup.
func (s SizeSpec) resolve(kind string, lookupFn func(string) (Size, error)) (Size, error) {
	if s.Preset != "" {
		return lookupFn(s.Preset)
	}
	if !s.Custom.Valid() {
		return Size{}, fmt.Errorf("%w: %s size %s", ErrInvalidDimensions, kind, s.Custom)
	}
	return s.Custom, nil
}

// FilterMode decides how the extension list selects files.
type FilterMode string

// Extension filter modes.
const (
	// FilterInclude keeps only files whose extension is listed.
	FilterInclude FilterMode = "include"

	// FilterExclude keeps only files whose extension is NOT listed. Older
	// releases shipped this inverted check by accident; it stays available
	// for reproducing their output.
	FilterExclude FilterMode = "exclude"
)

// DefaultExtensions is the image allow-list.
var DefaultExtensions = []string{"jpg", "jpeg", "png"}

// Validate checks the mode. The empty mode means FilterInclude.
func (m FilterMode) Validate() error {
	switch m {
	case "", FilterInclude, FilterExclude:
		return nil
	}
	return fmt.Errorf("%w: %q (must be include or exclude)", ErrInvalidFilterMode, string(m))
}

// Input describes one sheet generation run.
type Input struct {
	Output     io.Writer     // PDF sink (required)
	SourceDir  string        // Directory holding the images (required)
	Paper      SizeSpec      // Page size (required)
	Cell       SizeSpec      // Cell size every image is scaled to (required)
	Margin     float64       // Gap between cells and from page edges; 0 is valid
	Timeout    time.Duration // 0 = DefaultTimeout
	Extensions []string      // nil = DefaultExtensions
	FilterMode FilterMode    // "" = FilterInclude
}

// DefaultInput returns an Input carrying the documented defaults.
func DefaultInput() Input {
	return Input{
		Paper:      PresetSize("A4"),
		Margin:     DefaultMargin,
		Timeout:    DefaultTimeout,
		Extensions: append([]string(nil), DefaultExtensions...),
		FilterMode: FilterInclude,
	}
}

// plan is a validated Input with every default applied.
type plan struct {
	output    io.Writer
	sourceDir string
	grid      Grid
	timeout   time.Duration
	filter    ExtensionFilter
}

// resolve validates the input and resolves presets. No I/O happens here.
func (in Input) resolve() (*plan, error) {
	if in.Output == nil {
		return nil, ErrNoOutput
	}
	if strings.TrimSpace(in.SourceDir) == "" {
		return nil, ErrNoSource
	}
	if in.Paper.IsZero() {
		return nil, fmt.Errorf("%w: paper size is required", ErrInvalidDimensions)
	}
	if in.Cell.IsZero() {
		return nil, fmt.Errorf("%w: cell size is required", ErrInvalidDimensions)
	}
	if !layout.ValidMargin(in.Margin) {
		return nil, fmt.Errorf("%w: %g (must be a finite number >= 0)", ErrInvalidMargin, in.Margin)
	}
	if in.Timeout < 0 {
		return nil, fmt.Errorf("%w: %s (must be >= 0)", ErrInvalidTimeout, in.Timeout)
	}

	filter := ExtensionFilter{Extensions: in.Extensions, Mode: in.FilterMode}
	if filter.Extensions == nil {
		filter.Extensions = DefaultExtensions
	}
	if filter.Mode == "" {
		filter.Mode = FilterInclude
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	page, err := in.Paper.resolve("paper", LookupPaper)
	if err != nil {
		return nil, err
	}
	cell, err := in.Cell.resolve("cell", LookupCell)
	if err != nil {
		return nil, err
	}

	grid := Grid{Page: page, Cell: cell, Margin: in.Margin}
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	p := &plan{
		output:    in.Output,
		sourceDir: in.SourceDir,
		grid:      grid,
		timeout:   in.Timeout,
		filter:    filter,
	}
	if p.timeout == 0 {
		p.timeout = DefaultTimeout
	}
	return p, nil
}
