package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	photosheet "github.com/alnah/go-photosheet"
	"github.com/alnah/go-photosheet/internal/config"
	"github.com/alnah/go-photosheet/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrCreateOutput = errors.New("failed to create output file")
	ErrTooManyArgs  = errors.New("too many arguments")
)

// Defaults offered by prompts and applied when prompting is off.
const (
	defaultOutput = "file.pdf"
	defaultTarget = "./"
)

// dirPermissions is used for missing output parent directories.
const dirPermissions = 0o750 // rwxr-x---

// runConvert resolves settings from flags, config, environment and prompts,
// then generates one sheet.
func runConvert(ctx context.Context, args []string, flags *convertFlags, env *Environment) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: %s", ErrTooManyArgs, strings.Join(args, " "))
	}

	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	cfg, err := loadConfig(flags.common.config, envCfg.ConfigPath)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, args, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	if env.Interactive && !flags.noInput {
		if err := promptMissing(newPrompter(env.Stdin, env.Stdout), cfg); err != nil {
			return err
		}
	}
	applyDefaults(cfg)

	out := &outputFile{path: cfg.Output}
	in, err := buildInput(cfg, out)
	if err != nil {
		return withHint(err, cfg)
	}

	var progress func(photosheet.Placement)
	if flags.common.verbose {
		progress = pageProgress(env.Stderr)
	}
	conv, err := newConverter(cfg, progress)
	if err != nil {
		return withHint(err, cfg)
	}

	job, err := conv.Start(ctx, in)
	if err != nil {
		return withHint(err, cfg)
	}

	result, err := job.Wait()
	if err != nil {
		out.Remove()
		return withHint(err, cfg)
	}
	if err := out.Close(); err != nil {
		out.Remove()
		return fmt.Errorf("%w: %v", ErrCreateOutput, err)
	}

	printResult(env.Stdout, cfg.Output, result, flags.common)
	return nil
}

// loadConfig loads the config named by the flag, or by PHOTOSHEET_CONFIG.
// With neither, an empty config is returned.
func loadConfig(flagName, envName string) (*config.Config, error) {
	name := flagName
	if name == "" {
		name = envName
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags copies every flag given on the command line into cfg.
// A single positional argument is the image directory unless --target is set.
func mergeFlags(f *convertFlags, args []string, cfg *config.Config) {
	if f.changed("output") {
		cfg.Output = f.output
	}
	if f.changed("target") {
		cfg.Input.Dir = f.target
	} else if len(args) == 1 {
		cfg.Input.Dir = args[0]
	}
	if f.changed("paper") {
		cfg.Page.Paper = f.layout.paper
	}
	if f.changed("dimensions") {
		cfg.Cell.Dimensions = f.layout.dimensions
	}
	if f.changed("margins") {
		m := f.layout.margins
		cfg.Page.Margins = &m
	}
	if f.changed("quality") {
		cfg.Image.Quality = f.image.quality
	}
	if f.changed("sharpen") {
		s := f.image.sharpen
		cfg.Image.Sharpen = &s
	}
	if f.changed("filter") {
		cfg.Image.Filter = f.image.filter
	}
	if f.changed("scale") {
		cfg.Cell.Scale = f.image.scale
	}
	if f.changed("timeout") {
		cfg.Run.Timeout = f.run.timeout
	}
	if f.changed("engine") {
		cfg.Run.Engine = f.run.engine
	}
	if f.changed("workers") {
		cfg.Run.Workers = f.run.workers
	}
	if f.changed("batch-size") {
		cfg.Run.BatchSize = f.run.batchSize
	}
	if f.changed("extensions") {
		cfg.Input.Extensions = f.source.extensions
	}
	if f.changed("exclude-mode") {
		cfg.Input.Filter = string(photosheet.FilterInclude)
		if f.source.excludeMode {
			cfg.Input.Filter = string(photosheet.FilterExclude)
		}
	}
}

// applyDefaults fills what neither flags, config nor prompts provided.
// The cell size has no default.
func applyDefaults(cfg *config.Config) {
	if cfg.Output == "" {
		cfg.Output = defaultOutput
	}
	if cfg.Input.Dir == "" {
		cfg.Input.Dir = defaultTarget
	}
	if cfg.Page.Paper == "" {
		cfg.Page.Paper = photosheet.DefaultInput().Paper.String()
	}
	if cfg.Page.Margins == nil {
		m := photosheet.DefaultMargin
		cfg.Page.Margins = &m
	}
}

// buildInput turns the merged config into a library Input.
func buildInput(cfg *config.Config, out io.Writer) (photosheet.Input, error) {
	in := photosheet.DefaultInput()
	in.Output = out
	in.SourceDir = cfg.Input.Dir
	in.Margin = *cfg.Page.Margins

	if cfg.Cell.Dimensions == "" {
		return in, fmt.Errorf("%w: cell size is required", photosheet.ErrInvalidDimensions)
	}
	cell, err := photosheet.ParseSizeSpec(cfg.Cell.Dimensions)
	if err != nil {
		return in, fmt.Errorf("dimensions: %w", err)
	}
	in.Cell = cell

	paper, err := photosheet.ParseSizeSpec(cfg.Page.Paper)
	if err != nil {
		return in, fmt.Errorf("paper: %w", err)
	}
	in.Paper = paper

	timeout, err := config.ParseTimeout(cfg.Run.Timeout)
	if err != nil {
		return in, err
	}
	if timeout > 0 {
		in.Timeout = timeout
	}

	if len(cfg.Input.Extensions) > 0 {
		in.Extensions = cfg.Input.Extensions
	}
	if cfg.Input.Filter != "" {
		in.FilterMode = photosheet.FilterMode(strings.ToLower(cfg.Input.Filter))
	}
	return in, nil
}

// newConverter builds a converter from the image and run settings.
func newConverter(cfg *config.Config, onPlace func(photosheet.Placement)) (*photosheet.Converter, error) {
	topts := photosheet.DefaultTranscodeOptions()
	if cfg.Image.Quality > 0 {
		topts.Quality = cfg.Image.Quality
	}
	if cfg.Image.Sharpen != nil {
		topts.Sharpen = *cfg.Image.Sharpen
	}
	if cfg.Image.Filter != "" {
		topts.Filter = cfg.Image.Filter
	}
	transcoder, err := photosheet.NewImagingTranscoder(topts)
	if err != nil {
		return nil, err
	}

	opts := []photosheet.Option{photosheet.WithTranscoder(transcoder)}
	if cfg.Run.Engine != "" {
		opts = append(opts, photosheet.WithEngine(cfg.Run.Engine))
	}
	if cfg.Run.Workers > 0 {
		opts = append(opts, photosheet.WithMaxInFlight(cfg.Run.Workers))
	}
	if cfg.Run.BatchSize > 0 {
		opts = append(opts, photosheet.WithBatchSize(cfg.Run.BatchSize))
	}
	if cfg.Cell.Scale > 0 {
		opts = append(opts, photosheet.WithPixelScale(cfg.Cell.Scale))
	}
	if onPlace != nil {
		opts = append(opts, photosheet.WithOnPlace(onPlace))
	}
	return photosheet.NewConverter(opts...)
}

// pageProgress reports each new page as the assembler opens it.
func pageProgress(w io.Writer) func(photosheet.Placement) {
	lastPage := 0
	return func(p photosheet.Placement) {
		if p.Page == lastPage {
			return
		}
		lastPage = p.Page
		fmt.Fprintf(w, "  page %d: from image %d (%s)\n", p.Page, p.Index+1, filepath.Base(p.Path))
	}
}

// printResult prints the summary line, plus grid and timing when verbose.
func printResult(w io.Writer, path string, r *photosheet.Result, common commonFlags) {
	if common.quiet {
		return
	}
	fmt.Fprintf(w, "Created %s (%d %s, %d %s)\n",
		path, r.Images, plural(r.Images, "image", "images"), r.Pages, plural(r.Pages, "page", "pages"))
	if common.verbose {
		cols, rows := r.Grid.Capacity()
		fmt.Fprintf(w, "  grid: %d x %d cells of %gx%g pt per page\n", cols, rows, r.Grid.Cell.Width, r.Grid.Cell.Height)
		fmt.Fprintf(w, "  time: %s\n", r.Duration.Round(time.Millisecond))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// withHint appends an actionable hint for errors users can fix.
func withHint(err error, cfg *config.Config) error {
	var hint string
	switch {
	case errors.Is(err, photosheet.ErrTimeout):
		hint = hints.ForTimeout()
	case errors.Is(err, photosheet.ErrBrowserConnect), errors.Is(err, photosheet.ErrPageCreate):
		hint = hints.ForBrowserConnect()
	case errors.Is(err, photosheet.ErrNoImages):
		exts := cfg.Input.Extensions
		if len(exts) == 0 {
			exts = photosheet.DefaultExtensions
		}
		hint = hints.ForNoImages(exts, strings.EqualFold(cfg.Input.Filter, string(photosheet.FilterExclude)))
	case errors.Is(err, photosheet.ErrCellTooLarge):
		hint = hints.ForCellTooLarge()
	case errors.Is(err, photosheet.ErrUnknownPreset):
		hint = hints.ForUnknownName(presetNames(unknownPresetTable(cfg)))
	case errors.Is(err, photosheet.ErrUnknownEngine):
		hint = hints.ForUnknownName(photosheet.Engines())
	case errors.Is(err, photosheet.ErrUnknownFilter):
		hint = hints.ForUnknownName(photosheet.FilterNames())
	case errors.Is(err, photosheet.ErrInvalidDimensions) && cfg.Cell.Dimensions == "":
		hint = hints.ForMissingCell()
	case errors.Is(err, photosheet.ErrWriteDocument):
		hint = hints.ForOutputDirectory()
	}
	if hint == "" {
		return err
	}
	return fmt.Errorf("%w%s", err, hint)
}

// unknownPresetTable returns the table the unresolvable preset belongs to.
func unknownPresetTable(cfg *config.Config) []photosheet.Preset {
	if spec, err := photosheet.ParseSizeSpec(cfg.Page.Paper); err == nil && spec.Preset != "" {
		if _, err := photosheet.LookupPaper(spec.Preset); err != nil {
			return photosheet.PaperPresets()
		}
	}
	return photosheet.CellPresets()
}

func presetNames(presets []photosheet.Preset) []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}

// outputFile creates the destination on first write. The engines only
// write once the document is finalized, so a run failing earlier leaves no
// file behind. Close may be called from the converter on timeout.
type outputFile struct {
	path string

	mu     sync.Mutex
	f      *os.File
	err    error
	closed bool
}

func (o *outputFile) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return 0, fmt.Errorf("%w: %s: already closed", ErrCreateOutput, o.path)
	}
	if o.f == nil && o.err == nil {
		o.f, o.err = o.create()
	}
	if o.err != nil {
		return 0, o.err
	}
	return o.f.Write(p)
}

func (o *outputFile) create() (*os.File, error) {
	if dir := filepath.Dir(o.path); dir != "." {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCreateOutput, err)
		}
	}
	f, err := os.Create(o.path) // #nosec G304 -- output path is user-provided
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateOutput, err)
	}
	return f, nil
}

// Close closes the file if it was created. Safe to call more than once.
func (o *outputFile) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	if o.f == nil {
		return nil
	}
	return o.f.Close()
}

// Remove closes and deletes a partially written file.
func (o *outputFile) Remove() {
	_ = o.Close()

	o.mu.Lock()
	created := o.f != nil
	o.mu.Unlock()

	if created {
		_ = os.Remove(o.path)
	}
}
