package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// layoutFlags holds page and grid flags.
type layoutFlags struct {
	paper      string
	dimensions string
	margins    float64
}

// imageFlags holds resize and encoding flags.
type imageFlags struct {
	quality int
	sharpen float64
	filter  string
	scale   float64
}

// runFlags holds execution flags.
type runFlags struct {
	timeout   string
	engine    string
	workers   int
	batchSize int
}

// sourceFlags holds source selection flags.
type sourceFlags struct {
	extensions  []string
	excludeMode bool
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common  commonFlags
	output  string
	target  string
	noInput bool
	layout  layoutFlags
	image   imageFlags
	run     runFlags
	source  sourceFlags

	// changed reports whether a flag was given on the command line, so zero
	// values such as --margins 0 are told apart from unset ones.
	changed func(name string) bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show grid, progress and timing")
}

// addLayoutFlags adds page and grid flags to a FlagSet.
func addLayoutFlags(fs *flag.FlagSet, f *layoutFlags) {
	fs.StringVarP(&f.paper, "paper", "p", "", "paper preset or WIDTH,HEIGHT in points")
	fs.StringVarP(&f.dimensions, "dimensions", "d", "", "cell preset or WIDTH,HEIGHT in points")
	fs.Float64VarP(&f.margins, "margins", "m", 0, "gap around and between cells in points (default 10)")
}

// addImageFlags adds resize flags to a FlagSet.
func addImageFlags(fs *flag.FlagSet, f *imageFlags) {
	fs.IntVar(&f.quality, "quality", 0, "JPEG quality 1-100 (default 100)")
	fs.Float64Var(&f.sharpen, "sharpen", 0, "sharpen sigma, 0 disables (default 1)")
	fs.StringVar(&f.filter, "filter", "", "resample filter (default lanczos)")
	fs.Float64Var(&f.scale, "scale", 0, "pixels per point of cell size (default 1)")
}

// addRunFlags adds execution flags to a FlagSet.
func addRunFlags(fs *flag.FlagSet, f *runFlags) {
	fs.StringVar(&f.timeout, "timeout", "", "run timeout in ms or as a duration (default 5m)")
	fs.StringVarP(&f.engine, "engine", "e", "", "document engine: fpdf, chrome (default fpdf)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "concurrent image transcodes, 1-10 (0 = max)")
	fs.IntVar(&f.batchSize, "batch-size", 0, "images resized per batch (default 10)")
}

// addSourceFlags adds source selection flags to a FlagSet.
func addSourceFlags(fs *flag.FlagSet, f *sourceFlags) {
	fs.StringSliceVar(&f.extensions, "extensions", nil, "image extensions (default jpg,jpeg,png)")
	fs.BoolVar(&f.excludeMode, "exclude-mode", false, "use files whose extension is NOT listed")
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, usage io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := &convertFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output PDF file (default ./file.pdf)")
	fs.StringVarP(&f.target, "target", "t", "", "directory holding the images (default ./)")
	fs.BoolVar(&f.noInput, "no-input", false, "never prompt for missing values")

	addCommonFlags(fs, &f.common)
	addLayoutFlags(fs, &f.layout)
	addImageFlags(fs, &f.image)
	addRunFlags(fs, &f.run)
	addSourceFlags(fs, &f.source)

	fs.Usage = func() { printConvertUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	f.changed = fs.Changed
	return f, fs.Args(), nil
}
