package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	photosheet "github.com/alnah/go-photosheet"
	"github.com/alnah/go-photosheet/internal/hints"
)

// runPresets prints the paper and cell tables. Each cell row shows how many
// cells fit on the chosen paper.
func runPresets(args []string, env *Environment) int {
	fs := flag.NewFlagSet("presets", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	paperArg := fs.StringP("paper", "p", "A4", "paper used for the per-page column")
	margins := fs.Float64P("margins", "m", photosheet.DefaultMargin, "margins used for the per-page column")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return runHelp([]string{"presets"}, env)
		}
		fmt.Fprintln(env.Stderr, "error:", err)
		return ExitUsage
	}

	if !(*margins >= 0) || math.IsInf(*margins, 1) {
		fmt.Fprintf(env.Stderr, "error: %v: %g (must be a finite number >= 0)\n", photosheet.ErrInvalidMargin, *margins)
		return ExitUsage
	}

	paper, err := resolvePaper(*paperArg)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hints.ForUnknownName(presetNames(photosheet.PaperPresets())))
		return exitCodeFor(err)
	}

	printPresets(env.Stdout, *paperArg, paper, *margins)
	return ExitSuccess
}

// resolvePaper turns a preset name or WIDTH,HEIGHT into a size.
func resolvePaper(arg string) (photosheet.Size, error) {
	spec, err := photosheet.ParseSizeSpec(arg)
	if err != nil {
		return photosheet.Size{}, err
	}
	if spec.Preset != "" {
		return photosheet.LookupPaper(spec.Preset)
	}
	return spec.Custom, nil
}

func printPresets(w io.Writer, paperName string, paper photosheet.Size, margins float64) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "PAPER\tWIDTH\tHEIGHT")
	for _, p := range photosheet.PaperPresets() {
		fmt.Fprintf(tw, "%s\t%g\t%g\n", p.Name, p.Size.Width, p.Size.Height)
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "CELL\tWIDTH\tHEIGHT\tPER PAGE (%s, margins %g)\n", paperName, margins)
	for _, c := range photosheet.CellPresets() {
		grid := photosheet.Grid{Page: paper, Cell: c.Size, Margin: margins}
		fmt.Fprintf(tw, "%s\t%g\t%g\t%s\n", c.Name, c.Size.Width, c.Size.Height, capacity(grid))
	}
	_ = tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sizes are in points (1/72 inch). Any WIDTH,HEIGHT pair also works.")
}

func capacity(g photosheet.Grid) string {
	if err := g.Validate(); err != nil {
		return "does not fit"
	}
	cols, rows := g.Capacity()
	return fmt.Sprintf("%d x %d = %d", cols, rows, g.PerPage())
}
