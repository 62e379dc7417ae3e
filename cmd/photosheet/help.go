package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: photosheet [command] [flags] [directory]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Lay out a directory of images as a PDF (default)")
	fmt.Fprintln(w, "  presets    List paper and cell presets")
	fmt.Fprintln(w, "  config     Print an example config file")
	fmt.Fprintln(w, "  doctor     Check the chrome engine's requirements")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'photosheet help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: photosheet convert [directory] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Resize every image in a directory to one cell size and place them on a")
	fmt.Fprintln(w, "grid, left to right and top to bottom, in file name order. Sizes are in")
	fmt.Fprintln(w, "points (1/72 inch). Missing values are prompted for on a terminal.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output PDF file (default ./file.pdf)")
	fmt.Fprintln(w, "  -t, --target <dir>        Image directory (default ./)")
	fmt.Fprintln(w, "      --extensions <list>   Image extensions (default jpg,jpeg,png)")
	fmt.Fprintln(w, "      --exclude-mode        Use files whose extension is NOT listed")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --no-input            Never prompt")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Layout:")
	fmt.Fprintln(w, "  -p, --paper <s>           Paper preset or WIDTH,HEIGHT (default A4)")
	fmt.Fprintln(w, "  -d, --dimensions <s>      Cell preset or WIDTH,HEIGHT (required)")
	fmt.Fprintln(w, "  -m, --margins <f>         Gap around and between cells (default 10)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Images:")
	fmt.Fprintln(w, "      --quality <n>         JPEG quality 1-100 (default 100)")
	fmt.Fprintln(w, "      --sharpen <f>         Sharpen sigma, 0 disables (default 1)")
	fmt.Fprintln(w, "      --filter <s>          Resample filter: box, catmullrom, lanczos, linear, nearest")
	fmt.Fprintln(w, "      --scale <f>           Pixels per point of cell size (default 1)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run:")
	fmt.Fprintln(w, "  -e, --engine <s>          Document engine: fpdf, chrome (default fpdf)")
	fmt.Fprintln(w, "      --timeout <d>         Milliseconds or duration, e.g. 300000 or 5m")
	fmt.Fprintln(w, "  -w, --workers <n>         Concurrent transcodes, 1-10 (0 = 10)")
	fmt.Fprintln(w, "      --batch-size <n>      Images resized per batch (default 10)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show grid, page progress and timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  PHOTOSHEET_CONFIG, PHOTOSHEET_OUTPUT, PHOTOSHEET_INPUT_DIR, PHOTOSHEET_PAPER,")
	fmt.Fprintln(w, "  PHOTOSHEET_DIMENSIONS, PHOTOSHEET_TIMEOUT, PHOTOSHEET_ENGINE, PHOTOSHEET_WORKERS")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "presets":
		fmt.Fprintln(env.Stdout, "Usage: photosheet presets [-p paper] [-m margins]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "List paper and cell presets, with cells per page on the given paper.")
	case "config":
		fmt.Fprintln(env.Stdout, "Usage: photosheet config > photosheet.yaml")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Print an example config file with every setting.")
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: photosheet doctor [--json] [-e engine]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check Chrome, sandbox and temp directory for the chrome engine.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: photosheet version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: photosheet help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
