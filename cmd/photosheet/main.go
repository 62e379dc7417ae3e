package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-photosheet/internal/fileutil"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	verbose := slices.Contains(os.Args, "-v") || slices.Contains(os.Args, "--verbose")
	setMaxProcs(verbose, os.Stderr)

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// setMaxProcs matches GOMAXPROCS to the container CPU quota. The quota is
// logged only when verbose.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply.
func setMaxProcs(verbose bool, w io.Writer) {
	logf := func(string, ...any) {}
	if verbose {
		logf = func(format string, args ...any) {
			fmt.Fprintf(w, format+"\n", args...)
		}
	}
	_, _ = maxprocs.Set(maxprocs.Logger(logf))
}

// runMain dispatches to a command and returns the process exit code.
// Without a command, or when the first argument is a flag or an existing
// directory, it runs convert.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		return runConvertCmd(nil, env)
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "convert":
		return runConvertCmd(rest, env)
	case "presets":
		return runPresets(rest, env)
	case "config":
		return runConfigCmd(rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "photosheet %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return runHelp(rest, env)
	}

	if strings.HasPrefix(cmd, "-") || fileutil.DirExists(cmd) {
		return runConvertCmd(args[1:], env)
	}

	fmt.Fprintf(env.Stderr, "unknown command: %s\n", cmd)
	printUsage(env.Stderr)
	return ExitUsage
}

// runConvertCmd parses convert flags, runs the conversion under a
// signal-aware context and maps the error to an exit code.
func runConvertCmd(args []string, env *Environment) int {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, "error:", err)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := runConvert(ctx, positional, flags, env); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(env.Stderr, "interrupted")
		} else {
			fmt.Fprintln(env.Stderr, "error:", err)
		}
		return exitCodeFor(err)
	}
	return ExitSuccess
}
