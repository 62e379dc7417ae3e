package main

import (
	"fmt"

	"github.com/alnah/go-photosheet/internal/config"
)

// runConfigCmd prints an example config with every setting filled in.
func runConfigCmd(args []string, env *Environment) int {
	if len(args) > 0 {
		fmt.Fprintf(env.Stderr, "error: %v: %v\n", ErrTooManyArgs, args)
		return ExitUsage
	}

	data, err := config.ExampleConfig().Marshal()
	if err != nil {
		fmt.Fprintln(env.Stderr, "error:", err)
		return ExitGeneral
	}

	fmt.Fprintln(env.Stdout, "# photosheet config. Save as ./<name>.yaml or")
	fmt.Fprintf(env.Stdout, "# <user config dir>/%s/<name>.yaml and run with --config <name>.\n", config.AppDir)
	_, _ = env.Stdout.Write(data)
	return ExitSuccess
}
