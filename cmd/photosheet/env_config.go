package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-photosheet/internal/config"
)

// envConfig holds configuration from PHOTOSHEET_* environment variables.
// Provides CI-friendly overrides without a YAML file.
type envConfig struct {
	ConfigPath string // PHOTOSHEET_CONFIG: config file name or path
	Timeout    string // PHOTOSHEET_TIMEOUT: ms or duration
	Engine     string // PHOTOSHEET_ENGINE: fpdf, chrome
	InputDir   string // PHOTOSHEET_INPUT_DIR: source directory
	Output     string // PHOTOSHEET_OUTPUT: output PDF path
	Paper      string // PHOTOSHEET_PAPER: paper preset or WIDTH,HEIGHT
	Dimensions string // PHOTOSHEET_DIMENSIONS: cell preset or WIDTH,HEIGHT
	Workers    int    // PHOTOSHEET_WORKERS: concurrent transcodes
}

// knownEnvVars lists valid PHOTOSHEET_* variables, used to flag typos.
var knownEnvVars = map[string]bool{
	"PHOTOSHEET_CONFIG":     true,
	"PHOTOSHEET_TIMEOUT":    true,
	"PHOTOSHEET_ENGINE":     true,
	"PHOTOSHEET_INPUT_DIR":  true,
	"PHOTOSHEET_OUTPUT":     true,
	"PHOTOSHEET_PAPER":      true,
	"PHOTOSHEET_DIMENSIONS": true,
	"PHOTOSHEET_WORKERS":    true,
}

// loadEnvConfig reads the PHOTOSHEET_* variables. Malformed numbers are
// ignored; the timeout string is validated with the rest of the config.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("PHOTOSHEET_CONFIG"),
		Timeout:    os.Getenv("PHOTOSHEET_TIMEOUT"),
		Engine:     os.Getenv("PHOTOSHEET_ENGINE"),
		InputDir:   os.Getenv("PHOTOSHEET_INPUT_DIR"),
		Output:     os.Getenv("PHOTOSHEET_OUTPUT"),
		Paper:      os.Getenv("PHOTOSHEET_PAPER"),
		Dimensions: os.Getenv("PHOTOSHEET_DIMENSIONS"),
	}

	if workers := os.Getenv("PHOTOSHEET_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars prints a warning for unrecognized PHOTOSHEET_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "PHOTOSHEET_") {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig fills config fields the config file left empty. Flags are
// merged afterwards, giving: flags > config file > env > prompts > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	setIfEmpty(&cfg.Run.Timeout, env.Timeout)
	setIfEmpty(&cfg.Run.Engine, env.Engine)
	setIfEmpty(&cfg.Input.Dir, env.InputDir)
	setIfEmpty(&cfg.Output, env.Output)
	setIfEmpty(&cfg.Page.Paper, env.Paper)
	setIfEmpty(&cfg.Cell.Dimensions, env.Dimensions)
	if env.Workers > 0 && cfg.Run.Workers == 0 {
		cfg.Run.Workers = env.Workers
	}
}

func setIfEmpty(dst *string, v string) {
	if v != "" && *dst == "" {
		*dst = v
	}
}
