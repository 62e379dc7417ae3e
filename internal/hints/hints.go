// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-photosheet/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors with the
// chrome engine.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	hints = append(hints, "or use --engine fpdf, which needs no browser")

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the timeout for large directories.
func ForTimeout() string {
	return format("for large directories, raise --timeout (e.g. --timeout 10m)")
}

// ForNoImages returns a hint listing the extensions that were matched.
func ForNoImages(extensions []string, exclude bool) string {
	if exclude {
		return format("exclude mode skips " + strings.Join(extensions, ", ") + "; drop --exclude-mode to keep them")
	}
	return format("only " + strings.Join(extensions, ", ") + " files are used; see --extensions")
}

// ForCellTooLarge returns a hint for a cell that does not fit the page.
func ForCellTooLarge() string {
	return format("pick a smaller cell, a larger paper or lower --margins; see 'photosheet presets'")
}

// ForMissingCell returns a hint for a run without a cell size.
func ForMissingCell() string {
	return format("set the cell size with -d/--dimensions (e.g. -d 3x4 or -d 79,108)")
}

// ForUnknownName returns a hint listing valid choices for a preset, engine
// or filter name.
func ForUnknownName(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "go-photosheet") {
			hint += " or create " + p + " (see 'photosheet config')"
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output file creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
