package main

import (
	"errors"
	"os"

	photosheet "github.com/alnah/go-photosheet"
	"github.com/alnah/go-photosheet/internal/config"
)

// Exit codes for the photosheet CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Sheet written
	ExitGeneral = 1 // Transcode failure, interruption or unexpected error
	ExitUsage   = 2 // Invalid flags, config, dimensions or presets
	ExitIO      = 3 // Unreadable directory, no images, unwritable output
	ExitBrowser = 4 // Chrome engine errors
	ExitTimeout = 5 // Run exceeded its timeout
)

// exitCodeFor returns the exit code for an error.
// It uses errors.Is, so callers must wrap with fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, photosheet.ErrTimeout) {
		return ExitTimeout
	}

	if errors.Is(err, photosheet.ErrBrowserConnect) ||
		errors.Is(err, photosheet.ErrPageCreate) ||
		errors.Is(err, photosheet.ErrPDFGeneration) {
		return ExitBrowser
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, photosheet.ErrReadDir) ||
		errors.Is(err, photosheet.ErrNoImages) ||
		errors.Is(err, photosheet.ErrWriteDocument) ||
		errors.Is(err, ErrCreateOutput) {
		return ExitIO
	}

	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, photosheet.ErrNoSource) ||
		errors.Is(err, photosheet.ErrInvalidDimensions) ||
		errors.Is(err, photosheet.ErrUnknownPreset) ||
		errors.Is(err, photosheet.ErrInvalidMargin) ||
		errors.Is(err, photosheet.ErrInvalidTimeout) ||
		errors.Is(err, photosheet.ErrInvalidQuality) ||
		errors.Is(err, photosheet.ErrInvalidSharpen) ||
		errors.Is(err, photosheet.ErrUnknownFilter) ||
		errors.Is(err, photosheet.ErrUnknownEngine) ||
		errors.Is(err, photosheet.ErrInvalidFilterMode) ||
		errors.Is(err, photosheet.ErrInvalidExtension) ||
		errors.Is(err, photosheet.ErrCellTooLarge) ||
		errors.Is(err, ErrTooManyArgs) ||
		errors.Is(err, ErrPromptAborted) {
		return ExitUsage
	}

	return ExitGeneral
}
