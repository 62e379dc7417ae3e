package photosheet

import (
	"errors"

	"github.com/alnah/go-photosheet/internal/layout"
	"github.com/alnah/go-photosheet/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	// Input errors, reported before any image is processed.
	ErrNoOutput          = errors.New("no output writer")
	ErrNoSource          = errors.New("no source directory")
	ErrReadDir           = errors.New("failed to read source directory")
	ErrNoImages          = errors.New("no images found")
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrUnknownPreset     = errors.New("unknown preset")
	ErrInvalidMargin     = errors.New("invalid margin")
	ErrInvalidTimeout    = errors.New("invalid timeout")
	ErrInvalidQuality    = errors.New("invalid JPEG quality")
	ErrInvalidSharpen    = errors.New("invalid sharpen sigma")
	ErrUnknownFilter     = errors.New("unknown resample filter")
	ErrUnknownEngine     = errors.New("unknown document engine")
	ErrInvalidFilterMode = errors.New("invalid extension filter mode")
	ErrInvalidExtension  = errors.New("invalid image extension")
	ErrCellTooLarge      = layout.ErrCellTooLarge

	// Run errors.
	ErrTranscode     = pipeline.ErrTranscode
	ErrWriteDocument = errors.New("failed to write document")
	ErrTimeout       = errors.New("document generation timed out")

	// Chrome engine errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)
