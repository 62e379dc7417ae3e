package photosheet

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"slices"
	"strings"

	"github.com/disintegration/imaging"

	// Extra decoders beyond the image/jpeg, image/png and image/gif
	// formats registered by imaging.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/alnah/go-photosheet/internal/pipeline"
)

// Transcoder turns a source image into an encoded buffer of exactly
// width x height pixels.
type Transcoder = pipeline.Transcoder

// TranscoderFunc adapts a plain function to Transcoder.
type TranscoderFunc = pipeline.TranscoderFunc

// Transcode defaults.
const (
	DefaultQuality = 100
	DefaultSharpen = 1.0
	DefaultFilter  = "lanczos"
)

var resampleFilters = map[string]imaging.ResampleFilter{
	"lanczos":    imaging.Lanczos,
	"catmullrom": imaging.CatmullRom,
	"linear":     imaging.Linear,
	"box":        imaging.Box,
	"nearest":    imaging.NearestNeighbor,
}

// FilterNames returns the accepted resample filter names, sorted.
func FilterNames() []string {
	names := make([]string, 0, len(resampleFilters))
	for name := range resampleFilters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// TranscodeOptions configures ImagingTranscoder.
type TranscodeOptions struct {
	Quality int     // JPEG quality, 1-100
	Sharpen float64 // Gaussian sharpen sigma, 0 disables
	Filter  string  // Resample filter name, see FilterNames
}

// DefaultTranscodeOptions returns the options used when none are given.
func DefaultTranscodeOptions() TranscodeOptions {
	return TranscodeOptions{
		Quality: DefaultQuality,
		Sharpen: DefaultSharpen,
		Filter:  DefaultFilter,
	}
}

// Validate checks ranges and the filter name.
func (o TranscodeOptions) Validate() error {
	if o.Quality < 1 || o.Quality > 100 {
		return fmt.Errorf("%w: %d (must be 1-100)", ErrInvalidQuality, o.Quality)
	}
	if o.Sharpen < 0 {
		return fmt.Errorf("%w: %g (must be >= 0)", ErrInvalidSharpen, o.Sharpen)
	}
	if _, ok := resampleFilters[strings.ToLower(o.Filter)]; !ok {
		return fmt.Errorf("%w: %q (available: %s)", ErrUnknownFilter, o.Filter, strings.Join(FilterNames(), ", "))
	}
	return nil
}

// ImagingTranscoder decodes, stretches, sharpens and re-encodes images as
// JPEG. Aspect ratio is not preserved: every image fills its cell exactly.
// EXIF orientation is ignored.
type ImagingTranscoder struct {
	quality int
	sharpen float64
	filter  imaging.ResampleFilter
}

var _ Transcoder = (*ImagingTranscoder)(nil)

// NewImagingTranscoder validates opts and returns a transcoder.
func NewImagingTranscoder(opts TranscodeOptions) (*ImagingTranscoder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &ImagingTranscoder{
		quality: opts.Quality,
		sharpen: opts.Sharpen,
		filter:  resampleFilters[strings.ToLower(opts.Filter)],
	}, nil
}

// Transcode implements Transcoder.
func (t *ImagingTranscoder) Transcode(ctx context.Context, path string, width, height int) ([]byte, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("target size %dx%d", width, height)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decoding: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var img image.Image = imaging.Resize(src, width, height, t.filter)
	if t.sharpen > 0 {
		img = imaging.Sharpen(img, t.sharpen)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(t.quality)); err != nil {
		return nil, fmt.Errorf("encoding: %w", err)
	}
	return buf.Bytes(), nil
}
