package photosheet

// Notes:
// - Fixtures are generated on the fly with image/jpeg and image/png so tests
//   never depend on binary files in the repository.
// - recordingWriter records every command the assembler issues; tests assert
//   on the command log instead of parsing PDFs where geometry matters.
// - pageCount parses real output with pdfcpu. The config dir is disabled once
//   in init so pdfcpu never touches the user's home directory.

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	api.DisableConfigDir()
}

// ---------------------------------------------------------------------------
// Image fixtures
// ---------------------------------------------------------------------------

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / max(w, 1)), G: uint8(y * 255 / max(h, 1)), B: 128, A: 255})
		}
	}
	return img
}

func writeJPEG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, gradient(w, h), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encoding %s: %v", name, err)
	}
	return writeFile(t, dir, name, buf.Bytes())
}

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, gradient(w, h)); err != nil {
		t.Fatalf("encoding %s: %v", name, err)
	}
	return writeFile(t, dir, name, buf.Bytes())
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// jpegBytes returns a small valid JPEG for writer tests.
func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, gradient(8, 8), nil); err != nil {
		t.Fatalf("encoding: %v", err)
	}
	return buf.Bytes()
}

// pageCount parses a PDF and returns its number of pages.
func pageCount(t *testing.T, pdf []byte) int {
	t.Helper()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(pdf), model.NewDefaultConfiguration())
	if err != nil {
		t.Fatalf("parsing PDF: %v", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		t.Fatalf("counting pages: %v", err)
	}
	return ctx.PageCount
}

// ---------------------------------------------------------------------------
// recordingWriter
// ---------------------------------------------------------------------------

type placedImage struct {
	page int
	img  Image
	rect Rect
}

type recordingWriter struct {
	log    []string
	pages  int
	placed []placedImage
	closed int

	addErr   error
	placeErr error
	closeErr error
	failAt   int // PlaceImage call (1-based) that returns placeErr, 0 = every call
}

var _ DocumentWriter = (*recordingWriter)(nil)

func (w *recordingWriter) AddPage() error {
	if w.addErr != nil {
		return w.addErr
	}
	w.pages++
	w.log = append(w.log, "page")
	return nil
}

func (w *recordingWriter) PlaceImage(img Image, r Rect) error {
	if w.placeErr != nil && (w.failAt == 0 || w.failAt == len(w.placed)+1) {
		return w.placeErr
	}
	w.placed = append(w.placed, placedImage{page: w.pages, img: img, rect: r})
	w.log = append(w.log, fmt.Sprintf("place %s at %g,%g", img.Path, r.X, r.Y))
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed++
	w.log = append(w.log, "close")
	return w.closeErr
}

// sliceSource is a BatchSource fed from memory.
type sliceSource struct {
	ch  chan Batch
	err error
}

func newSliceSource(err error, batches ...Batch) *sliceSource {
	ch := make(chan Batch, len(batches))
	for _, b := range batches {
		ch <- b
	}
	close(ch)
	return &sliceSource{ch: ch, err: err}
}

func (s *sliceSource) Batches() <-chan Batch { return s.ch }
func (s *sliceSource) Wait() error           { return s.err }

// images returns n fake images named img-00..img-(n-1), starting at index from.
func images(from, n int) []Image {
	out := make([]Image, n)
	for i := range out {
		out[i] = Image{Index: from + i, Path: fmt.Sprintf("img-%02d", from+i), Data: []byte{byte(i)}}
	}
	return out
}
