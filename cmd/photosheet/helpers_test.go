package main

// Notes:
// - Test infrastructure shared by the command tests: a buffered Environment
//   and on-the-fly JPEG fixtures, so no binary files live in the repository.
// - pdfcpu reads generated sheets back; its config dir is disabled in init
//   so tests never write to the user's home directory.

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

func init() {
	api.DisableConfigDir()
}

// testEnv is an Environment whose streams are buffers.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// newTestEnv returns a non-interactive environment reading stdin from input.
func newTestEnv(input string) *testEnv {
	var stdout, stderr bytes.Buffer
	return &testEnv{
		Environment: &Environment{
			Now:    func() time.Time { return time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC) },
			Stdout: &stdout,
			Stderr: &stderr,
			Stdin:  strings.NewReader(input),
		},
		stdout: &stdout,
		stderr: &stderr,
	}
}

// imageDir creates a directory holding n small JPEGs named img01.jpg...
func imageDir(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	for i := range n {
		writeJPEG(t, filepath.Join(dir, fmt.Sprintf("img%02d.jpg", i+1)))
	}
	return dir
}

func writeJPEG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 24, 32))
	for y := range 32 {
		for x := range 24 {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 8), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding %s: %v", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// pageCount returns the number of pages in a generated PDF.
func pageCount(t *testing.T, path string) int {
	t.Helper()
	n, err := api.PageCountFile(path)
	if err != nil {
		t.Fatalf("counting pages of %s: %v", path, err)
	}
	return n
}

func assertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("%s should not exist (stat err: %v)", path, err)
	}
}
