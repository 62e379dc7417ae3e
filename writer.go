package photosheet

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
)

// DocumentWriter receives layout commands from the Assembler. Calls are
// made from a single goroutine, in order.
type DocumentWriter interface {
	// AddPage starts a new empty page at the document's page size.
	AddPage() error
	// PlaceImage draws an encoded JPEG at r on the current page.
	PlaceImage(img Image, r Rect) error
	// Close finalizes the document and flushes it to the sink.
	Close() error
}

// WriterFactory opens a DocumentWriter for one run. page is in points.
type WriterFactory func(ctx context.Context, out io.Writer, page Size) (DocumentWriter, error)

// Document engines.
const (
	EngineFPDF   = "fpdf"
	EngineChrome = "chrome"
)

// DefaultEngine is used when no engine is selected.
const DefaultEngine = EngineFPDF

var engines = map[string]WriterFactory{
	EngineFPDF: func(_ context.Context, out io.Writer, page Size) (DocumentWriter, error) {
		return NewFPDFWriter(out, page), nil
	},
	EngineChrome: func(ctx context.Context, out io.Writer, page Size) (DocumentWriter, error) {
		return NewChromeWriter(ctx, out, page)
	},
}

// Engines returns the names of the available document engines, sorted.
func Engines() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// WriterFor returns the factory for the named engine.
func WriterFor(engine string) (WriterFactory, error) {
	if engine == "" {
		engine = DefaultEngine
	}
	f, ok := engines[strings.ToLower(engine)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownEngine, engine, strings.Join(Engines(), ", "))
	}
	return f, nil
}

// FPDFWriter builds the document in memory with fpdf and writes it to the
// sink on Close.
type FPDFWriter struct {
	pdf    *fpdf.Fpdf
	out    io.Writer
	closed bool
}

var _ DocumentWriter = (*FPDFWriter)(nil)

// NewFPDFWriter returns a writer producing pages of the given size in points.
// No page is open until AddPage is called.
func NewFPDFWriter(out io.Writer, page Size) *FPDFWriter {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: page.Width, Ht: page.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCreator("go-photosheet", true)
	return &FPDFWriter{pdf: pdf, out: out}
}

// AddPage implements DocumentWriter.
func (w *FPDFWriter) AddPage() error {
	w.pdf.AddPage()
	if err := w.pdf.Error(); err != nil {
		return fmt.Errorf("%w: adding page: %v", ErrWriteDocument, err)
	}
	return nil
}

// PlaceImage implements DocumentWriter.
func (w *FPDFWriter) PlaceImage(img Image, r Rect) error {
	opts := fpdf.ImageOptions{ImageType: "JPG"}
	name := "img" + strconv.Itoa(img.Index)

	w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	w.pdf.ImageOptions(name, r.X, r.Y, r.Width, r.Height, false, opts, 0, "")
	if err := w.pdf.Error(); err != nil {
		return fmt.Errorf("%w: placing %s: %v", ErrWriteDocument, img.Path, err)
	}
	return nil
}

// Close implements DocumentWriter. Closing twice is a no-op.
func (w *FPDFWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.pdf.Output(w.out); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteDocument, err)
	}
	return nil
}
