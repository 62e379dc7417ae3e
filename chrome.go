package photosheet

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-photosheet/internal/assets"
	"github.com/alnah/go-photosheet/internal/fileutil"
	"github.com/alnah/go-photosheet/internal/process"
)

// pointsPerInch converts layout points to Chrome's paper inches.
const pointsPerInch = 72.0

// defaultRenderTimeout bounds page load when ctx carries no deadline.
const defaultRenderTimeout = 2 * time.Minute

// pdfRenderer abstracts HTML file to PDF rendering so ChromeWriter can be
// tested without a browser.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string, page Size) ([]byte, error)
	Close() error
}

// ChromeWriter lays pages out as absolutely positioned HTML and prints them
// with headless Chrome. Nothing reaches the sink before Close.
type ChromeWriter struct {
	ctx      context.Context
	out      io.Writer
	page     Size
	sheet    *assets.Sheet
	renderer pdfRenderer
	pages    []assets.SheetPage
	closed   bool
}

var _ DocumentWriter = (*ChromeWriter)(nil)

// NewChromeWriter returns a writer producing pages of the given size in
// points. The browser is started lazily on Close.
func NewChromeWriter(ctx context.Context, out io.Writer, page Size) (*ChromeWriter, error) {
	return newChromeWriter(ctx, out, page, &rodRenderer{})
}

func newChromeWriter(ctx context.Context, out io.Writer, page Size, r pdfRenderer) (*ChromeWriter, error) {
	sheet, err := assets.NewSheet(nil)
	if err != nil {
		return nil, err
	}
	return &ChromeWriter{
		ctx:      ctx,
		out:      out,
		page:     page,
		sheet:    sheet,
		renderer: r,
	}, nil
}

// AddPage implements DocumentWriter.
func (w *ChromeWriter) AddPage() error {
	w.pages = append(w.pages, assets.SheetPage{})
	return nil
}

// PlaceImage implements DocumentWriter.
func (w *ChromeWriter) PlaceImage(img Image, r Rect) error {
	if len(w.pages) == 0 {
		return fmt.Errorf("%w: placing %s: no open page", ErrWriteDocument, img.Path)
	}
	cur := &w.pages[len(w.pages)-1]
	cur.Images = append(cur.Images, assets.SheetImage{
		X:      r.X,
		Y:      r.Y,
		Width:  r.Width,
		Height: r.Height,
		// #nosec G203 -- base64 payload of our own JPEG encoder
		Src: template.URL("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(img.Data)),
		Alt: filepath.Base(img.Path),
	})
	return nil
}

// Close renders the accumulated pages and copies the PDF to the sink.
// The browser is released whether or not rendering succeeds.
func (w *ChromeWriter) Close() (err error) {
	if w.closed {
		return nil
	}
	w.closed = true
	defer func() {
		if cerr := w.renderer.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: closing browser: %v", ErrWriteDocument, cerr)
		}
	}()

	var html bytes.Buffer
	if err := w.sheet.Render(&html, assets.SheetData{
		Title:      "photosheet",
		PageWidth:  w.page.Width,
		PageHeight: w.page.Height,
		Pages:      w.pages,
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteDocument, err)
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(html.String(), "html")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteDocument, err)
	}
	defer cleanup()

	pdf, err := w.renderer.RenderFromFile(w.ctx, tmpPath, w.page)
	if err != nil {
		return err
	}
	if _, err := w.out.Write(pdf); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteDocument, err)
	}
	return nil
}

// rodRenderer implements pdfRenderer using go-rod.
// Rod downloads Chromium on first run if none is found.
type rodRenderer struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Pre-installed browser (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.launcher = l

	r.browser = rod.New().ControlURL(u)
	if err := r.browser.Connect(); err != nil {
		r.browser = nil
		r.kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// RenderFromFile opens a local HTML file in headless Chrome and prints it at
// exactly the given page size with no margins.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string, page Size) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	p, err := r.browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer p.Close()

	// Cancelling ctx aborts the CDP calls below.
	bound := p.Context(ctx)
	timeout := defaultRenderTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	if err := bound.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: loading sheet: %v", ErrPDFGeneration, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := bound.PDF(printOptions(page))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdf, nil
}

// Close releases the browser and any child processes it left behind.
func (r *rodRenderer) Close() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	r.kill()
	return err
}

func (r *rodRenderer) kill() {
	if r.launcher == nil {
		return
	}
	pid := r.launcher.PID()
	r.launcher.Kill()
	process.KillProcessGroup(pid)
	r.launcher = nil
}

// printOptions maps a page size in points to Chrome print settings.
func printOptions(page Size) *proto.PagePrintToPDF {
	zero := 0.0
	return &proto.PagePrintToPDF{
		PaperWidth:        floatPtr(page.Width / pointsPerInch),
		PaperHeight:       floatPtr(page.Height / pointsPerInch),
		MarginTop:         &zero,
		MarginBottom:      &zero,
		MarginLeft:        &zero,
		MarginRight:       &zero,
		PrintBackground:   true,
		PreferCSSPageSize: true,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
