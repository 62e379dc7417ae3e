// Package photosheet lays out a directory of images on a fixed grid and
// writes the result as a paginated PDF.
//
// # Quick Start
//
// Create a converter and convert a directory:
//
//	conv, err := photosheet.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	f, err := os.Create("sheet.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
//
//	in := photosheet.DefaultInput()
//	in.Output = f
//	in.SourceDir = "photos"
//	in.Cell = photosheet.PresetSize("3x4")
//
//	result, err := conv.Convert(ctx, in)
//
// # Conversion Pipeline
//
// A run goes through these stages:
//
//  1. The source directory is listed and filtered by extension
//  2. Images are resized to the cell size in parallel batches (imaging)
//  3. Each batch is placed on the grid in list order, opening pages as needed
//  4. The document is finalized once, after the last batch (fpdf or Chrome)
//
// Any transcode failure aborts the run before the document is finalized, so
// a partially written PDF never looks complete.
//
// # Grid Layout
//
// Cells are placed left to right from the top-left margin, wrapping to a new
// row when the next cell would cross the right margin and to a new page when
// the row would cross the bottom margin. Sizes are in PDF points (1/72 in).
// Paper and cell presets are listed by PaperPresets and CellPresets; custom
// sizes use CustomSize or ParseSizeSpec("width,height").
//
// # Background Jobs
//
// Start returns as soon as the input is validated and the directory listed:
//
//	job, err := conv.Start(ctx, in)
//	if err != nil {
//	    return err // input errors are reported here
//	}
//	<-job.Done()
//	result, err := job.Wait()
//
// Jobs started from the same Converter share one limit on concurrent
// transcodes (see WithMaxInFlight).
//
// # Engines
//
// The default engine writes PDFs with go-pdf/fpdf. The chrome engine renders
// an HTML sheet with headless Chrome (go-rod), which downloads a managed
// Chromium on first use. Set ROD_BROWSER_BIN to use a specific binary and
// ROD_NO_SANDBOX=1 in containers.
package photosheet
