package photosheet

import (
	"context"
	"fmt"
)

// BatchSource yields batches in source order. The channel is closed once the
// source is exhausted or has failed; Wait reports which.
type BatchSource interface {
	Batches() <-chan Batch
	Wait() error
}

// Placement describes one image placed on the sheet.
type Placement struct {
	Page   int // 1-based page number
	Index  int // position in the source listing
	Path   string
	Cursor Cursor
	Rect   Rect
}

// AssemblerStats summarizes what was written.
type AssemblerStats struct {
	Pages  int
	Images int
}

// Assembler turns an ordered stream of images into layout commands for a
// DocumentWriter. It is not safe for concurrent use: one goroutine owns the
// cursor and the writer.
type Assembler struct {
	w       DocumentWriter
	grid    Grid
	onPlace func(Placement)

	cursor   Cursor
	stats    AssemblerStats
	begun    bool
	finished bool
}

// NewAssembler returns an assembler writing to w with the given grid.
// onPlace, when non-nil, is called after every placement.
func NewAssembler(w DocumentWriter, grid Grid, onPlace func(Placement)) *Assembler {
	return &Assembler{w: w, grid: grid, onPlace: onPlace}
}

// Begin opens the first page. It must be called once before Add.
func (a *Assembler) Begin() error {
	if a.begun {
		return nil
	}
	if err := a.w.AddPage(); err != nil {
		return err
	}
	a.begun = true
	a.stats.Pages = 1
	return nil
}

// Add places one image at the next grid slot, breaking the page first when
// the grid says so.
func (a *Assembler) Add(img Image) error {
	if !a.begun {
		if err := a.Begin(); err != nil {
			return err
		}
	}

	at, rect, newPage := a.grid.Next(a.cursor)
	if newPage {
		if err := a.w.AddPage(); err != nil {
			return err
		}
		a.stats.Pages++
	}
	if err := a.w.PlaceImage(img, rect); err != nil {
		return err
	}

	a.cursor = at.Advance()
	a.stats.Images++
	if a.onPlace != nil {
		a.onPlace(Placement{
			Page:   a.stats.Pages,
			Index:  img.Index,
			Path:   img.Path,
			Cursor: at,
			Rect:   rect,
		})
	}
	return nil
}

// Finish finalizes the document. Calling it more than once is a no-op.
func (a *Assembler) Finish() error {
	if a.finished {
		return nil
	}
	a.finished = true
	return a.w.Close()
}

// Stats returns the pages opened and images placed so far.
func (a *Assembler) Stats() AssemblerStats {
	return a.stats
}

// Assemble consumes src until it is exhausted, then finalizes the document.
// When src fails, ctx is cancelled or the writer errors, it returns without
// finalizing.
func (a *Assembler) Assemble(ctx context.Context, src BatchSource) error {
	if err := a.Begin(); err != nil {
		return err
	}

	batches := src.Batches()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case b, ok := <-batches:
			if !ok {
				if err := src.Wait(); err != nil {
					return err
				}
				if err := a.Finish(); err != nil {
					return fmt.Errorf("finalizing document: %w", err)
				}
				return nil
			}
			for _, img := range b.Images {
				if err := a.Add(img); err != nil {
					return err
				}
			}
		}
	}
}
