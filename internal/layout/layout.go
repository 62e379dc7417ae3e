// Package layout computes where fixed-size cells land on fixed-size pages.
//
// The grid fills left to right, then top to bottom. The first column and row
// sit at margin from the page edge, later ones are separated by margin gaps.
// A page break happens as soon as one more row would not fit, so a page may
// end with unused vertical space but a cell is never clipped.
//
// The overflow arithmetic is kept bit-for-bit compatible with existing sheets:
// the column test uses the pre-placement column index and a >= comparison,
// which can wrap a row earlier than an optimal packing would. Changing it
// changes output and must be treated as a breaking change.
package layout

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors for grid validation.
var (
	ErrInvalidPage   = errors.New("page dimensions must be positive and finite")
	ErrInvalidCell   = errors.New("cell dimensions must be positive and finite")
	ErrInvalidMargin = errors.New("margin must be finite and not negative")
	ErrCellTooLarge  = errors.New("cell does not fit on the page")
)

// Size is a width/height pair in points.
type Size struct {
	Width  float64
	Height float64
}

// String formats the size as WIDTHxHEIGHT.
func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}

// Valid reports whether both sides are positive finite numbers.
// NaN fails every comparison, so it is rejected along with infinities.
func (s Size) Valid() bool {
	return Positive(s.Width) && Positive(s.Height)
}

// Positive reports whether v is a finite number greater than zero.
func Positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// ValidMargin reports whether m is a finite number >= 0.
func ValidMargin(m float64) bool {
	return m >= 0 && !math.IsInf(m, 1)
}

// Rect is a placed cell, origin at the top-left corner of the page.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Overlaps reports whether r and o share any interior area.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Cursor is the (column, row) slot of the next cell on the current page.
// The zero value is the top-left slot.
type Cursor struct {
	Col int
	Row int
}

// Advance returns the cursor after a cell has been placed at c.
// Rows only change through wrapping in Grid.Next.
func (c Cursor) Advance() Cursor {
	return Cursor{Col: c.Col + 1, Row: c.Row}
}

// Grid describes one sheet layout: page size, cell size and uniform margin.
type Grid struct {
	Page   Size
	Cell   Size
	Margin float64
}

// Validate rejects grids that cannot hold a single cell.
func (g Grid) Validate() error {
	if !g.Page.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidPage, g.Page)
	}
	if !g.Cell.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidCell, g.Cell)
	}
	if !ValidMargin(g.Margin) {
		return fmt.Errorf("%w: %g", ErrInvalidMargin, g.Margin)
	}
	if g.colOverflow(0) || g.rowOverflow(0) {
		return fmt.Errorf("%w: cell %s with margin %g on page %s", ErrCellTooLarge, g.Cell, g.Margin, g.Page)
	}
	return nil
}

// Next resolves the slot for the cell about to be placed at c.
// It returns the cursor the cell actually occupies, its rectangle, and
// whether a new page must be started before placing it. Callers store
// at.Advance() as the cursor for the following cell.
func (g Grid) Next(c Cursor) (at Cursor, r Rect, newPage bool) {
	if g.colOverflow(c.Col) {
		c.Col = 0
		c.Row++
	}

	// Evaluated against the row produced by the column wrap above.
	if g.rowOverflow(c.Row) {
		newPage = true
		c = Cursor{}
	}

	return c, g.rect(c), newPage
}

// Capacity returns how many columns and rows fit on one page.
// The grid must be valid.
func (g Grid) Capacity() (cols, rows int) {
	for !g.colOverflow(cols) {
		cols++
	}
	for !g.rowOverflow(rows) {
		rows++
	}
	return cols, rows
}

// PerPage returns the number of cells on a full page.
func (g Grid) PerPage() int {
	cols, rows := g.Capacity()
	return cols * rows
}

func (g Grid) colOverflow(col int) bool {
	return float64(col+1)*g.Cell.Width+gap(col, g.Margin) >= g.Page.Width
}

func (g Grid) rowOverflow(row int) bool {
	return float64(row+1)*g.Cell.Height+gap(row, g.Margin) >= g.Page.Height
}

func (g Grid) rect(c Cursor) Rect {
	return Rect{
		X:      offset(c.Col, g.Cell.Width, g.Margin),
		Y:      offset(c.Row, g.Cell.Height, g.Margin),
		Width:  g.Cell.Width,
		Height: g.Cell.Height,
	}
}

// gap is the total margin consumed up to and including slot i.
func gap(i int, margin float64) float64 {
	if i == 0 {
		return margin
	}
	return float64(i+1) * margin
}

// offset is the near edge of slot i along one axis.
func offset(i int, cell, margin float64) float64 {
	if i == 0 {
		return margin
	}
	return float64(i)*cell + float64(i+1)*margin
}
