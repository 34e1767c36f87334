package sheetcalc

import "sync"

// Document owns the single live Sheet of an editing session. The sheet is
// built on first access and replaced wholesale by Reset; the old sheet and
// all its dependency edges are discarded, never mutated.
type Document struct {
	mu    sync.Mutex
	opts  []Option
	sheet *Sheet
}

// NewDocument creates a Document whose sheets are built with opts.
func NewDocument(opts ...Option) *Document {
	return &Document{opts: opts}
}

// Sheet returns the live sheet, constructing it on first use.
func (d *Document) Sheet() *Sheet {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sheet == nil {
		d.sheet = NewSheet(d.opts...)
	}
	return d.sheet
}

// Cell returns a cell of the live sheet.
func (d *Document) Cell(col, row int) (*Cell, error) {
	return d.Sheet().Cell(col, row)
}

// Reset replaces the live sheet with a fresh empty one and returns it.
func (d *Document) Reset() *Sheet {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sheet = NewSheet(d.opts...)
	return d.sheet
}
