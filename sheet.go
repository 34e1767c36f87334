package sheetcalc

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Sheet is a width×height grid of cells together with the dependency graph
// linking them. All mutation is serialized behind a single mutex, so updates
// and their cascades never interleave.
type Sheet struct {
	mu     sync.Mutex
	width  int
	height int
	cells  [][]*Cell // indexed [col][row]
	byID   map[CellID]*Cell
	coords map[CellID]Coord
	graph  *Graph

	evaluator Evaluator
	provider  Provider
	logger    zerolog.Logger
}

// NewSheet creates a sheet of empty cells.
func NewSheet(opts ...Option) *Sheet {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.evaluator == nil {
		o.evaluator = NewEvaluator()
	}

	s := &Sheet{
		width:     o.width,
		height:    o.height,
		byID:      make(map[CellID]*Cell),
		graph:     NewGraph(),
		evaluator: o.evaluator,
		provider:  o.provider,
		logger:    o.logger,
	}
	s.cells = make([][]*Cell, s.width)
	for col := range s.cells {
		s.cells[col] = s.newColumn()
	}
	s.reindex()
	return s
}

// Width returns the number of columns.
func (s *Sheet) Width() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width
}

// Height returns the number of rows.
func (s *Sheet) Height() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.height
}

// Cell returns the cell at column col and row row.
func (s *Sheet) Cell(col, row int) (*Cell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.at(NewCoord(col, row))
	if !ok {
		return nil, fmt.Errorf("cell (%d,%d) in %dx%d sheet: %w", col, row, s.width, s.height, ErrOutOfBounds)
	}
	return c, nil
}

// Lookup returns the cell named by a coordinate like "B3".
func (s *Sheet) Lookup(name string) (*Cell, error) {
	coord, err := ParseCoord(name)
	if err != nil {
		return nil, err
	}
	return s.Cell(coord.Col, coord.Row)
}

// Set updates the cell named by a coordinate like "B3".
func (s *Sheet) Set(ctx context.Context, name, raw string) error {
	c, err := s.Lookup(name)
	if err != nil {
		return err
	}
	return c.UpdateValue(ctx, raw)
}

// Cells returns the grid indexed [col][row]. The outer and inner slices are
// copies; the cells are shared.
func (s *Sheet) Cells() [][]*Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]*Cell, len(s.cells))
	for col, column := range s.cells {
		out[col] = append([]*Cell(nil), column...)
	}
	return out
}

// CSV exports the display value of every cell, row by row. Each field is
// followed by a comma and each row by a newline; values are not quoted.
func (s *Sheet) CSV() string {
	var b strings.Builder
	_ = s.WriteCSV(&b)
	return b.String()
}

// WriteCSV writes the CSV export to w.
func (s *Sheet) WriteCSV(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	for row := 0; row < s.height; row++ {
		for col := 0; col < s.width; col++ {
			b.WriteString(s.cells[col][row].cached.String())
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func (s *Sheet) newColumn() []*Cell {
	column := make([]*Cell, s.height)
	for row := range column {
		column[row] = s.adopt(newCell(s))
	}
	return column
}

func (s *Sheet) adopt(c *Cell) *Cell {
	s.byID[c.id] = c
	return c
}

// dispose detaches c from the graph in both directions and forgets it.
func (s *Sheet) dispose(c *Cell) {
	s.graph.Remove(c.id)
	delete(s.byID, c.id)
	delete(s.coords, c.id)
}

// reindex rebuilds the id → coordinate table after the grid changes shape.
func (s *Sheet) reindex() {
	s.coords = make(map[CellID]Coord, s.width*s.height)
	for col, column := range s.cells {
		for row, c := range column {
			s.coords[c.id] = NewCoord(col, row)
		}
	}
}

// retryRejected gives every cell a chance to re-run readers refused on it.
// It is needed after edits that remove edges without recomputing the cells
// on the far side of them.
func (s *Sheet) retryRejected(ctx context.Context) {
	for _, column := range s.cells {
		for _, c := range column {
			c.retryRejected(ctx)
		}
	}
}

func (s *Sheet) inBounds(c Coord) bool {
	return c.Col >= 0 && c.Col < s.width && c.Row >= 0 && c.Row < s.height
}

func (s *Sheet) at(c Coord) (*Cell, bool) {
	if !s.inBounds(c) {
		return nil, false
	}
	return s.cells[c.Col][c.Row], true
}

func (s *Sheet) lookupIDs(ids []CellID) []*Cell {
	out := make([]*Cell, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.byID[id]; ok {
			out = append(out, c)
		}
	}
	return out
}
