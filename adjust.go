package sheetcalc

import (
	"context"
	"fmt"
	"math"
	"slices"
)

type axis int

const (
	axisRow axis = iota
	axisCol
)

func (a axis) String() string {
	if a == axisRow {
		return "row"
	}
	return "column"
}

// ShiftRowReferences moves every row reference at or beyond index by amount
// inside the tokens of raw. It reports whether raw changed.
func ShiftRowReferences(raw string, amount, index int) (string, bool) {
	return shiftReferences(raw, axisRow, amount, index)
}

// ShiftColumnReferences moves every column reference at or beyond index by
// amount inside the tokens of raw. It reports whether raw changed.
func ShiftColumnReferences(raw string, amount, index int) (string, bool) {
	return shiftReferences(raw, axisCol, amount, index)
}

// shiftReferences rewrites the coordinates inside every NAME(...) token of raw.
// A token with a coordinate pushed below zero is replaced by ErrorMarker.
func shiftReferences(raw string, ax axis, amount, index int) (string, bool) {
	matches := formulaTokenRegex.FindAllStringIndex(raw, -1)
	if len(matches) == 0 {
		return raw, false
	}

	result := raw
	// Process matches in reverse order to preserve indices
	for i := len(matches) - 1; i >= 0; i-- {
		start, end := matches[i][0], matches[i][1]
		token := raw[start:end]
		shifted, ok := shiftToken(token, ax, amount, index)
		if !ok {
			shifted = ErrorMarker
		}
		result = result[:start] + shifted + result[end:]
	}
	return result, result != raw
}

func shiftToken(token string, ax axis, amount, index int) (string, bool) {
	valid := true
	out := coordRegex.ReplaceAllStringFunc(token, func(s string) string {
		c, err := ParseCoord(s)
		if err != nil {
			return s
		}
		switch {
		case ax == axisRow && c.Row >= index && !overflows(c.Row, amount):
			c.Row += amount
		case ax == axisCol && c.Col >= index && !overflows(c.Col, amount):
			c.Col += amount
		default:
			return s
		}
		if c.Row < 0 || c.Col < 0 {
			valid = false
		}
		return c.String()
	})
	return out, valid
}

func overflows(n, amount int) bool {
	return amount > 0 && n > math.MaxInt-amount
}

// InsertRow inserts an empty row at index (0..Height) and shifts every
// reference at or below it down by one.
func (s *Sheet) InsertRow(ctx context.Context, index int) error {
	return s.structural(ctx, axisRow, index, 1)
}

// DeleteRow removes the row at index and shifts every reference at or below
// it up by one.
func (s *Sheet) DeleteRow(ctx context.Context, index int) error {
	return s.structural(ctx, axisRow, index, -1)
}

// InsertColumn inserts an empty column at index (0..Width) and shifts every
// reference at or right of it by one.
func (s *Sheet) InsertColumn(ctx context.Context, index int) error {
	return s.structural(ctx, axisCol, index, 1)
}

// DeleteColumn removes the column at index and shifts every reference at or
// right of it left by one.
func (s *Sheet) DeleteColumn(ctx context.Context, index int) error {
	return s.structural(ctx, axisCol, index, -1)
}

func (s *Sheet) structural(ctx context.Context, ax axis, index, amount int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	size := s.height
	if ax == axisCol {
		size = s.width
	}
	limit := size
	if amount < 0 {
		limit = size - 1
	}
	if index < 0 || index > limit {
		return fmt.Errorf("%s %d in %dx%d sheet: %w", ax, index, s.width, s.height, ErrOutOfBounds)
	}
	if amount < 0 && size == 1 {
		return fmt.Errorf("delete %s %d: %w", ax, index, ErrLastLine)
	}

	switch {
	case ax == axisRow && amount > 0:
		s.height++
		for col := range s.cells {
			s.cells[col] = slices.Insert(s.cells[col], index, s.adopt(newCell(s)))
		}
	case ax == axisRow:
		s.height--
		for col := range s.cells {
			s.dispose(s.cells[col][index])
			s.cells[col] = slices.Delete(s.cells[col], index, index+1)
		}
	case amount > 0:
		s.width++
		s.cells = slices.Insert(s.cells, index, s.newColumn())
	default:
		s.width--
		for _, c := range s.cells[index] {
			s.dispose(c)
		}
		s.cells = slices.Delete(s.cells, index, index+1)
	}
	s.reindex()

	// Rewrite every formula first so recomputation reads the final layout.
	var changed []*Cell
	for _, column := range s.cells {
		for _, c := range column {
			if raw, ok := shiftReferences(c.raw, ax, amount, index); ok {
				c.raw = raw
				changed = append(changed, c)
			}
		}
	}
	for _, c := range changed {
		c.recompute(ctx)
	}
	s.retryRejected(ctx)

	s.logger.Debug().
		Str("axis", ax.String()).
		Int("index", index).
		Int("amount", amount).
		Int("recomputed", len(changed)).
		Msg("structural edit applied")
	return nil
}
