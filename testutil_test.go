package sheetcalc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// set enters raw into the cell named by coord.
func set(t *testing.T, s *Sheet, coord, raw string) {
	t.Helper()
	require.NoError(t, s.Set(context.Background(), coord, raw))
}

// cellAt returns the cell named by coord.
func cellAt(t *testing.T, s *Sheet, coord string) *Cell {
	t.Helper()
	c, err := s.Lookup(coord)
	require.NoError(t, err)
	return c
}

// display returns the display value of the cell named by coord.
func display(t *testing.T, s *Sheet, coord string) string {
	t.Helper()
	return cellAt(t, s, coord).Display()
}

// fill enters values column by column into the range starting at A0 with
// the given height.
func fill(t *testing.T, s *Sheet, height int, values ...string) {
	t.Helper()
	for i, v := range values {
		set(t, s, NewCoord(i/height, i%height).String(), v)
	}
}
