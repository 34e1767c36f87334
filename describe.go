package sheetcalc

import (
	"fmt"
	"strings"
)

// Describe returns a human-readable listing of every non-empty cell with its
// raw input, display value and dependency edges. Useful for debugging.
//
//	Sheet (10x20), 2 edges
//	  A0 raw="1" value="1" state=literal
//	    dependents: D3
//	  D3 raw="REF(A0)" value="1" state=formula
//	    reads: A0
func (s *Sheet) Describe() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "Sheet %s, %d edges\n", Size{Width: s.width, Height: s.height}, s.graph.Len())

	for row := 0; row < s.height; row++ {
		for col := 0; col < s.width; col++ {
			c := s.cells[col][row]
			dependents := s.graph.Dependents(c.id)
			if c.raw == "" && len(dependents) == 0 {
				continue
			}
			fmt.Fprintf(&b, "  %s raw=%q value=%q state=%s\n", NewCoord(col, row), c.raw, c.cached.String(), c.state())
			if deps := s.graph.Dependencies(c.id); len(deps) > 0 {
				fmt.Fprintf(&b, "    reads: %s\n", s.describeIDs(deps))
			}
			if len(dependents) > 0 {
				fmt.Fprintf(&b, "    dependents: %s\n", s.describeIDs(dependents))
			}
		}
	}
	return b.String()
}

func (s *Sheet) describeIDs(ids []CellID) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if coord, ok := s.coords[id]; ok {
			names = append(names, coord.String())
		}
	}
	return strings.Join(names, ", ")
}
