package sheetcalc

import (
	"fmt"
	"math"
	"strconv"
)

const columnBase = 26

// Coord identifies a single cell in a sheet. Both axes are 0-based, so the
// top-left cell is "A0".
type Coord struct {
	Col int
	Row int
}

// NewCoord creates a Coord from a column and row index.
func NewCoord(col, row int) Coord {
	return Coord{Col: col, Row: row}
}

// ParseCoord parses a coordinate like "A0" or "BC12".
func ParseCoord(s string) (Coord, error) {
	i := 0
	for i < len(s) && isUpper(s[i]) {
		i++
	}
	if i == 0 || i == len(s) {
		return Coord{}, fmt.Errorf("%w: %q", ErrInvalidCoord, s)
	}

	col, err := DecodeColumn(s[:i])
	if err != nil {
		return Coord{}, fmt.Errorf("%w: %q", ErrInvalidCoord, s)
	}

	for j := i; j < len(s); j++ {
		if s[j] < '0' || s[j] > '9' {
			return Coord{}, fmt.Errorf("%w: invalid row in %q", ErrInvalidCoord, s)
		}
	}
	row, err := strconv.Atoi(s[i:])
	if err != nil {
		return Coord{}, fmt.Errorf("%w: %q: %v", ErrInvalidCoord, s, err)
	}
	return Coord{Col: col, Row: row}, nil
}

func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

// String formats the coordinate as column letters followed by the row, e.g. "C7".
func (c Coord) String() string {
	return EncodeColumn(c.Col) + strconv.Itoa(c.Row)
}

// EncodeColumn converts a column index to its letter form.
// The letters are plain positional base-26 digits with A=0, so 25→"Z",
// 26→"BA" and 676→"BAA". Negative input yields "".
func EncodeColumn(n int) string {
	if n < 0 {
		return ""
	}
	if n == 0 {
		return "A"
	}
	var digits []byte
	for n > 0 {
		digits = append(digits, byte('A'+n%columnBase))
		n /= columnBase
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}

// DecodeColumn converts column letters back to an index, most significant
// letter first. It is the inverse of EncodeColumn. Names whose value does
// not fit in an int are rejected.
func DecodeColumn(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty column name")
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if !isUpper(s[i]) {
			return 0, fmt.Errorf("invalid column name: %q", s)
		}
		digit := int(s[i] - 'A')
		if n > (math.MaxInt-digit)/columnBase {
			return 0, fmt.Errorf("column name %q overflows int", s)
		}
		n = n*columnBase + digit
	}
	return n, nil
}

// Range is a rectangle of cells. First is always the top-left corner and Last
// the bottom-right one, whatever order the corners were given in.
type Range struct {
	First Coord
	Last  Coord
}

// NewRange normalizes two corners into a Range.
func NewRange(a, b Coord) Range {
	return Range{
		First: Coord{Col: min(a.Col, b.Col), Row: min(a.Row, b.Row)},
		Last:  Coord{Col: max(a.Col, b.Col), Row: max(a.Row, b.Row)},
	}
}

// String formats the range as "A0..B2".
func (r Range) String() string {
	return r.First.String() + ".." + r.Last.String()
}

// Size returns the dimensions of the range.
func (r Range) Size() Size {
	return Size{
		Width:  r.Last.Col - r.First.Col + 1,
		Height: r.Last.Row - r.First.Row + 1,
	}
}

// Contains returns true if the coordinate lies within the range.
func (r Range) Contains(c Coord) bool {
	return c.Col >= r.First.Col && c.Col <= r.Last.Col &&
		c.Row >= r.First.Row && c.Row <= r.Last.Row
}

// Coords lists every coordinate in the range, column by column.
func (r Range) Coords() []Coord {
	sz := r.Size()
	coords := make([]Coord, 0, sz.Width*sz.Height)
	for col := r.First.Col; col <= r.Last.Col; col++ {
		for row := r.First.Row; row <= r.Last.Row; row++ {
			coords = append(coords, Coord{Col: col, Row: row})
		}
	}
	return coords
}

// Size represents width (columns) and height (rows).
type Size struct {
	Width  int
	Height int
}

// String formats the Size as "(WxH)".
func (s Size) String() string {
	return fmt.Sprintf("(%dx%d)", s.Width, s.Height)
}
