package sheetcalc

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Kind tells which variant a Value holds.
type Kind uint8

const (
	KindText Kind = iota
	KindNumber
)

// Value is the computed content of a cell: either a number or a piece of text.
// The zero Value is empty text.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Number creates a numeric Value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Text creates a text Value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNumber reports whether v holds a number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// Float returns the number held by v; ok is false for text values.
func (v Value) Float() (f float64, ok bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Coerce returns v as a number. Text is read by its leading numeric prefix
// and yields NaN when there is none, so "12px" is 12 and "" is NaN.
func (v Value) Coerce() float64 {
	if v.kind == KindNumber {
		return v.num
	}
	return parseLeadingFloat(v.text)
}

// String returns the display form: the canonical decimal string for numbers,
// the text itself otherwise.
func (v Value) String() string {
	if v.kind == KindNumber {
		return FormatNumber(v.num)
	}
	return v.text
}

// FormatNumber renders f the way the sheet displays numbers: shortest
// round-trip decimal, exponent form outside [1e-6, 1e21), and "NaN",
// "Infinity" or "-Infinity" for non-finite values.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		digits := strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + exp[:1] + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var leadingFloat = regexp.MustCompile(`^[+-]?(?:Infinity|\d+(?:\.\d*)?(?:[eE][+-]?\d+)?|\.\d+(?:[eE][+-]?\d+)?)`)

func parseLeadingFloat(s string) float64 {
	prefix := leadingFloat.FindString(strings.TrimSpace(s))
	if prefix == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil && !math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}
