package sheetcalc

import "errors"

// Display markers cached in a cell when its formula cannot be computed.
const (
	// ErrorMarker replaces a reference that is cyclic or points outside the sheet.
	ErrorMarker = "Error!"
	// LookupErrorPrefix starts the text substituted for a failed $(SYMBOL) lookup.
	LookupErrorPrefix = "ERROR: "
)

var (
	// ErrCyclicReference is returned when a dependency edge would close a cycle.
	ErrCyclicReference = errors.New("cyclic reference")
	// ErrOutOfBounds is returned for coordinates or indexes outside the sheet.
	ErrOutOfBounds = errors.New("out of bounds")
	// ErrInvalidCoord is returned when a coordinate string cannot be parsed.
	ErrInvalidCoord = errors.New("invalid coordinate")
	// ErrLastLine is returned when deleting the only remaining row or column.
	ErrLastLine = errors.New("cannot delete the last row or column")
	// ErrNoProvider is returned by lookups when no value provider is configured.
	ErrNoProvider = errors.New("no value provider configured")
	// ErrUnknownSymbol is returned by StaticProvider for symbols it does not hold.
	ErrUnknownSymbol = errors.New("unknown symbol")
)
