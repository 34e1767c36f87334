package sheetcalc

import (
	"context"
	"errors"
)

// resolve substitutes every token in raw with its current value and, as a
// side effect, registers c on every cell it reads. The caller must hold s.mu
// and must have detached c from its previous dependencies.
func (s *Sheet) resolve(ctx context.Context, c *Cell, raw string) string {
	values := make(map[string]string)
	for _, tok := range ScanTokens(raw) {
		switch tok.Kind {
		case TokenRef:
			values[tok.Text] = s.resolveRef(c, tok)
		case TokenSum, TokenAvg:
			values[tok.Text] = s.resolveRange(c, tok)
		}
	}
	out := substitute(formulaTokenRegex, raw, values)

	lookups := make(map[string]string)
	for _, tok := range ScanLookups(out) {
		lookups[tok.Text] = s.lookup(ctx, tok.Symbol)
	}
	return substitute(lookupTokenRegex, out, lookups)
}

func (s *Sheet) resolveRef(c *Cell, tok Token) string {
	target, ok := s.at(tok.First)
	if !ok {
		s.logger.Debug().Str("cell", c.coordString()).Str("ref", tok.First.String()).Msg("reference out of range")
		return ErrorMarker
	}
	value := target.cached.String()
	if err := s.graph.Attach(target.id, c.id); err != nil {
		s.reject(target, c, tok, err)
		return ErrorMarker
	}
	return value
}

// resolveRange attaches c to every cell in the range and aggregates their
// values. Non-numeric cells coerce to NaN, which propagates into the result.
func (s *Sheet) resolveRange(c *Cell, tok Token) string {
	r := NewRange(tok.First, tok.Last)
	if !s.inBounds(r.First) || !s.inBounds(r.Last) {
		s.logger.Debug().Str("cell", c.coordString()).Str("range", r.String()).Msg("range out of range")
		return ErrorMarker
	}

	sum := 0.0
	coords := r.Coords()
	for _, coord := range coords {
		target := s.cells[coord.Col][coord.Row]
		if err := s.graph.Attach(target.id, c.id); err != nil {
			s.reject(target, c, tok, err)
			return ErrorMarker
		}
		sum += target.cached.Coerce()
	}
	if tok.Kind == TokenAvg {
		return FormatNumber(sum / float64(len(coords)))
	}
	return FormatNumber(sum)
}

func (s *Sheet) lookup(ctx context.Context, symbol string) string {
	v, err := s.provider.Lookup(ctx, symbol)
	if err != nil {
		s.logger.Debug().Err(err).Str("symbol", symbol).Msg("lookup failed")
		return LookupErrorPrefix + symbol
	}
	return v
}

// reject records a refused read of target by c so c is retried once the
// cycle is broken.
func (s *Sheet) reject(target, c *Cell, tok Token, err error) {
	if !errors.Is(err, ErrCyclicReference) {
		return
	}
	s.graph.Reject(target.id, c.id)
	s.logger.Debug().Str("cell", c.coordString()).Str("token", tok.Text).Msg("cyclic reference rejected")
}
