package sheetcalc

import (
	"context"
	"strings"
)

// State is the phase a cell is in after its last evaluation.
type State int

const (
	StateEmpty   State = iota // no input
	StateLiteral              // plain value, no tokens
	StateFormula              // input contains REF/SUM/AVG or lookup tokens
	StateError                // evaluation degraded to an error marker
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLiteral:
		return "literal"
	case StateFormula:
		return "formula"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Observer is notified after a cell is recomputed. Observers run while the
// sheet is locked: they receive the new value and must not call back into
// the sheet.
type Observer interface {
	CellChanged(c *Cell, v Value)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(c *Cell, v Value)

// CellChanged calls f.
func (f ObserverFunc) CellChanged(c *Cell, v Value) { f(c, v) }

type watcher struct {
	seq int
	obs Observer
}

// Cell holds the raw input of one grid position and its last computed value.
type Cell struct {
	id     CellID
	sheet  *Sheet
	raw    string
	cached Value

	watchers []watcher
	nextSeq  int
}

func newCell(s *Sheet) *Cell {
	return &Cell{id: newCellID(), sheet: s}
}

// ID returns the cell's identity.
func (c *Cell) ID() CellID { return c.id }

// RawValue returns the input exactly as entered.
func (c *Cell) RawValue() string {
	c.sheet.mu.Lock()
	defer c.sheet.mu.Unlock()
	return c.raw
}

// Value returns the cached computed value.
func (c *Cell) Value() Value {
	c.sheet.mu.Lock()
	defer c.sheet.mu.Unlock()
	return c.cached
}

// Display returns the cached value in its display form.
func (c *Cell) Display() string {
	return c.Value().String()
}

// Coord returns the cell's current position in the sheet. It is the zero
// Coord with ok false once the cell has been removed by a structural edit.
func (c *Cell) Coord() (Coord, bool) {
	c.sheet.mu.Lock()
	defer c.sheet.mu.Unlock()
	coord, ok := c.sheet.coords[c.id]
	return coord, ok
}

// State classifies the cell by its raw input and cached value.
func (c *Cell) State() State {
	c.sheet.mu.Lock()
	defer c.sheet.mu.Unlock()
	return c.state()
}

func (c *Cell) state() State {
	if c.raw == "" {
		return StateEmpty
	}
	if !c.cached.IsNumber() {
		text := c.cached.String()
		if strings.Contains(text, ErrorMarker) || strings.HasPrefix(text, LookupErrorPrefix) {
			return StateError
		}
	}
	if HasTokens(c.raw) {
		return StateFormula
	}
	return StateLiteral
}

// UpdateValue stores raw, recomputes the cell and every cell that depends on
// it, depth first. Once started the update runs to completion; the only error
// is a context that is already done before it begins.
func (c *Cell) UpdateValue(ctx context.Context, raw string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sheet.mu.Lock()
	defer c.sheet.mu.Unlock()
	c.update(ctx, raw)
	return nil
}

// Clear detaches the cell from everything it reads and empties it.
func (c *Cell) Clear(ctx context.Context) error {
	return c.UpdateValue(ctx, "")
}

// Attach registers dependent to be recomputed when c changes. It returns
// ErrCyclicReference, without adding the edge, if doing so would close a cycle.
func (c *Cell) Attach(dependent *Cell) error {
	c.sheet.mu.Lock()
	defer c.sheet.mu.Unlock()
	return c.sheet.graph.Attach(c.id, dependent.id)
}

// Detach removes dependent from c's dependents.
func (c *Cell) Detach(dependent *Cell) {
	c.sheet.mu.Lock()
	defer c.sheet.mu.Unlock()
	c.sheet.graph.Detach(c.id, dependent.id)
	c.sheet.retryRejected(context.Background())
}

// Dependents returns the cells recomputed when c changes, in attach order.
func (c *Cell) Dependents() []*Cell {
	c.sheet.mu.Lock()
	defer c.sheet.mu.Unlock()
	return c.sheet.lookupIDs(c.sheet.graph.Dependents(c.id))
}

// Dependencies returns the cells c read during its last evaluation.
func (c *Cell) Dependencies() []*Cell {
	c.sheet.mu.Lock()
	defer c.sheet.mu.Unlock()
	return c.sheet.lookupIDs(c.sheet.graph.Dependencies(c.id))
}

// Watch registers an observer called after every recompute of c.
// The returned function unregisters it.
func (c *Cell) Watch(obs Observer) (unwatch func()) {
	c.sheet.mu.Lock()
	defer c.sheet.mu.Unlock()
	c.nextSeq++
	seq := c.nextSeq
	c.watchers = append(c.watchers, watcher{seq: seq, obs: obs})
	return func() {
		c.sheet.mu.Lock()
		defer c.sheet.mu.Unlock()
		for i, w := range c.watchers {
			if w.seq == seq {
				c.watchers = append(c.watchers[:i:i], c.watchers[i+1:]...)
				return
			}
		}
	}
}

func (c *Cell) update(ctx context.Context, raw string) {
	c.raw = raw
	c.recompute(ctx)
}

// recompute drops the edges of the previous evaluation, re-resolves the raw
// input, caches the result and notifies dependents. Readers refused on c for
// a cycle are retried afterwards if the cycle is gone.
func (c *Cell) recompute(ctx context.Context) {
	s := c.sheet
	s.graph.DetachDependencies(c.id)
	s.graph.ForgetRejected(c.id)
	expression := s.resolve(ctx, c, c.raw)
	c.cached = s.evaluator.Evaluate(expression)
	s.logger.Debug().Str("cell", c.coordString()).Str("raw", c.raw).Str("value", c.cached.String()).Msg("cell recomputed")
	c.notify(ctx)
	c.retryRejected(ctx)
}

// notify recomputes every direct dependent in attach order. Recursion ends
// because the graph is acyclic.
func (c *Cell) notify(ctx context.Context) {
	for _, w := range append([]watcher(nil), c.watchers...) {
		w.obs.CellChanged(c, c.cached)
	}
	for _, id := range c.sheet.graph.Dependents(c.id) {
		if d, ok := c.sheet.byID[id]; ok {
			d.recompute(ctx)
		}
	}
}

// retryRejected recomputes every reader refused on c whose edge would now be
// accepted.
func (c *Cell) retryRejected(ctx context.Context) {
	g := c.sheet.graph
	for _, id := range g.Rejected(c.id) {
		// An earlier retry may have settled this reader already.
		if !g.IsRejected(c.id, id) || g.Reaches(id, c.id) {
			continue
		}
		if d, ok := c.sheet.byID[id]; ok {
			c.sheet.logger.Debug().Str("cell", d.coordString()).Str("source", c.coordString()).Msg("retrying after cycle broke")
			d.recompute(ctx)
		}
	}
}

func (c *Cell) coordString() string {
	if coord, ok := c.sheet.coords[c.id]; ok {
		return coord.String()
	}
	return c.id.String()
}
