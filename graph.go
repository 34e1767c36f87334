package sheetcalc

import (
	"slices"

	"github.com/google/uuid"
)

// CellID is the process-unique identity of a cell. It is used for equality
// and cycle detection only, never for ordering.
type CellID uuid.UUID

func newCellID() CellID {
	return CellID(uuid.New())
}

// String returns the canonical UUID form of the id.
func (id CellID) String() string {
	return uuid.UUID(id).String()
}

// Graph tracks which cells must be recomputed when another cell changes.
// An edge source→dependent means dependent reads source. Edges are kept in
// both directions so a cell can drop everything it reads before re-evaluating.
// The graph is acyclic at all times; Attach refuses edges that would close a cycle.
//
// Edges refused for a cycle are remembered apart from the graph, so the
// refused reader can be retried once the cycle is broken.
type Graph struct {
	dependents   map[CellID][]CellID // source → cells to notify, in insertion order
	dependencies map[CellID][]CellID // dependent → cells it reads
	rejected     map[CellID][]CellID // source → readers refused by a cycle check
}

// NewGraph creates an empty dependency graph.
func NewGraph() *Graph {
	return &Graph{
		dependents:   make(map[CellID][]CellID),
		dependencies: make(map[CellID][]CellID),
		rejected:     make(map[CellID][]CellID),
	}
}

// Attach registers that dependent must be notified when source changes.
// It returns ErrCyclicReference, and leaves the graph untouched, when source
// is reachable from dependent or the two are the same cell. Attaching an
// existing edge is a no-op.
func (g *Graph) Attach(source, dependent CellID) error {
	if source == dependent || g.Reaches(dependent, source) {
		return ErrCyclicReference
	}
	if slices.Contains(g.dependents[source], dependent) {
		return nil
	}
	g.dependents[source] = append(g.dependents[source], dependent)
	g.dependencies[dependent] = append(g.dependencies[dependent], source)
	return nil
}

// Detach removes the edge source→dependent. Removing a missing edge is a no-op.
func (g *Graph) Detach(source, dependent CellID) {
	g.dependents[source] = remove(g.dependents[source], dependent)
	if len(g.dependents[source]) == 0 {
		delete(g.dependents, source)
	}
	g.dependencies[dependent] = remove(g.dependencies[dependent], source)
	if len(g.dependencies[dependent]) == 0 {
		delete(g.dependencies, dependent)
	}
}

// DetachDependencies removes every edge into dependent, i.e. everything it reads.
func (g *Graph) DetachDependencies(dependent CellID) {
	for _, source := range g.Dependencies(dependent) {
		g.Detach(source, dependent)
	}
}

// Remove drops id from the graph in both directions, refused edges included.
func (g *Graph) Remove(id CellID) {
	g.DetachDependencies(id)
	for _, dependent := range g.Dependents(id) {
		g.Detach(id, dependent)
	}
	delete(g.rejected, id)
	g.ForgetRejected(id)
}

// Reject records that dependent tried to read source and was refused.
// A self edge is not recorded: it can never become valid.
func (g *Graph) Reject(source, dependent CellID) {
	if source == dependent || slices.Contains(g.rejected[source], dependent) {
		return
	}
	g.rejected[source] = append(g.rejected[source], dependent)
}

// Rejected returns a copy of the readers refused on source, in refusal order.
func (g *Graph) Rejected(source CellID) []CellID {
	return slices.Clone(g.rejected[source])
}

// IsRejected reports whether dependent is recorded as refused on source.
func (g *Graph) IsRejected(source, dependent CellID) bool {
	return slices.Contains(g.rejected[source], dependent)
}

// ForgetRejected drops every refusal recorded for dependent.
func (g *Graph) ForgetRejected(dependent CellID) {
	for source, readers := range g.rejected {
		readers = remove(readers, dependent)
		if len(readers) == 0 {
			delete(g.rejected, source)
			continue
		}
		g.rejected[source] = readers
	}
}

// Dependents returns a copy of the cells notified when id changes.
func (g *Graph) Dependents(id CellID) []CellID {
	return slices.Clone(g.dependents[id])
}

// Dependencies returns a copy of the cells id reads.
func (g *Graph) Dependencies(id CellID) []CellID {
	return slices.Clone(g.dependencies[id])
}

// HasEdge reports whether dependent is registered on source.
func (g *Graph) HasEdge(source, dependent CellID) bool {
	return slices.Contains(g.dependents[source], dependent)
}

// Reaches reports whether to can be reached from from by following
// dependent edges. A node reaches itself.
func (g *Graph) Reaches(from, to CellID) bool {
	seen := map[CellID]struct{}{from: {}}
	stack := []CellID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == to {
			return true
		}
		for _, next := range g.dependents[id] {
			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = struct{}{}
			stack = append(stack, next)
		}
	}
	return false
}

// Len returns the number of edges in the graph.
func (g *Graph) Len() int {
	n := 0
	for _, ds := range g.dependents {
		n += len(ds)
	}
	return n
}

func remove(ids []CellID, id CellID) []CellID {
	i := slices.Index(ids, id)
	if i < 0 {
		return ids
	}
	return slices.Delete(ids, i, i+1)
}
