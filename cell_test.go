package sheetcalc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell_ReferencePropagates(t *testing.T) {
	s := NewSheet()
	c00, err := s.Cell(0, 0)
	require.NoError(t, err)
	c33, err := s.Cell(3, 3)
	require.NoError(t, err)

	require.NoError(t, c00.UpdateValue(context.Background(), "1"))
	require.NoError(t, c33.UpdateValue(context.Background(), "REF(A0)"))
	assert.Equal(t, "1", c33.Display())

	require.NoError(t, c00.UpdateValue(context.Background(), "cat"))
	assert.Equal(t, "cat", c33.Display())
	assert.Equal(t, "REF(A0)", c33.RawValue())
}

func TestCell_NumericValueIsTyped(t *testing.T) {
	s := NewSheet()
	set(t, s, "A0", "5 / 8")
	v := cellAt(t, s, "A0").Value()
	f, ok := v.Float()
	require.True(t, ok)
	assert.Equal(t, 0.625, f)

	set(t, s, "A1", "5 - 5")
	assert.Equal(t, "0", display(t, s, "A1"))
}

func TestCell_ArithmeticOverReferences(t *testing.T) {
	s := NewSheet()
	set(t, s, "A0", "2")
	set(t, s, "A1", "3")
	set(t, s, "A2", "REF(A0) * REF(A1) + 1")
	assert.Equal(t, "7", display(t, s, "A2"))

	set(t, s, "A3", "REF(A0) + REF(A0)")
	assert.Equal(t, "4", display(t, s, "A3"))
	assert.Len(t, cellAt(t, s, "A0").Dependents(), 2)
}

func TestCell_StringConcatOverReferences(t *testing.T) {
	s := NewSheet()
	set(t, s, "A0", `"foo"`)
	set(t, s, "B0", `"bar"`)
	// Referenced values are substituted without quotes, so this is literal text.
	set(t, s, "C0", `REF(A0) + REF(B0)`)
	assert.Equal(t, "foo + bar", display(t, s, "C0"))

	set(t, s, "D0", `"REF(A0)" + "!"`)
	assert.Equal(t, "foo!", display(t, s, "D0"))
}

func TestCell_ArithmeticOverExponentValues(t *testing.T) {
	s := NewSheet()
	set(t, s, "A0", "10^21")
	set(t, s, "A1", "REF(A0) * 2")
	assert.Equal(t, "1e+21", display(t, s, "A0"))
	assert.Equal(t, "2e+21", display(t, s, "A1"))

	set(t, s, "B0", "1/10000000")
	set(t, s, "B1", "REF(B0) * 2")
	assert.Equal(t, "1e-7", display(t, s, "B0"))
	assert.Equal(t, "2e-7", display(t, s, "B1"))
}

func TestCell_ChainPropagates(t *testing.T) {
	s := NewSheet()
	set(t, s, "A0", "1")
	set(t, s, "A1", "REF(A0) + 1")
	set(t, s, "A2", "REF(A1) + 1")
	assert.Equal(t, "3", display(t, s, "A2"))

	set(t, s, "A0", "10")
	assert.Equal(t, "11", display(t, s, "A1"))
	assert.Equal(t, "12", display(t, s, "A2"))
}

func TestCell_DiamondPropagates(t *testing.T) {
	s := NewSheet()
	set(t, s, "A0", "1")
	set(t, s, "B0", "REF(A0)")
	set(t, s, "C0", "REF(A0)")
	set(t, s, "D0", "REF(B0) + REF(C0)")
	assert.Equal(t, "2", display(t, s, "D0"))

	set(t, s, "A0", "5")
	assert.Equal(t, "10", display(t, s, "D0"))
}

func TestCell_RetargetDropsStaleEdge(t *testing.T) {
	s := NewSheet()
	set(t, s, "A0", "1")
	set(t, s, "B0", "5")
	set(t, s, "C0", "REF(A0)")
	set(t, s, "C0", "REF(B0)")
	assert.Equal(t, "5", display(t, s, "C0"))

	a0, b0, c0 := cellAt(t, s, "A0"), cellAt(t, s, "B0"), cellAt(t, s, "C0")
	assert.Empty(t, a0.Dependents())
	assert.Equal(t, []*Cell{c0}, b0.Dependents())
	assert.Equal(t, []*Cell{b0}, c0.Dependencies())

	set(t, s, "A0", "9")
	assert.Equal(t, "5", display(t, s, "C0"))
}

func TestCell_SelfReferenceIsError(t *testing.T) {
	s := NewSheet()
	set(t, s, "A0", "REF(A0)")
	a0 := cellAt(t, s, "A0")
	assert.Equal(t, ErrorMarker, a0.Display())
	assert.Equal(t, StateError, a0.State())
	assert.Empty(t, a0.Dependents())
	assert.Equal(t, "REF(A0)", a0.RawValue())
}

func TestCell_TwoCellCycleIsError(t *testing.T) {
	s := NewSheet()
	set(t, s, "A0", "REF(B0)")
	set(t, s, "B0", "REF(A0)")

	assert.Equal(t, ErrorMarker, display(t, s, "B0"))
	assert.Equal(t, ErrorMarker, display(t, s, "A0"))
	assert.Empty(t, cellAt(t, s, "A0").Dependents())
}

func TestCell_BreakingCycleRecomputesRefusedCell(t *testing.T) {
	s := NewSheet()
	set(t, s, "A0", "REF(B0)")
	set(t, s, "B0", "REF(A0)")
	require.Equal(t, ErrorMarker, display(t, s, "B0"))

	set(t, s, "A0", "5")
	assert.Equal(t, "5", display(t, s, "B0"))
	assert.Equal(t, "REF(A0)", cellAt(t, s, "B0").RawValue())
	assert.Equal(t, []*Cell{cellAt(t, s, "B0")}, cellAt(t, s, "A0").Dependents())

	set(t, s, "A0", "6")
	assert.Equal(t, "6", display(t, s, "B0"))
}

func TestCell_BreakingLongCycleRecomputesRefusedCell(t *testing.T) {
	s := NewSheet()
	set(t, s, "A0", "REF(C0)")
	set(t, s, "C0", "REF(B0)")
	set(t, s, "B0", "REF(A0) + 1")
	require.Equal(t, ErrorMarker+" + 1", display(t, s, "B0"))

	set(t, s, "C0", "5")
	assert.Equal(t, "5", display(t, s, "A0"))
	assert.Equal(t, "6", display(t, s, "B0"))
}

func TestCell_UnbrokenCycleStaysError(t *testing.T) {
	s := NewSheet()
	set(t, s, "A0", "REF(B0) + REF(C0)")
	set(t, s, "B0", "REF(A0)")
	require.Equal(t, ErrorMarker, display(t, s, "B0"))

	// A0 is recomputed but still reads B0, so B0 must not be retried.
	set(t, s, "C0", "1")
	assert.Equal(t, ErrorMarker, display(t, s, "B0"))
	assert.Equal(t, StateError, cellAt(t, s, "B0").State())
}

func TestCell_DetachBreakingCycleRecomputesRefusedCell(t *testing.T) {
	s := NewSheet()
	set(t, s, "A0", "1")
	a0, b0 := cellAt(t, s, "A0"), cellAt(t, s, "B0")
	require.NoError(t, b0.Attach(a0))
	set(t, s, "B0", "REF(A0)")
	require.Equal(t, ErrorMarker, b0.Display())

	b0.Detach(a0)
	assert.Equal(t, "1", b0.Display())
}

func TestCell_CycleKeepsOtherTokens(t *testing.T) {
	s := NewSheet()
	set(t, s, "B0", "4")
	set(t, s, "A0", "REF(B0) + REF(A0)")
	assert.Equal(t, "4 + Error!", display(t, s, "A0"))
	assert.Equal(t, []*Cell{cellAt(t, s, "B0")}, cellAt(t, s, "A0").Dependencies())
}

func TestCell_AttachSelfSignalsCycle(t *testing.T) {
	s := NewSheet()
	c := cellAt(t, s, "A0")
	before := len(c.Dependents())
	err := c.Attach(c)
	assert.ErrorIs(t, err, ErrCyclicReference)
	assert.Len(t, c.Dependents(), before)
}

func TestCell_AttachDetach(t *testing.T) {
	s := NewSheet()
	a, b := cellAt(t, s, "A0"), cellAt(t, s, "B0")
	require.NoError(t, a.Attach(b))
	assert.Equal(t, []*Cell{b}, a.Dependents())
	assert.ErrorIs(t, b.Attach(a), ErrCyclicReference)

	a.Detach(b)
	assert.Empty(t, a.Dependents())
	a.Detach(b)
}

func TestCell_OutOfRangeReference(t *testing.T) {
	s := NewSheet()
	set(t, s, "A0", "REF(Z99)")
	assert.Equal(t, ErrorMarker, display(t, s, "A0"))
	assert.Empty(t, cellAt(t, s, "A0").Dependencies())
}

func TestCell_State(t *testing.T) {
	s := NewSheet()
	assert.Equal(t, StateEmpty, cellAt(t, s, "A0").State())

	set(t, s, "A0", "hello")
	assert.Equal(t, StateLiteral, cellAt(t, s, "A0").State())

	set(t, s, "A1", "REF(A0)")
	assert.Equal(t, StateFormula, cellAt(t, s, "A1").State())

	set(t, s, "A2", "REF(A2)")
	assert.Equal(t, StateError, cellAt(t, s, "A2").State())
	assert.Equal(t, "error", StateError.String())
}

func TestCell_Clear(t *testing.T) {
	s := NewSheet()
	set(t, s, "A0", "1")
	set(t, s, "A1", "REF(A0)")
	a1 := cellAt(t, s, "A1")
	require.NoError(t, a1.Clear(context.Background()))

	assert.Equal(t, "", a1.Display())
	assert.Equal(t, "", a1.RawValue())
	assert.Empty(t, cellAt(t, s, "A0").Dependents())
}

func TestCell_UpdateWithDoneContext(t *testing.T) {
	s := NewSheet()
	set(t, s, "A0", "1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cellAt(t, s, "A0").UpdateValue(ctx, "2")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "1", display(t, s, "A0"))
}

func TestCell_Watch(t *testing.T) {
	s := NewSheet()
	set(t, s, "A1", "REF(A0) * 2")

	var seen []string
	unwatch := cellAt(t, s, "A1").Watch(ObserverFunc(func(c *Cell, v Value) {
		seen = append(seen, v.String())
	}))
	set(t, s, "A0", "2")
	set(t, s, "A0", "3")
	assert.Equal(t, []string{"4", "6"}, seen)

	unwatch()
	set(t, s, "A0", "4")
	assert.Len(t, seen, 2)
	assert.Equal(t, "8", display(t, s, "A1"))
}

func TestCell_Coord(t *testing.T) {
	s := NewSheet()
	coord, ok := cellAt(t, s, "C7").Coord()
	require.True(t, ok)
	assert.Equal(t, NewCoord(2, 7), coord)
}
