package rules

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProgram() Program {
	return Program{
		{Up: Ptr(CellWall), NextMove: MoveDown, NextState: StateA},
		{Berry: Ptr(BerryTaken), NextMove: MoveLeft, NextState: StateB},
		{State: Ptr(StateC), Right: Ptr(CellGhost), NextMove: MoveUp, NextState: StateC},
	}
}

func TestOutOfRangeEditsAreNoOps(t *testing.T) {
	p := sampleProgram()
	r := NewRule()

	for _, idx := range []int{-1, 3, 42} {
		if diff := cmp.Diff(p, p.Replace(idx, r)); diff != "" {
			t.Errorf("Replace(%d) changed program (-want +got):\n%s", idx, diff)
		}
		if diff := cmp.Diff(p, p.Remove(idx)); diff != "" {
			t.Errorf("Remove(%d) changed program (-want +got):\n%s", idx, diff)
		}
		if diff := cmp.Diff(p, p.CycleField(idx, FieldUp)); diff != "" {
			t.Errorf("CycleField(%d) changed program (-want +got):\n%s", idx, diff)
		}
	}

	// The last index has no successor to swap with.
	for _, idx := range []int{-1, 2, 3} {
		if diff := cmp.Diff(p, p.SwapAdjacent(idx)); diff != "" {
			t.Errorf("SwapAdjacent(%d) changed program (-want +got):\n%s", idx, diff)
		}
	}
}

func TestReplace(t *testing.T) {
	p := sampleProgram()
	r := Rule{Down: Ptr(CellEmpty), NextMove: MoveRight, NextState: StateH}

	got := p.Replace(1, r)
	require.Len(t, got, 3)
	assert.True(t, got[1].Equal(r))
	assert.True(t, p[1].Equal(sampleProgram()[1]), "input must not be modified")
}

func TestRemoveShiftsLeft(t *testing.T) {
	p := sampleProgram()

	got := p.Remove(0)
	want := Program{p[1], p[2]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Remove(0) (-want +got):\n%s", diff)
	}
	assert.Len(t, p, 3)
	assert.Empty(t, Program{NewRule()}.Remove(0))
}

func TestSwapAdjacentIsSelfInverse(t *testing.T) {
	p := sampleProgram()
	for i := 0; i < len(p)-1; i++ {
		swapped := p.SwapAdjacent(i)
		assert.True(t, swapped[i].Equal(p[i+1]))
		assert.True(t, swapped[i+1].Equal(p[i]))
		if diff := cmp.Diff(p, swapped.SwapAdjacent(i)); diff != "" {
			t.Errorf("SwapAdjacent(%d) twice (-want +got):\n%s", i, diff)
		}
	}
}

func TestMoveUpAndDown(t *testing.T) {
	p := sampleProgram()

	up := p.MoveUp(1)
	assert.True(t, up[0].Equal(p[1]))
	assert.True(t, up[1].Equal(p[0]))

	down := p.MoveDown(1)
	assert.True(t, down[2].Equal(p[1]))
	assert.True(t, down[1].Equal(p[2]))

	// Moving the first rule up or the last rule down does nothing.
	assert.Empty(t, cmp.Diff(p, p.MoveUp(0)))
	assert.Empty(t, cmp.Diff(p, p.MoveDown(2)))
}

func TestAppendAddsDefaultRule(t *testing.T) {
	var p Program
	for i := 1; i <= 3; i++ {
		next := p.Append()
		require.Len(t, next, len(p)+1)
		last := next[len(next)-1]
		assert.True(t, last.Equal(NewRule()))
		assert.Nil(t, last.Up)
		assert.Nil(t, last.Down)
		assert.Nil(t, last.Left)
		assert.Nil(t, last.Right)
		assert.Nil(t, last.Berry)
		assert.Nil(t, last.State)
		assert.Equal(t, MoveWait, last.NextMove)
		assert.Equal(t, StateA, last.NextState)
		p = next
	}
}

func TestAppendDoesNotAliasInput(t *testing.T) {
	base := make(Program, 1, 4)
	base[0] = NewRule()

	a := base.Append()
	b := base.Append()
	a[1] = a[1].Cycle(FieldNextMove)

	assert.Equal(t, MoveWait, b[1].NextMove)
}

func TestCycleFieldTouchesOnlyOneRule(t *testing.T) {
	p := sampleProgram()
	got := p.CycleField(2, FieldNextState)

	assert.Equal(t, StateD, got[2].NextState)
	assert.Equal(t, StateC, p[2].NextState)
	assert.True(t, got[0].Equal(p[0]))
	assert.True(t, got[1].Equal(p[1]))
}
