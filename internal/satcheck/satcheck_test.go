package satcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyfer-lang/tyfer/internal/constraint"
	"github.com/tyfer-lang/tyfer/internal/solver"
	"github.com/tyfer-lang/tyfer/internal/types"
)

func mustNew(t *testing.T, options ...solver.Option) *solver.System {
	t.Helper()
	cs, err := solver.New(options...)
	require.NoError(t, err)
	return cs
}

func TestFeasibleWithoutDisjunctions(t *testing.T) {
	cs := mustNew(t)
	x := cs.NewTypeVar()
	cs.NewEqual(x, types.Primitive{Name: "Int"})
	assert.True(t, Feasible(cs))
}

func TestFeasibleCompatibleChoices(t *testing.T) {
	cs := mustNew(t)
	x := cs.NewTypeVar()
	cs.NewDisjunction([]*constraint.Constraint{
		cs.NewChoice("a", false, x, types.Primitive{Name: "Int"}),
		cs.NewChoice("b", false, x, types.Primitive{Name: "String"}),
	})
	assert.True(t, Feasible(cs))
}

func TestInfeasibleCrossDisjunctionConflict(t *testing.T) {
	cs := mustNew(t)
	x := cs.NewTypeVar()
	cs.NewDisjunction([]*constraint.Constraint{
		cs.NewChoice("a", false, x, types.Primitive{Name: "Int"}),
	})
	cs.NewDisjunction([]*constraint.Constraint{
		cs.NewChoice("b", false, x, types.Primitive{Name: "String"}),
	})
	assert.False(t, Feasible(cs))
}

func TestFeasibleCrossDisjunctionWithConversion(t *testing.T) {
	cs := mustNew(t, solver.WithConversions(map[string]string{"Int": "Double"}))
	x := cs.NewTypeVar()
	cs.NewDisjunction([]*constraint.Constraint{
		cs.NewChoice("a", false, x, types.Primitive{Name: "Int"}),
	})
	cs.NewDisjunction([]*constraint.Constraint{
		cs.NewChoice("b", false, x, types.Primitive{Name: "Double"}),
	})
	assert.True(t, Feasible(cs))
}

func TestInfeasibleAgainstFixedBinding(t *testing.T) {
	cs := mustNew(t)
	x := cs.NewTypeVar()
	cs.NewEqual(x, types.Primitive{Name: "Int"})
	cs.NewDisjunction([]*constraint.Constraint{
		cs.NewChoice("a", false, x, types.Primitive{Name: "String"}),
	})
	assert.False(t, Feasible(cs))
}

func TestInfeasibleAllChoicesDisabled(t *testing.T) {
	cs := mustNew(t)
	x := cs.NewTypeVar()
	d := cs.NewDisjunction([]*constraint.Constraint{
		cs.NewChoice("a", false, x, types.Primitive{Name: "Int"}),
	})
	d.Choices()[0].SetDisabled()
	assert.False(t, Feasible(cs))
}

func TestFeasibilityIgnoresNonPrimitiveShapes(t *testing.T) {
	cs := mustNew(t)
	x := cs.NewTypeVar()
	y := cs.NewTypeVar()
	fn := types.Function{Params: []types.Type{y}, Result: types.Primitive{Name: "Int"}}
	cs.NewEqual(x, fn)
	cs.NewDisjunction([]*constraint.Constraint{
		cs.NewChoice("a", false, x, types.Primitive{Name: "Int"}),
	})
	// A function against a primitive could still be ruled out by the
	// full solver, but the prefilter stays conservative.
	assert.True(t, Feasible(cs))
}
