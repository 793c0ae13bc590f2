package solver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyfer-lang/tyfer/internal/constraint"
	"github.com/tyfer-lang/tyfer/internal/types"
	"github.com/tyfer-lang/tyfer/pkg/tyfer"
)

func mustNew(t *testing.T, options ...Option) *System {
	t.Helper()
	cs, err := New(options...)
	require.NoError(t, err)
	return cs
}

func bindingOf(t *testing.T, s Solution, id int) string {
	t.Helper()
	bound, ok := s.Bindings[id]
	require.True(t, ok, "no binding for $T%d", id)
	return bound.String()
}

func TestSolveSingleEquality(t *testing.T) {
	cs := mustNew(t)
	x := cs.NewTypeVar()
	cs.NewEqual(x, types.Primitive{Name: "Int"})

	solutions, err := cs.Solve(context.Background())
	require.NoError(t, err)
	require.Len(t, solutions, 1)
	assert.Equal(t, "Int", bindingOf(t, solutions[0], x.ID))
	assert.True(t, solutions[0].Score.IsZero())
}

func TestSolveEmptySystemIsVacuouslySolved(t *testing.T) {
	cs := mustNew(t)
	solutions, err := cs.Solve(context.Background())
	require.NoError(t, err)
	require.Len(t, solutions, 1)
	assert.Empty(t, solutions[0].Bindings)
}

func TestSolvePicksCheapestOverload(t *testing.T) {
	cs := mustNew(t, WithConversions(map[string]string{"Int": "Double"}))
	x := cs.NewTypeVar()
	cs.NewEqual(x, types.Primitive{Name: "Double"})
	d := cs.NewDisjunction([]*constraint.Constraint{
		cs.NewChoice("plusInt", false, x, types.Primitive{Name: "Int"}),
		cs.NewChoice("plusDouble", false, x, types.Primitive{Name: "Double"}),
	})

	solutions, err := cs.Solve(context.Background())
	require.NoError(t, err)
	require.Len(t, solutions, 1)
	assert.Equal(t, "Double", bindingOf(t, solutions[0], x.ID))
	assert.Equal(t, tyfer.Identifier("plusDouble"), solutions[0].Overloads[d.ID()])
	assert.True(t, solutions[0].Score.IsZero())
}

func TestSolveAvoidsGenericOverloads(t *testing.T) {
	cs := mustNew(t)
	x := cs.NewTypeVar()
	d := cs.NewDisjunction([]*constraint.Constraint{
		cs.NewChoice("plusGeneric", true, x, types.Primitive{Name: "Int"}),
		cs.NewChoice("plusInt", false, x, types.Primitive{Name: "Int"}),
	})

	solutions, err := cs.Solve(context.Background())
	require.NoError(t, err)
	require.Len(t, solutions, 1)
	assert.Equal(t, tyfer.Identifier("plusInt"), solutions[0].Overloads[d.ID()])
	assert.True(t, solutions[0].Score.IsZero())
}

func TestSolveRetainAllKeepsEveryAssignment(t *testing.T) {
	cs := mustNew(t, RetainAllSolutions(), WithConversions(map[string]string{"Int": "Double"}))
	x := cs.NewTypeVar()
	cs.NewEqual(x, types.Primitive{Name: "Double"})
	cs.NewDisjunction([]*constraint.Constraint{
		cs.NewChoice("plusInt", false, x, types.Primitive{Name: "Int"}),
		cs.NewChoice("plusDouble", false, x, types.Primitive{Name: "Double"}),
	})

	solutions, err := cs.Solve(context.Background())
	require.NoError(t, err)
	assert.Len(t, solutions, 2, "the worse-scored assignment is retained too")
}

func TestSolveStopsAtFirstBaselineChoice(t *testing.T) {
	cs := mustNew(t)
	x := cs.NewTypeVar()
	d := cs.NewDisjunction([]*constraint.Constraint{
		cs.NewChoice("a", false, x, types.Primitive{Name: "Int"}),
		cs.NewChoice("b", false, x, types.Primitive{Name: "String"}),
	})

	solutions, err := cs.Solve(context.Background())
	require.NoError(t, err)
	require.Len(t, solutions, 1, "a zero-cost choice cannot be beaten")
	assert.Equal(t, tyfer.Identifier("a"), solutions[0].Overloads[d.ID()])
}

func TestSolveReportsAmbiguityWhenRetainingAll(t *testing.T) {
	cs := mustNew(t, RetainAllSolutions())
	x := cs.NewTypeVar()
	cs.NewDisjunction([]*constraint.Constraint{
		cs.NewChoice("a", false, x, types.Primitive{Name: "Int"}),
		cs.NewChoice("b", false, x, types.Primitive{Name: "String"}),
	})

	solutions, err := cs.Solve(context.Background())
	require.NoError(t, err)
	assert.Len(t, solutions, 2, "equally scored assignments are all reported")
}

func TestSolveMergesIndependentComponents(t *testing.T) {
	cs := mustNew(t, WithConversions(map[string]string{"Int": "Double"}))
	x := cs.NewTypeVar()
	y := cs.NewTypeVar()
	cs.NewEqual(x, types.Primitive{Name: "Int"})
	cs.NewEqual(y, types.Primitive{Name: "Double"})
	cs.NewEqual(y, types.Primitive{Name: "Int"})

	solutions, err := cs.Solve(context.Background())
	require.NoError(t, err)
	require.Len(t, solutions, 1)
	assert.Equal(t, "Int", bindingOf(t, solutions[0], x.ID))
	assert.Equal(t, ScoreOf(ScoreConversion, 1), solutions[0].Score, "component scores add")
}

func TestSolveCrossProductOfComponentSolutions(t *testing.T) {
	cs := mustNew(t, RetainAllSolutions())
	x := cs.NewTypeVar()
	y := cs.NewTypeVar()
	cs.NewEqual(x, types.Primitive{Name: "Int"})
	cs.NewDisjunction([]*constraint.Constraint{
		cs.NewChoice("a", false, y, types.Primitive{Name: "Int"}),
		cs.NewChoice("b", false, y, types.Primitive{Name: "String"}),
	})

	solutions, err := cs.Solve(context.Background())
	require.NoError(t, err)
	require.Len(t, solutions, 2)

	var ys []string
	for _, s := range solutions {
		assert.Equal(t, "Int", bindingOf(t, s, x.ID), "the x component contributes to every combination")
		ys = append(ys, bindingOf(t, s, y.ID))
	}
	assert.ElementsMatch(t, []string{"Int", "String"}, ys)
}

func TestSolveDefaultsProtocolOnlyVariable(t *testing.T) {
	cs := mustNew(t,
		WithConformances(map[string][]string{"Int": {"Numeric"}}),
		WithDefaults(map[string]string{"Numeric": "Int"}),
	)
	x := cs.NewTypeVar()
	cs.NewConforms(x, "Numeric")

	solutions, err := cs.Solve(context.Background())
	require.NoError(t, err)
	require.Len(t, solutions, 1)
	assert.Equal(t, "Int", bindingOf(t, solutions[0], x.ID))
	assert.Equal(t, ScoreOf(ScoreDefaulted, 1), solutions[0].Score)
}

func TestSolveNotSolvable(t *testing.T) {
	cs := mustNew(t)
	x := cs.NewTypeVar()
	cs.NewEqual(x, types.Primitive{Name: "Int"})
	cs.NewEqual(x, types.Primitive{Name: "String"})

	_, err := cs.Solve(context.Background())
	var unsat tyfer.NotSolvable
	require.ErrorAs(t, err, &unsat)
	assert.NotEmpty(t, unsat, "failures carry conflict descriptions")
}

func TestSolveFailsOnUnconstrainedVariable(t *testing.T) {
	cs := mustNew(t)
	cs.NewTypeVar()

	_, err := cs.Solve(context.Background())
	var unsat tyfer.NotSolvable
	assert.ErrorAs(t, err, &unsat)
}

func TestSolveVerifiesOrphans(t *testing.T) {
	cs := mustNew(t)
	x := cs.NewTypeVar()
	cs.NewEqual(x, types.Primitive{Name: "Int"})
	cs.NewEqual(types.Primitive{Name: "Int"}, types.Primitive{Name: "String"})

	_, err := cs.Solve(context.Background())
	var unsat tyfer.NotSolvable
	assert.ErrorAs(t, err, &unsat)
}

func TestSolveHoldsSatisfiedOrphans(t *testing.T) {
	cs := mustNew(t)
	x := cs.NewTypeVar()
	cs.NewEqual(x, types.Primitive{Name: "Int"})
	cs.NewEqual(types.Primitive{Name: "Int"}, types.Primitive{Name: "Int"})

	solutions, err := cs.Solve(context.Background())
	require.NoError(t, err)
	assert.Len(t, solutions, 1)
}

func TestSolveRecordsOrphansOnceAcrossSolves(t *testing.T) {
	cs := mustNew(t)
	x := cs.NewTypeVar()
	cs.NewEqual(x, types.Primitive{Name: "Int"})
	orphan := cs.NewEqual(types.Primitive{Name: "Int"}, types.Primitive{Name: "Int"})

	_, err := cs.Solve(context.Background())
	require.NoError(t, err)
	require.Len(t, cs.Graph().Orphaned(), 1)

	_, err = cs.Solve(context.Background())
	require.NoError(t, err)
	require.Len(t, cs.Graph().Orphaned(), 1, "repeated solves must not duplicate the orphan")
	assert.Same(t, orphan, cs.Graph().Orphaned()[0])
}

func TestSolveChargesConvertibleOrphans(t *testing.T) {
	cs := mustNew(t, WithConversions(map[string]string{"Int": "Double"}))
	x := cs.NewTypeVar()
	cs.NewEqual(x, types.Primitive{Name: "Int"})
	cs.NewEqual(types.Primitive{Name: "Int"}, types.Primitive{Name: "Double"})

	solutions, err := cs.Solve(context.Background())
	require.NoError(t, err)
	require.Len(t, solutions, 1)
	assert.Equal(t, ScoreOf(ScoreConversion, 1), solutions[0].Score,
		"an orphaned conversion costs the same as one inside a component")
}

func TestSolveRunsOutOfSteps(t *testing.T) {
	cs := mustNew(t, WithMaxSteps(1))
	x := cs.NewTypeVar()
	cs.NewDisjunction([]*constraint.Constraint{
		cs.NewChoice("a", false, x, types.Primitive{Name: "Int"}),
		cs.NewChoice("b", false, x, types.Primitive{Name: "Double"}),
	})

	_, err := cs.Solve(context.Background())
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestSolveHonorsContextCancellation(t *testing.T) {
	cs := mustNew(t)
	x := cs.NewTypeVar()
	cs.NewEqual(x, types.Primitive{Name: "Int"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := cs.Solve(ctx)
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestSolveIsRepeatable(t *testing.T) {
	cs := mustNew(t)
	x := cs.NewTypeVar()
	cs.NewDisjunction([]*constraint.Constraint{
		cs.NewChoice("a", false, x, types.Primitive{Name: "Int"}),
	})

	first, err := cs.Solve(context.Background())
	require.NoError(t, err)
	second, err := cs.Solve(context.Background())
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.True(t, sameSolution(first[0], second[0]), "the search restores all shared state")
}

func TestSolveChainedOverloads(t *testing.T) {
	// f0 and f1 are two uses of an overloaded operator applied as
	// (t0 op Double) op Double.
	cs := mustNew(t,
		WithConformances(map[string][]string{"Int": {"Numeric"}, "Double": {"Numeric"}}),
		WithConversions(map[string]string{"Int": "Double"}),
		WithDefaults(map[string]string{"Numeric": "Int"}),
	)
	t0 := cs.NewTypeVar()
	t1 := cs.NewTypeVar()
	t2 := cs.NewTypeVar()
	f0 := cs.NewTypeVar()
	f1 := cs.NewTypeVar()

	plus := func(v types.Var) *constraint.Constraint {
		return cs.NewDisjunction([]*constraint.Constraint{
			cs.NewChoice("plusInt", false, v, types.Function{
				Params: []types.Type{types.Primitive{Name: "Int"}, types.Primitive{Name: "Int"}},
				Result: types.Primitive{Name: "Int"},
			}),
			cs.NewChoice("plusDouble", false, v, types.Function{
				Params: []types.Type{types.Primitive{Name: "Double"}, types.Primitive{Name: "Double"}},
				Result: types.Primitive{Name: "Double"},
			}),
		})
	}
	cs.NewConforms(t0, "Numeric")
	d0 := plus(f0)
	cs.NewEqual(f0, types.Function{Params: []types.Type{t0, types.Primitive{Name: "Double"}}, Result: t1})
	d1 := plus(f1)
	cs.NewEqual(f1, types.Function{Params: []types.Type{t1, types.Primitive{Name: "Double"}}, Result: t2})

	solutions, err := cs.Solve(context.Background())
	require.NoError(t, err)
	require.Len(t, solutions, 1)

	best := solutions[0]
	assert.Equal(t, "Double", bindingOf(t, best, t0.ID))
	assert.Equal(t, "Double", bindingOf(t, best, t1.ID))
	assert.Equal(t, "Double", bindingOf(t, best, t2.ID))
	assert.Equal(t, tyfer.Identifier("plusDouble"), best.Overloads[d0.ID()])
	assert.Equal(t, tyfer.Identifier("plusDouble"), best.Overloads[d1.ID()])
	assert.True(t, best.Score.IsZero())
}
