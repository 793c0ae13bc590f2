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

func TestDisjunctionStepDetachesAndRestores(t *testing.T) {
	cs := mustNew(t)
	x := cs.NewTypeVar()
	cs.NewEqual(x, types.Primitive{Name: "Int"})
	d := cs.NewDisjunction([]*constraint.Constraint{
		cs.NewChoice("a", false, x, types.Primitive{Name: "Int"}),
	})

	var solutions []Solution
	step := NewDisjunctionStep(cs, d, searchFrame{solutions: &solutions})

	_, active := cs.Constraints().Remove(d)
	assert.False(t, active, "the disjunction is detached while the step lives")
	assert.Equal(t, 1, cs.Constraints().Len())

	step.Release()
	require.Equal(t, 2, cs.Constraints().Len())
	assert.Same(t, d, cs.Constraints().At(1), "reattached at its original position")
}

func TestDisjunctionStepRestoresAfterPartialExploration(t *testing.T) {
	cs := mustNew(t)
	x := cs.NewTypeVar()
	cs.NewEqual(x, types.Primitive{Name: "Int"})
	d := cs.NewDisjunction([]*constraint.Constraint{
		cs.NewChoice("a", false, x, types.Primitive{Name: "Int"}),
		cs.NewChoice("b", false, x, types.Primitive{Name: "String"}),
	})

	var solutions []Solution
	step := NewDisjunctionStep(cs, d, searchFrame{solutions: &solutions})

	// The first choice solves at the baseline score, so the step stops
	// without ever producing the second one.
	res := step.Advance()
	require.Equal(t, StepSolved, res.Kind)
	require.Len(t, solutions, 1)
	assert.Equal(t, tyfer.Identifier("a"), solutions[0].Overloads[d.ID()])
	assert.Same(t, d.Choices()[0], step.lastSolvedChoice)

	step.Release()
	require.Equal(t, 2, cs.Constraints().Len())
	assert.Same(t, d, cs.Constraints().At(1), "back at its original position")
	assert.False(t, d.Choices()[0].IsDisabled())
	assert.False(t, d.Choices()[1].IsDisabled())
	assert.False(t, cs.Arena().Bound(x.ID), "the attempt's bindings are unwound")
}

func TestDisjunctionStepReenablesPrunedChoices(t *testing.T) {
	cs := mustNew(t)
	a := cs.NewTypeVar()
	b := cs.NewTypeVar()
	cs.UnionTypeVars(a.ID, b.ID)
	repr := cs.Arena().Repr(a.ID)

	// A previous use of the same overload set already resolved the
	// class to declaration f.
	cs.RecordResolvedOverload(repr, types.Primitive{Name: "Int"}, "f", 99)

	child := a
	if repr == a.ID {
		child = b
	}
	d := cs.NewDisjunction([]*constraint.Constraint{
		cs.NewChoice("f", false, child, types.Primitive{Name: "Int"}),
		cs.NewChoice("g", false, child, types.Primitive{Name: "Double"}),
	})

	var solutions []Solution
	step := NewDisjunctionStep(cs, d, searchFrame{solutions: &solutions})
	assert.False(t, d.Choices()[0].IsDisabled())
	assert.True(t, d.Choices()[1].IsDisabled(), "choices naming other declarations are pruned")

	step.Release()
	assert.False(t, d.Choices()[1].IsDisabled(), "pruned choices come back on release")
}

func TestDisjunctionStepExploresChoicesInOrder(t *testing.T) {
	p := &choiceProducer{choices: []*constraint.Constraint{
		constraint.NewEqual(0, types.Primitive{Name: "A"}, types.Primitive{Name: "A"}),
		constraint.NewEqual(1, types.Primitive{Name: "B"}, types.Primitive{Name: "B"}),
	}}
	first := p.next()
	second := p.next()
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, 0, first.ID())
	assert.Equal(t, 1, second.ID())
	assert.Nil(t, p.next())
}

// buildMixedOverloads returns a system whose best solution requires
// picking between generic and concrete overloads under conversions.
func buildMixedOverloads(t *testing.T, options ...Option) *System {
	t.Helper()
	cs := mustNew(t, append(options, WithConversions(map[string]string{"Int": "Double"}))...)
	x := cs.NewTypeVar()
	y := cs.NewTypeVar()
	cs.NewEqual(x, types.Primitive{Name: "Double"})
	cs.NewDisjunction([]*constraint.Constraint{
		cs.NewChoice("intOp", false, x, types.Primitive{Name: "Int"}),
		cs.NewChoice("genericOp", true, x, types.Primitive{Name: "Double"}),
		cs.NewChoice("doubleOp", false, x, types.Primitive{Name: "Double"}),
	})
	cs.NewEqual(y, x)
	return cs
}

func TestDisjunctionPruningNeverLosesTheBestScore(t *testing.T) {
	pruned, err := buildMixedOverloads(t).Solve(context.Background())
	require.NoError(t, err)

	exhaustive, err := buildMixedOverloads(t, RetainAllSolutions()).Solve(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, exhaustive)

	best := exhaustive[0].Score
	for _, s := range exhaustive[1:] {
		if s.Score.Less(best) {
			best = s.Score
		}
	}

	require.NotEmpty(t, pruned)
	assert.Equal(t, best, pruned[0].Score, "branch-and-bound keeps an optimal assignment")
}

func TestDefaultSkipChoicePredicate(t *testing.T) {
	generic := constraint.NewEqual(0, types.Primitive{Name: "A"}, types.Primitive{Name: "A"}).MarkOverload("g", true)
	concrete := constraint.NewEqual(1, types.Primitive{Name: "A"}, types.Primitive{Name: "A"}).MarkOverload("c", false)

	baseline := ScoreOf(ScoreConversion, 1)
	atBaseline := baseline
	aboveBaseline := baseline.Add(ScoreOf(ScoreGenericOverload, 1))

	assert.False(t, defaultSkipChoice(generic, nil, baseline), "nothing solved yet")
	assert.False(t, defaultSkipChoice(concrete, &atBaseline, baseline), "concrete choices are never skipped")
	assert.True(t, defaultSkipChoice(generic, &atBaseline, baseline))
	assert.False(t, defaultSkipChoice(generic, &aboveBaseline, baseline),
		"a generic solution could still tie a non-generic one that needed a generic overload")
}
