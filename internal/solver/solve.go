package solver

import (
	"context"

	"github.com/tyfer-lang/tyfer/internal/types"
	"github.com/tyfer-lang/tyfer/pkg/tyfer"
)

// Solve searches for consistent assignments of the system's type
// variables. It returns the best-scored solutions (or every solution
// in retain-all mode), tyfer.NotSolvable when the search space is
// exhausted without success, or ErrIncomplete when the context or the
// step budget ran out first.
//
// The shared state is restored to its pre-Solve shape on every path,
// so a system can be solved repeatedly.
func (cs *System) Solve(ctx context.Context) ([]Solution, error) {
	cs.ctx = ctx
	cs.usedSteps = 0
	cs.incomplete = false
	cs.failures = nil

	var solutions []Solution
	root := cs.NewScope()
	kind := cs.runStep(NewSplitterStep(cs, &solutions))
	root.Release()

	cs.log.Debug().
		Stringer("outcome", kind).
		Int("steps", cs.usedSteps).
		Int("solutions", len(solutions)).
		Msg("solve finished")

	if cs.incomplete {
		return nil, ErrIncomplete
	}
	if kind != StepSolved || len(solutions) == 0 {
		return nil, tyfer.NotSolvable(cs.failures)
	}
	if !cs.retainAll {
		solutions = FilterSolutions(solutions, true)
	}
	return solutions, nil
}

// runStep drives one step to completion: it advances the step,
// recursively runs any follow-up steps it produces, and re-advances
// the step once they are done. The step is released before control
// returns past it, which is what enforces the LIFO discipline on
// scope creation and destruction.
func (cs *System) runStep(step Step) SolutionKind {
	defer step.Release()
	cs.depth++
	defer func() { cs.depth-- }()
	for {
		if !cs.bumpSteps() {
			return StepFailed
		}
		res := step.Advance()
		if res.Kind != StepUnsolved {
			return res.Kind
		}
		if len(res.Followups) == 0 {
			return StepFailed
		}
		for _, f := range res.Followups {
			cs.runStep(f)
		}
	}
}

// continueSearch resumes the depth-first search over the current
// (possibly component-isolated) pools: simplify, then either record a
// leaf solution or descend through the next disjunction or candidate
// binding.
func (cs *System) continueSearch(frame searchFrame) SolutionKind {
	switch cs.Simplify() {
	case SimplifyFailed:
		return StepFailed
	case SimplifySolved:
		*frame.solutions = append(*frame.solutions, cs.buildSolution(frame))
		return StepSolved
	}

	if d := cs.selectDisjunction(); d != nil {
		return cs.runStep(NewDisjunctionStep(cs, d, frame))
	}
	if id, bindings := cs.selectBindings(); bindings != nil {
		return cs.runStep(NewTypeVariableStep(cs, id, bindings, frame))
	}
	// Unbound type variables remain with nothing to infer them from.
	return StepFailed
}

// buildSolution snapshots the current assignment as a leaf solution.
// The score is the delta against the owning component's baseline, and
// only overloads resolved inside the component are included.
func (cs *System) buildSolution(frame searchFrame) Solution {
	bindings := make(map[int]types.Type, len(cs.typeVars))
	for _, id := range cs.typeVars {
		bindings[id] = cs.arena.Resolve(types.Var{ID: id})
	}
	overloads := make(map[int]tyfer.Identifier)
	for r := cs.resolvedOverloads; r != nil && r != frame.chainMark; r = r.Previous {
		if _, dup := overloads[r.Disjunction]; !dup && r.Choice != "" {
			overloads[r.Disjunction] = r.Choice
		}
	}
	return Solution{
		Bindings:  bindings,
		Overloads: overloads,
		Score:     cs.currentScore.Sub(frame.originalScore),
	}
}

func (cs *System) bumpSteps() bool {
	if cs.ctx != nil && cs.ctx.Err() != nil {
		cs.incomplete = true
		return false
	}
	cs.usedSteps++
	if cs.usedSteps > cs.maxSteps {
		cs.incomplete = true
		return false
	}
	return true
}
