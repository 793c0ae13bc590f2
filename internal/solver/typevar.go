package solver

import (
	"fmt"

	"github.com/tyfer-lang/tyfer/internal/types"
)

// TypeVariableStep explores the candidate bindings of one type
// variable, most-preferred first. Each attempt opens and closes its
// own scope, so no attempt observably affects a sibling.
type TypeVariableStep struct {
	baseStep

	frame    searchFrame
	typeVar  int
	bindings []Binding
}

func NewTypeVariableStep(cs *System, typeVar int, bindings []Binding, frame searchFrame) *TypeVariableStep {
	return &TypeVariableStep{
		baseStep: baseStep{cs: cs, solutions: frame.solutions},
		frame:    frame,
		typeVar:  typeVar,
		bindings: bindings,
	}
}

func (s *TypeVariableStep) Advance() StepResult {
	cs := s.cs
	cs.trace(fmt.Sprintf("type variable %s", types.Var{ID: s.typeVar}))

	var local []Solution
	var bestSolved *Score
	for _, b := range s.bindings {
		if !cs.bumpSteps() {
			break
		}
		// After a success, a later binding is only worth attempting if
		// it could still match the accepted score. The bind-time
		// penalty is a lower bound on the attempt's final score, since
		// scores only ever grow.
		if bestSolved != nil && !cs.retainAll {
			projected := cs.currentScore.Add(b.penalty())
			if bestSolved.Less(projected) {
				continue
			}
		}

		scope := cs.NewScope()
		before := len(local)
		if cs.tryBinding(s.typeVar, b) {
			attempt := searchFrame{
				originalScore: s.frame.originalScore,
				chainMark:     s.frame.chainMark,
				solutions:     &local,
			}
			if cs.continueSearch(attempt) == StepSolved {
				solvedScore := bestAbsoluteScore(local[before:], s.frame.originalScore)
				if bestSolved == nil || solvedScore.Less(*bestSolved) {
					bestSolved = &solvedScore
				}
			}
		}
		scope.Release()
	}

	if len(local) == 0 {
		return failed()
	}
	local = s.filterSolutions(local, true)
	*s.frame.solutions = append(*s.frame.solutions, local...)
	return solved()
}

func (s *TypeVariableStep) Release() {
}

// tryBinding tentatively commits a candidate binding, charging its
// score penalty. It refuses cyclic bindings.
func (cs *System) tryBinding(varID int, b Binding) bool {
	if cs.arena.OccursIn(varID, b.Type) {
		return false
	}
	if p := b.penalty(); !p.IsZero() {
		cs.PushScoreDelta(p)
	}
	cs.BindTypeVar(varID, b.Type)
	return true
}

// bestAbsoluteScore returns the lowest absolute score among the given
// leaf solutions, whose recorded scores are deltas against base.
func bestAbsoluteScore(solutions []Solution, base Score) Score {
	best := base.Add(solutions[0].Score)
	for _, sol := range solutions[1:] {
		if abs := base.Add(sol.Score); abs.Less(best) {
			best = abs
		}
	}
	return best
}
