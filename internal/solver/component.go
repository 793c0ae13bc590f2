package solver

import (
	"fmt"

	"github.com/tyfer-lang/tyfer/internal/constraint"
	"github.com/tyfer-lang/tyfer/internal/graph"
)

// ComponentStep owns one connected component of the decomposition for
// the duration of its own sub-search. Its componentScope isolates the
// component's type variables and constraints as the system's active
// pools, so the simplification procedure, which assumes it operates
// over the entire system, sees only this component.
type ComponentStep struct {
	baseStep

	index         int
	originalScore Score
	scope         *componentScope

	typeVars    []int
	constraints []*constraint.Constraint
}

func NewComponentStep(cs *System, index int, comp graph.Component, solutions *[]Solution) *ComponentStep {
	return &ComponentStep{
		baseStep:      baseStep{cs: cs, solutions: solutions},
		index:         index,
		originalScore: cs.currentScore,
		typeVars:      comp.TypeVars,
		constraints:   comp.Constraints,
	}
}

func (s *ComponentStep) Advance() StepResult {
	cs := s.cs
	cs.trace(fmt.Sprintf("component #%d", s.index))
	if s.scope == nil {
		s.scope = newComponentScope(s)
	}
	frame := searchFrame{
		originalScore: s.originalScore,
		chainMark:     s.scope.prevChain,
		solutions:     s.solutions,
	}
	if cs.continueSearch(frame) == StepSolved {
		return solved()
	}
	return failed()
}

// Release rewinds the component scope, returning the saved pools to
// the system exactly as they were before the component ran.
func (s *ComponentStep) Release() {
	if s.scope == nil {
		return
	}
	s.scope.release()
	s.scope = nil
}

// componentScope swaps the system's active pools for the component's
// private ones. The component pretends, for the duration of its own
// search, to be the entire system.
type componentScope struct {
	cs    *System
	inner *Scope

	prevTypeVars    []int
	prevConstraints *constraint.List
	prevChain       *ResolvedOverload
}

func newComponentScope(step *ComponentStep) *componentScope {
	cs := step.cs
	c := &componentScope{
		cs:              cs,
		prevTypeVars:    cs.typeVars,
		prevConstraints: cs.constraints,
		prevChain:       cs.resolvedOverloads,
	}
	cs.typeVars = append([]int(nil), step.typeVars...)
	cs.constraints = constraint.NewList(step.constraints...)
	c.inner = cs.NewScope()
	return c
}

func (c *componentScope) release() {
	// Rewind search mutations first; they reference the component's
	// pools, which must still be installed.
	c.inner.Release()
	c.cs.typeVars = c.prevTypeVars
	c.cs.constraints = c.prevConstraints
}
