package solver

import (
	"github.com/tyfer-lang/tyfer/internal/constraint"
	"github.com/tyfer-lang/tyfer/internal/types"
	"github.com/tyfer-lang/tyfer/pkg/tyfer"
)

type splitterState int

const (
	// stateSplit decomposes the system into independently solvable
	// component steps.
	stateSplit splitterState = iota
	// stateMerge combines the solutions produced by each component
	// into overall solutions.
	stateMerge
)

// SplitterStep decomposes the active constraint system into connected
// components, hands each to a ComponentStep, and merges their partial
// solution sets once they have all finished.
type SplitterStep struct {
	baseStep

	state       splitterState
	partial     [][]Solution
	orphans     []*constraint.Constraint
	orphanScore Score
}

func NewSplitterStep(cs *System, solutions *[]Solution) *SplitterStep {
	return &SplitterStep{
		baseStep: baseStep{cs: cs, solutions: solutions},
		state:    stateSplit,
	}
}

func (s *SplitterStep) Advance() StepResult {
	switch s.state {
	case stateSplit:
		s.state = stateMerge
		return s.split()
	default:
		s.cs.trace("splitter: merge")
		if s.merge() {
			return solved()
		}
		return failed()
	}
}

// Release hands any outstanding orphaned constraints back to the
// constraint graph for the caller to reattach.
func (s *SplitterStep) Release() {
	s.cs.cg.SetOrphaned(s.orphans)
}

func (s *SplitterStep) split() StepResult {
	cs := s.cs
	cs.trace("splitter: split")

	active := make([]*constraint.Constraint, cs.constraints.Len())
	copy(active, cs.constraints.Items())
	components, orphans := cs.cg.Components(cs.typeVars, active)
	// Orphans never leave the active list, so decomposition re-discovers
	// every orphan a previous solve handed back to the graph. The graph's
	// list is drained so each orphan is recorded exactly once.
	cs.cg.TakeOrphaned()
	s.orphans = orphans

	// Orphans have no free type variables, so they cannot join any
	// component; they either hold, at a possible conversion cost, or
	// fail the whole system.
	for _, o := range s.orphans {
		score, ok := cs.verifyOrphan(o)
		if !ok {
			cs.recordFailure(o.String())
			return failed()
		}
		s.orphanScore = s.orphanScore.Add(score)
	}

	cs.log.Debug().
		Int("components", len(components)).
		Int("orphans", len(s.orphans)).
		Msg("decomposed constraint system")

	if len(components) == 0 {
		// Nothing to infer: the system is vacuously solved.
		*s.solutions = append(*s.solutions, Solution{
			Bindings:  map[int]types.Type{},
			Overloads: map[int]tyfer.Identifier{},
			Score:     s.orphanScore,
		})
		s.partial = nil
		return solved()
	}

	s.partial = make([][]Solution, len(components))
	followups := make([]Step, len(components))
	for i, comp := range components {
		followups[i] = NewComponentStep(cs, i, comp, &s.partial[i])
	}
	return unsolved(followups...)
}

// merge computes the cross-product of the per-component partial
// solution sets. Components are type-disconnected, so each combination
// is consistent and its score is the sum of the parts. A component
// with zero partial solutions fails the whole split.
func (s *SplitterStep) merge() bool {
	acc := []Solution{{
		Bindings:  map[int]types.Type{},
		Overloads: map[int]tyfer.Identifier{},
	}}
	for _, partial := range s.partial {
		if len(partial) == 0 {
			return false
		}
		next := make([]Solution, 0, len(acc)*len(partial))
		for _, a := range acc {
			for _, p := range partial {
				next = append(next, a.merge(p))
			}
		}
		acc = next
	}
	// Orphans cost the same wherever they land, so their score applies
	// uniformly to every combination.
	for i := range acc {
		acc[i].Score = acc[i].Score.Add(s.orphanScore)
	}
	acc = s.filterSolutions(acc, true)
	*s.solutions = append(*s.solutions, acc...)
	return len(acc) > 0
}
