package solver

import (
	"fmt"

	"github.com/tyfer-lang/tyfer/internal/constraint"
	"github.com/tyfer-lang/tyfer/internal/types"
)

// DisjunctionStep explores the choices of one overload disjunction.
// The disjunction is removed from the active list for the step's
// lifetime and reinserted at its original position on release, with
// every choice the step disabled re-enabled, no matter how many
// choices were actually tried.
type DisjunctionStep struct {
	baseStep

	frame       searchFrame
	disjunction *constraint.Constraint
	afterIndex  int
	baseline    Score
	disabled    []*constraint.Constraint
	producer    choiceProducer

	bestNonGenericScore *Score
	lastSolvedChoice    *constraint.Constraint
	lastSolvedScore     Score
}

func NewDisjunctionStep(cs *System, disjunction *constraint.Constraint, frame searchFrame) *DisjunctionStep {
	if disjunction.Kind() != constraint.Disjunction {
		panic("solver: disjunction step over a non-disjunction constraint")
	}
	if len(disjunction.Choices()) == 0 {
		panic("solver: malformed disjunction with no choices")
	}
	s := &DisjunctionStep{
		baseStep:    baseStep{cs: cs, solutions: frame.solutions},
		frame:       frame,
		disjunction: disjunction,
		afterIndex:  cs.Detach(disjunction),
		baseline:    cs.currentScore,
		producer:    choiceProducer{choices: disjunction.Choices()},
	}
	s.pruneOverloadSet(disjunction)
	return s
}

func (s *DisjunctionStep) Advance() StepResult {
	cs := s.cs
	cs.trace(fmt.Sprintf("disjunction #%d", s.disjunction.ID()))

	var local []Solution
	for choice := s.producer.next(); choice != nil; choice = s.producer.next() {
		if s.shouldSkipChoice(choice) {
			continue
		}
		if !cs.bumpSteps() {
			break
		}

		scope := cs.NewScope()
		before := len(local)
		kind := s.attempt(choice, &local)
		if kind == StepSolved {
			solvedScore := bestAbsoluteScore(local[before:], s.frame.originalScore)
			s.lastSolvedChoice, s.lastSolvedScore = choice, solvedScore
			if !choice.IsGeneric() {
				if s.bestNonGenericScore == nil || solvedScore.Less(*s.bestNonGenericScore) {
					best := solvedScore
					s.bestNonGenericScore = &best
				}
			}
		}
		scope.Release()

		// A choice that solved without adding any cost cannot be
		// beaten; stop unless every solution is wanted.
		if kind == StepSolved && !cs.retainAll && s.lastSolvedScore == s.baseline {
			break
		}
	}

	if len(local) == 0 {
		return failed()
	}
	local = s.filterSolutions(local, true)
	*s.frame.solutions = append(*s.frame.solutions, local...)
	return solved()
}

// Release restores the disjunction to its original list position and
// re-enables every choice this step disabled.
func (s *DisjunctionStep) Release() {
	s.cs.Attach(s.afterIndex, s.disjunction)
	for _, choice := range s.disabled {
		choice.SetEnabled()
	}
}

// attempt activates one choice and continues the search under the
// caller's scope.
func (s *DisjunctionStep) attempt(choice *constraint.Constraint, local *[]Solution) SolutionKind {
	cs := s.cs
	cs.trace(fmt.Sprintf("trying choice %s", choice))

	cs.InsertConstraint(choice)
	if choice.IsGeneric() {
		cs.IncreaseScore(ScoreGenericOverload, 1)
	}
	if choice.Decl() != "" {
		subject := -1
		if v, ok := cs.arena.Resolve(choice.Left()).(types.Var); ok {
			subject = v.ID
		}
		cs.RecordResolvedOverload(subject, cs.arena.Resolve(choice.Right()), choice.Decl(), s.disjunction.ID())
	}

	return cs.continueSearch(searchFrame{
		originalScore: s.frame.originalScore,
		chainMark:     s.frame.chainMark,
		solutions:     local,
	})
}

func (s *DisjunctionStep) shouldSkipChoice(choice *constraint.Constraint) bool {
	if choice.IsDisabled() {
		return true
	}
	return s.cs.skipChoice(choice, s.bestNonGenericScore, s.baseline)
}

// pruneOverloadSet handles repeated uses of the same overload set,
// such as chained uses of one binary operator: when the first choice's
// subject variable has already been unified into a class with a
// resolved overload, every choice naming a different declaration is
// disabled for the lifetime of this step.
func (s *DisjunctionStep) pruneOverloadSet(disjunction *constraint.Constraint) {
	cs := s.cs
	first := disjunction.Choices()[0]
	v, ok := first.Left().(types.Var)
	if !ok {
		return
	}
	repr := cs.arena.Repr(v.ID)
	if repr == v.ID {
		return
	}

	for resolved := cs.resolvedOverloads; resolved != nil; resolved = resolved.Previous {
		if resolved.TypeVar != repr {
			continue
		}
		representative := resolved.Choice
		if representative == "" {
			return
		}
		for _, choice := range disjunction.Choices() {
			if choice.Decl() == "" || choice.Decl() == representative {
				continue
			}
			if choice.IsDisabled() {
				continue
			}
			choice.SetDisabled()
			s.disabled = append(s.disabled, choice)
		}
		break
	}
}

// choiceProducer lazily yields the candidate choices in preference
// order. The choice set can be large and most branches are pruned
// before being produced, so nothing is materialized up front.
type choiceProducer struct {
	choices []*constraint.Constraint
	index   int
}

func (p *choiceProducer) next() *constraint.Constraint {
	if p.index >= len(p.choices) {
		return nil
	}
	c := p.choices[p.index]
	p.index++
	return c
}
