// Package solver is the public entry point for type inference. It
// turns a declarative tyfer.Problem into an internal constraint system,
// runs the step-based search, and maps the results back onto the
// problem's names.
package solver

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tyfer-lang/tyfer/internal/constraint"
	"github.com/tyfer-lang/tyfer/internal/satcheck"
	"github.com/tyfer-lang/tyfer/internal/solver"
	"github.com/tyfer-lang/tyfer/internal/types"
	"github.com/tyfer-lang/tyfer/pkg/tyfer"
)

type Solver struct {
	tracer    tyfer.Tracer
	prefilter bool
	retainAll bool
	maxSteps  int
}

func New(options ...Option) (*Solver, error) {
	s := Solver{}
	for _, option := range options {
		if err := option(&s); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

type Option func(s *Solver) error

// WithTracer installs a tracer invoked at every search step.
func WithTracer(t tyfer.Tracer) Option {
	return func(s *Solver) error {
		s.tracer = t
		return nil
	}
}

// WithPrefilter runs a SAT feasibility check over the problem's
// overload choices before the full search. Problems whose choice
// skeleton is unsatisfiable are rejected without searching.
func WithPrefilter() Option {
	return func(s *Solver) error {
		s.prefilter = true
		return nil
	}
}

// RetainAllSolutions keeps every assignment found instead of only the
// best-scored ones. Used for ambiguity diagnosis.
func RetainAllSolutions() Option {
	return func(s *Solver) error {
		s.retainAll = true
		return nil
	}
}

// WithMaxSteps overrides the search step budget.
func WithMaxSteps(n int) Option {
	return func(s *Solver) error {
		if n <= 0 {
			return fmt.Errorf("step budget must be positive, got %d", n)
		}
		s.maxSteps = n
		return nil
	}
}

// Solve runs type inference over the problem. It returns a Resolution
// when the search ran to completion, whether or not an assignment
// exists; only construction errors and exhausted budgets surface as a
// second return value.
func (s *Solver) Solve(ctx context.Context, problem *tyfer.Problem) (*Resolution, error) {
	cs, names, disjunctions, err := s.buildSystem(problem)
	if err != nil {
		return nil, err
	}

	if s.prefilter && !satcheck.Feasible(cs) {
		return &Resolution{err: tyfer.NotSolvable{"no combination of overload choices is feasible"}}, nil
	}

	solutions, err := cs.Solve(ctx)
	if err != nil {
		var unsat tyfer.NotSolvable
		if errors.As(err, &unsat) {
			return &Resolution{err: unsat}, nil
		}
		return nil, err
	}

	sort.SliceStable(solutions, func(i, j int) bool {
		return solutions[i].Score.Less(solutions[j].Score)
	})

	resolution := &Resolution{assignments: make([]Assignment, 0, len(solutions))}
	for _, solution := range solutions {
		resolution.assignments = append(resolution.assignments, s.toAssignment(solution, names, disjunctions))
	}
	return resolution, nil
}

// buildSystem lowers the declarative problem into a constraint system.
// It returns the system, the id of each named type variable, and the
// problem constraint index of each disjunction id.
func (s *Solver) buildSystem(problem *tyfer.Problem) (*solver.System, map[string]types.Var, map[int]int, error) {
	options := []solver.Option{
		solver.WithConformances(problem.Conformances),
		solver.WithConversions(problem.Conversions),
		solver.WithDefaults(problem.Defaults),
	}
	if s.retainAll {
		options = append(options, solver.RetainAllSolutions())
	}
	if s.maxSteps > 0 {
		options = append(options, solver.WithMaxSteps(s.maxSteps))
	}
	if s.tracer != nil {
		options = append(options, solver.WithTracer(s.tracer))
	}
	cs, err := solver.New(options...)
	if err != nil {
		return nil, nil, nil, err
	}

	names := make(map[string]types.Var, len(problem.TypeVars))
	for _, name := range problem.TypeVars {
		if _, dup := names[name]; dup {
			return nil, nil, nil, fmt.Errorf("type variable %q declared twice", name)
		}
		names[name] = cs.NewTypeVar()
	}

	disjunctions := make(map[int]int)
	for i, spec := range problem.Constraints {
		if err := s.addConstraint(cs, names, disjunctions, i, spec); err != nil {
			return nil, nil, nil, fmt.Errorf("constraint %d: %w", i, err)
		}
	}
	return cs, names, disjunctions, nil
}

func (s *Solver) addConstraint(cs *solver.System, names map[string]types.Var, disjunctions map[int]int, index int, spec tyfer.ConstraintSpec) error {
	switch spec.Kind {
	case tyfer.Equal:
		left, right, err := parseSides(spec, names)
		if err != nil {
			return err
		}
		cs.NewEqual(left, right)
		return nil
	case tyfer.Conforms:
		left, err := parseType(spec.Left, names)
		if err != nil {
			return err
		}
		if spec.Protocol == "" {
			return errors.New("conformance constraint without a protocol")
		}
		cs.NewConforms(left, spec.Protocol)
		return nil
	case tyfer.Disjunction:
		if len(spec.Choices) == 0 {
			return errors.New("disjunction without choices")
		}
		choices := make([]*constraint.Constraint, 0, len(spec.Choices))
		for j, choice := range spec.Choices {
			if choice.Constraint.Kind != tyfer.Equal {
				return fmt.Errorf("choice %d: only equality choices are supported", j)
			}
			left, right, err := parseSides(choice.Constraint, names)
			if err != nil {
				return fmt.Errorf("choice %d: %w", j, err)
			}
			choices = append(choices, cs.NewChoice(choice.Decl, choice.Generic, left, right))
		}
		d := cs.NewDisjunction(choices)
		disjunctions[d.ID()] = index
		return nil
	}
	return fmt.Errorf("unknown constraint kind %d", spec.Kind)
}

func parseSides(spec tyfer.ConstraintSpec, names map[string]types.Var) (types.Type, types.Type, error) {
	left, err := parseType(spec.Left, names)
	if err != nil {
		return nil, nil, err
	}
	right, err := parseType(spec.Right, names)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func (s *Solver) toAssignment(solution solver.Solution, names map[string]types.Var, disjunctions map[int]int) Assignment {
	bindings := make(map[string]string, len(names))
	for name, v := range names {
		if t, ok := solution.Bindings[v.ID]; ok && t != nil {
			bindings[name] = t.String()
		}
	}
	overloads := make(map[int]tyfer.Identifier, len(solution.Overloads))
	for id, decl := range solution.Overloads {
		if index, ok := disjunctions[id]; ok {
			overloads[index] = decl
		}
	}
	return Assignment{
		bindings:  bindings,
		overloads: overloads,
		score:     solution.Score.String(),
	}
}
