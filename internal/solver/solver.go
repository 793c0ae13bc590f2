package solver

import (
	"errors"
	"fmt"

	"github.com/tyfer-lang/tyfer/internal/constraint"
	"github.com/tyfer-lang/tyfer/internal/graph"
	"github.com/tyfer-lang/tyfer/internal/types"
	"github.com/tyfer-lang/tyfer/pkg/tyfer"
)

// ErrIncomplete is returned when the step budget or the context ran
// out before the search could complete.
var ErrIncomplete = errors.New("cancelled before a solution could be found")

// DefaultMaxSteps bounds the number of step advances in one solve.
const DefaultMaxSteps = 1 << 20

// New builds an empty constraint system. Type variables and
// constraints are added through the System's constructors before
// calling Solve.
func New(options ...Option) (*System, error) {
	arena := types.NewArena()
	cs := &System{
		arena:        arena,
		constraints:  constraint.NewList(),
		cg:           graph.New(arena),
		conformances: make(map[string]map[string]bool),
		conversions:  make(map[string]string),
		defaults:     make(map[string]string),
		maxSteps:     DefaultMaxSteps,
		log:          defaultLog(),
	}
	for _, option := range append(options, defaultOptions...) {
		if err := option(cs); err != nil {
			return nil, err
		}
	}
	return cs, nil
}

type Option func(cs *System) error

// WithConformances declares which protocols each primitive type
// conforms to.
func WithConformances(table map[string][]string) Option {
	return func(cs *System) error {
		for name, protocols := range table {
			set := make(map[string]bool, len(protocols))
			for _, p := range protocols {
				set[p] = true
			}
			cs.conformances[name] = set
		}
		return nil
	}
}

// WithConversions declares the implicit widenings, each usable at a
// one-conversion score cost.
func WithConversions(table map[string]string) Option {
	return func(cs *System) error {
		for from, to := range table {
			cs.conversions[from] = to
		}
		return nil
	}
}

// WithDefaults declares the type a variable constrained only by a
// protocol defaults to, at a one-default score cost.
func WithDefaults(table map[string]string) Option {
	return func(cs *System) error {
		for protocol, name := range table {
			cs.defaults[protocol] = name
		}
		return nil
	}
}

// RetainAllSolutions keeps every solution found instead of only the
// best-scored subset. Used for ambiguity diagnosis.
func RetainAllSolutions() Option {
	return func(cs *System) error {
		cs.retainAll = true
		return nil
	}
}

// WithMaxSteps overrides the step budget.
func WithMaxSteps(n int) Option {
	return func(cs *System) error {
		if n <= 0 {
			return fmt.Errorf("step budget must be positive, got %d", n)
		}
		cs.maxSteps = n
		return nil
	}
}

// WithTracer installs a tracer invoked at every step advance.
func WithTracer(t tyfer.Tracer) Option {
	return func(cs *System) error {
		cs.tracer = t
		return nil
	}
}

// WithSkipChoicePredicate overrides the branch-and-bound predicate
// used by disjunction steps. The default skips a generic choice only
// when a non-generic choice has already solved without incurring any
// generic-overload cost beyond the baseline, which can never discard a
// strictly best solution.
func WithSkipChoicePredicate(p SkipChoicePredicate) Option {
	return func(cs *System) error {
		cs.skipChoice = p
		return nil
	}
}

var defaultOptions = []Option{
	func(cs *System) error {
		if cs.tracer == nil {
			cs.tracer = DefaultTracer{}
		}
		return nil
	},
	func(cs *System) error {
		if cs.skipChoice == nil {
			cs.skipChoice = defaultSkipChoice
		}
		return nil
	},
}

func defaultSkipChoice(choice *constraint.Constraint, bestNonGeneric *Score, baseline Score) bool {
	if bestNonGeneric == nil || !choice.IsGeneric() {
		return false
	}
	// Any solution through a generic choice scores at least one more
	// generic overload than the baseline; if the best non-generic
	// solution stayed at the baseline in that dimension it cannot be
	// beaten.
	return bestNonGeneric[ScoreGenericOverload] == baseline[ScoreGenericOverload]
}
