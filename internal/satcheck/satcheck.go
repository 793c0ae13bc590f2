// Package satcheck prefilters a constraint system before the full
// step-based search runs. It encodes the choice-selection skeleton of
// the system as CNF: pick exactly one choice per disjunction, subject
// to the direct bindings each choice would impose. If the formula is
// unsatisfiable no combination of overload choices can succeed, and
// the search can be skipped outright. Satisfiability proves nothing:
// the encoding ignores everything the full solver knows about
// conformances and transitive unification.
package satcheck

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/tyfer-lang/tyfer/internal/constraint"
	"github.com/tyfer-lang/tyfer/internal/solver"
	"github.com/tyfer-lang/tyfer/internal/types"
)

const satisfiable = 1

// imposed is the direct binding a choice would force: one type
// variable class bound to one concrete type.
type imposed struct {
	repr int
	t    types.Type
}

// Feasible reports whether the disjunction skeleton of cs admits any
// choice selection. A false result is definitive; true only means the
// prefilter could not rule the system out.
func Feasible(cs *solver.System) bool {
	var disjunctions []*constraint.Constraint
	fixed := make(map[int]types.Type)
	arena := cs.Arena()

	for _, c := range cs.Constraints().Items() {
		if c.IsDisabled() {
			continue
		}
		switch c.Kind() {
		case constraint.Disjunction:
			disjunctions = append(disjunctions, c)
		case constraint.Equal:
			if repr, t, ok := directBinding(arena, c); ok {
				fixed[repr] = t
			}
		}
	}
	if len(disjunctions) == 0 {
		return true
	}

	g := gini.New()
	nextVar := 1
	lits := make(map[*constraint.Constraint]z.Lit)
	imposes := make(map[*constraint.Constraint][]imposed)

	for _, d := range disjunctions {
		var members []z.Lit
		for _, choice := range d.Choices() {
			if choice.IsDisabled() {
				continue
			}
			m := z.Var(nextVar).Pos()
			nextVar++
			lits[choice] = m
			members = append(members, m)
			if repr, t, ok := directBinding(arena, choice); ok {
				imposes[choice] = []imposed{{repr: repr, t: t}}
			}
		}
		if len(members) == 0 {
			return false
		}
		// Exactly one choice per disjunction.
		for _, m := range members {
			g.Add(m)
		}
		g.Add(z.LitNull)
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				g.Add(members[i].Not())
				g.Add(members[j].Not())
				g.Add(z.LitNull)
			}
		}
	}

	// A choice clashing with a fixed binding can never be selected.
	for choice, bindings := range imposes {
		for _, b := range bindings {
			if t, ok := fixed[b.repr]; ok && incompatible(cs, b.t, t) {
				g.Add(lits[choice].Not())
				g.Add(z.LitNull)
			}
		}
	}

	// Choices from different disjunctions clashing on the same
	// variable class cannot be selected together.
	choices := make([]*constraint.Constraint, 0, len(imposes))
	for choice := range imposes {
		choices = append(choices, choice)
	}
	for i := 0; i < len(choices); i++ {
		for j := i + 1; j < len(choices); j++ {
			a, b := imposes[choices[i]][0], imposes[choices[j]][0]
			if a.repr != b.repr || !incompatible(cs, a.t, b.t) {
				continue
			}
			g.Add(lits[choices[i]].Not())
			g.Add(lits[choices[j]].Not())
			g.Add(z.LitNull)
		}
	}

	return g.Solve() == satisfiable
}

// directBinding extracts the (variable class, concrete type) pair an
// equality imposes, if it has exactly that shape.
func directBinding(arena *types.Arena, c *constraint.Constraint) (int, types.Type, bool) {
	left := arena.Resolve(c.Left())
	right := arena.Resolve(c.Right())
	if v, ok := left.(types.Var); ok {
		if _, isVar := right.(types.Var); !isVar {
			return v.ID, right, true
		}
	}
	if v, ok := right.(types.Var); ok {
		if _, isVar := left.(types.Var); !isVar {
			return v.ID, left, true
		}
	}
	return 0, nil, false
}

func incompatible(cs *solver.System, a, b types.Type) bool {
	if types.Equal(a, b) {
		return false
	}
	ap, aok := a.(types.Primitive)
	bp, bok := b.(types.Primitive)
	if aok && bok && cs.Convertible(ap.Name, bp.Name) {
		return false
	}
	// Distinct non-primitive shapes might still unify through nested
	// variables; only primitive mismatches are definitive.
	if aok && bok {
		return true
	}
	return false
}
