package solver

import (
	"fmt"

	"github.com/tyfer-lang/tyfer/internal/constraint"
	"github.com/tyfer-lang/tyfer/internal/types"
)

// SimplifyOutcome is the three-valued result of one simplification
// pass over the active pool.
type SimplifyOutcome int

const (
	// SimplifySolved: no enabled constraints remain and every type
	// variable in scope is bound.
	SimplifySolved SimplifyOutcome = iota
	// SimplifyUnsolved: progress requires a finer-grained step
	// (a disjunction choice or a candidate binding).
	SimplifyUnsolved
	// SimplifyFailed: a constraint is unsatisfiable on this path.
	SimplifyFailed
)

type verdict int

const (
	verdictRetired verdict = iota
	verdictPending
	verdictFailed
)

// Simplify runs the active constraints to a fixpoint. All mutations go
// through the trail, so the enclosing scope undoes them on release.
func (cs *System) Simplify() SimplifyOutcome {
	for {
		progress := false
		snapshot := make([]*constraint.Constraint, cs.constraints.Len())
		copy(snapshot, cs.constraints.Items())
		for _, c := range snapshot {
			if c.IsDisabled() || c.Kind() == constraint.Disjunction {
				continue
			}
			switch cs.simplifyConstraint(c) {
			case verdictRetired:
				cs.RemoveConstraint(c)
				progress = true
			case verdictFailed:
				cs.recordFailure(cs.describeConflict(c))
				return SimplifyFailed
			case verdictPending:
			}
		}
		if !progress {
			break
		}
	}

	for _, c := range cs.constraints.Items() {
		if !c.IsDisabled() {
			return SimplifyUnsolved
		}
	}
	for _, id := range cs.typeVars {
		if !cs.arena.Bound(id) {
			return SimplifyUnsolved
		}
	}
	return SimplifySolved
}

func (cs *System) simplifyConstraint(c *constraint.Constraint) verdict {
	switch c.Kind() {
	case constraint.Equal:
		return cs.unify(c.Left(), c.Right())
	case constraint.Conforms:
		return cs.checkConformance(c)
	}
	panic(fmt.Sprintf("solver: cannot simplify a %s constraint", c.Kind()))
}

// unify matches two type terms, binding or merging type variables as
// needed. Equalities never stay pending: they either retire or fail.
func (cs *System) unify(x, y types.Type) verdict {
	rx := cs.arena.Resolve(x)
	ry := cs.arena.Resolve(y)

	if vx, ok := rx.(types.Var); ok {
		if vy, ok := ry.(types.Var); ok {
			cs.UnionTypeVars(vx.ID, vy.ID)
			return verdictRetired
		}
		return cs.bind(vx, ry)
	}
	if vy, ok := ry.(types.Var); ok {
		return cs.bind(vy, rx)
	}

	switch xt := rx.(type) {
	case types.Primitive:
		yt, ok := ry.(types.Primitive)
		if !ok {
			return verdictFailed
		}
		if xt.Name == yt.Name {
			return verdictRetired
		}
		if cs.Convertible(xt.Name, yt.Name) {
			cs.IncreaseScore(ScoreConversion, 1)
			return verdictRetired
		}
		return verdictFailed
	case types.Function:
		yt, ok := ry.(types.Function)
		if !ok || len(xt.Params) != len(yt.Params) {
			return verdictFailed
		}
		for i := range xt.Params {
			if cs.unify(xt.Params[i], yt.Params[i]) == verdictFailed {
				return verdictFailed
			}
		}
		return cs.unify(xt.Result, yt.Result)
	}
	return verdictFailed
}

func (cs *System) bind(v types.Var, t types.Type) verdict {
	if cs.arena.OccursIn(v.ID, t) {
		return verdictFailed
	}
	cs.BindTypeVar(v.ID, t)
	return verdictRetired
}

func (cs *System) checkConformance(c *constraint.Constraint) verdict {
	switch subject := cs.arena.Resolve(c.Left()).(type) {
	case types.Var:
		// Nothing known about the subject yet.
		return verdictPending
	case types.Primitive:
		if cs.conforms(subject.Name, c.Protocol()) {
			return verdictRetired
		}
		return verdictFailed
	default:
		return verdictFailed
	}
}

func (cs *System) describeConflict(c *constraint.Constraint) string {
	switch c.Kind() {
	case constraint.Equal:
		return fmt.Sprintf("%s == %s", cs.arena.Resolve(c.Left()), cs.arena.Resolve(c.Right()))
	case constraint.Conforms:
		return fmt.Sprintf("%s : %s", cs.arena.Resolve(c.Left()), c.Protocol())
	}
	return c.String()
}

// verifyOrphan checks a constraint with no free type variables. Such
// constraints cannot belong to any component; they either hold or fail
// the whole system. Holding may cost: a convertible equality charges
// the same conversion it would inside a component, and a disjunction
// settles for its cheapest verifiable choice.
func (cs *System) verifyOrphan(c *constraint.Constraint) (Score, bool) {
	switch c.Kind() {
	case constraint.Equal:
		x := cs.arena.Resolve(c.Left())
		y := cs.arena.Resolve(c.Right())
		if types.Equal(x, y) {
			return Score{}, true
		}
		xp, xok := x.(types.Primitive)
		yp, yok := y.(types.Primitive)
		if xok && yok && cs.Convertible(xp.Name, yp.Name) {
			return ScoreOf(ScoreConversion, 1), true
		}
		return Score{}, false
	case constraint.Conforms:
		subject, ok := cs.arena.Resolve(c.Left()).(types.Primitive)
		if ok && cs.conforms(subject.Name, c.Protocol()) {
			return Score{}, true
		}
		return Score{}, false
	case constraint.Disjunction:
		var best Score
		found := false
		for _, choice := range c.Choices() {
			if choice.IsDisabled() {
				continue
			}
			score, ok := cs.verifyOrphan(choice)
			if !ok {
				continue
			}
			if choice.IsGeneric() {
				score = score.Add(ScoreOf(ScoreGenericOverload, 1))
			}
			if !found || score.Less(best) {
				best, found = score, true
			}
		}
		return best, found
	}
	return Score{}, false
}
