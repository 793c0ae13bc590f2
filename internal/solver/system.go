package solver

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tyfer-lang/tyfer/internal/constraint"
	"github.com/tyfer-lang/tyfer/internal/graph"
	"github.com/tyfer-lang/tyfer/internal/logger"
	"github.com/tyfer-lang/tyfer/internal/types"
	"github.com/tyfer-lang/tyfer/pkg/tyfer"
)

// ResolvedOverload is one link in the chain of overload choices made
// on the current search path, newest first.
type ResolvedOverload struct {
	// TypeVar is the representative of the variable the choice bound.
	TypeVar int
	// BoundType is the overload's type at resolution time.
	BoundType types.Type
	// Choice is the chosen declaration.
	Choice tyfer.Identifier
	// Disjunction is the id of the disjunction the choice came from.
	Disjunction int
	Previous    *ResolvedOverload
}

// SkipChoicePredicate decides whether a disjunction choice should be
// skipped outright during search. baseline is the score at the moment
// the disjunction step began; bestNonGeneric is the best score any
// non-generic choice has solved with so far, or nil.
type SkipChoicePredicate func(choice *constraint.Constraint, bestNonGeneric *Score, baseline Score) bool

// System is the shared, mutable constraint-system state every step
// operates on. All mutations made during search go through the trail
// so the owning scope can reverse them.
type System struct {
	arena       *types.Arena
	typeVars    []int // ids of type variables in scope
	constraints *constraint.List
	cg          *graph.Graph

	currentScore      Score
	resolvedOverloads *ResolvedOverload

	trail       []change
	activeScope *Scope

	retainAll  bool
	maxSteps   int
	usedSteps  int
	incomplete bool
	skipChoice SkipChoicePredicate

	conformances map[string]map[string]bool
	conversions  map[string]string
	defaults     map[string]string

	failures []string
	nextID   int

	ctx    context.Context
	log    zerolog.Logger
	tracer tyfer.Tracer
	depth  int
}

// NewTypeVar allocates a fresh type variable and adds it to the active
// pool.
func (cs *System) NewTypeVar() types.Var {
	v := cs.arena.Fresh()
	cs.typeVars = append(cs.typeVars, v.ID)
	return v
}

// Arena exposes the type-variable arena.
func (cs *System) Arena() *types.Arena {
	return cs.arena
}

// TypeVars returns the ids of the type variables currently in scope.
func (cs *System) TypeVars() []int {
	return cs.typeVars
}

// Constraints returns the active constraint list.
func (cs *System) Constraints() *constraint.List {
	return cs.constraints
}

// Graph returns the constraint graph.
func (cs *System) Graph() *graph.Graph {
	return cs.cg
}

// CurrentScore returns the running score of the search path.
func (cs *System) CurrentScore() Score {
	return cs.currentScore
}

// RetainAllSolutions reports whether the search keeps every solution
// it finds instead of only the best-scored ones (ambiguity diagnosis).
func (cs *System) RetainAllSolutions() bool {
	return cs.retainAll
}

// ResolvedOverloadChain returns the chain of overload choices already
// made on the current path, newest first.
func (cs *System) ResolvedOverloadChain() *ResolvedOverload {
	return cs.resolvedOverloads
}

// NewEqual creates an equality constraint, appends it to the active
// list and registers it with the graph. Used during system setup.
func (cs *System) NewEqual(left, right types.Type) *constraint.Constraint {
	c := constraint.NewEqual(cs.takeID(), left, right)
	cs.constraints.Append(c)
	cs.cg.AddConstraint(c)
	return c
}

// NewConforms creates a conformance constraint and activates it.
func (cs *System) NewConforms(subject types.Type, protocol string) *constraint.Constraint {
	c := constraint.NewConforms(cs.takeID(), subject, protocol)
	cs.constraints.Append(c)
	cs.cg.AddConstraint(c)
	return c
}

// NewChoice creates a nested choice constraint for a disjunction. The
// choice is not activated; trying it during search inserts it.
func (cs *System) NewChoice(decl tyfer.Identifier, generic bool, left, right types.Type) *constraint.Constraint {
	return constraint.NewEqual(cs.takeID(), left, right).MarkOverload(decl, generic)
}

// NewDisjunction creates a disjunction over the given choices and
// activates it.
func (cs *System) NewDisjunction(choices []*constraint.Constraint) *constraint.Constraint {
	if len(choices) == 0 {
		panic("solver: disjunction with no choices")
	}
	c := constraint.NewDisjunction(cs.takeID(), choices)
	cs.constraints.Append(c)
	cs.cg.AddConstraint(c)
	return c
}

func (cs *System) takeID() int {
	id := cs.nextID
	cs.nextID++
	return id
}

// RemoveConstraint removes c from the active list and graph, recording
// the inverse edit on the trail.
func (cs *System) RemoveConstraint(c *constraint.Constraint) {
	idx, ok := cs.constraints.Remove(c)
	if !ok {
		panic("solver: removing a constraint that is not active")
	}
	cs.cg.RemoveConstraint(c)
	cs.record(change{kind: changeRemoved, c: c, index: idx})
}

// InsertConstraint inserts c into the active list and graph, recording
// the inverse edit on the trail.
func (cs *System) InsertConstraint(c *constraint.Constraint) {
	cs.constraints.Append(c)
	cs.cg.AddConstraint(c)
	cs.record(change{kind: changeInserted, c: c})
}

// Detach removes c from the active list and graph without touching the
// trail. Steps own the matching Attach on their release path.
func (cs *System) Detach(c *constraint.Constraint) int {
	idx, ok := cs.constraints.Remove(c)
	if !ok {
		panic("solver: detaching a constraint that is not active")
	}
	cs.cg.RemoveConstraint(c)
	return idx
}

// Attach reinserts a previously detached constraint at its original
// position.
func (cs *System) Attach(index int, c *constraint.Constraint) {
	cs.constraints.InsertAt(index, c)
	cs.cg.AddConstraint(c)
}

// ScopedDisable disables c for the lifetime of the innermost scope.
func (cs *System) ScopedDisable(c *constraint.Constraint) {
	cs.record(change{kind: changeDisabled, c: c, prevFlag: c.IsDisabled()})
	c.SetDisabled()
}

// BindTypeVar binds the class of varID to t, recording the inverse
// edit. The caller is responsible for the occurs check.
func (cs *System) BindTypeVar(varID int, t types.Type) {
	repr := cs.arena.Repr(varID)
	prev := cs.arena.SetBinding(repr, t)
	cs.record(change{kind: changeBound, varID: repr, prevType: prev})
}

// UnionTypeVars merges the classes of x and y.
func (cs *System) UnionTypeVars(x, y int) {
	if _, undo, ok := cs.arena.Union(x, y); ok {
		cs.record(change{kind: changeUnioned, union: undo})
	}
}

// PushScoreDelta adds delta to the running score, undoably.
func (cs *System) PushScoreDelta(delta Score) {
	cs.currentScore = cs.currentScore.Add(delta)
	cs.record(change{kind: changeScore, delta: delta})
}

// IncreaseScore bumps one score dimension by n, undoably.
func (cs *System) IncreaseScore(kind ScoreKind, n uint32) {
	cs.PushScoreDelta(ScoreOf(kind, n))
}

// RecordResolvedOverload pushes a resolved overload choice onto the
// chain, undoably.
func (cs *System) RecordResolvedOverload(varID int, bound types.Type, choice tyfer.Identifier, disjunctionID int) {
	cs.resolvedOverloads = &ResolvedOverload{
		TypeVar:     varID,
		BoundType:   bound,
		Choice:      choice,
		Disjunction: disjunctionID,
		Previous:    cs.resolvedOverloads,
	}
	cs.record(change{kind: changeOverload})
}

func (cs *System) conforms(typeName, protocol string) bool {
	return cs.conformances[typeName][protocol]
}

// Convertible reports whether an implicit widening exists between the
// two primitive names, in either operand order.
func (cs *System) Convertible(a, b string) bool {
	return cs.conversions[a] == b || cs.conversions[b] == a
}

func (cs *System) recordFailure(desc string) {
	const maxFailures = 8
	if len(cs.failures) >= maxFailures {
		return
	}
	for _, f := range cs.failures {
		if f == desc {
			return
		}
	}
	cs.failures = append(cs.failures, desc)
}

func defaultLog() zerolog.Logger {
	return logger.Logger().With().Str("component", "solver").Logger()
}
