package solver

import (
	"github.com/tyfer-lang/tyfer/internal/constraint"
	"github.com/tyfer-lang/tyfer/internal/types"
)

// changeKind tags one reversible edit on the trail.
type changeKind uint8

const (
	changeBound changeKind = iota
	changeUnioned
	changeRemoved
	changeInserted
	changeDisabled
	changeScore
	changeOverload
)

type change struct {
	kind     changeKind
	c        *constraint.Constraint
	index    int
	varID    int
	prevType types.Type
	prevFlag bool
	union    types.UnionUndo
	delta    Score
}

// Scope checkpoints the shared solver state. Every mutation made
// through the System between a scope's creation and its release is
// recorded on the trail; Release replays the recorded suffix in
// reverse, restoring exactly the state visible beforehand.
//
// Scopes nest strictly. Releasing a scope that is not the innermost
// live one, or releasing a scope twice, is a programming-contract
// violation and panics.
type Scope struct {
	cs       *System
	prev     *Scope
	mark     int
	released bool
}

// NewScope opens a checkpoint over the system's shared state.
func (cs *System) NewScope() *Scope {
	s := &Scope{cs: cs, prev: cs.activeScope, mark: len(cs.trail)}
	cs.activeScope = s
	return s
}

// Release rewinds every edit recorded since the scope was opened.
func (s *Scope) Release() {
	if s.released {
		panic("solver: scope released twice")
	}
	if s.cs.activeScope != s {
		panic("solver: scope released out of stack order")
	}
	cs := s.cs
	for i := len(cs.trail) - 1; i >= s.mark; i-- {
		cs.undo(cs.trail[i])
	}
	cs.trail = cs.trail[:s.mark]
	cs.activeScope = s.prev
	s.released = true
}

func (cs *System) record(ch change) {
	cs.trail = append(cs.trail, ch)
}

func (cs *System) undo(ch change) {
	switch ch.kind {
	case changeBound:
		cs.arena.SetBinding(ch.varID, ch.prevType)
	case changeUnioned:
		cs.arena.Undo(ch.union)
	case changeRemoved:
		cs.constraints.InsertAt(ch.index, ch.c)
		cs.cg.AddConstraint(ch.c)
	case changeInserted:
		cs.constraints.Remove(ch.c)
		cs.cg.RemoveConstraint(ch.c)
	case changeDisabled:
		if ch.prevFlag {
			ch.c.SetDisabled()
		} else {
			ch.c.SetEnabled()
		}
	case changeScore:
		cs.currentScore = cs.currentScore.Sub(ch.delta)
	case changeOverload:
		cs.resolvedOverloads = cs.resolvedOverloads.Previous
	}
}
