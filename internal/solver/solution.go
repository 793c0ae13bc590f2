package solver

import (
	"github.com/tyfer-lang/tyfer/internal/types"
	"github.com/tyfer-lang/tyfer/pkg/tyfer"
)

// Solution is an immutable record of one consistent assignment:
// resolved types for every type variable in scope when it was built,
// the chosen declaration for every resolved disjunction, and the score
// accumulated relative to the enclosing component's baseline.
type Solution struct {
	// Bindings maps a type-variable id to its fully resolved type.
	Bindings map[int]types.Type
	// Overloads maps a disjunction constraint id to the declaration
	// its chosen alternative stands for.
	Overloads map[int]tyfer.Identifier
	Score     Score
}

// merge combines two solutions from type-disconnected components.
// Binding sets are disjoint by construction; scores add.
func (s Solution) merge(other Solution) Solution {
	out := Solution{
		Bindings:  make(map[int]types.Type, len(s.Bindings)+len(other.Bindings)),
		Overloads: make(map[int]tyfer.Identifier, len(s.Overloads)+len(other.Overloads)),
		Score:     s.Score.Add(other.Score),
	}
	for id, t := range s.Bindings {
		out.Bindings[id] = t
	}
	for id, t := range other.Bindings {
		out.Bindings[id] = t
	}
	for id, d := range s.Overloads {
		out.Overloads[id] = d
	}
	for id, d := range other.Overloads {
		out.Overloads[id] = d
	}
	return out
}

// FilterSolutions narrows candidates to the best-scored subset when
// minimize is set, or removes exact duplicates otherwise.
func FilterSolutions(candidates []Solution, minimize bool) []Solution {
	if len(candidates) <= 1 {
		return candidates
	}
	if !minimize {
		return dedupeSolutions(candidates)
	}
	best := candidates[0].Score
	for _, s := range candidates[1:] {
		if s.Score.Less(best) {
			best = s.Score
		}
	}
	out := candidates[:0]
	for _, s := range candidates {
		if s.Score == best {
			out = append(out, s)
		}
	}
	return dedupeSolutions(out)
}

func dedupeSolutions(candidates []Solution) []Solution {
	out := candidates[:0]
	for _, s := range candidates {
		dup := false
		for _, prev := range out {
			if sameSolution(prev, s) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, s)
		}
	}
	return out
}

func sameSolution(a, b Solution) bool {
	if a.Score != b.Score || len(a.Bindings) != len(b.Bindings) || len(a.Overloads) != len(b.Overloads) {
		return false
	}
	for id, t := range a.Bindings {
		other, ok := b.Bindings[id]
		if !ok || !types.Equal(t, other) {
			return false
		}
	}
	for id, d := range a.Overloads {
		if b.Overloads[id] != d {
			return false
		}
	}
	return true
}
