package graph

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/tyfer-lang/tyfer/internal/constraint"
	"github.com/tyfer-lang/tyfer/internal/types"
)

// Graph maintains the adjacency between type variables and the
// constraints that mention them, and holds orphaned constraints (those
// with no free type variables) between decompositions.
type Graph struct {
	arena     *types.Arena
	adjacency map[int][]*constraint.Constraint
	orphaned  []*constraint.Constraint
}

func New(arena *types.Arena) *Graph {
	return &Graph{
		arena:     arena,
		adjacency: make(map[int][]*constraint.Constraint),
	}
}

// AddConstraint registers c with every type variable it mentions.
func (g *Graph) AddConstraint(c *constraint.Constraint) {
	for _, id := range c.FreeVars(g.arena, nil) {
		g.adjacency[id] = append(g.adjacency[id], c)
	}
}

// RemoveConstraint removes c from every adjacency list that holds it.
func (g *Graph) RemoveConstraint(c *constraint.Constraint) {
	for id, list := range g.adjacency {
		for i, item := range list {
			if item == c {
				g.adjacency[id] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
}

// ConstraintsFor returns the constraints adjacent to the equivalence
// class of varID. Adjacency is recorded under the representative at
// insertion time, so unified classes are gathered together here.
func (g *Graph) ConstraintsFor(varID int) []*constraint.Constraint {
	repr := g.arena.Repr(varID)
	var out []*constraint.Constraint
	for id, list := range g.adjacency {
		if g.arena.Repr(id) != repr {
			continue
		}
		out = append(out, list...)
	}
	return out
}

// SetOrphaned hands a batch of orphaned constraints back to the graph.
func (g *Graph) SetOrphaned(cs []*constraint.Constraint) {
	g.orphaned = cs
}

// TakeOrphaned removes and returns the current orphan list.
func (g *Graph) TakeOrphaned() []*constraint.Constraint {
	out := g.orphaned
	g.orphaned = nil
	return out
}

func (g *Graph) Orphaned() []*constraint.Constraint {
	return g.orphaned
}

// Component is one connected cell of the decomposition: a set of type
// variables and the constraints that connect them.
type Component struct {
	TypeVars    []int
	Constraints []*constraint.Constraint
}

// Components decomposes the given active type variables and
// constraints into connected components. Constraints mentioning no
// free type variables are returned separately as orphans and never
// assigned to a component. The union of all components' variables is
// exactly typeVars and the cells are disjoint; variables untouched by
// any constraint form singleton components.
func (g *Graph) Components(typeVars []int, active []*constraint.Constraint) ([]Component, []*constraint.Constraint) {
	pos := make(map[int]int, len(typeVars))
	for i, id := range typeVars {
		pos[g.arena.Repr(id)] = i
	}

	// Union-find over variable positions.
	parent := make([]int, len(typeVars))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	var orphans []*constraint.Constraint
	memberOf := make(map[*constraint.Constraint][]int, len(active))
	for _, c := range active {
		var members []int
		for _, id := range c.FreeVars(g.arena, nil) {
			if p, ok := pos[g.arena.Repr(id)]; ok {
				members = append(members, p)
			}
		}
		if len(members) == 0 {
			orphans = append(orphans, c)
			continue
		}
		for _, p := range members[1:] {
			union(members[0], p)
		}
		memberOf[c] = members
	}

	// Gather cells in first-occurrence order of their variables.
	var roots []int
	cells := make(map[int]*bitset.BitSet)
	for i := range typeVars {
		r := find(i)
		if _, ok := cells[r]; !ok {
			cells[r] = bitset.New(uint(len(typeVars)))
			roots = append(roots, r)
		}
		cells[r].Set(uint(i))
	}

	index := make(map[int]int, len(roots))
	components := make([]Component, len(roots))
	for i, r := range roots {
		index[r] = i
		cell := cells[r]
		for p, ok := cell.NextSet(0); ok; p, ok = cell.NextSet(p + 1) {
			components[i].TypeVars = append(components[i].TypeVars, typeVars[p])
		}
	}

	// Constraints keep their active-list order within each component.
	for _, c := range active {
		members, ok := memberOf[c]
		if !ok {
			continue
		}
		i := index[find(members[0])]
		components[i].Constraints = append(components[i].Constraints, c)
	}

	return components, orphans
}
