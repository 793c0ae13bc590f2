package solver

import (
	"github.com/tyfer-lang/tyfer/internal/constraint"
	"github.com/tyfer-lang/tyfer/internal/types"
)

// BindingKind orders candidate bindings by preference.
type BindingKind int

const (
	// BindingExact comes from a direct equality requirement.
	BindingExact BindingKind = iota
	// BindingSupertype is an implicit widening of an exact binding.
	BindingSupertype
	// BindingDefault comes from a protocol default.
	BindingDefault
)

// Binding is one candidate type for a type variable.
type Binding struct {
	Type types.Type
	Kind BindingKind
}

// penalty is the score cost of committing to this binding. Supertype
// bindings are not charged here: the widening itself is scored when
// the displaced equality simplifies through a conversion.
func (b Binding) penalty() Score {
	if b.Kind == BindingDefault {
		return ScoreOf(ScoreDefaulted, 1)
	}
	return Score{}
}

// ComputeBindings infers the ordered candidate bindings for the class
// of varID from the constraints adjacent to it: exact types from
// equalities first, then their implicit widenings, then protocol
// defaults.
func (cs *System) ComputeBindings(varID int) []Binding {
	repr := cs.arena.Repr(varID)

	var exact, defaults []Binding
	seen := make(map[string]bool)
	add := func(dst []Binding, b Binding) []Binding {
		key := b.Type.String()
		if seen[key] {
			return dst
		}
		seen[key] = true
		return append(dst, b)
	}

	for _, c := range cs.cg.ConstraintsFor(repr) {
		if c.IsDisabled() {
			continue
		}
		switch c.Kind() {
		case constraint.Equal:
			other, ok := cs.bindingSide(repr, c)
			if !ok {
				continue
			}
			exact = add(exact, Binding{Type: other, Kind: BindingExact})
		case constraint.Conforms:
			if name, ok := cs.defaults[c.Protocol()]; ok {
				defaults = add(defaults, Binding{Type: types.Primitive{Name: name}, Kind: BindingDefault})
			}
		}
	}

	out := exact
	for _, b := range exact {
		p, ok := b.Type.(types.Primitive)
		if !ok {
			continue
		}
		if wide, ok := cs.conversions[p.Name]; ok {
			out = add(out, Binding{Type: types.Primitive{Name: wide}, Kind: BindingSupertype})
		}
	}
	return append(out, defaults...)
}

// bindingSide returns the concrete side of an equality whose other
// side is the class of repr.
func (cs *System) bindingSide(repr int, c *constraint.Constraint) (types.Type, bool) {
	left := cs.arena.Resolve(c.Left())
	right := cs.arena.Resolve(c.Right())
	if v, ok := left.(types.Var); ok && v.ID == repr {
		if _, isVar := right.(types.Var); !isVar {
			return right, true
		}
	}
	if v, ok := right.(types.Var); ok && v.ID == repr {
		if _, isVar := left.(types.Var); !isVar {
			return left, true
		}
	}
	return nil, false
}

// selectDisjunction picks the next disjunction to branch on: the first
// enabled one in the active list.
func (cs *System) selectDisjunction() *constraint.Constraint {
	for _, c := range cs.constraints.Items() {
		if c.Kind() == constraint.Disjunction && !c.IsDisabled() {
			return c
		}
	}
	return nil
}

// selectBindings picks the next unbound type variable that has any
// candidate bindings.
func (cs *System) selectBindings() (int, []Binding) {
	for _, id := range cs.typeVars {
		if cs.arena.Bound(id) {
			continue
		}
		if bindings := cs.ComputeBindings(id); len(bindings) > 0 {
			return id, bindings
		}
	}
	return -1, nil
}
