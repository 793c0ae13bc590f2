package types

// Arena owns every type variable created during a single solve. Records
// form union-find trees with union-by-rank representatives. Paths are
// never compressed: the solver undoes unions when backtracking, and
// compression would make those edits impossible to reverse exactly.
// Union-by-rank alone keeps chains logarithmic.
type Arena struct {
	records []record
}

type record struct {
	parent  int
	rank    uint8
	binding Type
}

func NewArena() *Arena {
	return &Arena{}
}

// Fresh allocates a new, unbound type variable.
func (a *Arena) Fresh() Var {
	id := len(a.records)
	a.records = append(a.records, record{parent: id})
	return Var{ID: id}
}

func (a *Arena) Len() int {
	return len(a.records)
}

// Repr returns the representative of the equivalence class of id.
func (a *Arena) Repr(id int) int {
	for a.records[id].parent != id {
		id = a.records[id].parent
	}
	return id
}

// Binding returns the type bound to the class of id, or nil.
func (a *Arena) Binding(id int) Type {
	return a.records[a.Repr(id)].binding
}

func (a *Arena) Bound(id int) bool {
	return a.Binding(id) != nil
}

// SetBinding binds the class of id to t. The previous binding is
// returned so the caller can record the inverse edit.
func (a *Arena) SetBinding(id int, t Type) Type {
	r := a.Repr(id)
	prev := a.records[r].binding
	a.records[r].binding = t
	return prev
}

// UnionUndo reverses one Union call.
type UnionUndo struct {
	Child      int
	Root       int
	RankBumped bool
}

// Union merges the classes of x and y and returns the surviving
// representative plus the record needed to undo the merge. ok is false
// when x and y are already in the same class.
func (a *Arena) Union(x, y int) (root int, undo UnionUndo, ok bool) {
	rx, ry := a.Repr(x), a.Repr(y)
	if rx == ry {
		return rx, UnionUndo{}, false
	}
	if a.records[rx].rank < a.records[ry].rank {
		rx, ry = ry, rx
	}
	bumped := false
	if a.records[rx].rank == a.records[ry].rank {
		a.records[rx].rank++
		bumped = true
	}
	a.records[ry].parent = rx
	return rx, UnionUndo{Child: ry, Root: rx, RankBumped: bumped}, true
}

// Undo reverses a prior Union. Calls must be made in LIFO order with
// respect to Union.
func (a *Arena) Undo(u UnionUndo) {
	a.records[u.Child].parent = u.Child
	if u.RankBumped {
		a.records[u.Root].rank--
	}
}

// Resolve substitutes bound type variables in t, recursively. Unbound
// variables resolve to their representative.
func (a *Arena) Resolve(t Type) Type {
	switch tt := t.(type) {
	case Var:
		r := a.Repr(tt.ID)
		if b := a.records[r].binding; b != nil {
			return a.Resolve(b)
		}
		return Var{ID: r}
	case Function:
		params := make([]Type, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = a.Resolve(p)
		}
		return Function{Params: params, Result: a.Resolve(tt.Result)}
	default:
		return t
	}
}

// OccursIn reports whether the class of id occurs in t. Used to refuse
// cyclic bindings.
func (a *Arena) OccursIn(id int, t Type) bool {
	r := a.Repr(id)
	switch tt := a.Resolve(t).(type) {
	case Var:
		return tt.ID == r
	case Function:
		for _, p := range tt.Params {
			if a.OccursIn(r, p) {
				return true
			}
		}
		return a.OccursIn(r, tt.Result)
	default:
		return false
	}
}

// FreeVars appends the representative ids of every unbound variable in
// t to dst, deduplicated within this call.
func (a *Arena) FreeVars(t Type, dst []int) []int {
	seen := make(map[int]struct{}, 4)
	for _, id := range dst {
		seen[id] = struct{}{}
	}
	var walk func(Type)
	walk = func(t Type) {
		switch tt := t.(type) {
		case Var:
			r := a.Repr(tt.ID)
			if b := a.records[r].binding; b != nil {
				walk(b)
				return
			}
			if _, dup := seen[r]; !dup {
				seen[r] = struct{}{}
				dst = append(dst, r)
			}
		case Function:
			for _, p := range tt.Params {
				walk(p)
			}
			walk(tt.Result)
		}
	}
	walk(t)
	return dst
}
