package constraint

// List is the ordered active constraint list. Steps remove constraints
// remembering their index and reinsert them at that index on release;
// removals and reinsertions are strictly LIFO, so index-based
// restoration reproduces the original order exactly.
type List struct {
	items []*Constraint
}

func NewList(items ...*Constraint) *List {
	l := &List{items: make([]*Constraint, len(items))}
	copy(l.items, items)
	return l
}

func (l *List) Len() int {
	return len(l.items)
}

func (l *List) At(i int) *Constraint {
	return l.items[i]
}

// Items returns the backing slice for iteration. Callers must not
// mutate it.
func (l *List) Items() []*Constraint {
	return l.items
}

func (l *List) Append(c *Constraint) {
	l.items = append(l.items, c)
}

// Remove removes c and returns the index it occupied.
func (l *List) Remove(c *Constraint) (int, bool) {
	for i, item := range l.items {
		if item == c {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return i, true
		}
	}
	return 0, false
}

// InsertAt inserts c so that it ends up at index i.
func (l *List) InsertAt(i int, c *Constraint) {
	l.items = append(l.items, nil)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = c
}
