package tyfer

// SearchPosition describes where the step engine currently is in its
// search tree.
type SearchPosition interface {
	// Step names the kind of step being advanced.
	Step() string
	// Depth is the current search depth.
	Depth() int
	// Score renders the accumulated score at this position.
	Score() string
}

type Tracer interface {
	Trace(p SearchPosition)
}
