package solver

import (
	"github.com/tyfer-lang/tyfer/pkg/tyfer"
)

// Assignment is one consistent typing of the problem.
type Assignment struct {
	bindings  map[string]string
	overloads map[int]tyfer.Identifier
	score     string
}

// TypeOf returns the inferred type of a problem type variable, rendered
// as a type expression.
func (a Assignment) TypeOf(typeVar string) (string, bool) {
	t, ok := a.bindings[typeVar]
	return t, ok
}

// OverloadFor returns the declaration chosen for the disjunction at the
// given index of the problem's constraint list.
func (a Assignment) OverloadFor(constraintIndex int) (tyfer.Identifier, bool) {
	id, ok := a.overloads[constraintIndex]
	return id, ok
}

// Score renders the solution's cost relative to an unpenalized typing.
func (a Assignment) Score() string {
	return a.score
}

// Resolution is returned by the Solver when the search executed to
// completion. A completed search can still end in an error when no
// assignment exists.
type Resolution struct {
	err         error
	assignments []Assignment
}

// Error returns the resolution error in case the problem has no
// solution. On successful resolution it returns nil.
func (r *Resolution) Error() error {
	return r.err
}

// Best returns the best-scored assignment. When the resolution is
// ambiguous, the assignment reached first is returned.
func (r *Resolution) Best() (Assignment, bool) {
	if len(r.assignments) == 0 {
		return Assignment{}, false
	}
	return r.assignments[0], true
}

// Ambiguous reports whether more than one assignment survived scoring.
func (r *Resolution) Ambiguous() bool {
	return len(r.assignments) > 1
}

// Assignments returns every assignment the search retained, best-scored
// first.
func (r *Resolution) Assignments() []Assignment {
	return r.assignments
}
