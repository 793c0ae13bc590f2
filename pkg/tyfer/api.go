package tyfer

import (
	"fmt"
	"strings"
)

// NotSolvable is an error produced when the constraint system admits no
// consistent assignment of types.
type NotSolvable []string

func (e NotSolvable) Error() string {
	const msg = "type constraints not solvable"
	if len(e) == 0 {
		return msg
	}
	return fmt.Sprintf("%s:\n%s", msg, strings.Join(e, "\n"))
}

// Identifier names an overload declaration within a single problem.
type Identifier string

func (id Identifier) String() string {
	return string(id)
}

// ConstraintKind discriminates the constraint forms understood by the
// solver.
type ConstraintKind int

const (
	// Equal requires two type expressions to unify.
	Equal ConstraintKind = iota
	// Conforms requires the subject type to conform to a protocol.
	Conforms
	// Disjunction requires exactly one of its choices to hold; it
	// models an overload set.
	Disjunction
)

// ConstraintSpec is the declarative form of one constraint. Left and
// Right are type expressions over the problem's type variables and
// primitive names, e.g. "X", "Int" or "(Int, Int) -> Int".
type ConstraintSpec struct {
	Kind     ConstraintKind
	Left     string
	Right    string
	Protocol string       // Conforms only
	Choices  []ChoiceSpec // Disjunction only
}

// ChoiceSpec is one alternative of a disjunction, tagged with the
// overload declaration it stands for.
type ChoiceSpec struct {
	Decl       Identifier
	Generic    bool
	Constraint ConstraintSpec
}

// Problem describes a complete constraint system to solve.
type Problem struct {
	// TypeVars lists the names of the unresolved type variables.
	TypeVars []string
	// Constraints is the ordered initial constraint list.
	Constraints []ConstraintSpec
	// Conformances maps a primitive type name to the protocols it
	// conforms to.
	Conformances map[string][]string
	// Conversions maps a primitive type name to the type it may be
	// implicitly widened to, at a score cost.
	Conversions map[string]string
	// Defaults maps a protocol name to the type a variable constrained
	// by it defaults to when nothing more specific is known, at a
	// score cost.
	Defaults map[string]string
}
