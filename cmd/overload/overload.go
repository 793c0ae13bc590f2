package overload

import (
	"github.com/tyfer-lang/tyfer/pkg/tyfer"
)

// NewChainedSum builds the inference problem for the expression
//
//	lit + 2.5 + 0.5
//
// where lit is an untyped numeric literal and '+' is overloaded over
// Int and Double. T0 is the literal's type, T1 and T2 the results of
// the two applications, F1 and F2 the types of the two '+' uses.
func NewChainedSum() *tyfer.Problem {
	return &tyfer.Problem{
		TypeVars: []string{"T0", "T1", "T2", "F1", "F2"},
		Constraints: []tyfer.ConstraintSpec{
			{Kind: tyfer.Conforms, Left: "T0", Protocol: "Numeric"},
			plusOverloads("F1"),
			{Kind: tyfer.Equal, Left: "F1", Right: "(T0, Double) -> T1"},
			plusOverloads("F2"),
			{Kind: tyfer.Equal, Left: "F2", Right: "(T1, Double) -> T2"},
		},
		Conformances: map[string][]string{
			"Int":    {"Numeric"},
			"Double": {"Numeric"},
		},
		Conversions: map[string]string{"Int": "Double"},
		Defaults:    map[string]string{"Numeric": "Int"},
	}
}

// plusOverloads is the overload set of the '+' operator, applied to
// the given function type variable.
func plusOverloads(typeVar string) tyfer.ConstraintSpec {
	return tyfer.ConstraintSpec{
		Kind: tyfer.Disjunction,
		Choices: []tyfer.ChoiceSpec{
			{
				Decl: "plusInt",
				Constraint: tyfer.ConstraintSpec{
					Kind:  tyfer.Equal,
					Left:  typeVar,
					Right: "(Int, Int) -> Int",
				},
			},
			{
				Decl: "plusDouble",
				Constraint: tyfer.ConstraintSpec{
					Kind:  tyfer.Equal,
					Left:  typeVar,
					Right: "(Double, Double) -> Double",
				},
			},
		},
	}
}
