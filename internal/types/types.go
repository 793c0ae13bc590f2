package types

import (
	"fmt"
	"strings"
)

// Type is a type term appearing in constraints: a named primitive,
// a function type, or a reference to a type variable.
type Type interface {
	String() string
}

// Primitive is a nominal type such as Int or String.
type Primitive struct {
	Name string
}

func (p Primitive) String() string {
	return p.Name
}

// Function is a first-order function type.
type Function struct {
	Params []Type
	Result Type
}

func (f Function) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(params, ", "), f.Result)
}

// Var references a type variable by its arena id.
type Var struct {
	ID int
}

func (v Var) String() string {
	return fmt.Sprintf("$T%d", v.ID)
}

// Equal reports structural equality of two fully resolved type terms.
func Equal(x, y Type) bool {
	switch xt := x.(type) {
	case Primitive:
		yt, ok := y.(Primitive)
		return ok && xt.Name == yt.Name
	case Var:
		yt, ok := y.(Var)
		return ok && xt.ID == yt.ID
	case Function:
		yt, ok := y.(Function)
		if !ok || len(xt.Params) != len(yt.Params) {
			return false
		}
		for i := range xt.Params {
			if !Equal(xt.Params[i], yt.Params[i]) {
				return false
			}
		}
		return Equal(xt.Result, yt.Result)
	}
	return false
}
