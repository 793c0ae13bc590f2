package constraint

import (
	"fmt"
	"strings"

	"github.com/tyfer-lang/tyfer/internal/types"
	"github.com/tyfer-lang/tyfer/pkg/tyfer"
)

// Kind discriminates the constraint forms the engine understands.
type Kind int

const (
	Equal Kind = iota
	Conforms
	Disjunction
)

func (k Kind) String() string {
	switch k {
	case Equal:
		return "equal"
	case Conforms:
		return "conforms"
	case Disjunction:
		return "disjunction"
	}
	return "unknown"
}

// Constraint is a single typing requirement. Disjunction constraints
// carry an ordered list of nested choice constraints, each tagged with
// the overload declaration it stands for. A disabled constraint stays
// in whatever list holds it but is skipped by simplification.
type Constraint struct {
	id       int
	kind     Kind
	left     types.Type
	right    types.Type
	protocol string
	choices  []*Constraint

	decl     tyfer.Identifier
	generic  bool
	disabled bool
}

func NewEqual(id int, left, right types.Type) *Constraint {
	return &Constraint{id: id, kind: Equal, left: left, right: right}
}

func NewConforms(id int, subject types.Type, protocol string) *Constraint {
	return &Constraint{id: id, kind: Conforms, left: subject, protocol: protocol}
}

func NewDisjunction(id int, choices []*Constraint) *Constraint {
	return &Constraint{id: id, kind: Disjunction, choices: choices}
}

// MarkOverload tags a choice constraint with the declaration it
// resolves to and whether that declaration is generic.
func (c *Constraint) MarkOverload(decl tyfer.Identifier, generic bool) *Constraint {
	c.decl = decl
	c.generic = generic
	return c
}

func (c *Constraint) ID() int                { return c.id }
func (c *Constraint) Kind() Kind             { return c.kind }
func (c *Constraint) Left() types.Type       { return c.left }
func (c *Constraint) Right() types.Type      { return c.right }
func (c *Constraint) Protocol() string       { return c.protocol }
func (c *Constraint) Choices() []*Constraint { return c.choices }
func (c *Constraint) Decl() tyfer.Identifier { return c.decl }
func (c *Constraint) IsGeneric() bool        { return c.generic }
func (c *Constraint) IsDisabled() bool       { return c.disabled }

func (c *Constraint) SetDisabled() { c.disabled = true }
func (c *Constraint) SetEnabled()  { c.disabled = false }

// FreeVars appends the representative ids of the unbound type
// variables mentioned by c. For a disjunction this is the union over
// all choices, enabled or not.
func (c *Constraint) FreeVars(a *types.Arena, dst []int) []int {
	if c.kind == Disjunction {
		for _, choice := range c.choices {
			dst = choice.FreeVars(a, dst)
		}
		return dst
	}
	if c.left != nil {
		dst = a.FreeVars(c.left, dst)
	}
	if c.right != nil {
		dst = a.FreeVars(c.right, dst)
	}
	return dst
}

func (c *Constraint) String() string {
	switch c.kind {
	case Equal:
		return fmt.Sprintf("%s == %s", c.left, c.right)
	case Conforms:
		return fmt.Sprintf("%s : %s", c.left, c.protocol)
	case Disjunction:
		parts := make([]string, len(c.choices))
		for i, choice := range c.choices {
			if choice.decl != "" {
				parts[i] = fmt.Sprintf("%s: %s", choice.decl, choice.String())
			} else {
				parts[i] = choice.String()
			}
		}
		return strings.Join(parts, " | ")
	}
	return "<invalid constraint>"
}
