package solver

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tyfer-lang/tyfer/internal/types"
)

// parseType parses a type expression over the problem's type variables
// and primitive names. The grammar is:
//
//	type  := name | "(" type ("," type)* ")" "->" type
//	name  := letter (letter | digit)*
//
// A name that matches a declared type variable denotes that variable;
// any other name is a primitive.
func parseType(expr string, vars map[string]types.Var) (types.Type, error) {
	p := &parser{input: expr, vars: vars}
	t, err := p.parse()
	if err != nil {
		return nil, err
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("unexpected %q at offset %d in %q", p.input[p.pos:], p.pos, expr)
	}
	return t, nil
}

type parser struct {
	input string
	pos   int
	vars  map[string]types.Var
}

func (p *parser) parse() (types.Type, error) {
	p.skipSpaces()
	if p.eat("(") {
		var params []types.Type
		if !p.eat(")") {
			for {
				param, err := p.parse()
				if err != nil {
					return nil, err
				}
				params = append(params, param)
				if p.eat(",") {
					continue
				}
				if p.eat(")") {
					break
				}
				return nil, p.errorf("expected ',' or ')'")
			}
		}
		if !p.eat("->") {
			return nil, p.errorf("expected '->' after parameter list")
		}
		result, err := p.parse()
		if err != nil {
			return nil, err
		}
		return types.Function{Params: params, Result: result}, nil
	}

	name := p.ident()
	if name == "" {
		return nil, p.errorf("expected a type name")
	}
	if v, ok := p.vars[name]; ok {
		return v, nil
	}
	return types.Primitive{Name: name}, nil
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) eat(token string) bool {
	p.skipSpaces()
	if strings.HasPrefix(p.input[p.pos:], token) {
		p.pos += len(token)
		return true
	}
	return false
}

func (p *parser) ident() string {
	p.skipSpaces()
	start := p.pos
	for p.pos < len(p.input) {
		r, size := utf8.DecodeRuneInString(p.input[p.pos:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		p.pos += size
	}
	return p.input[start:p.pos]
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%s at offset %d in %q", fmt.Sprintf(format, args...), p.pos, p.input)
}
