package solve

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/tyfer-lang/tyfer/pkg/tyfer"
)

// ParseProblem reads the textual problem format:
//
//	# chained addition of an integer literal and a double literal
//	var X Y
//	conforms Int : Numeric
//	convert Int -> Double
//	default Numeric = Int
//	X : Numeric
//	Y == Double
//	decl:plusInt X == Int | decl:plusDouble X == Double
//
// Lines starting with '#' and blank lines are skipped. A line with '|'
// separators is a disjunction; each alternative is an equality,
// optionally prefixed with a 'generic' marker and a 'decl:<name>'
// overload label.
func ParseProblem(r io.Reader) (*tyfer.Problem, error) {
	problem := &tyfer.Problem{
		Conformances: map[string][]string{},
		Conversions:  map[string]string{},
		Defaults:     map[string]string{},
	}

	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := parseLine(problem, line); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(problem.TypeVars) == 0 {
		return nil, fmt.Errorf("no type variables declared")
	}
	return problem, nil
}

func parseLine(problem *tyfer.Problem, line string) error {
	fields := strings.Fields(line)
	switch fields[0] {
	case "var":
		if len(fields) < 2 {
			return fmt.Errorf("var line declares no variables")
		}
		problem.TypeVars = append(problem.TypeVars, fields[1:]...)
		return nil
	case "conforms":
		// conforms Int : Numeric
		if len(fields) != 4 || fields[2] != ":" {
			return fmt.Errorf("expected 'conforms <type> : <protocol>'")
		}
		problem.Conformances[fields[1]] = append(problem.Conformances[fields[1]], fields[3])
		return nil
	case "convert":
		// convert Int -> Double
		if len(fields) != 4 || fields[2] != "->" {
			return fmt.Errorf("expected 'convert <from> -> <to>'")
		}
		problem.Conversions[fields[1]] = fields[3]
		return nil
	case "default":
		// default Numeric = Int
		if len(fields) != 4 || fields[2] != "=" {
			return fmt.Errorf("expected 'default <protocol> = <type>'")
		}
		problem.Defaults[fields[1]] = fields[3]
		return nil
	}

	if strings.Contains(line, "|") {
		return parseDisjunction(problem, line)
	}
	spec, err := parseSimple(line)
	if err != nil {
		return err
	}
	problem.Constraints = append(problem.Constraints, spec)
	return nil
}

func parseDisjunction(problem *tyfer.Problem, line string) error {
	var choices []tyfer.ChoiceSpec
	for _, alternative := range strings.Split(line, "|") {
		alternative = strings.TrimSpace(alternative)
		var choice tyfer.ChoiceSpec
		if rest, ok := strings.CutPrefix(alternative, "generic "); ok {
			choice.Generic = true
			alternative = strings.TrimSpace(rest)
		}
		if rest, ok := strings.CutPrefix(alternative, "decl:"); ok {
			decl, body, found := strings.Cut(rest, " ")
			if !found {
				return fmt.Errorf("overload label %q without a constraint", alternative)
			}
			choice.Decl = tyfer.Identifier(decl)
			alternative = strings.TrimSpace(body)
		}
		spec, err := parseSimple(alternative)
		if err != nil {
			return err
		}
		if spec.Kind != tyfer.Equal {
			return fmt.Errorf("disjunction alternative %q is not an equality", alternative)
		}
		choice.Constraint = spec
		choices = append(choices, choice)
	}
	problem.Constraints = append(problem.Constraints, tyfer.ConstraintSpec{
		Kind:    tyfer.Disjunction,
		Choices: choices,
	})
	return nil
}

// parseSimple parses 'lhs == rhs' or 'lhs : protocol'. The sides stay
// uninterpreted strings; the solver parses them as type expressions.
func parseSimple(s string) (tyfer.ConstraintSpec, error) {
	if left, right, ok := strings.Cut(s, "=="); ok {
		return tyfer.ConstraintSpec{
			Kind:  tyfer.Equal,
			Left:  strings.TrimSpace(left),
			Right: strings.TrimSpace(right),
		}, nil
	}
	if left, protocol, ok := strings.Cut(s, ":"); ok {
		return tyfer.ConstraintSpec{
			Kind:     tyfer.Conforms,
			Left:     strings.TrimSpace(left),
			Protocol: strings.TrimSpace(protocol),
		}, nil
	}
	return tyfer.ConstraintSpec{}, fmt.Errorf("cannot parse constraint %q", s)
}
