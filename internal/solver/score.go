package solver

import (
	"fmt"
	"strings"
)

// ScoreKind indexes one dimension of a Score. Dimensions are ordered
// most significant first: a solution that resolved through a generic
// overload is worse than any solution that did not, regardless of how
// many conversions or defaults the latter needed.
type ScoreKind int

const (
	// ScoreGenericOverload counts choices resolved to generic
	// declarations.
	ScoreGenericOverload ScoreKind = iota
	// ScoreConversion counts implicit widening conversions.
	ScoreConversion
	// ScoreDefaulted counts type variables bound through a protocol
	// default rather than a concrete requirement.
	ScoreDefaulted

	NumScoreKinds
)

func (k ScoreKind) String() string {
	switch k {
	case ScoreGenericOverload:
		return "generic overloads"
	case ScoreConversion:
		return "conversions"
	case ScoreDefaulted:
		return "defaulted bindings"
	}
	return "unknown"
}

// Score is an ordered cost vector attached to a partial or complete
// solution. The running current score is threaded through the search
// and checkpointed by scopes.
type Score [NumScoreKinds]uint32

func (s Score) Add(other Score) Score {
	for i := range s {
		s[i] += other[i]
	}
	return s
}

// Sub computes s - other. Callers only subtract scores that are
// component-wise smaller, e.g. a component's original score from the
// current one.
func (s Score) Sub(other Score) Score {
	for i := range s {
		s[i] -= other[i]
	}
	return s
}

// Less is the lexicographic ordering: lower is better.
func (s Score) Less(other Score) bool {
	for i := range s {
		if s[i] != other[i] {
			return s[i] < other[i]
		}
	}
	return false
}

func (s Score) IsZero() bool {
	return s == Score{}
}

func (s Score) String() string {
	parts := make([]string, 0, NumScoreKinds)
	for i, n := range s {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", ScoreKind(i), n))
		}
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, " ")
}

// ScoreOf returns a score with a single non-zero dimension.
func ScoreOf(kind ScoreKind, n uint32) Score {
	var s Score
	s[kind] = n
	return s
}
