package solver

// SolutionKind is the three-valued outcome of advancing a step.
// Exhausting a search space without success is StepFailed, a normal
// outcome that simply contributes zero solutions upward.
type SolutionKind int

const (
	// StepSolved: the step appended at least one solution to its
	// buffer.
	StepSolved SolutionKind = iota
	// StepUnsolved: follow-up steps must run before this step can be
	// judged; advance it again once they have.
	StepUnsolved
	// StepFailed: this branch is infeasible.
	StepFailed
)

func (k SolutionKind) String() string {
	switch k {
	case StepSolved:
		return "solved"
	case StepUnsolved:
		return "unsolved"
	case StepFailed:
		return "failed"
	}
	return "unknown"
}

// StepResult pairs an outcome with the follow-up steps, if any, that
// must complete before the step is advanced again.
type StepResult struct {
	Kind      SolutionKind
	Followups []Step
}

// Step is one unit of search over the shared constraint system. Side
// effects during Advance are confined to the system and must be fully
// undone by the time Release returns.
type Step interface {
	Advance() StepResult
	// Release frees the step's resources, restoring any state the
	// step changed outside of its own scopes.
	Release()
}

func solved() StepResult {
	return StepResult{Kind: StepSolved}
}

func failed() StepResult {
	return StepResult{Kind: StepFailed}
}

func unsolved(followups ...Step) StepResult {
	return StepResult{Kind: StepUnsolved, Followups: followups}
}

// searchFrame carries the context a leaf solution is built against:
// the score and overload chain at the owning component's entry, and
// the buffer solutions are deposited into.
type searchFrame struct {
	originalScore Score
	chainMark     *ResolvedOverload
	solutions     *[]Solution
}

type baseStep struct {
	cs        *System
	solutions *[]Solution
}

// filterSolutions narrows candidates to the minimal-score subset
// unless the system was asked to retain all solutions.
func (b *baseStep) filterSolutions(candidates []Solution, minimize bool) []Solution {
	if b.cs.retainAll {
		return candidates
	}
	return FilterSolutions(candidates, minimize)
}
