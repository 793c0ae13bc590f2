package solver

import (
	"fmt"
	"io"

	"github.com/tyfer-lang/tyfer/pkg/tyfer"
)

type searchPosition struct {
	step  string
	depth int
	score Score
}

func (p searchPosition) Step() string { return p.step }

func (p searchPosition) Depth() int { return p.depth }

func (p searchPosition) Score() string { return p.score.String() }

// DefaultTracer ignores every position.
type DefaultTracer struct{}

func (DefaultTracer) Trace(_ tyfer.SearchPosition) {
}

// LoggingTracer writes one line per step advance.
type LoggingTracer struct {
	Writer io.Writer
}

func (t LoggingTracer) Trace(p tyfer.SearchPosition) {
	fmt.Fprintf(t.Writer, "%*s%s score=%s\n", p.Depth()*2, "", p.Step(), p.Score())
}

func (cs *System) trace(step string) {
	cs.tracer.Trace(searchPosition{step: step, depth: cs.depth, score: cs.currentScore})
	cs.log.Debug().Str("step", step).Int("depth", cs.depth).Stringer("score", cs.currentScore).Msg("advance")
}
