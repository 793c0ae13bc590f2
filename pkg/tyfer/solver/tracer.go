package solver

import (
	"fmt"
	"io"

	"github.com/tyfer-lang/tyfer/pkg/tyfer"
)

// DefaultTracer ignores every position.
type DefaultTracer struct{}

func (DefaultTracer) Trace(_ tyfer.SearchPosition) {
}

// LoggingTracer writes one line per step advance, indented by search
// depth.
type LoggingTracer struct {
	Writer io.Writer
}

func (t LoggingTracer) Trace(p tyfer.SearchPosition) {
	fmt.Fprintf(t.Writer, "%*s%s score=%s\n", p.Depth()*2, "", p.Step(), p.Score())
}
