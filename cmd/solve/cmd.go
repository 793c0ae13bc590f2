package solve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tyfer-lang/tyfer/pkg/tyfer"
	"github.com/tyfer-lang/tyfer/pkg/tyfer/solver"
)

type options struct {
	all       bool
	trace     bool
	prefilter bool
	steps     int
}

func NewSolveCommand() *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:   "solve <path>",
		Short: "Runs type inference over a constraint problem file",
		Long: `Runs type inference over a constraint problem file. For instance:
# lines starting with '#' are comments
var X Y
conforms Int : Numeric
convert Int -> Double
default Numeric = Int
X : Numeric
decl:plusInt Y == Int | decl:plusDouble Y == Double
`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("file (%s) not found", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], opts)
		},
	}
	cmd.Flags().BoolVar(&opts.all, "all", false, "report every assignment found, not only the best-scored ones")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "print the search steps as they are taken")
	cmd.Flags().BoolVar(&opts.prefilter, "prefilter", false, "reject infeasible overload combinations before searching")
	cmd.Flags().IntVar(&opts.steps, "steps", 0, "search step budget (0 means the default)")
	return cmd
}

func run(path string, opts options) error {
	problemFile, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening problem file (%s): %w", path, err)
	}
	defer problemFile.Close()

	problem, err := ParseProblem(problemFile)
	if err != nil {
		return fmt.Errorf("error parsing problem file (%s): %w", path, err)
	}

	// build solver
	solverOpts := []solver.Option{}
	if opts.all {
		solverOpts = append(solverOpts, solver.RetainAllSolutions())
	}
	if opts.trace {
		solverOpts = append(solverOpts, solver.WithTracer(solver.LoggingTracer{Writer: os.Stderr}))
	}
	if opts.prefilter {
		solverOpts = append(solverOpts, solver.WithPrefilter())
	}
	if opts.steps > 0 {
		solverOpts = append(solverOpts, solver.WithMaxSteps(opts.steps))
	}
	so, err := solver.New(solverOpts...)
	if err != nil {
		return err
	}

	// get resolution
	resolution, err := so.Solve(context.Background(), problem)
	if err != nil {
		return err
	}
	if resolution.Error() != nil {
		fmt.Printf("no assignment found: %s\n", resolution.Error())
		return nil
	}

	printResolution(problem, resolution)
	return nil
}

func printResolution(problem *tyfer.Problem, resolution *solver.Resolution) {
	assignments := resolution.Assignments()
	if resolution.Ambiguous() {
		fmt.Printf("ambiguous: %d assignments\n", len(assignments))
	}
	for i, assignment := range assignments {
		if len(assignments) > 1 {
			fmt.Printf("assignment %d (score %s):\n", i+1, assignment.Score())
		}
		for _, name := range problem.TypeVars {
			if t, ok := assignment.TypeOf(name); ok {
				fmt.Printf("%s = %s\n", name, t)
			}
		}
		var indexes []int
		for index := range problem.Constraints {
			if _, ok := assignment.OverloadFor(index); ok {
				indexes = append(indexes, index)
			}
		}
		sort.Ints(indexes)
		for _, index := range indexes {
			decl, _ := assignment.OverloadFor(index)
			fmt.Printf("constraint %d picked %s\n", index, decl)
		}
	}
}
