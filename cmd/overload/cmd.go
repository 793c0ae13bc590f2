package overload

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tyfer-lang/tyfer/pkg/tyfer/solver"
)

func NewOverloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "overload",
		Short: "Resolves the overloads of a chained '+' expression",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
}

func run() error {
	// build solver
	problem := NewChainedSum()
	so, err := solver.New()
	if err != nil {
		return err
	}

	// get resolution
	resolution, err := so.Solve(context.Background(), problem)
	if err != nil {
		return err
	}
	if resolution.Error() != nil {
		fmt.Println("no assignment found")
		return nil
	}

	assignment, _ := resolution.Best()
	fmt.Println("lit + 2.5 + 0.5")
	for _, name := range problem.TypeVars {
		if t, ok := assignment.TypeOf(name); ok {
			fmt.Printf("%s = %s\n", name, t)
		}
	}
	for index := range problem.Constraints {
		if decl, ok := assignment.OverloadFor(index); ok {
			fmt.Printf("'+' use %d resolved to %s\n", index/2, decl)
		}
	}
	return nil
}
