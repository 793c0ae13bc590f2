package root

import (
	"github.com/spf13/cobra"

	"github.com/tyfer-lang/tyfer/cmd/overload"

	"github.com/tyfer-lang/tyfer/cmd/solve"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tyfer",
		Short: "Tyfer is an open-source type-inference constraint solver",
		Long: `An open-source type-inference constraint solver written in Go.
For more information visit https://github.com/tyfer-lang/tyfer`,
	}

	// add sub-commands
	rootCmd.AddCommand(solve.NewSolveCommand())
	rootCmd.AddCommand(overload.NewOverloadCommand())

	return rootCmd
}
