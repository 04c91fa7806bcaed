package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/willibrandon/BranchTrace/pkg/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "branchtrace",
	Short: "BranchTrace records the outcomes of conditional branch instructions.",
	Long: `BranchTrace runs a program under instrumentation and records the outcome ` +
		`of every executed conditional branch, together with its address, as an ` +
		`ordered trace for later offline analysis.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Info())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command, making sure registered exit handlers fire
// even on the error path.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
