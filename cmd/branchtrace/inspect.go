package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/willibrandon/BranchTrace/pkg/replay"
)

var inspectCompressed bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <trace-file>",
	Short: "Step through a recorded trace interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := readTraceArg(args[0], inspectCompressed)
		if err != nil {
			return err
		}
		replay.NewInspector(events, os.Stdin, os.Stdout).Run()
		return nil
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectCompressed, "compressed", false,
		"the trace was recorded with --compress")
	rootCmd.AddCommand(inspectCmd)
}
