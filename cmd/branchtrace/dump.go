package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/willibrandon/BranchTrace/pkg/recorder"
	"github.com/willibrandon/BranchTrace/pkg/trace"
)

var dumpCompressed bool

var dumpCmd = &cobra.Command{
	Use:   "dump <trace-file>",
	Short: "Print a recorded trace in human-readable form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := readTraceArg(args[0], dumpCompressed)
		if err != nil {
			return err
		}
		for i, e := range events {
			fmt.Printf("%8d  %s\n", i, e)
		}
		return nil
	},
}

func init() {
	dumpCmd.Flags().BoolVar(&dumpCompressed, "compressed", false,
		"the trace was recorded with --compress")
	rootCmd.AddCommand(dumpCmd)
}

func readTraceArg(path string, compressed bool) ([]recorder.BranchEvent, error) {
	ct := trace.NoCompression
	if compressed {
		ct = trace.ZstdCompression
	}
	return trace.ReadTraceFile(path, ct)
}
