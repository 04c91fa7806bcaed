package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/willibrandon/BranchTrace/pkg/replay"
)

var (
	statsCompressed bool
	statsTop        int
)

var statsCmd = &cobra.Command{
	Use:   "stats <trace-file>",
	Short: "Summarize a recorded trace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := readTraceArg(args[0], statsCompressed)
		if err != nil {
			return err
		}
		replay.Summarize(events, statsTop).Format(os.Stdout)
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsCompressed, "compressed", false,
		"the trace was recorded with --compress")
	statsCmd.Flags().IntVar(&statsTop, "top", 10,
		"number of hottest branch sites to list (0 = all)")
	rootCmd.AddCommand(statsCmd)
}
