package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/xid"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/willibrandon/BranchTrace/pkg/config"
	"github.com/willibrandon/BranchTrace/pkg/engine"
	"github.com/willibrandon/BranchTrace/pkg/instrumentation"
	"github.com/willibrandon/BranchTrace/pkg/trace"
)

var (
	recordOutput   string
	recordLimit    uint64
	recordCompress bool
	recordBuffer   string
	recordConfig   string
)

var recordCmd = &cobra.Command{
	Use:   "record <binary> [args...]",
	Short: "Run a program under instrumentation and record its conditional branches",
	Long: `Record starts the given binary under the reference instrumentation engine, ` +
		`captures one event per executed conditional branch, and writes the trace at ` +
		`program termination. The recorded program's exit code becomes this command's ` +
		`exit code.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringVarP(&recordOutput, "output", "o", "",
		"trace output file (default \""+config.DefaultOutput+"\", \"-\" for the diagnostic stream)")
	recordCmd.Flags().Uint64VarP(&recordLimit, "limit", "l", 0,
		"maximum number of branch events to retain (0 = unlimited)")
	recordCmd.Flags().BoolVar(&recordCompress, "compress", false,
		"compress the trace with zstd")
	recordCmd.Flags().StringVar(&recordBuffer, "buffer", "",
		"buffer implementation: single, locked, or sharded")
	recordCmd.Flags().StringVar(&recordConfig, "config", "",
		"YAML config file")
	rootCmd.AddCommand(recordCmd)
}

// resolveConfig layers the config file, the environment, and the flags that
// were actually set.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(recordConfig)
	if err != nil {
		return cfg, err
	}
	cfg = cfg.FromEnvironment()

	if cmd.Flags().Changed("output") {
		cfg.Output = recordOutput
	}
	if cmd.Flags().Changed("limit") {
		cfg.Limit = recordLimit
	}
	if cmd.Flags().Changed("compress") {
		cfg.Compress = recordCompress
	}
	if cmd.Flags().Changed("buffer") {
		cfg.Buffer = recordBuffer
	}

	// "-" routes the trace to the diagnostic stream.
	if cfg.Output == "-" {
		cfg.Output = ""
	}
	return cfg, cfg.Validate()
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	buf, err := cfg.NewBuffer()
	if err != nil {
		return err
	}
	instrumentation.Init(buf)

	var opts []trace.Option
	if cfg.Compress {
		opts = append(opts, trace.WithCompression(trace.ZstdCompression))
	}
	w, err := trace.Open(cfg.Output, opts...)
	if err != nil {
		return err
	}

	// Finalize exactly once: on the normal path below, or through the exit
	// handler when something terminates the process early.
	var finalizeOnce sync.Once
	finalize := func() {
		finalizeOnce.Do(func() {
			if err := w.Write(buf); err != nil {
				fmt.Fprintf(os.Stderr, "error writing trace: %v\n", err)
			}
			if err := w.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "error closing trace: %v\n", err)
			}
		})
	}
	atexit.Register(finalize)

	printBanner(cfg.Output)

	eng, err := engine.New(args[0], args[1:])
	if err != nil {
		return err
	}
	defer eng.Close()

	exitCode, runErr := eng.Run(instrumentation.OnBranch)
	finalize()
	if runErr != nil {
		return runErr
	}

	// The observed program's exit code is the process exit code.
	eng.Close()
	atexit.Exit(exitCode)
	return nil
}

// printBanner writes the startup diagnostics. Informational only, never part
// of the machine-readable trace.
func printBanner(output string) {
	color.NoColor = color.NoColor || !isatty.IsTerminal(os.Stderr.Fd())
	banner := color.New(color.FgCyan)

	banner.Fprintln(os.Stderr, "===============================================")
	banner.Fprintln(os.Stderr, "This application is instrumented by BranchTrace")
	if output != "" {
		banner.Fprintf(os.Stderr, "See file %s for analysis results\n", output)
	}
	banner.Fprintf(os.Stderr, "Capture session %s\n", xid.New())
	banner.Fprintln(os.Stderr, "===============================================")
}
