package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"irbind/internal/version"
)

// newRootCmd assembles the command tree. Tests build a fresh one per run.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "irbind",
		Short:         "Inspect and self-check the IR type layer",
		Long:          `irbind parses LLVM type expressions, describes their layout, and probes the guarantees of the active engine`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newProbeCmd())
	root.AddCommand(newDescribeCmd())
	root.AddCommand(newVersionCmd())

	flags := root.PersistentFlags()
	flags.String("config", "", "path to irbind.toml (default: search upwards from the working directory)")
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("timings", false, "print phase timings to stderr")
	flags.BoolP("verbose", "v", false, "log engine activity to stderr")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	flags.String("trace-format", "", "trace format (auto|text|ndjson)")
	flags.Int("trace-ring-size", 4096, "events kept in ring mode")
	flags.String("cpu-profile", "", "write a CPU profile to file")
	flags.String("mem-profile", "", "write a heap profile to file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to file")
	return root
}

// main runs the CLI and exits with status 1 on any error.
func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		root.PrintErrln(errorMark() + " " + err.Error())
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
