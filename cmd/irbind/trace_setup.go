package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"irbind/internal/config"
	"irbind/internal/trace"
)

// setupTracing merges the trace flags over the [trace] section, attaches the
// resulting tracer to the command context, and returns its cleanup.
func setupTracing(cmd *cobra.Command, cfg config.TraceConfig) (func(), error) {
	flags := cmd.Root().PersistentFlags()

	output, levelStr, formatStr := cfg.Output, cfg.Level, cfg.Format
	if flags.Changed("trace") {
		output, _ = flags.GetString("trace") //nolint:errcheck // flag is registered
	}
	if flags.Changed("trace-level") {
		levelStr, _ = flags.GetString("trace-level") //nolint:errcheck
	}
	if flags.Changed("trace-format") {
		formatStr, _ = flags.GetString("trace-format") //nolint:errcheck
	}
	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	// an output alone turns tracing on at phase level
	if level == trace.LevelOff && output != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, err
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}
	tcfg := trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: output,
		RingSize:   ringSize,
	}
	if output == "-" {
		// hide Close so the tracer leaves stderr open
		tcfg.Output = struct{ io.Writer }{cmd.ErrOrStderr()}
	}
	tracer, err := trace.New(tcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	return func() {
		if ring, ok := tracer.(*trace.RingTracer); ok {
			if err := ring.Dump(cmd.ErrOrStderr(), trace.FormatText); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
			}
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}, nil
}
