package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"irbind/internal/config"
	"irbind/internal/observ"
	"irbind/irtype"
)

// session is what every command needs after the global flags are applied.
type session struct {
	cfg     config.Config
	log     *zap.Logger
	timer   *observ.Timer
	color   bool
	timings bool
}

// openSession loads configuration, installs the logger and tracer, and
// returns a cleanup that flushes them. Callers defer the cleanup.
func openSession(cmd *cobra.Command) (*session, func(), error) {
	flags := cmd.Root().PersistentFlags()

	cfgPath, err := flags.GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	var cfg config.Config
	if cfgPath != "" {
		cfg, err = config.Load(cfgPath)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return nil, nil, err
	}

	useColor, err := applyColorFlag(cmd)
	if err != nil {
		return nil, nil, err
	}

	timings, err := flags.GetBool("timings")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get verbose flag: %w", err)
	}

	log := zap.NewNop()
	if verbose {
		log, err = zap.NewDevelopment()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}
	irtype.SetLogger(log.Named("irtype"))

	closeTrace, err := setupTracing(cmd, cfg.Trace)
	if err != nil {
		return nil, nil, err
	}
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		closeTrace()
		return nil, nil, err
	}

	s := &session{
		cfg:     cfg,
		log:     log,
		timer:   observ.NewTimer(),
		color:   useColor,
		timings: timings,
	}
	if cfg.Path != "" {
		log.Debug("loaded configuration", zap.String("path", cfg.Path))
	}
	cleanup := func() {
		stopProfiling()
		closeTrace()
		if s.timings {
			if err := s.timer.WriteSummary(cmd.ErrOrStderr()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "timings: %v\n", err)
			}
		}
		_ = log.Sync() //nolint:errcheck // stderr sync fails on some terminals
	}
	return s, cleanup, nil
}

// applyColorFlag resolves --color and configures fatih/color to match.
func applyColorFlag(cmd *cobra.Command) (bool, error) {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	useColor, err := resolveColor(value)
	if err != nil {
		return false, err
	}
	color.NoColor = !useColor
	return useColor, nil
}

func resolveColor(value string) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return isTerminal(os.Stdout), nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}
