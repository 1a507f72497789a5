package main

import (
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
	"github.com/spf13/cobra"

	"irbind/internal/probe"
	"irbind/irtype"
)

func newProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check the type layer's guarantees against the active engine",
		Long: `probe creates several independent contexts, one goroutine each, and runs
every check in each of them: singleton int types, function signature round
trips, zero-arity and zero-length types, absent struct fields, context
ownership of derived types, constant truncation, and null-handle refusal.`,
		Args: cobra.NoArgs,
		RunE: runProbe,
	}
	cmd.Flags().Int("contexts", 0, "number of contexts to probe (default from config)")
	cmd.Flags().Int("jobs", 0, "contexts probed concurrently, 0 for GOMAXPROCS (default from config)")
	cmd.Flags().UintSlice("widths", nil, "integer widths for the singleton check (default from config)")
	cmd.Flags().Bool("list", false, "list the checks and exit")
	return cmd
}

func runProbe(cmd *cobra.Command, _ []string) error {
	if list, _ := cmd.Flags().GetBool("list"); list { //nolint:errcheck // flag is registered
		for _, name := range probe.Checks() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	s, cleanup, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := probe.Options{
		Contexts:  s.cfg.Probe.Contexts,
		Jobs:      s.cfg.Probe.Jobs,
		Widths:    s.cfg.Probe.Widths,
		AddrSpace: s.cfg.Engine.AddrSpace,
		Logger:    s.log.Named("probe"),
		Timer:     s.timer,
	}
	if cmd.Flags().Changed("contexts") {
		opts.Contexts, _ = cmd.Flags().GetInt("contexts") //nolint:errcheck
		if opts.Contexts < 1 {
			return fmt.Errorf("--contexts must be at least 1, got %d", opts.Contexts)
		}
	}
	if cmd.Flags().Changed("jobs") {
		opts.Jobs, _ = cmd.Flags().GetInt("jobs") //nolint:errcheck
	}
	if cmd.Flags().Changed("widths") {
		raw, _ := cmd.Flags().GetUintSlice("widths") //nolint:errcheck
		opts.Widths, err = convertWidths(raw)
		if err != nil {
			return err
		}
	}

	report, err := probe.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}
	printProbeReport(cmd.OutOrStdout(), s, report)
	if report.Err() != nil {
		return fmt.Errorf("%d of %d checks failed", len(report.Failed()), len(report.Results))
	}
	return nil
}

func convertWidths(raw []uint) ([]uint32, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("--widths must not be empty")
	}
	out := make([]uint32, len(raw))
	for i, w := range raw {
		v, err := safecast.Conv[uint32](w)
		if err != nil || v == 0 || v > 1<<23 {
			return nil, fmt.Errorf("--widths: %d is not a valid integer width", w)
		}
		out[i] = v
	}
	return out, nil
}

func printProbeReport(out io.Writer, s *session, report *probe.Report) {
	fmt.Fprintln(out, s.heading(fmt.Sprintf("probe: engine %s, %d contexts", report.Engine, report.Contexts)))

	byContext := make([][]probe.Result, report.Contexts)
	for _, res := range report.Results {
		byContext[res.Context] = append(byContext[res.Context], res)
	}
	checks := len(probe.Checks())
	for i, results := range byContext {
		passed := 0
		var failures []string
		for _, res := range results {
			if res.Passed() {
				passed++
				continue
			}
			failures = append(failures, fmt.Sprintf("    %s %s: %v", errorMark(), res.Check, res.Err))
		}
		mark := okMark()
		if passed != checks {
			mark = errorMark()
		}
		fmt.Fprintf(out, "  %s context#%d  %d/%d passed\n", mark, i, passed, checks)
		if len(failures) > 0 {
			fmt.Fprintln(out, strings.Join(failures, "\n"))
		}
	}

	failed := len(report.Failed())
	summary := fmt.Sprintf("%d/%d checks passed", len(report.Results)-failed, len(report.Results))
	if failed == 0 {
		fmt.Fprintf(out, "%s %s %s\n", okMark(), summary, s.note("("+irtype.EngineName()+" engine)"))
		return
	}
	fmt.Fprintf(out, "%s %s\n", errorMark(), summary)
}
