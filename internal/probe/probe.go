// Package probe checks the guarantees irtype relies on against the active
// engine. Each context is created, exercised and disposed by its own
// goroutine.
package probe

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"irbind/internal/observ"
	"irbind/internal/trace"
	"irbind/irtype"
)

// Options configures a run. Zero Contexts means 1; zero Jobs means
// GOMAXPROCS.
type Options struct {
	Contexts  int
	Jobs      int
	Widths    []uint32
	AddrSpace uint32

	Logger *zap.Logger   // nil for no logging
	Timer  *observ.Timer // nil for no timing
}

// Result is the outcome of one check in one context.
type Result struct {
	Context  int
	Check    string
	Err      error
	Duration time.Duration
}

func (r Result) Passed() bool { return r.Err == nil }

// Report collects every result of a run, ordered by context then check.
type Report struct {
	Engine   string
	Contexts int
	Results  []Result
}

// Failed returns the failing results.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Passed() {
			out = append(out, res)
		}
	}
	return out
}

// ErrChecksFailed is wrapped by Report.Err when any check failed.
var ErrChecksFailed = errors.New("probe checks failed")

// Err summarises the failures, or returns nil.
func (r *Report) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(failed)+1)
	errs = append(errs, fmt.Errorf("%w: %d of %d", ErrChecksFailed, len(failed), len(r.Results)))
	for _, f := range failed {
		errs = append(errs, fmt.Errorf("context#%d %s: %w", f.Context, f.Check, f.Err))
	}
	return errors.Join(errs...)
}

// Run executes every check in opts.Contexts fresh contexts. Check failures
// are reported in the Report; the error is non-nil only when the run itself
// was cut short by ctx.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Contexts <= 0 {
		opts.Contexts = 1
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	ctx, span := trace.Start(ctx, trace.ScopeProbe, "probe")
	span.WithExtra("contexts", strconv.Itoa(opts.Contexts)).WithExtra("jobs", strconv.Itoa(opts.Jobs))

	perContext := make([][]Result, opts.Contexts)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Jobs)
	for i := range opts.Contexts {
		g.Go(func() error {
			res, err := runContext(gctx, i, opts, log.With(zap.Int("context", i)))
			perContext[i] = res
			return err
		})
	}
	err := g.Wait()

	report := &Report{Engine: irtype.EngineName(), Contexts: opts.Contexts}
	for _, res := range perContext {
		report.Results = append(report.Results, res...)
	}
	detail := "ok"
	if n := len(report.Failed()); n > 0 {
		detail = fmt.Sprintf("%d failed", n)
	}
	span.End(detail)
	if err != nil {
		return report, fmt.Errorf("probe interrupted: %w", err)
	}
	return report, nil
}

// runContext owns one engine context from creation to disposal.
func runContext(ctx context.Context, idx int, opts Options, log *zap.Logger) ([]Result, error) {
	name := "context#" + strconv.Itoa(idx)
	ctx, span := trace.Start(ctx, trace.ScopeContext, name)
	phase := -1
	if opts.Timer != nil {
		phase = opts.Timer.Begin(name)
	}

	results := make([]Result, 0, len(checks))
	err := irtype.WithContext(func(c irtype.Context) error {
		e := env{ctx: c, widths: opts.Widths, addrSpace: opts.AddrSpace}
		for _, chk := range checks {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := runCheck(ctx, idx, chk, e)
			if res.Passed() {
				log.Debug("check passed", zap.String("check", chk.name), zap.Duration("took", res.Duration))
			} else {
				log.Warn("check failed", zap.String("check", chk.name), zap.Error(res.Err))
			}
			results = append(results, res)
		}
		return nil
	})

	failed := 0
	for _, r := range results {
		if !r.Passed() {
			failed++
		}
	}
	note := fmt.Sprintf("%d/%d passed", len(results)-failed, len(results))
	if opts.Timer != nil {
		opts.Timer.End(phase, note)
	}
	span.End(note)
	return results, err
}

// runCheck runs one check, turning an unexpected panic into a failure.
func runCheck(ctx context.Context, idx int, chk check, e env) (res Result) {
	res = Result{Context: idx, Check: chk.name}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeCheck, chk.name, trace.CurrentSpan(ctx))
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				res.Err = fmt.Errorf("panic: %w", err)
			} else {
				res.Err = fmt.Errorf("panic: %v", r)
			}
		}
		res.Duration = time.Since(start)
		if res.Err != nil {
			trace.Fail(ctx, trace.ScopeCheck, chk.name, res.Err.Error())
			span.End("failed")
			return
		}
		span.End("")
	}()
	res.Err = chk.run(e)
	return res
}
