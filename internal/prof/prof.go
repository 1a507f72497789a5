// Package prof collects Go runtime profiles around a command.
package prof

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	rtrace "runtime/trace"
)

// Options names the output file of each profile. Empty paths are skipped.
type Options struct {
	CPU   string
	Mem   string
	Trace string
}

func (o Options) Enabled() bool { return o.CPU != "" || o.Mem != "" || o.Trace != "" }

// Profiler owns the profiles started by Start. Only one can be active per
// process, since pprof and runtime/trace are global.
type Profiler struct {
	opts    Options
	cpu     *os.File
	trace   *os.File
	stopped bool
}

// Start begins the CPU profile and runtime trace requested by opts. The heap
// profile is written by Stop.
func Start(opts Options) (*Profiler, error) {
	p := &Profiler{opts: opts}
	if opts.CPU != "" {
		f, err := os.Create(opts.CPU)
		if err != nil {
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close() //nolint:errcheck // start error wins
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		p.cpu = f
	}
	if opts.Trace != "" {
		f, err := os.Create(opts.Trace)
		if err == nil {
			err = rtrace.Start(f)
			if err != nil {
				_ = f.Close() //nolint:errcheck // start error wins
			}
		}
		if err != nil {
			p.stopCPU() //nolint:errcheck // reporting the trace failure
			return nil, fmt.Errorf("runtime trace: %w", err)
		}
		p.trace = f
	}
	return p, nil
}

// Stop ends every active profile and writes the heap profile. Calling it
// again does nothing.
func (p *Profiler) Stop() error {
	if p == nil || p.stopped {
		return nil
	}
	p.stopped = true
	var errs []error
	if p.trace != nil {
		rtrace.Stop()
		errs = append(errs, p.trace.Close())
		p.trace = nil
	}
	errs = append(errs, p.stopCPU())
	if p.opts.Mem != "" {
		errs = append(errs, writeHeap(p.opts.Mem))
	}
	return errors.Join(errs...)
}

func (p *Profiler) stopCPU() error {
	if p.cpu == nil {
		return nil
	}
	pprof.StopCPUProfile()
	err := p.cpu.Close()
	p.cpu = nil
	return err
}

func writeHeap(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("heap profile: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("heap profile: %w", err)
	}
	return nil
}
