// Package trace records what irbind does while it runs.
//
// Enable it from the command line:
//
//	irbind probe --trace=- --trace-level=detail
//
// Tracers: Nop when disabled, StreamTracer writing each event as it
// happens, RingTracer keeping the last events in memory, and MultiTracer
// fanning out to several of them.
//
// Levels select scopes. LevelPhase shows command and probe boundaries,
// LevelDetail adds one span per context worker, LevelDebug adds every
// individual check.
//
// Tracers travel through context.Context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeProbe, "probe")
//	defer span.End("")
package trace
