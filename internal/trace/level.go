package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // failed checks only
	LevelPhase        // command and probe boundaries
	LevelDetail       // plus context workers
	LevelDebug        // everything
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelPhase:
		return "phase"
	case LevelDetail:
		return "detail"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a level name, in any case, to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off", "":
		return LevelOff, nil
	case "error":
		return LevelError, nil
	case "phase":
		return LevelPhase, nil
	case "detail":
		return LevelDetail, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|detail|debug)", s)
	}
}

// ShouldEmit reports whether events of scope pass at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelPhase:
		return scope.depth() <= ScopeProbe
	case LevelDetail:
		return scope.depth() <= ScopeContext
	case LevelDebug:
		return true
	default:
		return false
	}
}

// ShouldEmitEvent is ShouldEmit that also lets failures through at
// LevelError. A failure is a point event with a non-empty Detail.
func (l Level) ShouldEmitEvent(ev *Event) bool {
	if l.ShouldEmit(ev.Scope) {
		return true
	}
	return l == LevelError && ev.Kind == KindPoint && ev.Detail != ""
}
