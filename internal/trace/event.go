package trace

import "time"

// Kind is the type of a trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeCommand  Scope = iota + 1 // one CLI command
	ScopeProbe                     // a probe run
	ScopeContext                   // one engine context and its worker
	ScopeCheck                     // a single property check
	ScopeDescribe                  // a describe request, as coarse as ScopeProbe
)

// depth maps s to the granularity levels filter on.
func (s Scope) depth() Scope {
	if s == ScopeDescribe {
		return ScopeProbe
	}
	return s
}

func (s Scope) String() string {
	switch s {
	case ScopeCommand:
		return "command"
	case ScopeProbe:
		return "probe"
	case ScopeContext:
		return "context"
	case ScopeCheck:
		return "check"
	case ScopeDescribe:
		return "describe"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned by the tracer that stores the event
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	GID      uint64 // goroutine that emitted the event
	Name     string // e.g. "probe", "context#2", "int-singleton"
	Detail   string
	Extra    map[string]string
}
