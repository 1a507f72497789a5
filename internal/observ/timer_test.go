package observ

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestTimerReportsClosedPhasesInOrder(t *testing.T) {
	tm := NewTimer()
	a := tm.Begin("parse")
	b := tm.Begin("describe")
	open := tm.Begin("render")
	tm.End(a, "")
	tm.End(b, "cached")
	tm.End(b, "ignored")
	tm.End(99, "")
	_ = open

	report := tm.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("got %d phases, want 2", len(report.Phases))
	}
	if report.Phases[0].Name != "parse" || report.Phases[1].Note != "cached" {
		t.Errorf("unexpected phases %+v", report.Phases)
	}
	for _, p := range report.Phases {
		if report.TotalMS < p.DurationMS {
			t.Errorf("total %.3f shorter than phase %s %.3f", report.TotalMS, p.Name, p.DurationMS)
		}
	}
}

func TestTimerMeasure(t *testing.T) {
	tm := NewTimer()
	boom := errors.New("boom")
	if err := tm.Measure("probe", func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("Measure returned %v", err)
	}
	if got := tm.Report().Phases[0].Note; got != "failed" {
		t.Errorf("note = %q, want failed", got)
	}
}

func TestTimerConcurrentPhases(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.End(tm.Begin("context"), "")
		}()
	}
	wg.Wait()
	if n := len(tm.Report().Phases); n != 8 {
		t.Errorf("got %d phases, want 8", n)
	}
}

func TestWriteSummary(t *testing.T) {
	tm := NewTimer()
	tm.End(tm.Begin("probe"), "4 contexts")
	var buf bytes.Buffer
	if err := tm.WriteSummary(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "timings:\n  probe") || !strings.Contains(out, "// 4 contexts") || !strings.Contains(out, "  total") {
		t.Errorf("unexpected summary:\n%s", out)
	}
	if empty := NewTimer().Report(); empty.TotalMS != 0 || empty.Phases != nil {
		t.Errorf("empty report = %+v", empty)
	}
}
