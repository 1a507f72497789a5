package version

import (
	"testing"

	"github.com/fatih/color"
)

func withPlainOutput(t *testing.T) {
	t.Helper()
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })
}

func withVersion(t *testing.T, v, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = v, commit, date
	t.Cleanup(func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate })
}

func TestColoredPlain(t *testing.T) {
	withPlainOutput(t)
	cases := []string{"0.1.0-dev", "1.2.3", "1.2.3-rc.1+build.5", "nightly"}
	for _, v := range cases {
		withVersion(t, v, "", "")
		if got := Colored(); got != v {
			t.Errorf("Colored() with %q = %q", v, got)
		}
	}
}

func TestColoredHighlightsComponents(t *testing.T) {
	orig := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = orig })
	withVersion(t, "1.2.3-dev", "", "")

	got := Colored()
	if got == Version {
		t.Fatal("expected escape sequences in colored output")
	}
	if want := "\x1b[33;1m1\x1b[0m"; got[:len(want)] != want {
		t.Errorf("major component = %q, want prefix %q", got, want)
	}
}

func TestLine(t *testing.T) {
	withPlainOutput(t)
	withVersion(t, "1.0.0", "", "")
	if got, want := Line("sim"), "irbind 1.0.0 (engine sim)"; got != want {
		t.Errorf("Line() = %q, want %q", got, want)
	}
	withVersion(t, "1.0.0", "abc123", "2026-01-15")
	if got, want := Line("llvm"), "irbind 1.0.0 (engine llvm) commit abc123 built 2026-01-15"; got != want {
		t.Errorf("Line() = %q, want %q", got, want)
	}
}
