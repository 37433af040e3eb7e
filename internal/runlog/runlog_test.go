package runlog

import (
	"strings"
	"testing"
)

func TestAppendAndRead(t *testing.T) {
	b := New(10)
	b.Appendf("Starting %s", "run")
	b.Appendf("Found %d results", 3)

	lines := b.Lines()
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.HasSuffix(lines[0], "Starting run") {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.Contains(lines[0], "[") {
		t.Errorf("line missing timestamp prefix: %q", lines[0])
	}
}

func TestEvictionKeepsMostRecent(t *testing.T) {
	b := New(5)
	for i := 0; i < 8; i++ {
		b.Appendf("line %d", i)
	}

	lines := b.Lines()
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5", len(lines))
	}
	if !strings.HasSuffix(lines[0], "line 3") {
		t.Errorf("oldest surviving line = %q, want line 3", lines[0])
	}
	if !strings.HasSuffix(lines[4], "line 7") {
		t.Errorf("newest line = %q, want line 7", lines[4])
	}
}

func TestReset(t *testing.T) {
	b := New(0)
	b.Appendf("something")
	b.Reset()
	if got := b.Lines(); len(got) != 0 {
		t.Errorf("Lines after Reset = %v, want empty", got)
	}
}

func TestLinesReturnsCopy(t *testing.T) {
	b := New(10)
	b.Appendf("original")
	lines := b.Lines()
	lines[0] = "mutated"
	if got := b.Lines()[0]; got == "mutated" {
		t.Error("Lines exposed internal slice")
	}
	_ = lines
}
