package train

import (
	"bytes"
	"strings"
	"testing"
)

func TestProgressUpdateWritesOneLinePerCallWhenNotATTY(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf)
	p.Update(50, 100, 0.025, 0.5, 4)
	p.Update(100, 100, 0.0, 0.1, 4)

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), out)
	}
	if !strings.Contains(lines[0], "50.0%") {
		t.Errorf("first line missing 50%% progress: %q", lines[0])
	}
	if !strings.Contains(lines[1], "100.0%") {
		t.Errorf("second line missing 100%% progress: %q", lines[1])
	}
}

func TestProgressNilIsSafe(t *testing.T) {
	var p *Progress
	p.Update(1, 10, 0.1, 0.1, 1) // must not panic
	p.Done()
}

func TestProgressDoneNoopWithoutTTYLine(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf)
	p.Update(1, 10, 0.1, 0.1, 1)
	p.Done()
	if strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("Done() added an extra newline for non-tty output: %q", buf.String())
	}
}
