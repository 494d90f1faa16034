package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestProgress(buf *bytes.Buffer) *SimpleProgress {
	p := NewProgressReporter(buf, "records")
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	p.now = func() time.Time {
		calls++
		return start.Add(time.Duration(calls-1) * 250 * time.Millisecond)
	}
	return p
}

func TestSimpleProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	p := newTestProgress(buf)

	p.Start(4)
	p.Update(2)
	p.Finish()

	out := buf.String()
	if !strings.Contains(out, "[###############---------------] 2/4 records") {
		t.Errorf("missing half-way bar in %q", out)
	}
	if !strings.Contains(out, "4/4 records") {
		t.Errorf("missing final bar in %q", out)
	}
	if !strings.Contains(out, "Done: 4 records in 250ms") {
		t.Errorf("missing summary in %q", out)
	}
}

func TestSimpleProgress_ZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	p := newTestProgress(buf)

	p.Start(0)
	p.Update(0)

	if buf.Len() != 0 {
		t.Errorf("expected no bar for zero total, got %q", buf.String())
	}
}

func TestSimpleProgress_Overshoot(t *testing.T) {
	buf := &bytes.Buffer{}
	p := newTestProgress(buf)

	p.Start(2)
	p.Update(5)

	if !strings.Contains(buf.String(), "2/2 records") {
		t.Errorf("expected progress clamped to total, got %q", buf.String())
	}
}

func TestSimpleProgress_Error(t *testing.T) {
	buf := &bytes.Buffer{}
	p := newTestProgress(buf)

	p.Start(10)
	p.Update(3)
	p.Error(errors.New("disk full"))

	if !strings.Contains(buf.String(), "Error after 3/10 records: disk full") {
		t.Errorf("unexpected error output %q", buf.String())
	}
}

func TestNewProgressReporter_Defaults(t *testing.T) {
	p := NewProgressReporter(nil, "")
	if p.writer == nil || p.unit != "items" {
		t.Errorf("unexpected defaults: writer=%v unit=%q", p.writer, p.unit)
	}
}
