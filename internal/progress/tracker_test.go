package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/johndauphine/sqlcsv/internal/logging"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	t.Cleanup(func() { logging.SetOutput(nil) })
	return &buf
}

func TestTrackerWithoutOutput(t *testing.T) {
	logs := captureLogs(t)

	tr := New(nil, "Inserting")
	tr.SetTotal(-1)
	tr.Add(3)
	tr.Add(2)

	if tr.Current() != 5 {
		t.Errorf("Current() = %d, want 5", tr.Current())
	}
	if tr.Total() != -1 {
		t.Errorf("Total() = %d, want -1", tr.Total())
	}
	tr.Finish()

	if !strings.Contains(logs.String(), "Inserting: 5 rows") {
		t.Errorf("Finish() should log totals, got %q", logs.String())
	}
}

func TestTrackerDrawsOnOutput(t *testing.T) {
	captureLogs(t)

	var out bytes.Buffer
	tr := New(&out, "Selecting")
	tr.SetTotal(10)
	tr.Add(10)
	tr.Finish()

	if tr.Current() != 10 {
		t.Errorf("Current() = %d, want 10", tr.Current())
	}
	if !strings.Contains(out.String(), "Selecting") {
		t.Errorf("bar output should carry the description, got %q", out.String())
	}
}

func TestTrackerSpinner(t *testing.T) {
	captureLogs(t)

	var out bytes.Buffer
	tr := New(&out, "Inserting")
	tr.SetTotal(-1)
	tr.Add(7)
	tr.Finish()

	if out.Len() == 0 {
		t.Error("spinner should render on the output")
	}
}
