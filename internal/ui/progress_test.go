package ui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"passfmt/internal/driver"
)

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		ev   driver.Event
		want string
	}{
		{driver.Event{Status: driver.StatusQueued, Stage: driver.StageRead}, "queued"},
		{driver.Event{Status: driver.StatusWorking, Stage: driver.StageRead}, "reading"},
		{driver.Event{Status: driver.StatusWorking, Stage: driver.StageFormat}, "formatting"},
		{driver.Event{Status: driver.StatusWorking, Stage: driver.StageWrite}, "writing"},
		{driver.Event{Status: driver.StatusDone, Changed: true}, "formatted"},
		{driver.Event{Status: driver.StatusDone, Cached: true}, "cached"},
		{driver.Event{Status: driver.StatusDone}, "unchanged"},
		{driver.Event{Status: driver.StatusError}, "error"},
	}
	for _, tt := range tests {
		if got := statusLabel(tt.ev); got != tt.want {
			t.Errorf("statusLabel(%+v) = %q, want %q", tt.ev, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		value string
		width int
		want  string
	}{
		{"short.go", 20, "short.go"},
		// the ellipsis comes out of the budget passed to runewidth
		{"a/very/long/path/to/file.go", 10, "a/ve..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.value, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.value, tt.width, got, tt.want)
		}
	}
}

func TestModelTracksEvents(t *testing.T) {
	events := make(chan driver.Event)
	model := NewProgressModel("formatting", []string{"a.go", "b.go", "c.go"}, events).(*progressModel)

	model.Update(eventMsg(driver.Event{File: "a.go", Stage: driver.StageFormat, Status: driver.StatusWorking}))
	model.Update(eventMsg(driver.Event{File: "b.go", Stage: driver.StageFormat, Status: driver.StatusDone, Changed: true}))
	model.Update(eventMsg(driver.Event{File: "c.go", Stage: driver.StageRead, Status: driver.StatusError, Err: errors.New("permission denied")}))
	model.Update(eventMsg(driver.Event{File: "unknown.go", Status: driver.StatusError}))
	// события после финала файла игнорируются
	model.Update(eventMsg(driver.Event{File: "b.go", Status: driver.StatusError}))

	if st := model.files["a.go"]; st.label != "formatting" || st.final {
		t.Fatalf("a.go: %+v", st)
	}
	if model.counts != (tally{formatted: 1, failed: 1}) {
		t.Fatalf("unexpected tally %+v", model.counts)
	}

	view := model.View()
	for _, want := range []string{"formatting (2/3)", "1 formatted", "1 failed", "a.go", "c.go: permission denied"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view lacks %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "b.go") {
		t.Fatalf("finished files must not be listed:\n%s", view)
	}

	model.Update(doneMsg{})
	if !model.done || !strings.Contains(model.View(), "done: formatting") {
		t.Fatalf("model not finished:\n%s", model.View())
	}
}

func TestInFlightListIsBounded(t *testing.T) {
	var files []string
	for i := range maxRows + 3 {
		files = append(files, fmt.Sprintf("f%02d.go", i))
	}
	model := NewProgressModel("checking", files, nil).(*progressModel)
	for _, f := range files {
		model.apply(driver.Event{File: f, Stage: driver.StageFormat, Status: driver.StatusWorking})
	}
	view := model.View()
	if !strings.Contains(view, "... and 3 more in flight") || strings.Contains(view, files[len(files)-1]) {
		t.Fatalf("unexpected view:\n%s", view)
	}
	if got := model.fraction(); got != 0.5 {
		t.Fatalf("fraction = %v, want 0.5", got)
	}
}
