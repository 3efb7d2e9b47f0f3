package cli

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"passfmt/internal/driver"
	"passfmt/internal/ui"
)

type formatOutcome struct {
	results []driver.FileResult
	err     error
}

// runFormatWithUI formats files while a Bubble Tea program renders progress
// to out. The driver runs in its own goroutine and closes the event channel
// when it is done, which ends the program.
func runFormatWithUI(ctx context.Context, title string, f *driver.Formatter, files []string, out io.Writer) ([]driver.FileResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan formatOutcome, 1)

	go func() {
		res, err := f.WithProgress(driver.ChanSink(events)).FormatFiles(ctx, files)
		outcomeCh <- formatOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithInput(nil))
	_, uiErr := program.Run()
	// программа могла выйти раньше драйвера, дочитываем события
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
