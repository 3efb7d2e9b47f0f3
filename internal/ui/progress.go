// Package ui renders live progress of a formatting run in the terminal.
//
// A run may cover thousands of files, so the view does not list them all:
// it shows per-outcome tallies, the files currently in a worker and the
// files that failed.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"passfmt/internal/driver"
)

// maxRows bounds the in-flight and failure lists.
const maxRows = 8

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	changeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

type fileState struct {
	label string
	stage driver.Stage
	final bool
}

type failure struct {
	path string
	err  error
}

type tally struct {
	formatted, unchanged, cached, failed int
}

func (t tally) finished() int { return t.formatted + t.unchanged + t.cached + t.failed }

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	bar     progress.Model

	order    []string // input order, for a stable in-flight list
	files    map[string]*fileState
	counts   tally
	failures []failure

	width int
	done  bool
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that follows driver events for
// files. It quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(activeStyle))
	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(76)),
		order:   append([]string(nil), files...),
		files:   make(map[string]*fileState, len(files)),
		width:   80,
	}
	for _, f := range files {
		m.files[f] = &fileState{label: "queued"}
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

// next waits for the following driver event.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return doneMsg{}
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(driver.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(msg.Width-4, 10)
		}
	case tea.KeyMsg:
		// воркеры уже пишут файлы, ctrl+c только прячет прогресс
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

// apply records ev and returns the command animating the bar.
func (m *progressModel) apply(ev driver.Event) tea.Cmd {
	st, ok := m.files[ev.File]
	if !ok || st.final {
		return nil
	}
	st.label, st.stage, st.final = statusLabel(ev), ev.Stage, ev.Final()
	switch ev.Status {
	case driver.StatusDone:
		switch {
		case ev.Cached:
			m.counts.cached++
		case ev.Changed:
			m.counts.formatted++
		default:
			m.counts.unchanged++
		}
	case driver.StatusError:
		m.counts.failed++
		m.failures = append(m.failures, failure{path: ev.File, err: ev.Err})
	}
	return m.bar.SetPercent(m.fraction())
}

// fraction weighs unfinished files by how far along their stage is.
func (m *progressModel) fraction() float64 {
	if len(m.files) == 0 {
		return 1
	}
	sum := float64(m.counts.finished())
	for _, st := range m.files {
		if !st.final && st.label != "queued" {
			sum += stageWeight(st.stage)
		}
	}
	return sum / float64(len(m.files))
}

func stageWeight(stage driver.Stage) float64 {
	switch stage {
	case driver.StageRead:
		return 0.1
	case driver.StageFormat:
		return 0.5
	case driver.StageWrite:
		return 0.9
	}
	return 0
}

func (m *progressModel) View() string {
	if len(m.files) == 0 {
		return ""
	}
	var b strings.Builder

	header := fmt.Sprintf("%s (%d/%d)", m.title, m.counts.finished(), len(m.files))
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(m.tallyLine())
	b.WriteString("\n\n")

	nameWidth := max(m.width-16, 20)
	var active []string
	for _, path := range m.order {
		if st := m.files[path]; !st.final && st.label != "queued" {
			active = append(active, path)
		}
	}
	for i, path := range active {
		if i == maxRows {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  ... and %d more in flight", len(active)-maxRows)))
			b.WriteString("\n")
			break
		}
		fmt.Fprintf(&b, "  %s %s\n", activeStyle.Render(fmt.Sprintf("%12s", m.files[path].label)), truncate(path, nameWidth))
	}
	for i, f := range m.failures {
		if i == maxRows {
			b.WriteString(errStyle.Render(fmt.Sprintf("  ... and %d more failed", len(m.failures)-maxRows)))
			b.WriteString("\n")
			break
		}
		line := truncate(f.path, nameWidth)
		if f.err != nil {
			line = truncate(f.path+": "+f.err.Error(), nameWidth)
		}
		fmt.Fprintf(&b, "  %s %s\n", errStyle.Render(fmt.Sprintf("%12s", "error")), line)
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) tallyLine() string {
	parts := []string{
		changeStyle.Render(fmt.Sprintf("%d formatted", m.counts.formatted)),
		okStyle.Render(fmt.Sprintf("%d unchanged", m.counts.unchanged)),
		okStyle.Render(fmt.Sprintf("%d cached", m.counts.cached)),
	}
	if m.counts.failed > 0 {
		parts = append(parts, errStyle.Render(fmt.Sprintf("%d failed", m.counts.failed)))
	}
	return "  " + strings.Join(parts, dimStyle.Render(" · "))
}

// statusLabel is the short word shown next to a file.
func statusLabel(ev driver.Event) string {
	switch ev.Status {
	case driver.StatusQueued:
		return "queued"
	case driver.StatusError:
		return "error"
	case driver.StatusDone:
		switch {
		case ev.Cached:
			return "cached"
		case ev.Changed:
			return "formatted"
		}
		return "unchanged"
	case driver.StatusWorking:
		switch ev.Stage {
		case driver.StageRead:
			return "reading"
		case driver.StageFormat:
			return "formatting"
		case driver.StageWrite:
			return "writing"
		}
	}
	return ""
}

// truncate shortens value to width terminal cells, ending in "..." when
// there is room for it.
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
