// Package tui is the interactive queue editor.
package tui

import (
	"fmt"
	"strings"
	"time"

	"sweepq/internal/core/app"
	"sweepq/internal/queue"
	"sweepq/internal/sweep"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	previewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#64748B")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	entry    sweep.Entry
	position int
	selected bool
}

func (i item) Title() string {
	title := fmt.Sprintf("%d. %s", i.position+1, i.entry.Name)
	if i.selected {
		title = selectedStyle.Render("▶ " + title)
	}
	return title
}

func (i item) Description() string {
	desc := i.entry.SweepType.Label()
	if db := i.entry.Database; db != nil {
		desc += fmt.Sprintf(" → %s/%s", db.Experiment, db.Sample)
	}
	return desc
}

func (i item) FilterValue() string { return i.entry.Name }

// stateMsg carries a queue snapshot from the store's observer.
type stateMsg struct {
	state queue.State
}

type model struct {
	app        *app.App
	entries    list.Model
	state      queue.State
	preview    string
	status     string
	statusErr  bool
	pickType   bool
	lastUpdate time.Time
}

func newModel(a *app.App) model {
	entries := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	entries.Title = "Sweep Queue"
	entries.SetShowStatusBar(false)
	entries.SetFilteringEnabled(false)

	m := model{app: a, entries: entries}
	return m.withState(a.Queue.State())
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return handleKeyActions(msg, m)
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		width := msg.Width - h
		height := msg.Height - v - 14
		if height < 5 {
			height = 5
		}
		m.entries.SetSize(width, height)
		return m, nil
	case stateMsg:
		// Sends are asynchronous and may arrive out of order, so the
		// snapshot only signals a change; the store is read afresh.
		return m.withState(m.app.Queue.State()), nil
	}

	var cmd tea.Cmd
	m.entries, cmd = m.entries.Update(msg)
	return m, cmd
}

// withState rebuilds the list from a snapshot, keeping the cursor in range.
func (m model) withState(state queue.State) model {
	m.state = state
	m.lastUpdate = time.Now()

	items := make([]list.Item, 0, len(state.Entries))
	for i, e := range state.Entries {
		items = append(items, item{entry: e, position: i, selected: e.ID == state.SelectedID})
	}
	cursor := m.entries.Index()
	m.entries.SetItems(items)
	if cursor >= len(items) {
		cursor = len(items) - 1
	}
	if cursor >= 0 {
		m.entries.Select(cursor)
	}
	return m
}

func (m model) current() (sweep.Entry, int, bool) {
	idx := m.entries.Index()
	if idx < 0 || idx >= len(m.state.Entries) {
		return sweep.Entry{}, -1, false
	}
	return m.state.Entries[idx], idx, true
}

func (m model) setStatus(format string, args ...any) model {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = false
	return m
}

func (m model) setError(err error) model {
	m.status = err.Error()
	m.statusErr = true
	return m
}

func (m model) View() string {
	header := fmt.Sprintf("%s\n%s\n",
		titleStyle("sweepq"),
		statusStyle.Render(fmt.Sprintf("Last update: %s | %d sweeps",
			m.lastUpdate.Format("15:04:05"), len(m.state.Entries))))

	body := m.entries.View()
	if m.pickType {
		body += "\n\n" + renderTypePicker()
	}
	if m.preview != "" {
		body += "\n\n" + previewStyle.Render(m.preview)
	}
	if m.status != "" {
		style := statusStyle
		if m.statusErr {
			style = errorStyle
		}
		body += "\n\n" + style.Render(m.status)
	}

	return docStyle.Render(header + "\n" + renderHelp() + "\n\n" + body)
}

func renderHelp() string {
	return statusStyle.Render("K/J move • d remove • C clear • enter select • p preview queue • e export • i insert • n new • s save defaults • q quit")
}

func renderTypePicker() string {
	var b strings.Builder
	b.WriteString("New sweep:")
	for i, t := range sweep.Types() {
		fmt.Fprintf(&b, "  [%d] %s", i+1, t.Label())
	}
	b.WriteString("  [esc] cancel")
	return statusStyle.Render(b.String())
}
