package tui

import (
	"context"
	"strconv"

	"sweepq/internal/engine/export"
	"sweepq/internal/sweep"

	tea "github.com/charmbracelet/bubbletea"
)

func handleKeyActions(msg tea.KeyMsg, m model) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.pickType {
		return pickType(key, m)
	}

	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "K":
		if _, idx, ok := m.current(); ok && idx > 0 {
			m.app.Queue.Move(idx, idx-1)
			m.entries.Select(idx - 1)
			return m.withState(m.app.Queue.State()), nil
		}
		return m, nil
	case "J":
		if _, idx, ok := m.current(); ok && idx < len(m.state.Entries)-1 {
			// Move takes a slot index; one past the next entry.
			m.app.Queue.Move(idx, idx+2)
			m.entries.Select(idx + 1)
			return m.withState(m.app.Queue.State()), nil
		}
		return m, nil
	case "d":
		if e, _, ok := m.current(); ok {
			m.app.Queue.Remove(e.ID)
			m = m.setStatus("Removed %s", e.Name)
			return m.withState(m.app.Queue.State()), nil
		}
		return m, nil
	case "C":
		m.app.Queue.Clear()
		m.preview = ""
		m = m.setStatus("Queue cleared")
		return m.withState(m.app.Queue.State()), nil
	case "enter":
		e, _, ok := m.current()
		if !ok {
			return m, nil
		}
		m.app.Queue.Select(e.ID)
		code, err := m.app.ExportEntry(e.ID, true)
		if err != nil {
			return m.setError(err), nil
		}
		m.preview = code
		return m.withState(m.app.Queue.State()), nil
	case "p":
		if len(m.state.Entries) == 0 {
			return m.setStatus("Queue is empty"), nil
		}
		m.preview = m.app.ExportQueue()
		return m, nil
	case "esc":
		m.preview = ""
		return m, nil
	case "e":
		path, err := m.app.WriteQueueScript("")
		if err != nil {
			return m.setError(err), nil
		}
		return m.setStatus("Exported %d sweeps to %s", len(m.state.Entries), path), nil
	case "i":
		res, err := m.app.InsertQueue(context.Background(), m.app.NotebookHost())
		if err != nil {
			return m.setError(err), nil
		}
		if !res.Inserted {
			return m.setStatus("%s", res.Notice), nil
		}
		return m.setStatus("Inserted queue into notebook"), nil
	case "n":
		m.pickType = true
		return m, nil
	case "s":
		e, _, ok := m.current()
		if !ok {
			return m, nil
		}
		if err := m.app.SaveDefaults(context.Background(), e.ID); err != nil {
			return m.setError(err), nil
		}
		return m.setStatus("Saved %s defaults", e.SweepType.Label()), nil
	}

	var cmd tea.Cmd
	m.entries, cmd = m.entries.Update(msg)
	return m, cmd
}

func pickType(key string, m model) (tea.Model, tea.Cmd) {
	m.pickType = false
	if key == "esc" {
		return m, nil
	}
	n, err := strconv.Atoi(key)
	types := sweep.Types()
	if err != nil || n < 1 || n > len(types) {
		m.pickType = true
		return m, nil
	}
	e, err := m.app.NewEntryFromDefaults(context.Background(), types[n-1])
	if err != nil {
		return m.setError(err), nil
	}
	m = m.withState(m.app.Queue.State())
	m.entries.Select(len(m.state.Entries) - 1)
	m.preview = export.ExportSingleEntry(e, true)
	return m.setStatus("Added %s", e.Name), nil
}
