package tui

import (
	"sweepq/internal/core/app"
	"sweepq/internal/queue"

	tea "github.com/charmbracelet/bubbletea"
)

// Run blocks until the user quits. Store changes made elsewhere, such as a
// plan reload in watch mode, reach the view through the store's observer.
func Run(a *app.App) error {
	p := tea.NewProgram(newModel(a), tea.WithAltScreen())

	unsubscribe := a.Queue.Subscribe(func(state queue.State) {
		// Observers run on the mutating goroutine, which may be the
		// program's own event loop.
		go p.Send(stateMsg{state: state})
	})
	defer unsubscribe()

	_, err := p.Run()
	return err
}
