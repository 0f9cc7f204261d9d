package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/sched"
)

// applyMsg carries a task continuation back onto the Update loop
type applyMsg struct {
	apply func()
}

// teaScheduler runs tasks as tea.Cmds. Bubble Tea executes commands off the
// event loop; the continuation comes back as an applyMsg and runs in Update.
type teaScheduler struct {
	pending []tea.Cmd
}

func (s *teaScheduler) Go(ctx context.Context, task sched.Task) {
	s.pending = append(s.pending, func() tea.Msg {
		return applyMsg{apply: task(ctx)}
	})
}

// flush returns the commands scheduled since the last flush
func (s *teaScheduler) flush() tea.Cmd {
	if len(s.pending) == 0 {
		return nil
	}
	cmds := s.pending
	s.pending = nil
	return tea.Batch(cmds...)
}
