package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/keybinds"
)

// handleKeyPress routes key presses through the keybinding registry
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	ctx := m.focusContext()

	action, match := m.keybinds.Press(ctx, key)
	switch match {
	case keybinds.Pending:
		return nil
	case keybinds.NoMatch:
		return m.handleUnboundKey(msg)
	}
	return m.runAction(action, key)
}

// handleUnboundKey feeds keys without a binding to the focused text input
func (m *Model) handleUnboundKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case m.mode == ModeFilter:
		m.filterInput, cmd = m.filterInput.Update(msg)
		m.pager.Filter(m.filterInput.Value())
	case m.mode == ModeNormal && m.focus == FocusInput:
		m.input, cmd = m.input.Update(msg)
	}
	return cmd
}

func (m *Model) runAction(action keybinds.Action, key string) tea.Cmd {
	switch action {
	case keybinds.ActionQuit, keybinds.ActionQuitForce:
		m.Cleanup()
		return tea.Quit

	case keybinds.ActionSwitchFocus:
		m.setFocus((m.focus + 1) % 3)
	case keybinds.ActionFocusInput:
		m.setFocus(FocusInput)
	case keybinds.ActionFocusHistory:
		m.setFocus(FocusHistory)

	case keybinds.ActionSubmit:
		return m.submit(false)
	case keybinds.ActionSubmitAdvanced:
		return m.submit(true)
	case keybinds.ActionNextSuggestion:
		m.nextSuggestion()
	case keybinds.ActionClearInput:
		m.input.Reset()

	case keybinds.ActionNavigateUp, keybinds.ActionNavigateDown,
		keybinds.ActionPageUp, keybinds.ActionPageDown,
		keybinds.ActionGoToTop, keybinds.ActionGoToBottom:
		m.navigate(action)

	case keybinds.ActionNextScheme:
		return m.nextScheme()
	case keybinds.ActionToggleChart:
		return m.toggleChart()
	case keybinds.ActionChartMenu:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			return m.applyMenu(int(key[0] - '1'))
		}
	case keybinds.ActionExportChart:
		return m.exportChart()
	case keybinds.ActionCopyResult:
		return m.copyResult()
	case keybinds.ActionShowRaw:
		return m.showRaw()
	case keybinds.ActionOpenHelp:
		m.showHelp()
	case keybinds.ActionCloseModal:
		m.mode = ModeNormal

	case keybinds.ActionHistorySelect:
		return m.selectHistory()
	case keybinds.ActionHistoryPrev:
		m.pager.Prev()
	case keybinds.ActionHistoryNext:
		m.pager.Next()
	case keybinds.ActionHistoryReload:
		m.pager.Reload()
	case keybinds.ActionHistoryFilter:
		m.mode = ModeFilter
		m.filterInput.SetValue(m.pager.FilterTerm())
		m.filterInput.CursorEnd()
		return m.filterInput.Focus()

	case keybinds.ActionFilterApply:
		m.mode = ModeNormal
		m.filterInput.Blur()
		m.pager.Filter(m.filterInput.Value())
	case keybinds.ActionFilterCancel:
		m.mode = ModeNormal
		m.filterInput.Blur()
		m.filterInput.Reset()
		m.pager.Filter("")
	}
	return nil
}

// navigate scrolls the focused viewport or moves the history cursor
func (m *Model) navigate(action keybinds.Action) {
	if m.mode == ModeNormal && m.focus == FocusHistory {
		switch action {
		case keybinds.ActionNavigateUp:
			m.historyPane.moveCursor(-1)
		case keybinds.ActionNavigateDown:
			m.historyPane.moveCursor(1)
		case keybinds.ActionGoToTop, keybinds.ActionPageUp:
			m.historyPane.moveCursor(-len(m.historyPane.entries))
		case keybinds.ActionGoToBottom, keybinds.ActionPageDown:
			m.historyPane.moveCursor(len(m.historyPane.entries))
		}
		return
	}

	vp := &m.resultPane.viewport
	if m.mode == ModeRaw || m.mode == ModeHelp {
		vp = &m.modalView
	}
	switch action {
	case keybinds.ActionNavigateUp:
		vp.LineUp(1)
	case keybinds.ActionNavigateDown:
		vp.LineDown(1)
	case keybinds.ActionPageUp:
		vp.HalfViewUp()
	case keybinds.ActionPageDown:
		vp.HalfViewDown()
	case keybinds.ActionGoToTop:
		vp.GotoTop()
	case keybinds.ActionGoToBottom:
		vp.GotoBottom()
	}
}
