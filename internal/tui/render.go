package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/keybinds"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/types"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/view"
)

// View renders the TUI
func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}

	switch m.mode {
	case ModeRaw:
		return m.renderModal("Raw response")
	case ModeHelp:
		return m.renderModal("Keys")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderInput(),
		m.renderSuggestion(),
		m.renderBody(),
		m.renderStatusBar(),
	)
}

func (m *Model) renderHeader() string {
	title := styleTitle.Render("NASA Data Analyst")
	info := styleSubtle.Render(fmt.Sprintf("  scheme: %s  ·  %s", m.schemes.Selected(), m.settings.BaseURL))
	return title + info
}

func (m *Model) renderInput() string {
	box := panelStyle(m.focus == FocusInput && m.mode == ModeNormal, m.width-PanelBorderWidth, 1)
	return box.Render(m.input.View())
}

func (m *Model) renderSuggestion() string {
	if m.input.Value() != "" || len(m.settings.Suggestions) == 0 {
		return ""
	}
	key := m.keybinds.Describe(keybinds.ContextInput, keybinds.ActionNextSuggestion)
	return styleSubtle.Render(fmt.Sprintf(" %s: try \"%s\"", key, m.currentSuggestion()))
}

func (m *Model) renderBody() string {
	histWidth, resultWidth, bodyHeight := m.paneSizes()

	historyContent := m.historyPane.View(histWidth, bodyHeight, m.focus == FocusHistory, m.pager.Loading(), m.pager.FilterTerm())
	if m.mode == ModeFilter {
		historyContent = m.filterInput.View() + "\n" + historyContent
	}
	history := panelStyle(m.focus == FocusHistory, histWidth, bodyHeight).Render(
		lipgloss.NewStyle().MaxHeight(bodyHeight).Render(historyContent))

	result := panelStyle(m.focus == FocusResult, resultWidth, bodyHeight).Render(
		lipgloss.NewStyle().MaxHeight(bodyHeight).Render(m.renderResult(bodyHeight)))

	return lipgloss.JoinHorizontal(lipgloss.Top, history, result)
}

// renderResult stacks the notice, the result blocks and the chart
func (m *Model) renderResult(bodyHeight int) string {
	parts := []string{m.renderNotice()}
	parts = append(parts, m.resultPane.viewport.View())

	if rows := m.chartRows(bodyHeight); rows > 0 {
		parts = append(parts, m.chartPane.View(m.renderer.Menu(), m.menuActive, rows))
	}
	return strings.Join(parts, "\n")
}

func (m *Model) renderNotice() string {
	n := m.resultPane.notice
	switch n.Kind {
	case view.NoticeLoading:
		return styleWarning.Render(m.spinner.View() + " " + n.Text)
	case view.NoticeError:
		return styleError.Render(n.Text)
	case view.NoticeValidation:
		return styleWarning.Render(n.Text)
	}
	if m.controller.State() == types.StateIdle {
		return styleSubtle.Render("Enter a " + m.settings.QueryField + " and press enter")
	}
	return ""
}

func (m *Model) renderStatusBar() string {
	if m.errorMsg != "" {
		return styleError.Render(m.errorMsg)
	}
	if m.statusMsg != "" {
		return styleSuccess.Render(m.statusMsg)
	}
	help := m.keybinds.Describe(keybinds.ContextGlobal, keybinds.ActionSwitchFocus) + " focus · " +
		m.keybinds.Describe(keybinds.ContextResult, keybinds.ActionOpenHelp) + " help"
	return styleSubtle.Render(fmt.Sprintf("%s · %s", m.controller.State(), help))
}

func (m *Model) renderModal(title string) string {
	content := styleTitle.Render(title) + "\n" + m.modalView.View()
	box := panelStyle(true, m.width-PanelBorderWidth, m.height-PanelBorderHeight-StatusBarHeight)
	return lipgloss.JoinVertical(lipgloss.Left, box.Render(content), m.renderStatusBar())
}
