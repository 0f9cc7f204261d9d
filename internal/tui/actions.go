package tui

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/chart"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/config"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/keybinds"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/types"
)

// submit sends the input, or the shown suggestion when the input is empty
func (m *Model) submit(advanced bool) tea.Cmd {
	query := m.input.Value()
	if strings.TrimSpace(query) == "" && m.suggestion >= 0 {
		query = m.currentSuggestion()
		m.SetQuery(query)
	}

	if err := m.controller.Submit(query, advanced); err != nil {
		// validation failures are already shown in the result panel
		if types.IsKind(err, types.ValidationError) {
			return nil
		}
		return m.setErrorMessage(err.Error())
	}
	m.suggestion = -1
	return nil
}

func (m *Model) nextSuggestion() {
	if len(m.settings.Suggestions) == 0 {
		return
	}
	m.suggestion = (m.suggestion + 1) % len(m.settings.Suggestions)
	m.SetQuery(m.currentSuggestion())
}

func (m *Model) nextScheme() tea.Cmd {
	if err := m.schemes.Next(); err != nil && !errors.Is(err, chart.ErrNotMounted) {
		return m.setErrorMessage(err.Error())
	}
	return m.setStatusMessage("Color scheme: " + m.schemes.Selected())
}

func (m *Model) toggleChart() tea.Cmd {
	if !m.renderer.Mounted() {
		return m.setErrorMessage("No chart to toggle")
	}
	if err := m.renderer.Toggle(); err != nil {
		return m.setErrorMessage(err.Error())
	}
	m.menuActive = m.renderer.Active()
	if err := m.schemes.Reapply(); err != nil {
		return m.setErrorMessage(err.Error())
	}
	return nil
}

func (m *Model) applyMenu(i int) tea.Cmd {
	if !m.renderer.Mounted() {
		return nil
	}
	if err := m.renderer.ApplyMenu(i); err != nil {
		return m.setErrorMessage(err.Error())
	}
	m.menuActive = i
	if err := m.schemes.Reapply(); err != nil {
		return m.setErrorMessage(err.Error())
	}
	return nil
}

// exportChart writes the drawn figure as PNG in the background
func (m *Model) exportChart() tea.Cmd {
	if !m.renderer.Mounted() {
		return m.setErrorMessage("No chart to export")
	}
	fig := m.renderer.Figure()
	size := m.renderer.Size()
	dir := m.exportDir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, fmt.Sprintf("chart-%s.png", time.Now().Format("20060102-150405")))

	return func() tea.Msg {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, config.FilePermissions)
		if err != nil {
			return errorMsg(fmt.Sprintf("Export failed: %v", err))
		}
		defer f.Close()

		if err := chart.Export(f, fig, size, chart.FormatPNG); err != nil {
			return errorMsg(fmt.Sprintf("Export failed: %v", err))
		}
		return statusMsg("Chart saved to " + path)
	}
}

func (m *Model) copyResult() tea.Cmd {
	text := m.resultPane.plainText()
	if text == "" {
		return m.setErrorMessage("Nothing to copy")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return m.setErrorMessage(fmt.Sprintf("Failed to copy: %v", err))
	}
	return m.setStatusMessage("Result copied to clipboard")
}

// showRaw opens the last response as highlighted JSON
func (m *Model) showRaw() tea.Cmd {
	resp := m.controller.Response()
	if resp == nil {
		return m.setErrorMessage("No result to show")
	}
	m.modalView.SetContent(highlightJSON(rawDocument(resp)))
	m.modalView.GotoTop()
	m.mode = ModeRaw
	return nil
}

func (m *Model) showHelp() {
	var sb strings.Builder
	contexts := []keybinds.Context{keybinds.ContextInput, keybinds.ContextResult, keybinds.ContextHistory}
	for _, ctx := range contexts {
		sb.WriteString(styleTitle.Render(strings.ToUpper(string(ctx)[:1])+string(ctx)[1:]) + "\n")
		for _, b := range m.keybinds.Bindings(ctx) {
			if b.Action == keybinds.ActionGoToTopPrepare {
				continue
			}
			info := keybinds.GetActionInfo(b.Action)
			sb.WriteString(fmt.Sprintf("  %-10s %s\n", b.Key, info.Description))
		}
		sb.WriteString("\n")
	}
	m.modalView.SetContent(sb.String())
	m.modalView.GotoTop()
	m.mode = ModeHelp
}

func (m *Model) selectHistory() tea.Cmd {
	if len(m.historyPane.entries) == 0 {
		return nil
	}
	if err := m.pager.Select(m.historyPane.cursor); err != nil {
		if types.IsKind(err, types.ValidationError) {
			return nil
		}
		return m.setErrorMessage(err.Error())
	}
	m.setFocus(FocusResult)
	return nil
}

// rawDocument rebuilds the response body with the result and chart indented
func rawDocument(resp *types.AnalysisResponse) string {
	doc := map[string]json.RawMessage{"result": json.RawMessage(resp.Result.Raw)}
	if resp.HasChart() {
		if json.Valid([]byte(resp.Chart)) {
			doc["chart"] = json.RawMessage(resp.Chart)
		} else {
			encoded, _ := json.Marshal(resp.Chart)
			doc["chart"] = encoded
		}
	}
	if len(doc["result"]) == 0 {
		doc["result"] = json.RawMessage("null")
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return string(resp.Result.Raw)
	}
	return string(out)
}

func highlightJSON(src string) string {
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, src, "json", "terminal256", "monokai"); err != nil {
		return src
	}
	return buf.String()
}
