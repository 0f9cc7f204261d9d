package tui

import (
	"fmt"
	"strings"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/types"
)

// historyPane is the history.Target of the history panel
type historyPane struct {
	entries     []types.HistoryEntry
	prevEnabled bool
	nextEnabled bool
	page        int
	err         error
	cursor      int
}

func (p *historyPane) SetEntries(entries []types.HistoryEntry) {
	p.entries = entries
	if p.cursor >= len(entries) {
		p.cursor = len(entries) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func (p *historyPane) SetControls(prevEnabled, nextEnabled bool) {
	p.prevEnabled = prevEnabled
	p.nextEnabled = nextEnabled
}

func (p *historyPane) SetPage(page int) {
	p.page = page
}

func (p *historyPane) SetError(err error) {
	p.err = err
}

func (p *historyPane) moveCursor(delta int) {
	p.cursor += delta
	if p.cursor >= len(p.entries) {
		p.cursor = len(p.entries) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// View renders the entries, the page controls and any fetch error
func (p *historyPane) View(width, height int, focused, loading bool, filter string) string {
	var lines []string

	title := fmt.Sprintf("History · page %d", p.page)
	if loading {
		title += " …"
	}
	lines = append(lines, styleTitle.Render(title))
	if filter != "" {
		lines = append(lines, styleSubtle.Render("filter: "+filter))
	}

	if len(p.entries) == 0 {
		lines = append(lines, styleSubtle.Render("No queries yet"))
	}
	for i, e := range p.entries {
		line := truncate(fmt.Sprintf("%d. %s", i+1, e.Query), width)
		if focused && i == p.cursor {
			line = styleSelected.Render(line)
		}
		lines = append(lines, line)
	}

	if p.err != nil {
		lines = append(lines, styleError.Render(truncate(p.err.Error(), width)))
	}

	// controls stay on the last row
	for len(lines) < height-1 {
		lines = append(lines, "")
	}
	if len(lines) > height-1 && height > 1 {
		lines = lines[:height-1]
	}
	lines = append(lines, renderControl("[ prev", p.prevEnabled)+"   "+renderControl("next ]", p.nextEnabled))

	return strings.Join(lines, "\n")
}

func renderControl(label string, enabled bool) string {
	if enabled {
		return styleSuccess.Render(label)
	}
	return styleSubtle.Render(label)
}
