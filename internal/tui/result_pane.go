package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/view"
)

// resultPane is the view.Target of the result panel
type resultPane struct {
	blocks       []view.Block
	notice       view.Notice
	chartVisible bool

	viewport viewport.Model
	width    int
	md       *glamour.TermRenderer
	mdWidth  int
}

func newResultPane() *resultPane {
	return &resultPane{viewport: viewport.New(80, 20)}
}

func (p *resultPane) SetBlocks(blocks []view.Block) {
	p.blocks = blocks
	p.refresh()
	p.viewport.GotoTop()
}

func (p *resultPane) SetNotice(n view.Notice) {
	p.notice = n
}

func (p *resultPane) SetChartVisible(visible bool) {
	p.chartVisible = visible
}

func (p *resultPane) setSize(width, height int) {
	if height < 1 {
		height = 1
	}
	p.viewport.Height = height
	if width != p.width {
		p.width = width
		p.viewport.Width = width
		p.refresh()
	}
}

// plainText is the result as unstyled text, one block per paragraph group
func (p *resultPane) plainText() string {
	parts := make([]string, 0, len(p.blocks))
	for _, b := range p.blocks {
		parts = append(parts, b.Text())
	}
	return strings.Join(parts, "\n\n")
}

func (p *resultPane) refresh() {
	if len(p.blocks) == 0 {
		p.viewport.SetContent("")
		return
	}
	p.viewport.SetContent(p.renderMarkdown(view.Markdown(p.blocks)))
}

// renderMarkdown falls back to the raw markdown when glamour fails
func (p *resultPane) renderMarkdown(md string) string {
	width := p.width
	if width <= 0 {
		width = 80
	}
	if p.md == nil || p.mdWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		p.md = r
		p.mdWidth = width
	}

	rendered, err := p.md.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(rendered, " \n\r\t")
}
