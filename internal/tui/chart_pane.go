package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/chart"
)

var sparkTicks = []rune("▁▂▃▄▅▆▇█")

// chartPane is the chart.Surface of the result panel. It keeps the last
// drawn figure and renders it as text on View.
type chartPane struct {
	widthCells int
	figure     *chart.Figure
	size       chart.Size
	draws      int
}

func (p *chartPane) ContentWidth() int {
	return p.widthCells * CellWidthPx
}

func (p *chartPane) Draw(fig chart.Figure, size chart.Size) error {
	if len(fig.Traces) == 0 {
		return fmt.Errorf("figure has no traces")
	}
	p.figure = &fig
	p.size = size
	p.draws++
	return nil
}

func (p *chartPane) Clear() {
	p.figure = nil
	p.size = chart.Size{}
}

func (p *chartPane) drawn() bool {
	return p.figure != nil
}

// heightCells is the drawn height in rows
func (p *chartPane) heightCells() int {
	return p.size.Height / CellHeightPx
}

// View renders the figure into at most maxRows rows. menu and active
// describe the selector buttons shown above the plot.
func (p *chartPane) View(menu []chart.Button, active int, maxRows int) string {
	if p.figure == nil || maxRows <= 0 {
		return ""
	}
	width := p.size.Width / CellWidthPx
	if width <= 0 {
		width = p.widthCells
	}
	rows := p.heightCells()
	if rows > maxRows || rows == 0 {
		rows = maxRows
	}

	var lines []string
	if p.figure.Layout.Title != "" {
		lines = append(lines, styleTitle.Render(p.figure.Layout.Title))
	}
	if len(menu) > 0 {
		lines = append(lines, renderMenu(menu, active))
	}

	traces := p.figure.VisibleTraces()
	plotRows := rows - len(lines) - 1 // legend
	if plotRows < 1 {
		plotRows = 1
	}
	if allBars(traces) {
		lines = append(lines, renderBars(traces, width, plotRows)...)
	} else {
		lines = append(lines, renderSparklines(traces, width, plotRows)...)
	}
	lines = append(lines, renderLegend(traces))

	if len(lines) > rows {
		lines = lines[:rows]
	}
	return strings.Join(lines, "\n")
}

func renderMenu(menu []chart.Button, active int) string {
	parts := make([]string, len(menu))
	for i, b := range menu {
		label := fmt.Sprintf("%d %s", i+1, b.Label)
		if i == active {
			parts[i] = styleActiveButton.Render(label)
		} else {
			parts[i] = styleSubtle.Render(label)
		}
	}
	return strings.Join(parts, "  ")
}

func renderLegend(traces []chart.Trace) string {
	parts := make([]string, 0, len(traces))
	for _, t := range traces {
		mark := lipgloss.NewStyle().Foreground(traceColor(t.Marker.Color)).Render("■")
		parts = append(parts, mark+" "+t.Name)
	}
	return strings.Join(parts, "  ")
}

func allBars(traces []chart.Trace) bool {
	for _, t := range traces {
		if t.Type != "bar" {
			return false
		}
	}
	return len(traces) > 0
}

// renderBars draws one horizontal bar per point, grouped by trace
func renderBars(traces []chart.Trace, width, maxRows int) []string {
	maxY := 0.0
	for _, t := range traces {
		for _, y := range t.Y {
			maxY = math.Max(maxY, y)
		}
	}

	barWidth := width - ChartLabelWidth - 10
	if barWidth < 1 {
		barWidth = 1
	}

	var lines []string
	for _, t := range traces {
		style := lipgloss.NewStyle().Foreground(traceColor(t.Marker.Color))
		for i, y := range t.Y {
			if len(lines) == maxRows {
				return lines
			}
			label := ""
			if i < len(t.X) {
				label = t.X[i]
			}
			n := 0
			if maxY > 0 && y > 0 {
				n = int(math.Round(y / maxY * float64(barWidth)))
			}
			lines = append(lines, fmt.Sprintf("%-*s %s %s",
				ChartLabelWidth, truncate(label, ChartLabelWidth),
				style.Render(strings.Repeat("█", n)),
				formatValue(y)))
		}
	}
	return lines
}

// renderSparklines draws each trace as one sparkline row resampled to width
func renderSparklines(traces []chart.Trace, width, maxRows int) []string {
	sparkWidth := width - ChartLabelWidth - 1
	if sparkWidth < 1 {
		sparkWidth = 1
	}

	var lines []string
	for _, t := range traces {
		if len(lines) == maxRows {
			break
		}
		style := lipgloss.NewStyle().Foreground(traceColor(t.Marker.Color))
		lines = append(lines, fmt.Sprintf("%-*s %s",
			ChartLabelWidth, truncate(t.Name, ChartLabelWidth),
			style.Render(sparkline(t.Y, sparkWidth))))
	}
	return lines
}

func sparkline(ys []float64, width int) string {
	if len(ys) == 0 {
		return ""
	}
	if len(ys) < width {
		width = len(ys)
	}

	lo, hi := ys[0], ys[0]
	for _, y := range ys {
		lo = math.Min(lo, y)
		hi = math.Max(hi, y)
	}

	out := make([]rune, width)
	for i := range out {
		y := ys[i*len(ys)/width]
		idx := 0
		if hi > lo {
			idx = int((y - lo) / (hi - lo) * float64(len(sparkTicks)-1))
		}
		out[i] = sparkTicks[idx]
	}
	return string(out)
}

func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
