package view

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/chart"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/types"
)

// NoticeKind is the kind of inline message shown above the result
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeLoading
	NoticeError
	NoticeValidation
)

// Notice is an inline status message of the result panel
type Notice struct {
	Kind NoticeKind
	Text string
}

// Target is the result panel the view renders into
type Target interface {
	// SetBlocks replaces all displayed blocks
	SetBlocks(blocks []Block)
	SetNotice(n Notice)
	SetChartVisible(visible bool)
}

// Plotter mounts charts in the chart panel
type Plotter interface {
	Plot(p *chart.Payload, opts chart.Options) error
	Unmount()
}

// ResultView renders analysis results and their optional chart
type ResultView struct {
	target  Target
	plotter Plotter
	logger  *slog.Logger

	blocks []Block
	chart  *chart.Payload
}

// New creates a ResultView. plotter may be nil when no chart panel exists.
func New(target Target, plotter Plotter, logger *slog.Logger) *ResultView {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ResultView{target: target, plotter: plotter, logger: logger}
}

// Render replaces the displayed result. A chart that fails to parse hides
// the chart panel and is reported as a RenderError; the text result is
// shown regardless.
func (v *ResultView) Render(result types.AnalysisResult, chartJSON string) error {
	v.blocks = Blocks(result)
	v.target.SetBlocks(v.blocks)
	v.target.SetNotice(Notice{})

	if chartJSON == "" {
		v.hideChart()
		return nil
	}

	payload, err := chart.Parse(chartJSON)
	if err != nil {
		v.hideChart()
		v.logger.Warn("chart could not be parsed", "error", err)
		return &types.Error{Kind: types.RenderError, Message: "Chart could not be displayed: " + err.Error(), Err: err}
	}

	if v.plotter == nil {
		v.hideChart()
		return nil
	}

	v.chart = payload
	v.target.SetChartVisible(true)
	if err := v.plotter.Plot(payload, chart.DefaultOptions()); err != nil {
		v.hideChart()
		return &types.Error{Kind: types.RenderError, Message: fmt.Sprintf("Chart could not be displayed: %v", err), Err: err}
	}
	return nil
}

// ShowLoading announces a request in flight and hides any chart
func (v *ResultView) ShowLoading(query string) {
	v.hideChart()
	v.target.SetNotice(Notice{Kind: NoticeLoading, Text: fmt.Sprintf("Analyzing %q...", query)})
}

// ShowError replaces the result with an error message and hides any chart
func (v *ResultView) ShowError(err error) {
	v.blocks = nil
	v.target.SetBlocks(nil)
	v.hideChart()
	v.target.SetNotice(Notice{Kind: NoticeError, Text: err.Error()})
}

// ShowValidation shows msg and leaves the displayed result alone
func (v *ResultView) ShowValidation(msg string) {
	v.target.SetNotice(Notice{Kind: NoticeValidation, Text: msg})
}

// Blocks returns the blocks currently displayed
func (v *ResultView) Blocks() []Block {
	return v.blocks
}

// Chart returns the mounted chart payload, or nil
func (v *ResultView) Chart() *chart.Payload {
	return v.chart
}

func (v *ResultView) hideChart() {
	if v.plotter != nil {
		v.plotter.Unmount()
	}
	v.chart = nil
	v.target.SetChartVisible(false)
}
