package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/analysis"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/api"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/chart"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/config"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/filter"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/sched"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/types"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/view"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatBody = "body"
)

const defaultWidth = 80

// Backend is the analysis server as seen by the command line
type Backend interface {
	Analyze(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResponse, error)
	History(ctx context.Context, page, perPage int) ([]types.HistoryEntry, error)
}

// AnalyzeOptions contains options for a one-shot analysis
type AnalyzeOptions struct {
	Query        string
	Advanced     bool
	OutputFormat string // text, json, yaml, body
	Filter       string // JMESPath or $(shell) applied to the result
	ChartOut     string // write the chart image here (.png or .svg)
	Scheme       string // colour scheme applied before export
	Suggestions  []string
	Color        bool
	Width        int // 0 detects the terminal width
}

// Analyze runs one query through the analysis controller and prints the
// outcome to w. A failed analysis is returned as an error after the
// error notice has been written.
func Analyze(ctx context.Context, w io.Writer, backend Backend, settings *config.Settings, opts AnalyzeOptions) error {
	if opts.OutputFormat == "" {
		opts.OutputFormat = FormatText
	}
	if !isValidFormat(opts.OutputFormat) {
		return fmt.Errorf("unknown output format %q (use text, json, yaml or body)", opts.OutputFormat)
	}
	if opts.Filter != "" && !filter.IsValid(opts.Filter) {
		return fmt.Errorf("invalid filter expression: %s", opts.Filter)
	}

	if strings.TrimSpace(opts.Query) == "" && isInteractive() {
		query, err := promptForQuery(opts.Suggestions)
		if err != nil {
			return err
		}
		opts.Query = query
	}

	if opts.Width <= 0 {
		opts.Width = terminalWidth()
	}

	out := &capture{}
	surface := &imageSurface{width: opts.Width * 8}
	renderer := chart.NewRenderer(surface, nil, chart.DefaultResizePolicy())
	schemes, err := chart.Attach(renderer, chart.DefaultSchemes().Merge(chart.SchemeTable(settings.Schemes)))
	if err != nil {
		return err
	}
	results := view.New(out, schemes, nil)

	controller := analysis.NewController(backend, &presenter{ResultView: results, out: out}, nil, sched.Inline{}, analysis.Options{
		Timeout:           settings.Timeout,
		ValidationMessage: settings.ValidationMessage(),
	})

	start := time.Now()
	if err := controller.Submit(opts.Query, opts.Advanced); err != nil {
		return &types.Error{Kind: types.ValidationError, Message: settings.ValidationMessage(), Err: err}
	}
	elapsed := time.Since(start)

	if controller.State() == types.StateFailed {
		printError(w, controller.LastError(), opts.Color)
		return controller.LastError()
	}

	resp := controller.Response()
	if opts.Scheme != "" && renderer.Mounted() {
		if err := schemes.Select(opts.Scheme); err != nil {
			return err
		}
	}

	if opts.ChartOut != "" {
		if err := exportChart(renderer, opts.ChartOut); err != nil {
			return err
		}
	}

	if opts.Filter != "" {
		filtered, err := filter.Result(ctx, resp.Result, opts.Filter)
		if err != nil {
			return fmt.Errorf("filter failed: %w", err)
		}
		fmt.Fprintln(w, filtered)
		return nil
	}

	switch opts.OutputFormat {
	case FormatJSON:
		return writeJSON(w, controller.Query(), controller.Advanced(), resp)
	case FormatYAML:
		return writeYAML(w, controller.Query(), controller.Advanced(), resp)
	case FormatBody:
		fmt.Fprintln(w, string(resp.Result.Raw))
		return nil
	default:
		writeText(w, out, controller, elapsed, opts, renderer)
		return nil
	}
}

func isValidFormat(format string) bool {
	switch format {
	case FormatText, FormatJSON, FormatYAML, FormatBody:
		return true
	}
	return false
}

// presenter forwards to the result view and keeps the render error
type presenter struct {
	*view.ResultView
	out *capture
}

func (p *presenter) Render(result types.AnalysisResult, chartJSON string) error {
	err := p.ResultView.Render(result, chartJSON)
	p.out.renderErr = err
	return err
}

// capture is a result panel that just remembers what it was given
type capture struct {
	blocks       []view.Block
	notice       view.Notice
	chartVisible bool
	renderErr    error
}

func (c *capture) SetBlocks(blocks []view.Block) { c.blocks = blocks }
func (c *capture) SetNotice(n view.Notice)       { c.notice = n }
func (c *capture) SetChartVisible(visible bool)  { c.chartVisible = visible }

// imageSurface keeps the last drawn figure for export
type imageSurface struct {
	width  int
	figure *chart.Figure
	size   chart.Size
}

func (s *imageSurface) ContentWidth() int { return s.width }

func (s *imageSurface) Draw(fig chart.Figure, size chart.Size) error {
	if len(fig.Traces) == 0 {
		return fmt.Errorf("chart has no traces")
	}
	s.figure = &fig
	s.size = size
	return nil
}

func (s *imageSurface) Clear() {
	s.figure = nil
}

func exportChart(renderer *chart.Renderer, path string) error {
	if !renderer.Mounted() {
		return fmt.Errorf("response has no chart to export")
	}
	format, err := chart.FormatFromPath(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, config.DirPermissions); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := chart.Export(f, renderer.Figure(), renderer.Size(), format); err != nil {
		return err
	}
	return nil
}

func writeText(w io.Writer, out *capture, controller *analysis.Controller, elapsed time.Duration, opts AnalyzeOptions, renderer *chart.Renderer) {
	mode := "basic"
	if controller.Advanced() {
		mode = "advanced"
	}
	fmt.Fprintf(w, "%s%s%s (%s, %s)\n\n",
		paint(colorBold, opts.Color), controller.Query(), paint(colorReset, opts.Color),
		mode, api.FormatDuration(elapsed.Milliseconds()))

	for _, block := range out.blocks {
		if block.Heading != "" {
			fmt.Fprintf(w, "%s%s%s\n", paint(colorGreen, opts.Color), block.Heading, paint(colorReset, opts.Color))
		}
		for _, p := range block.Paragraphs {
			fmt.Fprintln(w, wrap(p, opts.Width))
		}
		fmt.Fprintln(w)
	}

	if out.renderErr != nil {
		fmt.Fprintf(w, "%s%s%s\n", paint(colorYellow, opts.Color), out.renderErr.Error(), paint(colorReset, opts.Color))
		return
	}
	if renderer.Mounted() {
		fig := renderer.Figure()
		title := fig.Layout.Title
		if title == "" {
			title = "chart"
		}
		fmt.Fprintf(w, "%sChart: %s (%d traces)%s\n", paint(colorYellow, opts.Color), title, len(fig.Traces), paint(colorReset, opts.Color))
		if opts.ChartOut != "" {
			fmt.Fprintf(w, "Saved to %s\n", opts.ChartOut)
		}
	}
}

func printError(w io.Writer, err error, color bool) {
	label := "Error"
	if kind, ok := types.KindOf(err); ok {
		label = fmt.Sprintf("Error (%s)", kind)
	}
	fmt.Fprintf(w, "%s%s:%s %v\n", paint(colorRed, color), label, paint(colorReset, color), err)
}

func paint(code string, enabled bool) string {
	if !enabled {
		return ""
	}
	return code
}

type analysisDocument struct {
	Query    string          `json:"query"`
	Advanced bool            `json:"advanced"`
	Result   json.RawMessage `json:"result"`
	Chart    json.RawMessage `json:"chart,omitempty"`
}

func writeJSON(w io.Writer, query string, advanced bool, resp *types.AnalysisResponse) error {
	doc := analysisDocument{
		Query:    query,
		Advanced: advanced,
		Result:   resp.Result.Raw,
	}
	if resp.HasChart() && gjson.Valid(resp.Chart) {
		doc.Chart = json.RawMessage(resp.Chart)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to format JSON: %w", err)
	}
	return nil
}

// writeYAML keeps the server's key order by building the node tree by hand
func writeYAML(w io.Writer, query string, advanced bool, resp *types.AnalysisResponse) error {
	root := &yaml.Node{Kind: yaml.MappingNode}
	appendPair(root, "query", scalar("!!str", query))
	appendPair(root, "advanced", scalar("!!bool", fmt.Sprintf("%t", advanced)))
	appendPair(root, "result", yamlNode(gjson.ParseBytes(resp.Result.Raw)))
	if resp.HasChart() && gjson.Valid(resp.Chart) {
		appendPair(root, "chart", yamlNode(gjson.Parse(resp.Chart)))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return fmt.Errorf("failed to format YAML: %w", err)
	}
	return enc.Close()
}

func yamlNode(v gjson.Result) *yaml.Node {
	switch {
	case v.IsObject():
		n := &yaml.Node{Kind: yaml.MappingNode}
		v.ForEach(func(k, val gjson.Result) bool {
			appendPair(n, k.String(), yamlNode(val))
			return true
		})
		return n
	case v.IsArray():
		n := &yaml.Node{Kind: yaml.SequenceNode}
		v.ForEach(func(_, el gjson.Result) bool {
			n.Content = append(n.Content, yamlNode(el))
			return true
		})
		return n
	}

	switch v.Type {
	case gjson.String:
		return scalar("!!str", v.Str)
	case gjson.Number:
		if strings.ContainsAny(v.Raw, ".eE") {
			return scalar("!!float", v.Raw)
		}
		return scalar("!!int", v.Raw)
	case gjson.True, gjson.False:
		return scalar("!!bool", v.Raw)
	default:
		return scalar("!!null", "null")
	}
}

func appendPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, scalar("!!str", key), value)
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

// HistoryOptions contains options for listing the query history
type HistoryOptions struct {
	Page         int
	PerPage      int
	Search       string // fuzzy filter over the page
	OutputFormat string // text, json, yaml
	Color        bool
}

// History prints one page of the query history
func History(ctx context.Context, w io.Writer, backend Backend, opts HistoryOptions, logger *slog.Logger) error {
	if opts.OutputFormat == "" {
		opts.OutputFormat = FormatText
	}
	if opts.OutputFormat == FormatBody || !isValidFormat(opts.OutputFormat) {
		return fmt.Errorf("unknown output format %q (use text, json or yaml)", opts.OutputFormat)
	}

	entries, page, err := loadHistory(backend, opts, logger)
	if err != nil {
		printError(w, err, opts.Color)
		return err
	}

	switch opts.OutputFormat {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case FormatYAML:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, e := range entries {
			n := &yaml.Node{Kind: yaml.MappingNode}
			appendPair(n, "query", scalar("!!str", e.Query))
			appendPair(n, "result", yamlNode(gjson.ParseBytes(e.Result.Raw)))
			seq.Content = append(seq.Content, n)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{seq}}); err != nil {
			return fmt.Errorf("failed to format YAML: %w", err)
		}
		return enc.Close()
	}

	fmt.Fprintf(w, "%sHistory, page %d%s\n", paint(colorBold, opts.Color), page.Page(), paint(colorReset, opts.Color))
	if len(entries) == 0 {
		fmt.Fprintln(w, "No history entries")
	}
	for i, e := range entries {
		fmt.Fprintf(w, "%3d. %s\n", i+1, e.Query)
	}

	var nav []string
	if page.PrevEnabled() {
		nav = append(nav, fmt.Sprintf("--page %d for newer", page.Page()-1))
	}
	if page.NextEnabled() {
		nav = append(nav, fmt.Sprintf("--page %d for older", page.Page()+1))
	}
	if len(nav) > 0 {
		fmt.Fprintf(w, "%s%s%s\n", paint(colorYellow, opts.Color), strings.Join(nav, ", "), paint(colorReset, opts.Color))
	}
	return nil
}

func terminalWidth() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return defaultWidth
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// wrap breaks text on spaces so no line exceeds width
func wrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}
	var b strings.Builder
	lineLen := 0
	for i, word := range strings.Fields(text) {
		if i > 0 {
			if lineLen+1+len(word) > width {
				b.WriteByte('\n')
				lineLen = 0
			} else {
				b.WriteByte(' ')
				lineLen++
			}
		}
		b.WriteString(word)
		lineLen += len(word)
	}
	return b.String()
}
