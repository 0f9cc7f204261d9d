package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/analysis"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/chart"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/config"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/history"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/keybinds"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/session"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/types"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/view"
)

// Focus is the panel receiving keys
type Focus int

const (
	FocusInput Focus = iota
	FocusResult
	FocusHistory
)

// Mode represents the current TUI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeFilter      // typing a history filter
	ModeRaw         // raw JSON viewer
	ModeHelp
)

// Backend is the analysis server
type Backend interface {
	Analyze(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResponse, error)
	History(ctx context.Context, page, perPage int) ([]types.HistoryEntry, error)
}

// Options configures the TUI model
type Options struct {
	Settings  *config.Settings
	Keybinds  *keybinds.Registry // defaults when nil
	ExportDir string             // where exported charts go
	Session   *session.Manager   // optional; restored on start, saved on quit
	Logger    *slog.Logger
}

// Model represents the TUI state
type Model struct {
	settings  *config.Settings
	keybinds  *keybinds.Registry
	logger    *slog.Logger
	exportDir string
	session   *session.Manager

	scheduler  *teaScheduler
	window     *termWindow
	controller *analysis.Controller
	pager      *history.Pager
	renderer   *chart.Renderer
	schemes    *chart.SchemeControl
	results    *view.ResultView

	resultPane  *resultPane
	historyPane *historyPane
	chartPane   *chartPane

	input       textinput.Model
	filterInput textinput.Model
	spinner     spinner.Model
	spinning    bool
	modalView   viewport.Model // raw JSON and help

	mode       Mode
	focus      Focus
	suggestion int // index into settings.Suggestions, -1 for none
	menuActive int

	width     int
	height    int
	statusMsg string
	errorMsg  string
}

type statusMsg string
type errorMsg string
type clearStatusMsg struct{}

// New wires the controller, pager, result view and chart renderer onto
// one Bubble Tea loop
func New(backend Backend, opts Options) (*Model, error) {
	if opts.Settings == nil {
		return nil, fmt.Errorf("settings are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	registry := opts.Keybinds
	if registry == nil {
		registry = keybinds.NewDefaultRegistry()
	}

	m := &Model{
		settings:    opts.Settings,
		keybinds:    registry,
		logger:      logger,
		exportDir:   opts.ExportDir,
		session:     opts.Session,
		scheduler:   &teaScheduler{},
		window:      newTermWindow(),
		resultPane:  newResultPane(),
		historyPane: &historyPane{},
		chartPane:   &chartPane{},
		modalView:   viewport.New(80, 20),
		suggestion:  -1,
	}

	m.renderer = chart.NewRenderer(m.chartPane, m.window, chart.DefaultResizePolicy())
	m.renderer.SetLogger(logger)
	table := chart.DefaultSchemes().Merge(chart.SchemeTable(opts.Settings.Schemes))
	schemes, err := chart.Attach(m.renderer, table)
	if err != nil {
		return nil, fmt.Errorf("invalid colour schemes: %w", err)
	}
	m.schemes = schemes

	m.results = view.New(m.resultPane, m.schemes, logger)
	m.pager = history.NewPager(backend, m.historyPane, m.scheduler, history.Options{
		Timeout: opts.Settings.Timeout,
		Logger:  logger,
	})
	m.controller = analysis.NewController(backend, m.results, m.pager, m.scheduler, analysis.Options{
		Timeout:           opts.Settings.Timeout,
		Policy:            analysis.ReloadPolicy(opts.Settings.HistoryReload),
		ValidationMessage: opts.Settings.ValidationMessage(),
		Logger:            logger,
	})
	m.controller.OnStateChange(func(s types.RequestState) {
		if s == types.StateSuccess {
			m.menuActive = 0
		}
	})
	m.pager.SetSubmitter(m)

	m.input = textinput.New()
	m.input.Placeholder = "Ask about a " + opts.Settings.QueryField + "..."
	m.input.Prompt = "› "
	m.input.Focus()
	m.restoreSession()

	m.filterInput = textinput.New()
	m.filterInput.Placeholder = "filter history"
	m.filterInput.Prompt = "/ "

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.MiniDot

	return m, nil
}

// SetQuery puts a query into the input, for history selections
func (m *Model) SetQuery(query string) {
	m.input.SetValue(query)
	m.input.CursorEnd()
}

// Submit runs an analysis for query
func (m *Model) Submit(query string, advanced bool) error {
	return m.controller.Submit(query, advanced)
}

// Init loads the first history page
func (m *Model) Init() tea.Cmd {
	m.pager.ReloadFirst()
	return tea.Batch(textinput.Blink, m.scheduler.flush())
}

// Cleanup saves the session and unmounts the chart and its resize listener
func (m *Model) Cleanup() {
	m.saveSession()
	m.renderer.Unmount()
}

func (m *Model) restoreSession() {
	if m.session == nil {
		return
	}
	state := m.session.State()
	if state.LastQuery != "" {
		m.SetQuery(state.LastQuery)
	}
	if state.Scheme != "" {
		// nothing is mounted yet; the scheme is applied when a chart is plotted
		if err := m.schemes.Select(state.Scheme); err != nil && !errors.Is(err, chart.ErrNotMounted) {
			m.logger.Warn("saved colour scheme ignored", "scheme", state.Scheme, "error", err)
		}
	}
}

func (m *Model) saveSession() {
	if m.session == nil {
		return
	}
	query := m.controller.Query()
	if query == "" {
		query = m.input.Value()
	}
	m.session.Update(query, m.controller.Advanced(), m.schemes.Selected())
	if err := m.session.Save(); err != nil {
		m.logger.Warn("failed to save session", "error", err)
	}
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.window.resize(msg.Width, msg.Height)

	case applyMsg:
		if msg.apply != nil {
			msg.apply()
		}

	case spinner.TickMsg:
		if m.busy() {
			m.spinner, cmd = m.spinner.Update(msg)
		} else {
			m.spinning = false
		}

	case statusMsg:
		cmd = m.setStatusMessage(string(msg))

	case errorMsg:
		cmd = m.setErrorMessage(string(msg))

	case clearStatusMsg:
		m.statusMsg = ""
		m.errorMsg = ""
	}

	// results may have shown or hidden the chart
	if m.width > 0 {
		m.updateLayout()
	}

	cmds := []tea.Cmd{cmd, m.scheduler.flush()}
	if m.busy() && !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

// busy reports whether an analysis or history fetch is in flight
func (m *Model) busy() bool {
	return m.controller.State() == types.StateLoading || m.pager.Loading()
}

func (m *Model) setStatusMessage(msg string) tea.Cmd {
	m.errorMsg = ""
	m.statusMsg = truncate(msg, MaxStatusLength)
	return tea.Tick(MessageTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func (m *Model) setErrorMessage(msg string) tea.Cmd {
	m.statusMsg = ""
	m.errorMsg = truncate(msg, MaxStatusLength)
	return tea.Tick(MessageTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// updateLayout sizes the panes for the current terminal
func (m *Model) updateLayout() {
	histWidth, resultWidth, bodyHeight := m.paneSizes()

	m.input.Width = m.width - PanelBorderWidth - PanelPadding - len(m.input.Prompt)
	m.filterInput.Width = histWidth - PanelPadding - len(m.filterInput.Prompt)
	m.chartPane.widthCells = resultWidth

	m.resultPane.setSize(resultWidth, bodyHeight-m.chartRows(bodyHeight)-1)
	m.modalView.Width = m.width - PanelBorderWidth - PanelPadding
	m.modalView.Height = m.height - PanelBorderHeight - StatusBarHeight - 1
}

// paneSizes returns the inner widths of the two panels and their height
func (m *Model) paneSizes() (histWidth, resultWidth, bodyHeight int) {
	histWidth = int(float64(m.width) * HistoryPaneWidthRatio)
	if histWidth < MinHistoryPaneWidth {
		histWidth = MinHistoryPaneWidth
	}
	resultWidth = m.width - histWidth - 2*(PanelBorderWidth+PanelPadding)
	histWidth -= PanelPadding
	if resultWidth < 10 {
		resultWidth = 10
	}

	bodyHeight = m.height - HeaderHeight - InputBoxHeight - SuggestionHeight - StatusBarHeight - PanelBorderHeight
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	return histWidth, resultWidth, bodyHeight
}

// chartRows is the number of result rows given to the chart
func (m *Model) chartRows(bodyHeight int) int {
	if !m.resultPane.chartVisible || !m.chartPane.drawn() {
		return 0
	}
	rows := m.chartPane.heightCells()
	if limit := int(float64(bodyHeight) * MaxChartShare); rows > limit {
		rows = limit
	}
	return rows
}

// focusContext maps the current focus and mode to a keybinding context
func (m *Model) focusContext() keybinds.Context {
	switch m.mode {
	case ModeFilter:
		return keybinds.ContextFilter
	case ModeRaw:
		return keybinds.ContextRaw
	case ModeHelp:
		return keybinds.ContextHelp
	}
	switch m.focus {
	case FocusResult:
		return keybinds.ContextResult
	case FocusHistory:
		return keybinds.ContextHistory
	default:
		return keybinds.ContextInput
	}
}

func (m *Model) setFocus(f Focus) {
	m.focus = f
	if f == FocusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

// currentSuggestion is the suggestion shown under an empty input
func (m *Model) currentSuggestion() string {
	if len(m.settings.Suggestions) == 0 {
		return ""
	}
	i := m.suggestion
	if i < 0 {
		i = 0
	}
	return strings.TrimSpace(m.settings.Suggestions[i%len(m.settings.Suggestions)])
}
