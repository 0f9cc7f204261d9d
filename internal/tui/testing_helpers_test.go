package tui

import (
	"context"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/config"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/types"
)

const missionChart = `{
	"data": [
		{"name": "Completed", "type": "bar", "x": ["Apollo 11"], "y": [1969], "marker": {"color": "#123456"}},
		{"name": "Ongoing", "type": "bar", "x": ["Mars Rover"], "y": [2012], "marker": {"color": "#654321"}}
	],
	"layout": {"title": {"text": "Missions by year"}}
}`

// fakeBackend answers analyses by query and history by page
type fakeBackend struct {
	responses map[string]*types.AnalysisResponse
	pages     map[int][]types.HistoryEntry

	requests     []types.AnalysisRequest
	historyPages []int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		responses: make(map[string]*types.AnalysisResponse),
		pages:     make(map[int][]types.HistoryEntry),
	}
}

func (b *fakeBackend) Analyze(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResponse, error) {
	b.requests = append(b.requests, req)
	if resp, ok := b.responses[req.Query]; ok {
		return resp, nil
	}
	return nil, &types.Error{Kind: types.TransportError, Message: "Analysis failed: unknown query"}
}

func (b *fakeBackend) History(ctx context.Context, page, perPage int) ([]types.HistoryEntry, error) {
	b.historyPages = append(b.historyPages, page)
	return b.pages[page], nil
}

func historyPage(n int, prefix string) []types.HistoryEntry {
	entries := make([]types.HistoryEntry, n)
	for i := range entries {
		entries[i] = types.HistoryEntry{
			Query:    fmt.Sprintf("%s %d", prefix, i+1),
			Result:   types.NewTextResult("ok"),
			Position: i,
		}
	}
	return entries
}

// CreateTestModel builds a Model on a fake backend. Timeouts are off so no
// watchdog task blocks runTasks.
func CreateTestModel(t *testing.T, backend *fakeBackend) *Model {
	t.Helper()

	settings := &config.Settings{
		BaseURL:       "http://localhost:5000",
		QueryField:    "query",
		HistoryReload: "first",
		Suggestions:   config.DefaultSuggestions,
	}
	m, err := New(backend, Options{Settings: settings, ExportDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Failed to create test model: %v", err)
	}
	return m
}

// runTasks executes scheduled tasks in order and applies their
// continuations, including tasks scheduled by those continuations
func runTasks(t *testing.T, m *Model) {
	t.Helper()
	for round := 0; len(m.scheduler.pending) > 0; round++ {
		if round > 10 {
			t.Fatal("tasks keep scheduling more tasks")
		}
		pending := m.scheduler.pending
		m.scheduler.pending = nil
		for _, cmd := range pending {
			applyTaskMsg(cmd())
		}
	}
}

func applyTaskMsg(msg tea.Msg) {
	if apply, ok := msg.(applyMsg); ok && apply.apply != nil {
		apply.apply()
	}
}

func pressKey(m *Model, key string) tea.Cmd {
	switch key {
	case "enter":
		return m.handleKeyPress(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		return m.handleKeyPress(tea.KeyMsg{Type: tea.KeyEsc})
	case "tab":
		return m.handleKeyPress(tea.KeyMsg{Type: tea.KeyTab})
	case "ctrl+a":
		return m.handleKeyPress(tea.KeyMsg{Type: tea.KeyCtrlA})
	case "ctrl+n":
		return m.handleKeyPress(tea.KeyMsg{Type: tea.KeyCtrlN})
	}
	return m.handleKeyPress(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
}

func typeText(m *Model, text string) {
	for _, r := range text {
		pressKey(m, string(r))
	}
}

// AssertModelField compares a model field against the expected value
func AssertModelField(t *testing.T, name string, got, want interface{}) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %v, got %v", name, want, got)
	}
}
