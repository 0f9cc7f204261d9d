package analysis

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/api"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/sched"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/types"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/view"
)

// scriptedAnalyzer answers per query
type scriptedAnalyzer struct {
	mu       sync.Mutex
	requests []types.AnalysisRequest
	replies  map[string]*types.AnalysisResponse
	errs     map[string]error
}

func (a *scriptedAnalyzer) Analyze(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = append(a.requests, req)
	if err := a.errs[req.Query]; err != nil {
		return nil, err
	}
	if resp, ok := a.replies[req.Query]; ok {
		return resp, nil
	}
	return &types.AnalysisResponse{Result: types.NewTextResult("answer to " + req.Query)}, nil
}

type presenterCall struct {
	kind  string
	value string
}

type fakePresenter struct {
	calls     []presenterCall
	renderErr error
}

func (p *fakePresenter) ShowLoading(q string) { p.calls = append(p.calls, presenterCall{"loading", q}) }

func (p *fakePresenter) ShowError(err error) { p.calls = append(p.calls, presenterCall{"error", err.Error()}) }

func (p *fakePresenter) ShowValidation(msg string) {
	p.calls = append(p.calls, presenterCall{"validation", msg})
}

func (p *fakePresenter) Render(result types.AnalysisResult, chartJSON string) error {
	p.calls = append(p.calls, presenterCall{"render", result.Text})
	return p.renderErr
}

func (p *fakePresenter) renders() []string {
	var out []string
	for _, c := range p.calls {
		if c.kind == "render" {
			out = append(out, c.value)
		}
	}
	return out
}

func (p *fakePresenter) last() presenterCall {
	return p.calls[len(p.calls)-1]
}

type fakeReloader struct {
	reloads      int
	reloadFirsts int
}

func (r *fakeReloader) Reload() { r.reloads++ }

func (r *fakeReloader) ReloadFirst() { r.reloadFirsts++ }

func newTestController(analyzer Analyzer, opts Options) (*Controller, *fakePresenter, *fakeReloader, *sched.Manual) {
	presenter := &fakePresenter{}
	reloader := &fakeReloader{}
	scheduler := &sched.Manual{}
	return NewController(analyzer, presenter, reloader, scheduler, opts), presenter, reloader, scheduler
}

func TestSubmit_BlankQueryMakesNoRequest(t *testing.T) {
	analyzer := &scriptedAnalyzer{}
	c, presenter, _, scheduler := newTestController(analyzer, Options{ValidationMessage: "Please enter a mission"})

	for _, q := range []string{"", "   ", "\t\n"} {
		err := c.Submit(q, false)
		if !types.IsKind(err, types.ValidationError) {
			t.Errorf("Submit(%q): expected validation error, got %v", q, err)
		}
	}

	if scheduler.Pending() != 0 {
		t.Errorf("Expected no scheduled request, got %d", scheduler.Pending())
	}
	if len(analyzer.requests) != 0 {
		t.Errorf("Expected no request, got %d", len(analyzer.requests))
	}
	if c.State() != types.StateIdle {
		t.Errorf("Expected state idle, got %s", c.State())
	}
	if presenter.last() != (presenterCall{"validation", "Please enter a mission"}) {
		t.Errorf("Expected validation message, got %+v", presenter.last())
	}
}

func TestSubmit_OneRequestPerSubmitToTheRightEndpoint(t *testing.T) {
	var mu sync.Mutex
	hits := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path]++
		mu.Unlock()
		w.Write([]byte(`{"result": "ok"}`))
	}))
	defer srv.Close()

	client, err := api.New(api.Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("api.New failed: %v", err)
	}
	c := NewController(client, &fakePresenter{}, nil, sched.Inline{}, Options{})

	if err := c.Submit("Mars", false); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := c.Submit("Mars", true); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := c.Submit("  ", true); err == nil {
		t.Fatal("Expected validation error")
	}

	if hits["/analyze"] != 1 || hits["/advanced_analyze"] != 1 || len(hits) != 2 {
		t.Errorf("Expected one request per endpoint, got %v", hits)
	}
	if c.State() != types.StateSuccess {
		t.Errorf("Expected success, got %s", c.State())
	}
}

func TestSubmit_LatestTokenWins(t *testing.T) {
	tests := []struct {
		name  string
		order []int // indices into the pending queue, resolved in sequence
	}{
		{name: "second settles first", order: []int{1, 0}},
		{name: "first settles first", order: []int{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, presenter, reloader, scheduler := newTestController(&scriptedAnalyzer{}, Options{})

			if err := c.Submit("A", false); err != nil {
				t.Fatalf("Submit A failed: %v", err)
			}
			if err := c.Submit("B", false); err != nil {
				t.Fatalf("Submit B failed: %v", err)
			}

			for _, i := range tt.order {
				scheduler.Run(i)
			}

			renders := presenter.renders()
			if len(renders) != 1 || renders[0] != "answer to B" {
				t.Errorf("Expected only B rendered, got %v", renders)
			}
			if c.State() != types.StateSuccess || c.Query() != "B" {
				t.Errorf("Expected success for B, got %s for %s", c.State(), c.Query())
			}
			if reloader.reloadFirsts != 1 {
				t.Errorf("Expected one history reload, got %d", reloader.reloadFirsts)
			}
		})
	}
}

func TestSubmit_SupersededRequestIsCancelled(t *testing.T) {
	var seen []error
	analyzer := analyzerFunc(func(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResponse, error) {
		seen = append(seen, ctx.Err())
		return &types.AnalysisResponse{Result: types.NewTextResult(req.Query)}, nil
	})
	c, _, _, scheduler := newTestController(analyzer, Options{})

	c.Submit("A", false)
	c.Submit("B", false)
	scheduler.RunAll()

	if !errors.Is(seen[0], context.Canceled) {
		t.Errorf("Expected first request context cancelled, got %v", seen[0])
	}
	if seen[1] != nil {
		t.Errorf("Expected second request context live, got %v", seen[1])
	}
}

func TestSubmit_MarsScenario(t *testing.T) {
	analyzer := &scriptedAnalyzer{replies: map[string]*types.AnalysisResponse{
		"Mars": {Result: types.NewTextResult("Mars is red. It has two moons.")},
	}}
	target := &viewTarget{chartVisible: true}
	reloader := &fakeReloader{}
	scheduler := &sched.Manual{}
	c := NewController(analyzer, view.New(target, nil, nil), reloader, scheduler, Options{})

	if err := c.Submit("Mars", false); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if c.State() != types.StateLoading {
		t.Errorf("Expected loading, got %s", c.State())
	}
	if target.notice.Kind != view.NoticeLoading {
		t.Error("Expected loading notice")
	}

	scheduler.RunAll()

	if len(analyzer.requests) != 1 || analyzer.requests[0].Endpoint() != "/analyze" {
		t.Errorf("Expected one /analyze request, got %+v", analyzer.requests)
	}
	if c.State() != types.StateSuccess {
		t.Errorf("Expected success, got %s", c.State())
	}
	if len(target.blocks) != 1 {
		t.Fatalf("Expected one block, got %d", len(target.blocks))
	}
	want := []string{"Mars is red.", "It has two moons."}
	for i, p := range want {
		if target.blocks[0].Paragraphs[i] != p {
			t.Errorf("Expected paragraph %q, got %q", p, target.blocks[0].Paragraphs[i])
		}
	}
	if target.chartVisible {
		t.Error("Expected chart panel hidden")
	}
	if reloader.reloadFirsts != 1 {
		t.Errorf("Expected history reloaded once, got %d", reloader.reloadFirsts)
	}
}

func TestSubmit_RateLimitedScenario(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer srv.Close()

	client, err := api.New(api.Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("api.New failed: %v", err)
	}
	presenter := &fakePresenter{}
	reloader := &fakeReloader{}
	c := NewController(client, presenter, reloader, sched.Inline{}, Options{})

	if err := c.Submit("Mars", true); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if c.State() != types.StateFailed {
		t.Errorf("Expected failed, got %s", c.State())
	}
	if !types.IsKind(c.LastError(), types.ApplicationError) {
		t.Errorf("Expected application error, got %v", c.LastError())
	}
	if presenter.last() != (presenterCall{"error", "rate limited"}) {
		t.Errorf("Expected rate limited error shown, got %+v", presenter.last())
	}
	if reloader.reloads+reloader.reloadFirsts != 0 {
		t.Error("Expected no history reload after failure")
	}
}

func TestSubmit_ErrorFieldInResponse(t *testing.T) {
	analyzer := &scriptedAnalyzer{replies: map[string]*types.AnalysisResponse{
		"Mars": {Error: "model unavailable"},
	}}
	c, presenter, reloader, scheduler := newTestController(analyzer, Options{})

	c.Submit("Mars", false)
	scheduler.RunAll()

	if c.State() != types.StateFailed {
		t.Errorf("Expected failed, got %s", c.State())
	}
	if presenter.last().value != "model unavailable" {
		t.Errorf("Expected application message, got %+v", presenter.last())
	}
	if reloader.reloadFirsts != 0 {
		t.Error("Expected no history reload")
	}
}

func TestSubmit_FailedIsNotSticky(t *testing.T) {
	analyzer := &scriptedAnalyzer{errs: map[string]error{
		"down": &types.Error{Kind: types.TransportError, Message: "Connection refused"},
	}}
	c, _, _, scheduler := newTestController(analyzer, Options{})

	c.Submit("down", false)
	scheduler.RunAll()
	if c.State() != types.StateFailed {
		t.Fatalf("Expected failed, got %s", c.State())
	}

	if err := c.Submit("   ", false); !types.IsKind(err, types.ValidationError) {
		t.Errorf("Expected validation error after failure, got %v", err)
	}
	if c.State() != types.StateFailed {
		t.Errorf("Expected blank input to leave state failed, got %s", c.State())
	}

	if err := c.Submit("up", false); err != nil {
		t.Fatalf("Submit after failure failed: %v", err)
	}
	if c.State() != types.StateLoading {
		t.Errorf("Expected loading, got %s", c.State())
	}
	scheduler.RunAll()
	if c.State() != types.StateSuccess {
		t.Errorf("Expected success, got %s", c.State())
	}
	if c.LastError() != nil {
		t.Errorf("Expected error cleared, got %v", c.LastError())
	}
}

func TestSubmit_TimeoutBumpsToken(t *testing.T) {
	release := make(chan struct{})
	analyzer := analyzerFunc(func(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResponse, error) {
		<-release // ignores its context
		return &types.AnalysisResponse{Result: types.NewTextResult("late")}, nil
	})
	c, presenter, reloader, scheduler := newTestController(analyzer, Options{Timeout: 10 * time.Millisecond})

	c.Submit("Mars", false)
	submitted := c.Token()

	if scheduler.Pending() != 2 {
		t.Fatalf("Expected request and watchdog scheduled, got %d", scheduler.Pending())
	}

	// watchdog fires first
	scheduler.Run(1)

	if c.State() != types.StateFailed {
		t.Errorf("Expected failed after timeout, got %s", c.State())
	}
	if !types.IsKind(c.LastError(), types.TransportError) {
		t.Errorf("Expected transport error, got %v", c.LastError())
	}
	if c.Token() == submitted {
		t.Error("Expected token bumped on timeout")
	}

	// the late success is ignored
	close(release)
	scheduler.RunAll()

	if c.State() != types.StateFailed {
		t.Errorf("Expected failed to stick for the late reply, got %s", c.State())
	}
	if len(presenter.renders()) != 0 {
		t.Errorf("Expected nothing rendered, got %v", presenter.renders())
	}
	if reloader.reloadFirsts != 0 {
		t.Error("Expected no history reload")
	}
}

func TestSubmit_TimeoutReportedByAnalyzer(t *testing.T) {
	analyzer := analyzerFunc(func(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResponse, error) {
		<-ctx.Done()
		return nil, &types.Error{Kind: types.TransportError, Message: "Request timed out", Err: ctx.Err()}
	})
	c, _, _, scheduler := newTestController(analyzer, Options{Timeout: 5 * time.Millisecond})

	c.Submit("Mars", false)
	submitted := c.Token()
	scheduler.RunAll()

	if c.State() != types.StateFailed {
		t.Errorf("Expected failed, got %s", c.State())
	}
	if c.Token() == submitted {
		t.Error("Expected token bumped on timeout")
	}
}

func TestSubmit_ReloadPolicy(t *testing.T) {
	c, _, reloader, scheduler := newTestController(&scriptedAnalyzer{}, Options{Policy: ReloadCurrent})

	c.Submit("Mars", false)
	scheduler.RunAll()

	if reloader.reloads != 1 || reloader.reloadFirsts != 0 {
		t.Errorf("Expected current page reload, got reload=%d first=%d", reloader.reloads, reloader.reloadFirsts)
	}
}

func TestSubmit_RenderErrorKeepsSuccess(t *testing.T) {
	c, presenter, reloader, scheduler := newTestController(&scriptedAnalyzer{}, Options{})
	presenter.renderErr = &types.Error{Kind: types.RenderError, Message: "bad chart"}

	c.Submit("Mars", false)
	scheduler.RunAll()

	if c.State() != types.StateSuccess {
		t.Errorf("Expected success, got %s", c.State())
	}
	if !types.IsKind(c.LastError(), types.RenderError) {
		t.Errorf("Expected render error recorded, got %v", c.LastError())
	}
	if reloader.reloadFirsts != 1 {
		t.Error("Expected history reload")
	}
}

func TestOnStateChange(t *testing.T) {
	c, _, _, scheduler := newTestController(&scriptedAnalyzer{}, Options{})

	var states []types.RequestState
	c.OnStateChange(func(s types.RequestState) { states = append(states, s) })

	c.Submit("Mars", false)
	scheduler.RunAll()

	want := []types.RequestState{types.StateLoading, types.StateSuccess}
	if len(states) != len(want) || states[0] != want[0] || states[1] != want[1] {
		t.Errorf("Expected %v, got %v", want, states)
	}
}

type analyzerFunc func(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResponse, error)

func (f analyzerFunc) Analyze(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResponse, error) {
	return f(ctx, req)
}

type viewTarget struct {
	blocks       []view.Block
	notice       view.Notice
	chartVisible bool
}

func (v *viewTarget) SetBlocks(b []view.Block) { v.blocks = b }

func (v *viewTarget) SetNotice(n view.Notice) { v.notice = n }

func (v *viewTarget) SetChartVisible(visible bool) { v.chartVisible = visible }
