package analysis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/sched"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/types"
)

// Analyzer performs one analysis round trip
type Analyzer interface {
	Analyze(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResponse, error)
}

// Presenter displays the controller's lifecycle
type Presenter interface {
	ShowLoading(query string)
	ShowError(err error)
	ShowValidation(msg string)
	Render(result types.AnalysisResult, chartJSON string) error
}

// Reloader refreshes the history after a successful analysis
type Reloader interface {
	Reload()
	ReloadFirst()
}

// ReloadPolicy picks the history page shown after a success
type ReloadPolicy string

const (
	// ReloadFirst jumps to page 1, where the new query appears
	ReloadFirst ReloadPolicy = "first"
	// ReloadCurrent refreshes the page being viewed
	ReloadCurrent ReloadPolicy = "current"
)

// DefaultValidationMessage is shown when the query is blank
const DefaultValidationMessage = "Please enter a query"

// Options configures a Controller
type Options struct {
	Timeout           time.Duration // 0 waits indefinitely
	Policy            ReloadPolicy
	ValidationMessage string
	Logger            *slog.Logger
}

// Controller runs the submit → request → render lifecycle. All methods
// must be called from the event loop that applies scheduler continuations.
type Controller struct {
	analyzer  Analyzer
	presenter Presenter
	history   Reloader
	scheduler sched.Scheduler
	seq       sched.Sequence
	opts      Options
	logger    *slog.Logger

	state    types.RequestState
	query    string
	advanced bool
	result   *types.AnalysisResponse
	lastErr  error
	cancel   context.CancelFunc
	listener func(types.RequestState)
}

// NewController wires a controller. history may be nil.
func NewController(analyzer Analyzer, presenter Presenter, history Reloader, scheduler sched.Scheduler, opts Options) *Controller {
	if opts.Policy == "" {
		opts.Policy = ReloadFirst
	}
	if opts.ValidationMessage == "" {
		opts.ValidationMessage = DefaultValidationMessage
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Controller{
		analyzer:  analyzer,
		presenter: presenter,
		history:   history,
		scheduler: scheduler,
		opts:      opts,
		logger:    logger,
		state:     types.StateIdle,
	}
}

// OnStateChange registers fn to be called after every state transition
func (c *Controller) OnStateChange(fn func(types.RequestState)) {
	c.listener = fn
}

// Submit validates the query and starts one analysis request. A blank
// query returns a ValidationError without any request. Submitting while a
// request is in flight supersedes it. Every state accepts a submission,
// including Failed.
func (c *Controller) Submit(query string, advanced bool) error {
	trimmed, err := types.ValidateQuery(query)
	if err != nil {
		c.presenter.ShowValidation(c.opts.ValidationMessage)
		return err
	}

	token := c.seq.Next()
	if c.cancel != nil {
		c.cancel()
	}

	var ctx context.Context
	var cancel context.CancelFunc
	if c.opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), c.opts.Timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	c.cancel = cancel

	c.query = trimmed
	c.advanced = advanced
	c.lastErr = nil
	c.setState(types.StateLoading)
	c.presenter.ShowLoading(trimmed)

	req := types.AnalysisRequest{Query: trimmed, Advanced: advanced}
	c.logger.Info("submitting analysis", "query", trimmed, "advanced", advanced, "token", token)

	c.scheduler.Go(ctx, func(ctx context.Context) func() {
		resp, err := c.analyzer.Analyze(ctx, req)
		timedOut := errors.Is(ctx.Err(), context.DeadlineExceeded)
		return func() {
			c.settle(token, resp, err, timedOut)
		}
	})

	if c.opts.Timeout > 0 {
		// fires even when the analyzer ignores its context
		c.scheduler.Go(ctx, func(ctx context.Context) func() {
			<-ctx.Done()
			if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil
			}
			return func() {
				if c.seq.IsCurrent(token) && c.state == types.StateLoading {
					c.settle(token, nil, nil, true)
				}
			}
		})
	}

	return nil
}

func (c *Controller) settle(token sched.Token, resp *types.AnalysisResponse, err error, timedOut bool) {
	if !c.seq.IsCurrent(token) {
		c.logger.Debug("discarding stale analysis response", "token", token, "current", c.seq.Current())
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if timedOut {
		// nothing that arrives for this submission may be shown any more
		c.seq.Next()
		if !types.IsKind(err, types.TransportError) {
			err = &types.Error{Kind: types.TransportError, Message: "Request timed out", Err: context.DeadlineExceeded}
		}
	}

	if err == nil && resp != nil && resp.Error != "" {
		err = &types.Error{Kind: types.ApplicationError, Message: resp.Error}
	}
	if err == nil && resp == nil {
		err = &types.Error{Kind: types.TransportError, Message: "Empty response from server"}
	}

	if err != nil {
		c.fail(err)
		return
	}

	c.result = resp
	c.setState(types.StateSuccess)
	if rerr := c.presenter.Render(resp.Result, resp.Chart); rerr != nil {
		c.lastErr = rerr
		c.logger.Warn("result rendered without chart", "error", rerr)
	}

	if c.history != nil {
		switch c.opts.Policy {
		case ReloadCurrent:
			c.history.Reload()
		default:
			c.history.ReloadFirst()
		}
	}
}

func (c *Controller) fail(err error) {
	c.lastErr = err
	c.logger.Warn("analysis failed", "query", c.query, "error", err)
	c.setState(types.StateFailed)
	c.presenter.ShowError(err)
}

func (c *Controller) setState(s types.RequestState) {
	c.state = s
	if c.listener != nil {
		c.listener(s)
	}
}

// State returns the current lifecycle state
func (c *Controller) State() types.RequestState { return c.state }

// Token returns the latest staleness token
func (c *Controller) Token() sched.Token { return c.seq.Current() }

// Query returns the last submitted query
func (c *Controller) Query() string { return c.query }

// Advanced reports whether the last submission used advanced analysis
func (c *Controller) Advanced() bool { return c.advanced }

// LastError returns the error of the last failed or partially rendered
// submission
func (c *Controller) LastError() error { return c.lastErr }

// Response returns the last successful response, or nil
func (c *Controller) Response() *types.AnalysisResponse { return c.result }
