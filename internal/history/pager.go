package history

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/sched"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/types"
)

// Fetcher loads one page of history
type Fetcher interface {
	History(ctx context.Context, page, perPage int) ([]types.HistoryEntry, error)
}

// Target is the history panel
type Target interface {
	SetEntries(entries []types.HistoryEntry)
	// SetControls updates the prev/next affordances
	SetControls(prevEnabled, nextEnabled bool)
	SetPage(page int)
	// SetError shows a fetch failure; nil clears it
	SetError(err error)
}

// Submitter re-runs a query picked from the history
type Submitter interface {
	SetQuery(query string)
	Submit(query string, advanced bool) error
}

// Options configures a Pager
type Options struct {
	PerPage int           // defaults to types.ItemsPerPage
	Timeout time.Duration // per fetch, 0 for none
	Logger  *slog.Logger
}

// Pager shows the query history one page at a time, newest first
type Pager struct {
	fetcher   Fetcher
	target    Target
	scheduler sched.Scheduler
	submitter Submitter
	seq       sched.Sequence
	logger    *slog.Logger

	page    int
	perPage int
	timeout time.Duration

	entries []types.HistoryEntry // last fetched page
	shown   []types.HistoryEntry // entries after the filter
	filter  string
	loading bool

	prevEnabled bool
	nextEnabled bool
}

// NewPager creates a pager on page 1 with both controls disabled
func NewPager(fetcher Fetcher, target Target, scheduler sched.Scheduler, opts Options) *Pager {
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = types.ItemsPerPage
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	p := &Pager{
		fetcher:   fetcher,
		target:    target,
		scheduler: scheduler,
		logger:    logger,
		page:      1,
		perPage:   perPage,
		timeout:   opts.Timeout,
	}
	target.SetPage(p.page)
	target.SetControls(false, false)
	return p
}

// SetSubmitter wires the controller that history selections resubmit to
func (p *Pager) SetSubmitter(s Submitter) {
	p.submitter = s
}

// Reload fetches the current page
func (p *Pager) Reload() {
	token := p.seq.Next()
	page := p.page
	p.loading = true
	p.target.SetPage(page)

	ctx := context.Background()
	p.scheduler.Go(ctx, func(ctx context.Context) func() {
		if p.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.timeout)
			defer cancel()
		}
		entries, err := p.fetcher.History(ctx, page, p.perPage)
		return func() {
			p.settle(token, page, entries, err)
		}
	})
}

// ReloadFirst jumps to page 1 and fetches it
func (p *Pager) ReloadFirst() {
	p.page = 1
	p.Reload()
}

// Jump moves to page (clamped to 1) and fetches it
func (p *Pager) Jump(page int) {
	if page < 1 {
		page = 1
	}
	p.page = page
	p.Reload()
}

// Next moves one page forward and fetches it. It does nothing until a
// full page has been loaded.
func (p *Pager) Next() {
	if !p.nextEnabled {
		return
	}
	p.page++
	p.Reload()
}

// Prev moves one page back and fetches it. It does nothing on page 1.
func (p *Pager) Prev() {
	if p.page <= 1 {
		return
	}
	p.page--
	p.Reload()
}

// Select resubmits the query of the i-th displayed entry as a basic
// analysis.
func (p *Pager) Select(i int) error {
	if i < 0 || i >= len(p.shown) {
		return fmt.Errorf("history entry %d out of range", i+1)
	}
	if p.submitter == nil {
		return fmt.Errorf("history selection is not wired to a controller")
	}
	query := p.shown[i].Query
	p.submitter.SetQuery(query)
	return p.submitter.Submit(query, false)
}

// Filter narrows the displayed entries of the current page by fuzzy
// match on the query text. An empty term shows the whole page.
func (p *Pager) Filter(term string) {
	p.filter = term
	p.applyFilter()
	p.target.SetEntries(p.shown)
}

func (p *Pager) applyFilter() {
	if p.filter == "" {
		p.shown = p.entries
		return
	}
	matches := fuzzy.FindFrom(p.filter, entrySource(p.entries))
	p.shown = make([]types.HistoryEntry, 0, len(matches))
	for _, m := range matches {
		p.shown = append(p.shown, p.entries[m.Index])
	}
}

func (p *Pager) settle(token sched.Token, page int, entries []types.HistoryEntry, err error) {
	if !p.seq.IsCurrent(token) {
		p.logger.Debug("discarding stale history page", "page", page)
		return
	}
	p.loading = false

	if err != nil {
		// controls keep their last known good state
		p.logger.Warn("history fetch failed", "page", page, "error", err)
		p.target.SetError(err)
		return
	}

	p.entries = entries
	p.filter = ""
	p.applyFilter()
	p.prevEnabled = page > 1
	p.nextEnabled = len(entries) >= p.perPage

	p.target.SetError(nil)
	p.target.SetEntries(p.shown)
	p.target.SetControls(p.prevEnabled, p.nextEnabled)
}

// Page returns the current page number, starting at 1
func (p *Pager) Page() int { return p.page }

// PerPage returns the page size
func (p *Pager) PerPage() int { return p.perPage }

// Entries returns the displayed entries
func (p *Pager) Entries() []types.HistoryEntry { return p.shown }

// FilterTerm returns the active filter
func (p *Pager) FilterTerm() string { return p.filter }

// PrevEnabled reports whether the previous-page control is active
func (p *Pager) PrevEnabled() bool { return p.prevEnabled }

// NextEnabled reports whether the next-page control is active
func (p *Pager) NextEnabled() bool { return p.nextEnabled }

// Loading reports whether a fetch is in flight
func (p *Pager) Loading() bool { return p.loading }

type entrySource []types.HistoryEntry

func (s entrySource) String(i int) string { return s[i].Query }

func (s entrySource) Len() int { return len(s) }
