package cli

import (
	"log/slog"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/history"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/sched"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/types"
)

// historySink collects what the pager would show in a panel
type historySink struct {
	entries []types.HistoryEntry
	err     error
}

func (s *historySink) SetEntries(entries []types.HistoryEntry) { s.entries = entries }

func (s *historySink) SetControls(prevEnabled, nextEnabled bool) {}

func (s *historySink) SetPage(page int) {}

func (s *historySink) SetError(err error) { s.err = err }

// loadHistory fetches opts.Page synchronously and applies the search term
func loadHistory(backend Backend, opts HistoryOptions, logger *slog.Logger) ([]types.HistoryEntry, *history.Pager, error) {
	sink := &historySink{}
	pager := history.NewPager(backend, sink, sched.Inline{}, history.Options{
		PerPage: opts.PerPage,
		Logger:  logger,
	})

	pager.Jump(opts.Page)
	if sink.err != nil {
		return nil, pager, sink.err
	}
	if opts.Search != "" {
		pager.Filter(opts.Search)
	}
	return pager.Entries(), pager, nil
}
