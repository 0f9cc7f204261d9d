package mock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/config"
)

// OpenStore picks Postgres when a database URL is configured and the
// local SQLite file otherwise
func OpenStore(ctx context.Context, settings config.MockSettings) (Store, error) {
	if settings.DatabaseURL != "" {
		store, err := NewPostgresStore(ctx, settings.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres store: %w", err)
		}
		return store, nil
	}

	path := settings.SQLitePath
	if path == "" {
		path = config.DatabasePath
	}
	store, err := NewSQLiteStore(path)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: %w", err)
	}
	return store, nil
}

// OpenAdvisor returns nil without error when no API key is configured
func OpenAdvisor(settings config.MockSettings, logger *slog.Logger) (Advisor, error) {
	advisor, err := NewChatAdvisor(LLMOptions{
		APIKey:  settings.LLM.APIKey,
		BaseURL: settings.LLM.BaseURL,
		Model:   settings.LLM.Model,
	})
	if errors.Is(err, ErrAdvisorUnavailable) {
		logger.Warn("no LLM API key configured, /advanced_analyze will answer 503")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return advisor, nil
}

// Serve opens the configured store and advisor and runs the server on
// settings.Addr until ctx is cancelled
func Serve(ctx context.Context, settings config.MockSettings, logger *slog.Logger) error {
	store, err := OpenStore(ctx, settings)
	if err != nil {
		return err
	}
	defer store.Close()

	advisor, err := OpenAdvisor(settings, logger)
	if err != nil {
		return err
	}

	srv := NewServer(Options{
		Store:     store,
		Advisor:   advisor,
		Logger:    logger,
		AccessLog: true,
	})
	return srv.Run(ctx, settings.Addr)
}
