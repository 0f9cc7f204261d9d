package tui

import (
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/api"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/config"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/keybinds"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/session"
)

// Run starts the TUI against the configured analysis server
func Run(settings *config.Settings) error {
	logger, closeLog, err := newLogger(settings.Debug)
	if err != nil {
		return err
	}
	defer closeLog()

	client, err := api.New(api.Options{
		BaseURL: settings.BaseURL,
		Field:   settings.QueryField,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	registry, err := keybinds.LoadOrDefault(config.KeybindsFile)
	if err != nil {
		return err
	}
	if result := keybinds.NewValidator().ValidateRegistry(registry); result.HasErrors() {
		return fmt.Errorf("invalid keybindings:\n%s", result.String())
	} else if result.HasWarnings() {
		logger.Warn("keybinding warnings", "details", result.String())
	}

	sessions := session.NewManager(config.SessionFile)
	if err := sessions.Load(); err != nil {
		logger.Warn("starting with a fresh session", "error", err)
	}

	m, err := New(client, Options{
		Settings:  settings,
		Keybinds:  registry,
		ExportDir: config.ExportDir,
		Session:   sessions,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// newLogger writes debug logs to config.LogFile; the terminal belongs to
// the UI so nothing is logged otherwise
func newLogger(debug bool) (*slog.Logger, func(), error) {
	if !debug {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := tea.LogToFile(config.LogFile, "analyst")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}
