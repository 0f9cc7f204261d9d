package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/api"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/cli"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/config"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/mock"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/tui"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/types"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var printed reportedError
		if !errors.As(err, &printed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// reportedError wraps failures whose message the command already printed
type reportedError struct {
	error
}

var rootCmd = &cobra.Command{
	Use:   "analyst",
	Short: "NASA data analyst - ask questions about NASA missions",
	Long: `analyst is a terminal client for the NASA data analysis server.

Run without arguments to start the interactive TUI, or use a subcommand for
one-shot analyses and history listings.

Examples:
  analyst                                   # Start interactive TUI
  analyst analyze "mission status"          # Basic analysis, text output
  analyst analyze -a "Explain Apollo 11"    # Advanced analysis
  analyst analyze status -o json            # JSON output
  analyst analyze status --chart-out c.png  # Save the chart as PNG
  analyst history --page 2                  # Older queries
  analyst mock                              # Local development server`,
	Version:       version.Current,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		return tui.Run(settings)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [query...]",
	Short: "Run one analysis and print the result",
	Long: `Run one analysis and print the result.

Without a query on an interactive terminal, a list of suggested queries
is shown to pick from.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		backend, err := newBackend(settings)
		if err != nil {
			return err
		}

		opts := cli.AnalyzeOptions{
			Query:        strings.Join(args, " "),
			Advanced:     flagAdvanced,
			OutputFormat: flagOutput,
			Filter:       flagFilter,
			ChartOut:     flagChartOut,
			Scheme:       flagScheme,
			Suggestions:  settings.Suggestions,
			Color:        colorEnabled(),
		}
		err = cli.Analyze(cmd.Context(), os.Stdout, backend, settings, opts)
		if _, ok := types.KindOf(err); ok && !types.IsKind(err, types.ValidationError) {
			return reportedError{err}
		}
		return err
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previous queries, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		backend, err := newBackend(settings)
		if err != nil {
			return err
		}

		opts := cli.HistoryOptions{
			Page:         flagPage,
			PerPage:      flagPerPage,
			Search:       flagSearch,
			OutputFormat: flagOutput,
			Color:        colorEnabled(),
		}
		err = cli.History(cmd.Context(), os.Stdout, backend, opts, stderrLogger(settings.Debug))
		if _, ok := types.KindOf(err); ok {
			return reportedError{err}
		}
		return err
	},
}

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run the local development analysis server",
	Long: `Run a local server implementing /analyze, /advanced_analyze and /history.

Queries are answered from a small sample mission table and stored in SQLite
(or Postgres when mock.database_url / DATABASE_URL is set). Advanced analysis
uses an OpenAI-compatible API when mock.llm.api_key / GROQ_API_KEY is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return mock.Serve(ctx, settings.Mock, stderrLogger(settings.Debug))
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and check for a newer release",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("analyst %s\n", version.Current)
		if !flagCheck {
			return nil
		}

		update, err := version.NewChecker().Check(cmd.Context(), version.Current)
		if err != nil {
			return fmt.Errorf("update check failed: %w", err)
		}
		if update.Available {
			fmt.Printf("A newer version is available: %s\n%s\n", update.Latest, update.URL)
		} else {
			fmt.Println("You are running the latest version")
		}
		return nil
	},
}

// Persistent flags
var (
	flagBaseURL string
	flagField   string
	flagTimeout time.Duration
	flagDebug   bool
)

// Flags for analyze/history
var (
	flagAdvanced bool
	flagOutput   string
	flagFilter   string
	flagChartOut string
	flagScheme   string
	flagPage     int
	flagPerPage  int
	flagSearch   string
)

// Flags for mock/version
var (
	flagAddr  string
	flagCheck bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Analysis server base URL (default http://localhost:5000)")
	rootCmd.PersistentFlags().StringVar(&flagField, "field", "", "Form field carrying the query (query/mission)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "Request timeout, 0 waits indefinitely (default 30s)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Write debug logs")

	analyzeCmd.Flags().BoolVarP(&flagAdvanced, "advanced", "a", false, "Use advanced (LLM) analysis")
	analyzeCmd.Flags().StringVarP(&flagOutput, "output", "o", cli.FormatText, "Output format (text/json/yaml/body)")
	analyzeCmd.Flags().StringVarP(&flagFilter, "filter", "f", "", "JMESPath expression or $(shell command) applied to the result")
	analyzeCmd.Flags().StringVar(&flagChartOut, "chart-out", "", "Save the chart to a .png or .svg file")
	analyzeCmd.Flags().StringVar(&flagScheme, "scheme", "", "Colour scheme applied to the chart")

	historyCmd.Flags().IntVarP(&flagPage, "page", "p", 1, "Page to show, starting at 1")
	historyCmd.Flags().IntVar(&flagPerPage, "per-page", types.ItemsPerPage, "Entries per page")
	historyCmd.Flags().StringVarP(&flagSearch, "search", "s", "", "Fuzzy filter over the page")
	historyCmd.Flags().StringVarP(&flagOutput, "output", "o", cli.FormatText, "Output format (text/json/yaml)")

	mockCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default :5000)")

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "Check GitHub for a newer release")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mockCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadSettings initializes the config directory and merges defaults, the
// settings file, the environment and command line flags
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	settings, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

func newBackend(settings *config.Settings) (*api.Client, error) {
	return api.New(api.Options{
		BaseURL: settings.BaseURL,
		Field:   settings.QueryField,
		Logger:  stderrLogger(settings.Debug),
	})
}

func stderrLogger(debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func colorEnabled() bool {
	_, noColor := os.LookupEnv("NO_COLOR")
	return !noColor && term.IsTerminal(int(os.Stdout.Fd()))
}
