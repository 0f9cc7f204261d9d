package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. ANALYST_BASE_URL
const EnvPrefix = "ANALYST"

// Settings is the resolved configuration
type Settings struct {
	BaseURL       string                       `mapstructure:"base_url"`
	QueryField    string                       `mapstructure:"query_field"`
	Timeout       time.Duration                `mapstructure:"timeout"`
	HistoryReload string                       `mapstructure:"history_reload"`
	Suggestions   []string                     `mapstructure:"suggestions"`
	Schemes       map[string]map[string]string `mapstructure:"-"`
	Debug         bool                         `mapstructure:"debug"`
	Mock          MockSettings                 `mapstructure:"mock"`
}

// MockSettings configures the development server
type MockSettings struct {
	Addr        string      `mapstructure:"addr"`
	DatabaseURL string      `mapstructure:"database_url"` // Postgres; SQLite when empty
	SQLitePath  string      `mapstructure:"sqlite_path"`
	LLM         LLMSettings `mapstructure:"llm"`
}

// LLMSettings configures the OpenAI-compatible endpoint behind advanced analysis
type LLMSettings struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// DefaultSuggestions are offered under the query input
var DefaultSuggestions = []string{
	"Explain the significance of the Apollo 11 mission",
	"Describe the latest discoveries by the James Webb Space Telescope",
	"Compare the Mars rovers: Curiosity, Perseverance, and Opportunity",
	"Outline NASA's plans for future Moon missions",
	"Discuss the potential for finding life on Europa",
}

// flag name → settings key
var flagKeys = map[string]string{
	"base-url": "base_url",
	"field":    "query_field",
	"timeout":  "timeout",
	"debug":    "debug",
	"addr":     "mock.addr",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "http://localhost:5000")
	v.SetDefault("query_field", "query")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("history_reload", "first")
	v.SetDefault("suggestions", DefaultSuggestions)
	v.SetDefault("debug", false)
	v.SetDefault("mock.addr", ":5000")
	v.SetDefault("mock.database_url", "")
	v.SetDefault("mock.sqlite_path", DatabasePath)
	v.SetDefault("mock.llm.api_key", "")
	v.SetDefault("mock.llm.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("mock.llm.model", "llama3-8b-8192")
}

// Load resolves settings from defaults, the settings file, .env,
// ANALYST_* environment variables and the given flags, later sources
// winning.
func Load(flags *pflag.FlagSet) (*Settings, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if ConfigDir != "" {
		v.AddConfigPath(ConfigDir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// names the original deployment used
	_ = v.BindEnv("mock.database_url", EnvPrefix+"_MOCK_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("mock.llm.api_key", EnvPrefix+"_MOCK_LLM_API_KEY", "GROQ_API_KEY", "OPENAI_API_KEY")

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	if path := v.ConfigFileUsed(); path != "" {
		schemes, err := loadSchemes(path)
		if err != nil {
			return nil, err
		}
		s.Schemes = schemes
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// loadSchemes reads the schemes section verbatim; viper folds map keys to
// lower case, which would break category lookups by trace name.
func loadSchemes(path string) (map[string]map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	var doc struct {
		Schemes map[string]map[string]string `yaml:"schemes"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schemes in %s: %w", path, err)
	}
	return doc.Schemes, nil
}

// Validate rejects settings the client cannot work with
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.BaseURL) == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	switch s.QueryField {
	case "query", "mission":
	default:
		return fmt.Errorf("query_field must be \"query\" or \"mission\", got %q", s.QueryField)
	}
	switch s.HistoryReload {
	case "first", "current":
	default:
		return fmt.Errorf("history_reload must be \"first\" or \"current\", got %q", s.HistoryReload)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// ValidationMessage is shown when the query input is blank
func (s *Settings) ValidationMessage() string {
	return "Please enter a " + s.QueryField
}
