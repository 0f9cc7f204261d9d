package keybinds

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
)

// Config is the user's keybinds.json: per context, action -> comma separated keys.
// Comments and trailing commas are allowed.
type Config struct {
	Version string                       `json:"version"`
	Global  map[string]string            `json:"global,omitempty"`
	Input   map[string]string            `json:"input,omitempty"`
	Result  map[string]string            `json:"result,omitempty"`
	History map[string]string            `json:"history,omitempty"`
	Filter  map[string]string            `json:"filter,omitempty"`
	Raw     map[string]string            `json:"raw,omitempty"`
	Help    map[string]string            `json:"help,omitempty"`
	Custom  map[string]map[string]string `json:"custom,omitempty"`
}

// ParseConfig decodes keybinds.json content
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
		return nil, fmt.Errorf("invalid keybinds.json format: %w", err)
	}
	return &config, nil
}

// LoadConfig loads keybinding configuration from a file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// SaveConfig saves keybinding configuration to a JSON file
func SaveConfig(config *Config, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) sections() map[Context]map[string]string {
	sections := map[Context]map[string]string{
		ContextGlobal:  c.Global,
		ContextInput:   c.Input,
		ContextResult:  c.Result,
		ContextHistory: c.History,
		ContextFilter:  c.Filter,
		ContextRaw:     c.Raw,
		ContextHelp:    c.Help,
	}
	for name, bindings := range c.Custom {
		sections[Context(name)] = bindings
	}
	return sections
}

// ApplyConfig applies user configuration to a registry.
// A configured action replaces all of its default keys in that context.
func ApplyConfig(registry *Registry, config *Config) error {
	for context, bindings := range config.sections() {
		actions := make([]string, 0, len(bindings))
		for a := range bindings {
			actions = append(actions, a)
		}
		sort.Strings(actions)

		for _, a := range actions {
			action := Action(a)
			if err := ValidateAction(a); err != nil {
				return fmt.Errorf("context '%s': %w", context, err)
			}
			keys := SplitKeys(bindings[a])
			for _, key := range keys {
				if err := ValidateKey(key); err != nil {
					return fmt.Errorf("context '%s', action '%s': %w", context, a, err)
				}
			}
			registry.Unbind(context, action)
			registry.RegisterMultiple(context, keys, action)
		}
	}
	return nil
}

// SplitKeys splits "up,k" into its keys. A lone "," is kept as a key.
func SplitKeys(s string) []string {
	if strings.TrimSpace(s) == "," {
		return []string{","}
	}
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// LoadOrDefault loads user config if it exists, otherwise returns default registry
func LoadOrDefault(configPath string) (*Registry, error) {
	registry := NewDefaultRegistry()

	config, err := LoadConfig(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return registry, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load keybinds.json: %w", err)
	}

	if err := ApplyConfig(registry, config); err != nil {
		return nil, fmt.Errorf("failed to apply keybinds config: %w", err)
	}
	return registry, nil
}

// ExportDefaults renders the default registry as a config, for users to edit
func ExportDefaults() *Config {
	r := NewDefaultRegistry()
	config := &Config{Version: "1.0"}

	section := func(ctx Context) map[string]string {
		out := make(map[string]string)
		for action, keys := range groupByAction(r.bindings[ctx]) {
			out[string(action)] = strings.Join(keys, ",")
		}
		return out
	}

	config.Global = section(ContextGlobal)
	config.Input = section(ContextInput)
	config.Result = section(ContextResult)
	config.History = section(ContextHistory)
	config.Filter = section(ContextFilter)
	config.Raw = section(ContextRaw)
	config.Help = section(ContextHelp)
	return config
}

func groupByAction(bindings map[string]Action) map[Action][]string {
	grouped := make(map[Action][]string)
	for key, action := range bindings {
		grouped[action] = append(grouped[action], key)
	}
	for action := range grouped {
		sort.Strings(grouped[action])
	}
	return grouped
}
