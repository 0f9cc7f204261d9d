package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// State is the UI state carried between runs of the TUI
type State struct {
	LastQuery string    `json:"lastQuery,omitempty"`
	Advanced  bool      `json:"advanced,omitempty"`
	Scheme    string    `json:"scheme,omitempty"`
	SavedAt   time.Time `json:"savedAt,omitempty"`
}

// Manager reads and writes the session file
type Manager struct {
	path  string
	state State
}

// NewManager creates a manager for the session file at path
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Load reads the session file. A missing file leaves the defaults.
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			m.state = State{}
			return nil
		}
		return fmt.Errorf("failed to read session file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("failed to parse session file: %w", err)
	}
	state.LastQuery = strings.TrimSpace(state.LastQuery)

	m.state = state
	return nil
}

// Save writes the session to disk
func (m *Manager) Save() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	m.state.SavedAt = time.Now().UTC()
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// State returns a copy of the current session
func (m *Manager) State() State {
	return m.state
}

// Update records the latest query, mode and colour scheme
func (m *Manager) Update(query string, advanced bool, scheme string) {
	m.state.LastQuery = strings.TrimSpace(query)
	m.state.Advanced = advanced
	m.state.Scheme = scheme
}
