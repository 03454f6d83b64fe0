// Package state persists the two things a run must not lose: the most
// recently issued refresh token (single-use, invalidated on every
// renewal) and the ids of transactions already billed.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type fileData struct {
	RefreshToken string   `json:"refresh_token,omitempty"`
	ProcessedIDs []string `json:"processed_transactions,omitempty"`
}

// Store is a JSON file under the user's config directory.
type Store struct {
	filePath string

	mu   sync.Mutex
	data fileData
}

// NewStore opens (or prepares) the state file. An empty path uses
// ~/.config/revolut-odoo-sync/state.json. A missing file is a fresh
// store, not an error.
func NewStore(path string) (*Store, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir := filepath.Join(homeDir, ".config", "revolut-odoo-sync")
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		path = filepath.Join(configDir, "state.json")
	}

	store := &Store{filePath: path}
	if _, err := os.Stat(path); err == nil {
		if err := store.load(); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func (s *Store) load() error {
	raw, err := os.ReadFile(s.filePath)
	if err != nil {
		return fmt.Errorf("failed to read state file: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return fmt.Errorf("failed to parse state file: %w", err)
	}
	return nil
}

func (s *Store) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := os.WriteFile(s.filePath, raw, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// RefreshToken returns the persisted rotated token, empty if none has
// been stored yet.
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.RefreshToken
}

// SetRefreshToken stores a rotated token. Shaped to serve as the
// vault's rotation hook.
func (s *Store) SetRefreshToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.RefreshToken = token
	return s.save()
}

// Contains reports whether a transaction id has already been billed.
func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, seen := range s.data.ProcessedIDs {
		if seen == id {
			return true
		}
	}
	return false
}

// Add records a billed transaction id.
func (s *Store) Add(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, seen := range s.data.ProcessedIDs {
		if seen == id {
			return nil
		}
	}
	s.data.ProcessedIDs = append(s.data.ProcessedIDs, id)
	return s.save()
}
