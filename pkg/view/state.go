package view

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// stateRecord is the on-disk form of a saved expansion state.
type stateRecord struct {
	GraphHash string    `json:"graph_hash"`
	Expanded  []string  `json:"expanded"`
	SavedAt   time.Time `json:"saved_at"`
}

// StateStore persists expansion states as JSON files keyed by graph
// hash, so an interactive session can resume where the last one left
// off. Intended for CLI use; the API keeps states in memory per graph.
type StateStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewStateStore creates a file-based expansion state store.
// If baseDir is empty, defaults to ~/.config/modelcanvas/views/
func NewStateStore(baseDir string) (*StateStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "modelcanvas", "views")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create view state dir: %w", err)
	}
	return &StateStore{baseDir: baseDir}, nil
}

func (s *StateStore) statePath(graphHash string) string {
	return filepath.Join(s.baseDir, graphHash+".json")
}

// Load returns the saved expansion state for a graph hash.
// Returns nil, nil when no state has been saved.
func (s *StateStore) Load(graphHash string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.statePath(graphHash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read view state: %w", err)
	}

	var rec stateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse view state: %w", err)
	}
	return rec.Expanded, nil
}

// Save stores the expansion state for a graph hash.
func (s *StateStore) Save(graphHash string, expanded []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := stateRecord{
		GraphHash: graphHash,
		Expanded:  expanded,
		SavedAt:   time.Now(),
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal view state: %w", err)
	}
	if err := os.WriteFile(s.statePath(graphHash), data, 0600); err != nil {
		return fmt.Errorf("write view state: %w", err)
	}
	return nil
}

// Delete removes the saved state for a graph hash.
func (s *StateStore) Delete(graphHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.statePath(graphHash)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove view state: %w", err)
	}
	return nil
}

// Cleanup removes saved states older than maxAge.
func (s *StateStore) Cleanup(maxAge time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("read view state dir: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.baseDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var rec stateRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		if rec.SavedAt.Before(cutoff) {
			os.Remove(path)
		}
	}
	return nil
}

// Path returns the base directory for state files.
func (s *StateStore) Path() string {
	return s.baseDir
}
