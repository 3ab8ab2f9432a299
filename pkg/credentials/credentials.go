// Package credentials persists the managed backend's API key between runs.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrKeyNotFound is returned when no key has been saved for a backend.
var ErrKeyNotFound = errors.New("backend key not found")

// Credential is the stored key for one backend.
type Credential struct {
	URL     string    `json:"url"`
	Key     string    `json:"key"`
	SavedAt time.Time `json:"saved_at"`
}

// Store keeps one 0600 JSON file per backend inside dir.
type Store struct {
	dir string
	now func() time.Time
}

func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

func (s *Store) path(backend string) string {
	return filepath.Join(s.dir, filepath.Base(backend)+"_key.json")
}

// Save writes cred for backend, replacing any previous key.
func (s *Store) Save(backend string, cred Credential) error {
	if strings.TrimSpace(cred.Key) == "" {
		return errors.New("refusing to save an empty key")
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if cred.SavedAt.IsZero() {
		cred.SavedAt = s.now().UTC()
	}
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	return os.WriteFile(s.path(backend), data, 0600)
}

func (s *Store) Load(backend string) (Credential, error) {
	data, err := os.ReadFile(s.path(backend)) // #nosec G304 -- backend is sanitized
	if err != nil {
		if os.IsNotExist(err) {
			return Credential{}, ErrKeyNotFound
		}
		return Credential{}, fmt.Errorf("failed to read credential: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return Credential{}, fmt.Errorf("failed to unmarshal credential: %w", err)
	}
	if cred.Key == "" {
		return Credential{}, ErrKeyNotFound
	}

	return cred, nil
}

// Delete removes the stored key. Deleting a missing key is not an error.
func (s *Store) Delete(backend string) error {
	if err := os.Remove(s.path(backend)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}
