// Package jsonfile stores small pieces of client state as JSON files that
// are replaced atomically on every write.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hay-kot/taskdeck/internal/core/auth"
)

// CredentialStore implements auth.CredentialStore with a single JSON file
// readable only by its owner.
type CredentialStore struct {
	path string
	mu   sync.RWMutex
}

var _ auth.CredentialStore = (*CredentialStore)(nil)

// NewCredentialStore creates a store backed by the file at path.
func NewCredentialStore(path string) *CredentialStore {
	return &CredentialStore{path: path}
}

// Path returns the file the credential is written to.
func (s *CredentialStore) Path() string { return s.path }

// Load returns the saved credential or auth.ErrNoCredential.
func (s *CredentialStore) Load() (auth.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return auth.Credential{}, auth.ErrNoCredential
		}
		return auth.Credential{}, fmt.Errorf("read credential: %w", err)
	}

	if len(data) == 0 {
		return auth.Credential{}, auth.ErrNoCredential
	}

	var cred auth.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return auth.Credential{}, fmt.Errorf("decode credential: %w", err)
	}
	if cred.Token == "" {
		return auth.Credential{}, auth.ErrNoCredential
	}

	return cred, nil
}

// Save replaces the stored credential.
func (s *CredentialStore) Save(cred auth.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write credential: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	return nil
}

// Clear removes the stored credential. Clearing an empty store is not an error.
func (s *CredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credential: %w", err)
	}
	return nil
}
