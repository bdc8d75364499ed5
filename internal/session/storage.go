// Package session owns authentication state: the bearer token, its
// persisted copy, and the identity decoded from it. Earlier clients kept
// this in a cookie or in local storage depending on the page; here there is
// exactly one storage abstraction and every caller goes through it.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TokenStorage persists the bearer token between runs.
type TokenStorage interface {
	// Get returns the stored token, or "" when none is stored.
	Get() (string, error)

	// Set stores the token, replacing any previous one.
	Set(token string) error

	// Clear removes the stored token. Clearing an empty storage is a no-op.
	Clear() error
}

// FileTokenStorage keeps the token in a single file with owner-only
// permissions.
type FileTokenStorage struct {
	path string
}

func NewFileTokenStorage(path string) (*FileTokenStorage, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("token storage path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create token directory: %w", err)
	}
	return &FileTokenStorage{path: path}, nil
}

func (s *FileTokenStorage) Get() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileTokenStorage) Set(token string) error {
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func (s *FileTokenStorage) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}
