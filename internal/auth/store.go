package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jumbler/jumbler/internal/shared"
)

// Store persists the refresh credential between runs.
//
// Absence is meaningful, not exceptional: it routes the [Authorizer] to the
// interactive flow. Write failures are surfaced as warnings by callers since
// the access token already in hand remains usable.
type Store interface {
	Exists() bool
	Read() (string, error)
	Write(token string) error
}

// RefreshStore keeps a single refresh-token string in a plain-text file.
type RefreshStore struct {
	path string
}

// NewRefreshStore creates a store at the given path, expanding a leading "~/".
func NewRefreshStore(path string) *RefreshStore {
	return &RefreshStore{path: shared.ExpandPath(path)}
}

// Path returns the resolved file path.
func (s *RefreshStore) Path() string {
	return s.path
}

// Exists reports whether a refresh credential has been persisted.
func (s *RefreshStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Read returns the persisted refresh token, or [shared.ErrNotFound] when
// the file is absent.
func (s *RefreshStore) Read() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", shared.ErrNotFound, s.path)
		}
		return "", fmt.Errorf("failed to read refresh token: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("%w: %s is empty", shared.ErrNotFound, s.path)
	}

	return token, nil
}

// Write persists the refresh token, creating parent directories as needed.
// The file is user-only: it is a long-lived credential.
func (s *RefreshStore) Write(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write refresh token: %w", err)
	}

	return nil
}
