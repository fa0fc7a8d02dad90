// Package session persists the current user name between runs.
//
// This is deliberately thin: the sync layer treats the owner as an
// opaque string that partitions every store call, so all this package
// does is keep one trimmed name in a TOML file under the app data dir.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const fileName = "session.toml"

type sessionFile struct {
	Owner string `toml:"owner"`
}

// Store reads and writes the session file in dir.
type Store struct {
	dir string
}

// New returns a Store rooted at dir. The directory is created lazily
// on the first Set.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Current returns the persisted owner name. ok is false when no one
// has logged in yet; that is a normal state, not an error.
func (s *Store) Current() (owner string, ok bool, err error) {
	var f sessionFile
	if _, err := toml.DecodeFile(s.path(), &f); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read session file: %w", err)
	}
	if f.Owner == "" {
		return "", false, nil
	}
	return f.Owner, true, nil
}

// Set persists the owner name, trimmed. An empty name after trimming
// is rejected.
func (s *Store) Set(owner string) error {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return fmt.Errorf("owner name is empty")
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	f, err := os.Create(s.path())
	if err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(sessionFile{Owner: owner}); err != nil {
		return fmt.Errorf("failed to encode session file: %w", err)
	}
	return nil
}

// Clear removes the session file. No-op if it does not exist.
func (s *Store) Clear() error {
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, fileName)
}
