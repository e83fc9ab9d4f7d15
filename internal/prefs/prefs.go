// Package prefs persists the single piece of local state that survives a
// restart: whether the help dialog has already been shown once.
package prefs

import (
	"os"
	"path/filepath"
)

const helpFlagFile = "help-shown"

// Store reads and writes the one-shot flag under a directory.
type Store struct {
	dir string
}

// Open places the store under the user config dir when dir is empty.
func Open(dir string) (*Store, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "history-canopy")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// HelpShown reports whether the help dialog was dismissed before.
func (s *Store) HelpShown() bool {
	_, err := os.Stat(filepath.Join(s.dir, helpFlagFile))
	return err == nil
}

// MarkHelpShown records the dismissal. Writing is idempotent.
func (s *Store) MarkHelpShown() error {
	return os.WriteFile(filepath.Join(s.dir, helpFlagFile), []byte("1"), 0o644)
}
