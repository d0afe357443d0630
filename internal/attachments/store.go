// Package attachments keeps per-issue attachment files under a configurable
// root directory, one subdirectory per issue key.
package attachments

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type Store struct {
	root string
}

func NewStore(root string) *Store {
	if root == "" {
		root = "attachments"
	}
	return &Store{root: root}
}

// Save streams the upload into the issue's directory. The stored name gets a
// short random prefix so repeated uploads of the same filename do not clash.
func (s *Store) Save(issueKey, filename string, r io.Reader) (string, error) {
	dir := filepath.Join(s.root, issueKey)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("attachments: %w", err)
	}

	stored := uuid.NewString()[:8] + "_" + filepath.Base(filename)
	f, err := os.Create(filepath.Join(dir, stored))
	if err != nil {
		return "", fmt.Errorf("attachments: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("attachments: write %s: %w", stored, err)
	}
	return stored, nil
}

// List returns the stored names for an issue; a key with no directory simply
// has no attachments.
func (s *Store) List(issueKey string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, issueKey))
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("attachments: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Path returns the on-disk location of a stored attachment.
func (s *Store) Path(issueKey, stored string) string {
	return filepath.Join(s.root, issueKey, filepath.Base(stored))
}

// Open opens a stored attachment for reading.
func (s *Store) Open(issueKey, stored string) (*os.File, error) {
	f, err := os.Open(s.Path(issueKey, stored))
	if err != nil {
		return nil, fmt.Errorf("attachments: %w", err)
	}
	return f, nil
}
