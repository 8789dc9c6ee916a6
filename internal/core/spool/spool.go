// Package spool holds uploaded payloads on local disk for the duration of a
// pipeline run. Entries are transient: written at submission, removed once
// the owning job reaches a terminal state.
package spool

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Spool struct {
	dir string
}

func New(dir string) (*Spool, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "contract-processor")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}
	return &Spool{dir: dir}, nil
}

// Store writes data to a uniquely-named file and returns its path. hint is
// a display name; only its base name and extension survive sanitization.
func (s *Spool) Store(data []byte, hint string) (string, error) {
	name := uuid.NewString() + "-" + sanitize(hint)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write spool file: %w", err)
	}
	return path, nil
}

// Release removes a stored artifact. Releasing a path twice returns an error
// from the second call; callers release exactly once.
func (s *Spool) Release(path string) error {
	return os.Remove(path)
}

func sanitize(hint string) string {
	base := filepath.Base(hint)
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		base = "upload"
	}
	return base
}
