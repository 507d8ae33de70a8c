package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"aquaflow-client/internal/domain"
)

type fileStore struct {
	path string

	mu    sync.Mutex
	state State
}

// NewFile opens a JSON-file-backed store at path, loading any existing state.
// A missing file is an empty state, a corrupt file is discarded.
func NewFile(path string) (Store, error) {
	s := &fileStore{path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First run.
	case err != nil:
		return nil, fmt.Errorf("read state file: %w", err)
	default:
		if err := json.Unmarshal(data, &s.state); err != nil {
			s.state = State{}
		}
	}
	return s, nil
}

// NewMemory returns a store without a backing file, for tests and ephemeral use.
func NewMemory() Store {
	return &fileStore{}
}

func (s *fileStore) Credentials() (string, *domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Token == "" || s.state.User == nil {
		return "", nil, false
	}
	u := *s.state.User
	return s.state.Token, &u, true
}

func (s *fileStore) SetCredentials(token string, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Token = token
	s.state.User = &user
	return s.flushLocked()
}

func (s *fileStore) EvictCredentials() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Token = ""
	s.state.User = nil
	return s.flushLocked()
}

func (s *fileStore) CartSnapshot() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CartLine, len(s.state.Cart))
	copy(out, s.state.Cart)
	return out
}

func (s *fileStore) SetCartSnapshot(lines []domain.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Cart = make([]domain.CartLine, len(lines))
	copy(s.state.Cart, lines)
	return s.flushLocked()
}

func (s *fileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
	return s.flushLocked()
}

// flushLocked writes the state via a temp file and rename so a crash mid-write
// never leaves a truncated state file. Caller holds s.mu.
func (s *fileStore) flushLocked() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
