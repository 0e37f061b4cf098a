package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"svw.info/alchemy/internal/domain"
)

// Progress keeps one JSON file per user under dir.
type Progress struct{ dir string }

func NewProgress(dir string) *Progress { return &Progress{dir: dir} }

func validUser(user string) bool {
	if user == "" || len(user) > 64 {
		return false
	}
	for _, r := range user {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-') {
			return false
		}
	}
	return true
}

func (s *Progress) pathFor(user string) string {
	return filepath.Join(s.dir, strings.ToLower(user)+".json")
}

// Load returns the stored record. An unknown user yields an error wrapping
// fs.ErrNotExist.
func (s *Progress) Load(ctx context.Context, user string) (*domain.Progress, error) {
	if !validUser(user) {
		return nil, fmt.Errorf("invalid user name %q", user)
	}
	data, err := os.ReadFile(s.pathFor(user))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("progress for %s: %w", user, fs.ErrNotExist)
		}
		return nil, err
	}
	var out domain.Progress
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("progress for %s: %w", user, err)
	}
	if out.User == "" {
		out.User = user
	}
	if out.Locked == nil {
		out.Locked = []string{}
	}
	return &out, nil
}

// Save writes the record through a temp file so a crash never leaves a
// truncated file behind.
func (s *Progress) Save(ctx context.Context, p *domain.Progress) error {
	if p == nil || !validUser(p.User) {
		return errors.New("invalid progress: missing or bad user")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	target := s.pathFor(p.User)
	tmp, err := os.CreateTemp(s.dir, ".progress-*")
	if err != nil {
		return err
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), target)
}
