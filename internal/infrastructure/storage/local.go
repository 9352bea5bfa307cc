// Package storage holds the content backends of the file registry.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

// LocalMode is reported by LocalStore.Mode.
const LocalMode = "local"

var errBadName = errors.New("storage: invalid object name")

// LocalStore keeps content as files in one directory.
type LocalStore struct {
	dir string
}

var _ ports.ContentStorage = (*LocalStore)(nil)

// NewLocal creates dir if needed and returns a store rooted at it.
func NewLocal(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Mode() string { return LocalMode }

func (s *LocalStore) Write(_ context.Context, name, _ string, data []byte) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	tmp := path + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (s *LocalStore) Read(_ context.Context, name string) ([]byte, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ports.ErrContentMissing
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

func (s *LocalStore) Delete(_ context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ports.ErrContentMissing
	}
	return err
}

func (s *LocalStore) Locate(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *LocalStore) Ping(context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

func (s *LocalStore) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", errBadName
	}
	return filepath.Join(s.dir, name), nil
}
