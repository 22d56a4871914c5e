package localstore

import (
	"os"
	"path/filepath"

	"github.com/triplog/tracking-system/internal/core/ports"
)

// Store is a file-per-key persistent store under a base directory. It
// backs the device identity and the pending-submission queue, both of
// which must survive agent restarts.
type Store struct {
	dir string
}

// New creates the base directory when missing and returns the store.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ports.ErrKeyNotFound
		}
		return nil, err
	}
	return data, nil
}

// Set writes via a temp file and rename, so a crash mid-write never
// leaves a truncated value behind.
func (s *Store) Set(key string, value []byte) error {
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(key))
}

func (s *Store) Delete(key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
