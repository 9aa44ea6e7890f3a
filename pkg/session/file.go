package session

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

// FileStorage persists session values as a flat TOML document.
// Every write replaces the file through a rename, so readers never observe
// a partially written document.
type FileStorage struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

var _ Storage = (*FileStorage)(nil)

// OpenFile loads the document at path. A missing file is an empty session.
func OpenFile(path string) (*FileStorage, error) {
	fs := &FileStorage{path: path, values: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fs, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if err := toml.Unmarshal(data, &fs.values); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	return fs, nil
}

// Path returns the file backing this storage.
func (f *FileStorage) Path() string {
	return f.path
}

func (f *FileStorage) Load(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *FileStorage) Save(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := maps.Clone(f.values)
	next[key] = value
	if err := f.write(next); err != nil {
		return err
	}
	f.values = next
	return nil
}

func (f *FileStorage) Delete(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := maps.Clone(f.values)
	for _, k := range keys {
		delete(next, k)
	}
	if len(next) == len(f.values) {
		return nil
	}
	if err := f.write(next); err != nil {
		return err
	}
	f.values = next
	return nil
}

func (f *FileStorage) write(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	data, err := toml.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*.toml")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck // no-op once renamed

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("chmod session file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("sync session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
