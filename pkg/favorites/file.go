package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStorage keeps the favorites as a JSON array in {dir}/{key}.json.
type FileStorage struct {
	path string
}

// NewFileStorage creates a file storage. An empty key uses DefaultKey.
func NewFileStorage(dir, key string) *FileStorage {
	if key == "" {
		key = DefaultKey
	}
	return &FileStorage{path: filepath.Join(dir, key+".json")}
}

// Path returns the file the favorites are stored in.
func (f *FileStorage) Path() string {
	return f.path
}

// Load reads the stored ids. A missing file is an empty set.
func (f *FileStorage) Load(_ context.Context) ([]int, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []int{}, nil
		}
		return nil, fmt.Errorf("reading favorites file: %w", err)
	}

	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decoding favorites file %s: %w", f.path, err)
	}
	return ids, nil
}

// Save writes the ids atomically via a temp file and rename.
func (f *FileStorage) Save(_ context.Context, ids []int) error {
	if ids == nil {
		ids = []int{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encoding favorites: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating favorites directory: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing favorites file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing favorites file: %w", err)
	}
	return nil
}
