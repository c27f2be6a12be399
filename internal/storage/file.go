package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// File stores each slot as a single file under Dir. Writes go through a temp file
// and rename, so readers never observe a partially written value.
type File struct {
	dir      string
	maxBytes int
}

// NewFile creates the directory if needed and returns a file-backed store.
func NewFile(dir string, maxBytes int) (*File, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("storage: file directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create dir: %w", err)
	}
	return &File{dir: dir, maxBytes: maxBytes}, nil
}

// GetItem reads the file for key.
func (f *File) GetItem(_ context.Context, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	b, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: read %q: %w", key, err)
	}
	return string(b), true, nil
}

// SetItem atomically replaces the file for key.
func (f *File) SetItem(_ context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := checkQuota(f.maxBytes, value); err != nil {
		return err
	}
	if err := atomic.WriteFile(f.path(key), strings.NewReader(value)); err != nil {
		return fmt.Errorf("storage: write %q: %w", key, err)
	}
	return nil
}

// RemoveItem deletes the file for key.
func (f *File) RemoveItem(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: remove %q: %w", key, err)
	}
	return nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, base64.RawURLEncoding.EncodeToString([]byte(key))+".json")
}
