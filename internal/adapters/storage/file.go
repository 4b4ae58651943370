package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fokusplaner/core/internal/ports"
)

const fileExt = ".json"

// FileStorage keeps one indented JSON document per collection in a directory
type FileStorage struct {
	dir string

	mu          sync.Mutex
	lastWritten map[ports.Collection][]byte
}

// NewFileStorage creates the data directory if needed
func NewFileStorage(dir string) (*FileStorage, error) {
	if dir == "" {
		return nil, errors.New("data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStorage{
		dir:         dir,
		lastWritten: make(map[ports.Collection][]byte),
	}, nil
}

// Dir returns the data directory
func (s *FileStorage) Dir() string {
	return s.dir
}

// Path returns the file backing a collection
func (s *FileStorage) Path(c ports.Collection) string {
	return filepath.Join(s.dir, string(c)+fileExt)
}

func (s *FileStorage) Read(ctx context.Context, c ports.Collection, dst interface{}) error {
	if !c.IsValid() {
		return fmt.Errorf("unknown collection %q", c)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := os.ReadFile(s.Path(c))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ports.ErrCollectionNotFound
		}
		return fmt.Errorf("failed to read %s: %w", c, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", c, err)
	}
	return nil
}

func (s *FileStorage) Write(ctx context.Context, c ports.Collection, v interface{}) error {
	if !c.IsValid() {
		return fmt.Errorf("unknown collection %q", c)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFileAtomic(s.dir, s.Path(c), data); err != nil {
		return fmt.Errorf("failed to write %s: %w", c, err)
	}
	s.lastWritten[c] = data
	return nil
}

// IsOwnWrite reports whether data equals the last document this storage
// wrote for c.
func (s *FileStorage) IsOwnWrite(c ports.Collection, data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastWritten[c]
	return ok && bytes.Equal(last, data)
}

func (s *FileStorage) Info() ports.StorageInfo {
	return ports.StorageInfo{
		Backend:   "file",
		Location:  s.dir,
		Available: true,
	}
}

func (s *FileStorage) Close() error {
	return nil
}

// writeFileAtomic replaces path through a temporary file in dir
func writeFileAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// WriteJSONFile writes v as indented JSON to path, creating parent directories
func WriteJSONFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return writeFileAtomic(dir, path, data)
}
