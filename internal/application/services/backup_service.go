package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fokusplaner/core/internal/infrastructure/logger"
	"github.com/fokusplaner/core/internal/ports"
)

// ErrBackupDisabled is returned when no backup directory is configured
var ErrBackupDisabled = errors.New("backups are not configured")

// WriteFileFunc stores v as a JSON document at path
type WriteFileFunc func(path string, v interface{}) error

// BackupService snapshots and exports all collections
type BackupService struct {
	store     *Store
	logger    *logger.Logger
	dir       string
	writeFile WriteFileFunc
}

// NewBackupService creates a new backup service writing into dir
func NewBackupService(store *Store, logger *logger.Logger, dir string, writeFile WriteFileFunc) *BackupService {
	return &BackupService{
		store:     store,
		logger:    logger.WithComponent("backup"),
		dir:       dir,
		writeFile: writeFile,
	}
}

var _ ports.BackupService = (*BackupService)(nil)

// Snapshot returns a deep copy of all collections
func (s *BackupService) Snapshot(ctx context.Context) (*ports.Snapshot, error) {
	snap := s.store.Snapshot()
	return &snap, nil
}

// CreateBackup writes a snapshot to backup-<timestamp>.json and returns its path
func (s *BackupService) CreateBackup(ctx context.Context) (string, error) {
	if s.dir == "" || s.writeFile == nil {
		return "", ErrBackupDisabled
	}

	snap := s.store.Snapshot()
	path := filepath.Join(s.dir, BackupFileName("backup", s.store.Now()))
	if err := s.writeFile(path, snap); err != nil {
		s.logger.Errorw("Failed to create backup", "path", path, "error", err)
		return "", fmt.Errorf("failed to create backup: %w", err)
	}

	s.logger.Infow("Backup created", "path", path)
	return path, nil
}

// Export streams a snapshot in the given format
func (s *BackupService) Export(ctx context.Context, w io.Writer, format ports.BackupFormat) error {
	snap := s.store.Snapshot()

	switch format {
	case ports.BackupJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case ports.BackupYAML:
		// go through JSON so YAML keys match the persisted field names
		raw, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}
		var doc interface{}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(jsonNumbers(doc)); err != nil {
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported backup format %q", format)
	}
}

// jsonNumbers turns json.Number values into ints or floats for YAML
func jsonNumbers(v interface{}) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		for k, val := range x {
			x[k] = jsonNumbers(val)
		}
		return x
	case []interface{}:
		for i, val := range x {
			x[i] = jsonNumbers(val)
		}
		return x
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	default:
		return v
	}
}

// BackupFileName builds "<prefix>-<ISO timestamp>.json" with ':' and '.'
// replaced by '-'
func BackupFileName(prefix string, now time.Time) string {
	stamp := now.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return prefix + "-" + stamp + ".json"
}
