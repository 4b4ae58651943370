package ports

import (
	"context"
	"errors"
)

// ErrCollectionNotFound is returned by Storage.Read when nothing was written yet.
var ErrCollectionNotFound = errors.New("collection not found")

// Collection names one persisted JSON document
type Collection string

const (
	CollectionTasks    Collection = "tasks"
	CollectionNotes    Collection = "notes"
	CollectionGroups   Collection = "groups"
	CollectionSettings Collection = "settings"
	CollectionArchive  Collection = "archive"
	CollectionStats    Collection = "stats"
)

// Collections lists every persisted collection in load order.
var Collections = []Collection{
	CollectionTasks,
	CollectionNotes,
	CollectionGroups,
	CollectionSettings,
	CollectionArchive,
	CollectionStats,
}

// IsValid reports whether c is a known collection.
func (c Collection) IsValid() bool {
	for _, known := range Collections {
		if c == known {
			return true
		}
	}
	return false
}

// StorageInfo describes where data lives
type StorageInfo struct {
	Backend   string `json:"backend"`
	Location  string `json:"location"`
	Available bool   `json:"available"`
}

// HealthChecker is implemented by storages whose backend can be probed
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Storage defines the persistence port shared by all backends
type Storage interface {
	// Read decodes the collection into dst. It returns ErrCollectionNotFound
	// when the collection has never been written.
	Read(ctx context.Context, c Collection, dst interface{}) error
	// Write replaces the whole collection with v.
	Write(ctx context.Context, c Collection, v interface{}) error
	Info() StorageInfo
	Close() error
}
