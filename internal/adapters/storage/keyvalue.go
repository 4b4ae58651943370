package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fokusplaner/core/internal/ports"
)

// ErrKeyNotFound is returned by KeyValue.Get for missing keys
var ErrKeyNotFound = errors.New("key not found")

// DefaultKeyPrefix namespaces the collection keys
const DefaultKeyPrefix = "fokusplaner_"

// KeyValue is a string store in the manner of browser local storage
type KeyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// KVStorage stores each collection as a compact JSON string under a
// namespaced key
type KVStorage struct {
	kv       KeyValue
	prefix   string
	backend  string
	location string
}

// NewKVStorage wraps kv. backend and location only feed Info.
func NewKVStorage(kv KeyValue, prefix, backend, location string) *KVStorage {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &KVStorage{
		kv:       kv,
		prefix:   prefix,
		backend:  backend,
		location: location,
	}
}

// Key returns the key holding a collection
func (s *KVStorage) Key(c ports.Collection) string {
	return s.prefix + string(c)
}

func (s *KVStorage) Read(ctx context.Context, c ports.Collection, dst interface{}) error {
	if !c.IsValid() {
		return fmt.Errorf("unknown collection %q", c)
	}

	value, err := s.kv.Get(ctx, s.Key(c))
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return ports.ErrCollectionNotFound
		}
		return fmt.Errorf("failed to read %s: %w", c, err)
	}

	if err := json.Unmarshal([]byte(value), dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", c, err)
	}
	return nil
}

func (s *KVStorage) Write(ctx context.Context, c ports.Collection, v interface{}) error {
	if !c.IsValid() {
		return fmt.Errorf("unknown collection %q", c)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c, err)
	}

	if err := s.kv.Set(ctx, s.Key(c), string(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", c, err)
	}
	return nil
}

func (s *KVStorage) Info() ports.StorageInfo {
	return ports.StorageInfo{
		Backend:   s.backend,
		Location:  s.location,
		Available: true,
	}
}

// HealthCheck probes the backend when it supports it
func (s *KVStorage) HealthCheck(ctx context.Context) error {
	if hc, ok := s.kv.(ports.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (s *KVStorage) Close() error {
	return s.kv.Close()
}
