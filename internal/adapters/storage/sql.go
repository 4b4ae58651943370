package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fokusplaner/core/internal/infrastructure/database"
)

const (
	createCollectionsTable = `CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`
	createCollectionsIndex = `CREATE INDEX IF NOT EXISTS idx_collections_updated ON collections(updated_at)`
	selectCollection       = `SELECT data FROM collections WHERE name = ?`
	upsertCollection       = `INSERT INTO collections (name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`
)

// SQLKV keeps keys in a single table of a sqlite or postgres database
type SQLKV struct {
	db *database.DB
}

// NewSQLKV creates the collections table if it does not exist
func NewSQLKV(ctx context.Context, db *database.DB) (*SQLKV, error) {
	err := db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range []string{createCollectionsTable, createCollectionsIndex} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to prepare collections table: %w", err)
	}
	return &SQLKV{db: db}, nil
}

func (s *SQLKV) Get(ctx context.Context, key string) (string, error) {
	var data string
	err := s.db.DB.GetContext(ctx, &data, s.db.DB.Rebind(selectCollection), key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return data, nil
}

func (s *SQLKV) Set(ctx context.Context, key, value string) error {
	_, err := s.db.DB.ExecContext(ctx, s.db.DB.Rebind(upsertCollection), key, value, time.Now().UTC())
	return err
}

func (s *SQLKV) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

func (s *SQLKV) Close() error {
	return s.db.Close()
}
