package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fokusplaner/core/internal/domain/entities"
	"github.com/fokusplaner/core/internal/infrastructure/config"
	"github.com/fokusplaner/core/internal/infrastructure/database"
	"github.com/fokusplaner/core/internal/infrastructure/logger"
	"github.com/fokusplaner/core/internal/ports"
)

func backends(t *testing.T) map[string]ports.Storage {
	t.Helper()

	file, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	db, err := database.New(config.SQLConfig{Driver: "sqlite3", DSN: ":memory:"}, "")
	require.NoError(t, err)
	sqlKV, err := NewSQLKV(context.Background(), db)
	require.NoError(t, err)

	all := map[string]ports.Storage{
		"file":   file,
		"memory": NewKVStorage(NewMemoryKV(), "", "memory", "memory"),
		"redis":  NewKVStorage(NewRedisKV(client), "", "redis", mr.Addr()),
		"sql":    NewKVStorage(sqlKV, "", "sql", "sqlite3"),
	}
	t.Cleanup(func() {
		for _, s := range all {
			_ = s.Close()
		}
	})
	return all
}

func TestStorageContract(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var missing []entities.Task
			err := s.Read(ctx, ports.CollectionTasks, &missing)
			assert.ErrorIs(t, err, ports.ErrCollectionNotFound)

			tasks := []entities.Task{{ID: "t1", Title: "Write report", GroupID: entities.DefaultGroupID, Priority: entities.PriorityHigh, Tags: []string{"work"}, CreatedAt: now, UpdatedAt: now}}
			require.NoError(t, s.Write(ctx, ports.CollectionTasks, tasks))

			var got []entities.Task
			require.NoError(t, s.Read(ctx, ports.CollectionTasks, &got))
			require.Len(t, got, 1)
			assert.Equal(t, "Write report", got[0].Title)
			assert.True(t, now.Equal(got[0].CreatedAt))

			require.NoError(t, s.Write(ctx, ports.CollectionTasks, []entities.Task{}))
			require.NoError(t, s.Read(ctx, ports.CollectionTasks, &got))
			assert.Empty(t, got)

			settings := entities.DefaultSettings()
			require.NoError(t, s.Write(ctx, ports.CollectionSettings, settings))
			var readSettings entities.Settings
			require.NoError(t, s.Read(ctx, ports.CollectionSettings, &readSettings))
			assert.Equal(t, settings, readSettings)

			assert.Error(t, s.Write(ctx, ports.Collection("users"), tasks))
			assert.Equal(t, name, s.Info().Backend)
		})
	}
}

func TestFileStorage_Layout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := NewFileStorage(dir)
	require.NoError(t, err)

	require.NoError(t, s.Write(context.Background(), ports.CollectionGroups, []entities.Group{{ID: "default", Name: "General", Color: "#4a9eff"}}))

	data, err := os.ReadFile(filepath.Join(dir, "groups.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[\n  {\n    \"id\": \"default\"")
	assert.True(t, s.IsOwnWrite(ports.CollectionGroups, data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileStorage_CorruptDocument(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{not json"), 0o644))

	var notes []entities.Note
	err = s.Read(context.Background(), ports.CollectionNotes, &notes)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrCollectionNotFound)
}

func TestKVStorage_Keys(t *testing.T) {
	kv := NewMemoryKV()
	s := NewKVStorage(kv, "", "memory", "memory")

	require.NoError(t, s.Write(context.Background(), ports.CollectionStats, entities.NewStats()))

	assert.Equal(t, []string{"fokusplaner_stats"}, kv.Keys())
	value, err := kv.Get(context.Background(), "fokusplaner_stats")
	require.NoError(t, err)
	assert.NotContains(t, value, "\n", "key/value documents are compact")
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.StorageConfig{Backend: config.BackendMemory, KeyPrefix: "x_"})
	require.NoError(t, err)
	assert.Equal(t, "memory", s.Info().Backend)

	dir := t.TempDir()
	s, err = Open(ctx, config.StorageConfig{Backend: config.BackendSQL, DataDir: dir, SQL: config.SQLConfig{Driver: "sqlite3", Name: "planner"}})
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", s.Info().Location)
	require.NoError(t, s.Write(ctx, ports.CollectionNotes, []entities.Note{}))
	require.NoError(t, s.Close())
	assert.FileExists(t, filepath.Join(dir, "planner.db"))

	_, err = Open(ctx, config.StorageConfig{Backend: "floppy"})
	assert.Error(t, err)
}

func TestKVStorage_HealthCheck(t *testing.T) {
	ctx := context.Background()

	memory := NewKVStorage(NewMemoryKV(), "", "memory", "memory")
	assert.NoError(t, memory.HealthCheck(ctx))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	redisStorage := NewKVStorage(NewRedisKV(client), "", "redis", mr.Addr())
	t.Cleanup(func() { _ = redisStorage.Close() })
	require.NoError(t, redisStorage.HealthCheck(ctx))
	mr.Close()
	assert.Error(t, redisStorage.HealthCheck(ctx))

	db, err := database.New(config.SQLConfig{Driver: "sqlite3", DSN: ":memory:"}, "")
	require.NoError(t, err)
	sqlKV, err := NewSQLKV(ctx, db)
	require.NoError(t, err)
	sqlStorage := NewKVStorage(sqlKV, "", "sql", db.Driver())
	require.NoError(t, sqlStorage.HealthCheck(ctx))
	require.NoError(t, sqlStorage.Close())
	assert.Error(t, sqlStorage.HealthCheck(ctx))
}

func TestWatcher_ReloadsExternalEdits(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage(dir)
	require.NoError(t, err)

	var (
		mu       sync.Mutex
		reloaded []ports.Collection
	)
	w := NewWatcher(s, func(_ context.Context, c ports.Collection) error {
		mu.Lock()
		defer mu.Unlock()
		reloaded = append(reloaded, c)
		return nil
	}, logger.NewNop())
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// give the watcher time to register the directory
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, s.Write(ctx, ports.CollectionTasks, []entities.Task{}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte("[]"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reloaded) == 1 && reloaded[0] == ports.CollectionNotes
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCollectionFromPath(t *testing.T) {
	c, ok := collectionFromPath("/data/tasks.json")
	assert.True(t, ok)
	assert.Equal(t, ports.CollectionTasks, c)

	_, ok = collectionFromPath("/data/.tasks.json-123.tmp")
	assert.False(t, ok)
	_, ok = collectionFromPath("/data/users.json")
	assert.False(t, ok)
}
