package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fokusplaner/core/internal/adapters/storage"
	"github.com/fokusplaner/core/internal/infrastructure/logger"
	"github.com/fokusplaner/core/internal/ports"
)

var testStart = time.Date(2026, 10, 14, 9, 0, 0, 0, time.Local)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingNotifier keeps every notification
type recordingNotifier struct {
	mu   sync.Mutex
	list []ports.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n ports.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, n)
}

func (r *recordingNotifier) Kinds() []ports.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]ports.NotificationKind, 0, len(r.list))
	for _, n := range r.list {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

type testEnv struct {
	planner  *Planner
	kv       *storage.MemoryKV
	storage  ports.Storage
	clock    *fakeClock
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T, mutate ...func(*Options)) *testEnv {
	t.Helper()

	kv := storage.NewMemoryKV()
	return newTestEnvWith(t, storage.NewKVStorage(kv, "", "memory", "memory"), kv, mutate...)
}

func newTestEnvWith(t *testing.T, st ports.Storage, kv *storage.MemoryKV, mutate ...func(*Options)) *testEnv {
	t.Helper()

	clock := &fakeClock{now: testStart}
	notifier := &recordingNotifier{}
	opts := Options{
		RecentLimit:  5,
		BackupDir:    t.TempDir(),
		BackupWriter: storage.WriteJSONFile,
		TickInterval: time.Second,
		Notifier:     notifier,
		Clock:        clock.Now,
	}
	for _, fn := range mutate {
		fn(&opts)
	}

	p := NewPlanner(st, logger.NewNop(), opts)
	var (
		idMu sync.Mutex
		seq  int
	)
	p.Store.newID = func() string {
		idMu.Lock()
		defer idMu.Unlock()
		seq++
		return fmt.Sprintf("id-%03d", seq)
	}

	require.NoError(t, p.Load(context.Background()))
	t.Cleanup(func() { _ = p.Close() })

	return &testEnv{planner: p, kv: kv, storage: st, clock: clock, notifier: notifier}
}

func confirmed() context.Context {
	return ports.WithConfirmer(context.Background(), ports.StaticConfirmer(true))
}

func declined() context.Context {
	return ports.WithConfirmer(context.Background(), ports.StaticConfirmer(false))
}

// flakyStorage wraps a storage and fails writes while broken is set
type flakyStorage struct {
	ports.Storage
	mu     sync.Mutex
	broken bool
	writes int
}

var errDiskFull = errors.New("disk full")

func (f *flakyStorage) Write(ctx context.Context, c ports.Collection, v interface{}) error {
	f.mu.Lock()
	broken := f.broken
	f.writes++
	f.mu.Unlock()
	if broken {
		return errDiskFull
	}
	return f.Storage.Write(ctx, c, v)
}

func (f *flakyStorage) Break() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broken = true
}
