package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fokusplaner/core/internal/infrastructure/logger"
	"github.com/fokusplaner/core/internal/ports"
)

// ReloadFunc is called when a collection file changed outside the process
type ReloadFunc func(ctx context.Context, c ports.Collection) error

// Watcher reloads collections edited on disk by other programs
type Watcher struct {
	storage  *FileStorage
	reload   ReloadFunc
	logger   *logger.Logger
	debounce time.Duration
}

func NewWatcher(storage *FileStorage, reload ReloadFunc, log *logger.Logger) *Watcher {
	return &Watcher{
		storage:  storage,
		reload:   reload,
		logger:   log.WithComponent("watcher"),
		debounce: 200 * time.Millisecond,
	}
}

// Run watches the data directory until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.storage.Dir()); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.storage.Dir(), err)
	}
	w.logger.Infow("Watching data directory", "dir", w.storage.Dir())

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	pending := make(map[ports.Collection]time.Time)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if c, ok := collectionFromPath(event.Name); ok {
				pending[c] = time.Now()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("Watcher error", "error", err)

		case now := <-ticker.C:
			for c, at := range pending {
				if now.Sub(at) < w.debounce {
					continue
				}
				delete(pending, c)
				w.flush(ctx, c)
			}
		}
	}
}

func (w *Watcher) flush(ctx context.Context, c ports.Collection) {
	data, err := os.ReadFile(w.storage.Path(c))
	if err != nil {
		w.logger.Warnw("Failed to read changed collection", "collection", c, "error", err)
		return
	}
	if w.storage.IsOwnWrite(c, data) {
		return
	}
	if err := w.reload(ctx, c); err != nil {
		w.logger.Errorw("Failed to reload collection", "collection", c, "error", err)
		return
	}
	w.logger.Infow("Collection reloaded after external change", "collection", c)
}

func collectionFromPath(path string) (ports.Collection, bool) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, fileExt) || strings.HasPrefix(base, ".") {
		return "", false
	}
	c := ports.Collection(strings.TrimSuffix(base, fileExt))
	return c, c.IsValid()
}
