package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fokusplaner/core/internal/ports"
)

const defaultFeedSize = 50

// NotificationFeed keeps the latest notifications for clients that poll
// GET /notifications. It forwards every notification to next.
type NotificationFeed struct {
	mu    sync.Mutex
	items []FeedItem
	size  int
	seq   int64
	next  ports.Notifier
}

// FeedItem is a notification with its feed position
type FeedItem struct {
	Seq int64 `json:"seq"`
	ports.Notification
}

// NewNotificationFeed keeps at most size notifications. next may be nil.
func NewNotificationFeed(size int, next ports.Notifier) *NotificationFeed {
	if size <= 0 {
		size = defaultFeedSize
	}
	return &NotificationFeed{size: size, next: next}
}

// Notify implements ports.Notifier
func (f *NotificationFeed) Notify(ctx context.Context, n ports.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	f.mu.Lock()
	f.seq++
	f.items = append(f.items, FeedItem{Seq: f.seq, Notification: n})
	if len(f.items) > f.size {
		f.items = append([]FeedItem(nil), f.items[len(f.items)-f.size:]...)
	}
	f.mu.Unlock()

	if f.next != nil {
		f.next.Notify(ctx, n)
	}
}

// Since returns the kept notifications newer than seq, oldest first
func (f *NotificationFeed) Since(seq int64) []FeedItem {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]FeedItem, 0, len(f.items))
	for _, item := range f.items {
		if item.Seq > seq {
			out = append(out, item)
		}
	}
	return out
}

// List handles GET /notifications?since=<seq>
func (f *NotificationFeed) List(c echo.Context) error {
	since, err := queryInt(c, "since", 0)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, f.Since(int64(since)))
}
