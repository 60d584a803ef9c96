package notify

import (
	"sync"
	"time"

	"example.com/mystic-prints/app/internal/domain/notice"
)

// Hub keeps a bounded feed of notices per cart session until the client
// drains it.
type Hub struct {
	mu    sync.Mutex
	feeds map[string][]notice.Notice
	limit int
}

func NewHub(limit int) *Hub {
	if limit <= 0 {
		limit = 20
	}
	return &Hub{feeds: make(map[string][]notice.Notice), limit: limit}
}

// Notify appends n to the session feed, dropping the oldest notice when full.
func (h *Hub) Notify(sessionKey string, n notice.Notice) {
	if sessionKey == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	feed := append(h.feeds[sessionKey], n)
	if len(feed) > h.limit {
		feed = feed[len(feed)-h.limit:]
	}
	h.feeds[sessionKey] = feed
}

// Drain returns the pending notices of a session, oldest first, and clears them.
func (h *Hub) Drain(sessionKey string) []notice.Notice {
	h.mu.Lock()
	defer h.mu.Unlock()

	feed := h.feeds[sessionKey]
	delete(h.feeds, sessionKey)
	if feed == nil {
		return []notice.Notice{}
	}
	return feed
}

// Sweep drops feeds whose newest notice is older than ttl.
func (h *Hub) Sweep(now time.Time, ttl time.Duration) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	removed := 0
	for key, feed := range h.feeds {
		if len(feed) == 0 || now.Sub(feed[len(feed)-1].At) > ttl {
			delete(h.feeds, key)
			removed++
		}
	}
	return removed
}
