package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	domcart "example.com/mystic-prints/app/internal/domain/cart"
	domuser "example.com/mystic-prints/app/internal/domain/user"
)

type sessionEntry struct {
	store    *Store
	lastSeen time.Time
}

// Sessions keeps one Store per session key, created on first use.
type Sessions struct {
	deps    StoreDeps
	idleTTL time.Duration
	now     func() time.Time
	logger  *zap.Logger

	mu      sync.Mutex
	entries map[string]*sessionEntry
	group   singleflight.Group
}

func NewSessions(deps StoreDeps, idleTTL time.Duration) *Sessions {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sessions{
		deps:    deps,
		idleTTL: idleTTL,
		now:     time.Now,
		logger:  logger,
		entries: make(map[string]*sessionEntry),
	}
}

// Open returns the session's store, initialized for owner. A store opened
// earlier by a different owner is re-initialized.
func (m *Sessions) Open(ctx context.Context, key string, owner *domuser.Identity) (*Store, error) {
	if key == "" {
		return nil, domcart.ErrMissingSession
	}

	if store := m.lookup(key); store != nil {
		store.Bind(ctx, owner)
		return store, nil
	}

	v, err, _ := m.group.Do(key, func() (any, error) {
		if store := m.lookup(key); store != nil {
			return store, nil
		}
		store := NewStore(key, m.deps)
		store.Init(ctx, owner)

		m.mu.Lock()
		m.entries[key] = &sessionEntry{store: store, lastSeen: m.now()}
		m.mu.Unlock()
		return store, nil
	})
	if err != nil {
		return nil, err
	}

	store := v.(*Store)
	// callers sharing the flight may carry another owner
	store.Bind(ctx, owner)
	return store, nil
}

func (m *Sessions) lookup(key string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil
	}
	e.lastSeen = m.now()
	return e.store
}

func (m *Sessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Sweep closes stores idle for longer than the idle TTL and returns how many
// were closed. Their carts stay in the local slot and the remote mirror.
func (m *Sessions) Sweep(now time.Time) int {
	if m.idleTTL <= 0 {
		return 0
	}

	var idle []*Store
	m.mu.Lock()
	for key, e := range m.entries {
		if now.Sub(e.lastSeen) > m.idleTTL {
			idle = append(idle, e.store)
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()

	for _, store := range idle {
		store.Close()
	}
	if len(idle) > 0 {
		m.logger.Debug("closed idle cart sessions", zap.Int("count", len(idle)))
	}
	return len(idle)
}

// Run sweeps idle sessions every interval until ctx is done.
func (m *Sessions) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Sweep(now)
		}
	}
}

func (m *Sessions) Close() {
	m.mu.Lock()
	stores := make([]*Store, 0, len(m.entries))
	for _, e := range m.entries {
		stores = append(stores, e.store)
	}
	m.entries = make(map[string]*sessionEntry)
	m.mu.Unlock()

	for _, store := range stores {
		store.Close()
	}
}
