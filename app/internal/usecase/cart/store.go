package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	domcart "example.com/mystic-prints/app/internal/domain/cart"
	"example.com/mystic-prints/app/internal/domain/notice"
	domuser "example.com/mystic-prints/app/internal/domain/user"
)

const defaultSyncTimeout = 10 * time.Second

type Notifier interface {
	Notify(sessionKey string, n notice.Notice)
}

type StoreDeps struct {
	Local       domcart.LocalStore
	Remote      domcart.RemoteMirror
	Notifier    Notifier
	Diagnostics *Diagnostics
	Logger      *zap.Logger
	SyncTimeout time.Duration
}

// replication is one full replace of a user's remote cart. A newer
// replication for the same user supersedes a queued one; the superseded
// handles resolve with the newer outcome.
type replication struct {
	op      string
	userID  int64
	lines   domcart.Snapshot
	waiters []*Sync
}

// Store holds the cart of one shopping session. The in-memory lines and the
// local slot are authoritative; the remote mirror is replicated in the
// background, in mutation order, by a single worker goroutine. Mutations
// never wait on the remote mirror.
type Store struct {
	key         string
	local       domcart.LocalStore
	remote      domcart.RemoteMirror
	notifier    Notifier
	diag        *Diagnostics
	logger      *zap.Logger
	syncTimeout time.Duration

	mu     sync.Mutex
	owner  *domuser.Identity
	lines  domcart.Snapshot
	last   *Sync
	closed bool
	queue  []*replication

	wake chan struct{}
	done chan struct{}
}

func NewStore(sessionKey string, deps StoreDeps) *Store {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := deps.SyncTimeout
	if timeout <= 0 {
		timeout = defaultSyncTimeout
	}
	s := &Store{
		key:         sessionKey,
		local:       deps.Local,
		remote:      deps.Remote,
		notifier:    deps.Notifier,
		diag:        deps.Diagnostics,
		logger:      logger.With(zap.String("session", sessionKey)),
		syncTimeout: timeout,
		last:        resolved(nil),
		wake:        make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
	go s.replicate()
	return s
}

func (s *Store) SessionKey() string {
	return s.key
}

func (s *Store) Owner() *domuser.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneIdentity(s.owner)
}

func (s *Store) Lines() domcart.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.Clone()
}

// Init loads the session cart. With an owner the remote cart wins when it has
// lines; otherwise the local slot is used, and a non-empty local cart seeds
// the remote mirror. Without an owner the remote mirror is not read.
func (s *Store) Init(ctx context.Context, owner *domuser.Identity) *Sync {
	// replications queued for a previous owner land before reading back
	_ = s.Flush(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initLocked(ctx, owner)
}

// Bind re-runs Init when owner differs from the current owner.
func (s *Store) Bind(ctx context.Context, owner *domuser.Identity) *Sync {
	s.mu.Lock()
	if domuser.SameUser(s.owner, owner) {
		last := s.last
		s.mu.Unlock()
		return last
	}
	s.mu.Unlock()

	_ = s.Flush(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if domuser.SameUser(s.owner, owner) {
		return s.last
	}
	return s.initLocked(ctx, owner)
}

func (s *Store) initLocked(ctx context.Context, owner *domuser.Identity) *Sync {
	if s.closed {
		return resolved(domcart.ErrStoreClosed)
	}
	s.owner = cloneIdentity(owner)

	if s.owner == nil || s.remote == nil {
		s.lines = s.loadLocalLocked(ctx)
		return resolved(nil)
	}

	remote, err := s.remote.LoadCart(ctx, s.owner.UserID)
	if err != nil {
		s.reportLocked(OpRemoteLoad, err)
		s.lines = s.loadLocalLocked(ctx)
		return resolved(nil)
	}
	if len(remote) > 0 {
		s.lines = remote.Clone()
		s.saveLocalLocked(ctx)
		return resolved(nil)
	}

	s.lines = s.loadLocalLocked(ctx)
	if len(s.lines) > 0 {
		return s.enqueueLocked(OpRemoteSave, s.lines.Clone())
	}
	return resolved(nil)
}

// AddLine merges line into the cart. A line with the same key gets its
// quantity increased; any other line is appended.
func (s *Store) AddLine(ctx context.Context, line domcart.Line) *Sync {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return resolved(domcart.ErrStoreClosed)
	}
	if line.ProductID <= 0 || line.Quantity < 1 {
		return resolved(domcart.ErrInvalidLine)
	}

	merged := false
	for i := range s.lines {
		if s.lines[i].Key() == line.Key() {
			s.lines[i].Quantity += line.Quantity
			merged = true
			break
		}
	}
	if !merged {
		s.lines = append(s.lines, line)
	}

	s.notify(notice.Info("Added to cart", fmt.Sprintf("%s has been added to your cart.", line.Title)))
	return s.persistLocked(ctx)
}

// RemoveLine drops every line of the product, whatever its type or size.
func (s *Store) RemoveLine(ctx context.Context, productID int64) *Sync {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return resolved(domcart.ErrStoreClosed)
	}

	kept := s.lines[:0:0]
	for _, l := range s.lines {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	s.lines = kept
	return s.persistLocked(ctx)
}

// SetQuantity replaces the quantity of the first line of the product.
// A quantity below one removes that line.
func (s *Store) SetQuantity(ctx context.Context, productID int64, quantity int64) *Sync {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return resolved(domcart.ErrStoreClosed)
	}

	for i := range s.lines {
		if s.lines[i].ProductID != productID {
			continue
		}
		if quantity < 1 {
			s.lines = append(s.lines[:i:i], s.lines[i+1:]...)
		} else {
			s.lines[i].Quantity = quantity
		}
		break
	}
	return s.persistLocked(ctx)
}

// Clear empties the cart and deletes both mirrors.
func (s *Store) Clear(ctx context.Context) *Sync {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return resolved(domcart.ErrStoreClosed)
	}
	s.lines = nil
	return s.persistLocked(ctx)
}

// Save writes the current state to the local slot and queues a remote
// replication when the session has an owner.
func (s *Store) Save(ctx context.Context) *Sync {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return resolved(domcart.ErrStoreClosed)
	}
	return s.persistLocked(ctx)
}

// Flush waits for every replication queued so far.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()
	return last.Wait(ctx)
}

// Close stops the replication worker after the queued replications ran.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	s.signal()
	s.mu.Unlock()
	<-s.done
}

func (s *Store) persistLocked(ctx context.Context) *Sync {
	if len(s.lines) > 0 {
		s.saveLocalLocked(ctx)
		if s.owner != nil && s.remote != nil {
			return s.enqueueLocked(OpRemoteSave, s.lines.Clone())
		}
		return resolved(nil)
	}

	if err := s.local.Delete(ctx, s.key); err != nil {
		s.reportLocked(OpLocalDelete, err)
	}
	if s.owner != nil && s.remote != nil {
		return s.enqueueLocked(OpRemoteDelete, nil)
	}
	return resolved(nil)
}

// enqueueLocked queues a replication without blocking. A queued replication
// for the same user that has not started yet is replaced by the new one.
func (s *Store) enqueueLocked(op string, lines domcart.Snapshot) *Sync {
	handle := newSync()
	s.last = handle
	if n := len(s.queue); n > 0 && s.queue[n-1].userID == s.owner.UserID {
		tail := s.queue[n-1]
		tail.op, tail.lines = op, lines
		tail.waiters = append(tail.waiters, handle)
		return handle
	}
	s.queue = append(s.queue, &replication{op: op, userID: s.owner.UserID, lines: lines, waiters: []*Sync{handle}})
	s.signal()
	return handle
}

func (s *Store) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Store) replicate() {
	defer close(s.done)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return
			}
			<-s.wake
			continue
		}
		job := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()

		err := s.apply(job)
		for _, w := range job.waiters {
			w.finish(err)
		}
	}
}

func (s *Store) apply(job *replication) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.syncTimeout)
	defer cancel()

	var err error
	switch job.op {
	case OpRemoteSave:
		err = s.remote.SaveCart(ctx, job.userID, job.lines)
	case OpRemoteDelete:
		err = s.remote.DeleteCart(ctx, job.userID)
	}
	if err != nil {
		s.logger.Warn("remote cart sync failed",
			zap.String("op", job.op),
			zap.Int64("user_id", job.userID),
			zap.Error(err))
		s.diag.Report(SyncEvent{Op: job.op, SessionKey: s.key, UserID: job.userID, Err: err})
	}
	return err
}

func (s *Store) loadLocalLocked(ctx context.Context) domcart.Snapshot {
	lines, ok, err := s.local.Load(ctx, s.key)
	if err != nil {
		s.reportLocked(OpLocalLoad, err)
		return nil
	}
	if !ok {
		return nil
	}
	return lines
}

func (s *Store) saveLocalLocked(ctx context.Context) {
	if err := s.local.Save(ctx, s.key, s.lines.Clone()); err != nil {
		s.reportLocked(OpLocalSave, err)
	}
}

func (s *Store) reportLocked(op string, err error) {
	ev := SyncEvent{Op: op, SessionKey: s.key, Err: err}
	if s.owner != nil {
		ev.UserID = s.owner.UserID
	}
	s.logger.Warn("cart persistence failed", zap.String("op", op), zap.Error(err))
	s.diag.Report(ev)
}

func (s *Store) notify(n notice.Notice) {
	if s.notifier != nil {
		s.notifier.Notify(s.key, n)
	}
}

func cloneIdentity(id *domuser.Identity) *domuser.Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
