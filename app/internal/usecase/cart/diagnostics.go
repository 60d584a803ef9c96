package cart

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const (
	OpRemoteLoad   = "remote_load"
	OpRemoteSave   = "remote_save"
	OpRemoteDelete = "remote_delete"
	OpLocalLoad    = "local_load"
	OpLocalSave    = "local_save"
	OpLocalDelete  = "local_delete"
	OpOrderPlace   = "order_place"
)

// SyncEvent records a failed cart persistence operation.
type SyncEvent struct {
	Op         string    `json:"op"`
	SessionKey string    `json:"session_key"`
	UserID     int64     `json:"user_id,omitempty"`
	Error      string    `json:"error"`
	At         time.Time `json:"at"`

	Err error `json:"-"`
}

// Diagnostics carries persistence failures that are never shown to shoppers.
// Reports never block; events are dropped when the buffer is full.
type Diagnostics struct {
	events  chan SyncEvent
	dropped atomic.Int64

	mu     sync.Mutex
	recent []SyncEvent
	keep   int
}

func NewDiagnostics(buffer, keep int) *Diagnostics {
	if buffer <= 0 {
		buffer = 128
	}
	if keep <= 0 {
		keep = 50
	}
	return &Diagnostics{
		events: make(chan SyncEvent, buffer),
		keep:   keep,
	}
}

func (d *Diagnostics) Report(ev SyncEvent) {
	if d == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	if ev.Err != nil && ev.Error == "" {
		ev.Error = ev.Err.Error()
	}
	select {
	case d.events <- ev:
	default:
		d.dropped.Add(1)
	}
}

func (d *Diagnostics) Events() <-chan SyncEvent {
	return d.events
}

func (d *Diagnostics) Dropped() int64 {
	return d.dropped.Load()
}

// Run moves events into the recent ring until ctx is done.
func (d *Diagnostics) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.events:
			d.remember(ev)
		}
	}
}

func (d *Diagnostics) remember(ev SyncEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recent = append(d.recent, ev)
	if over := len(d.recent) - d.keep; over > 0 {
		d.recent = append(d.recent[:0], d.recent[over:]...)
	}
}

// Recent returns the latest events, oldest first.
func (d *Diagnostics) Recent() []SyncEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]SyncEvent, len(d.recent))
	copy(out, d.recent)
	return out
}
