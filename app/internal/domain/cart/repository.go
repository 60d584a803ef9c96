package cart

import "context"

// LocalStore is the per-session slot holding a serialized snapshot.
// Load reports ok=false when the slot is empty.
type LocalStore interface {
	Load(ctx context.Context, sessionKey string) (lines Snapshot, ok bool, err error)
	Save(ctx context.Context, sessionKey string, lines Snapshot) error
	Delete(ctx context.Context, sessionKey string) error
}

// RemoteMirror is the per-user "cart" order kept in the relational store.
type RemoteMirror interface {
	LoadCart(ctx context.Context, userID int64) (Snapshot, error)
	SaveCart(ctx context.Context, userID int64, lines Snapshot) error
	DeleteCart(ctx context.Context, userID int64) error
}
