package cart

import "context"

// Sync is the outcome of one replication of the cart to the remote mirror.
// Callers may wait on it or drop it; the replication runs either way.
type Sync struct {
	done chan struct{}
	err  error
}

func newSync() *Sync {
	return &Sync{done: make(chan struct{})}
}

func resolved(err error) *Sync {
	s := newSync()
	s.finish(err)
	return s
}

func (s *Sync) finish(err error) {
	s.err = err
	close(s.done)
}

func (s *Sync) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the replication finished or ctx is done.
func (s *Sync) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the replication error. It is only meaningful after Done is closed.
func (s *Sync) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}
