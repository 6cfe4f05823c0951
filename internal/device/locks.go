package device

import (
	"context"
	"sync"
)

// lockSet hands out one exclusive slot per device serial, so commands for
// the same device never interleave while different devices proceed in
// parallel. Waiting honors context cancellation.
type lockSet struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newLockSet() *lockSet {
	return &lockSet{slots: make(map[string]chan struct{})}
}

func (l *lockSet) slot(serial string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[serial]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[serial] = ch
	}
	return ch
}

// acquire blocks until the serial's slot is free or ctx is done. The
// returned func releases the slot.
func (l *lockSet) acquire(ctx context.Context, serial string) (func(), error) {
	ch := l.slot(serial)
	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
