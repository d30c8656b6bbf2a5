// Package lock serialises allocation runs that share a key.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLockBusy is returned when a key stays held past the wait budget.
var ErrLockBusy = errors.New("lock busy")

// Locker acquires exclusive ownership of a key. The returned release func is safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Local is an in-process keyed mutex with a bounded wait.
type Local struct {
	wait time.Duration

	mu   sync.Mutex
	keys map[string]*localEntry
}

type localEntry struct {
	sem  chan struct{}
	refs int
}

// NewLocal builds a Local locker. A non-positive wait fails fast when the key is held.
func NewLocal(wait time.Duration) *Local {
	return &Local{wait: wait, keys: make(map[string]*localEntry)}
}

// Acquire implements Locker.
func (l *Local) Acquire(ctx context.Context, key string) (func(), error) {
	entry := l.ref(key)

	select {
	case entry.sem <- struct{}{}:
		return l.releaser(key, entry), nil
	default:
	}

	if l.wait <= 0 {
		l.unref(key, entry)
		return nil, ErrLockBusy
	}

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case entry.sem <- struct{}{}:
		return l.releaser(key, entry), nil
	case <-timer.C:
		l.unref(key, entry)
		return nil, ErrLockBusy
	case <-ctx.Done():
		l.unref(key, entry)
		return nil, ctx.Err()
	}
}

func (l *Local) releaser(key string, entry *localEntry) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.sem
			l.unref(key, entry)
		})
	}
}

func (l *Local) ref(key string) *localEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.keys[key]
	if !ok {
		entry = &localEntry{sem: make(chan struct{}, 1)}
		l.keys[key] = entry
	}
	entry.refs++
	return entry
}

func (l *Local) unref(key string, entry *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.keys, key)
	}
}
