package ingest

import (
	"context"
	"sync"
)

// KeyedLock is a set of exclusive locks addressed by string key. Unused keys take no memory.
type KeyedLock struct {
	mu    sync.Mutex
	locks map[string]chan struct{} // closed on release
}

// NewKeyedLock makes an empty lock set
func NewKeyedLock() *KeyedLock {
	return &KeyedLock{locks: make(map[string]chan struct{})}
}

// TryLock acquires key if it is free, never blocks
func (l *KeyedLock) TryLock(key string) (unlock func(), ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.locks[key]; held {
		return nil, false
	}
	return l.acquire(key), true
}

// Lock waits for key to be free or ctx to be done
func (l *KeyedLock) Lock(ctx context.Context, key string) (unlock func(), err error) {
	for {
		l.mu.Lock()
		ch, held := l.locks[key]
		if !held {
			unlock := l.acquire(key)
			l.mu.Unlock()
			return unlock, nil
		}
		l.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Held reports whether key is currently locked
func (l *KeyedLock) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, held := l.locks[key]
	return held
}

// acquire must be called with mu held
func (l *KeyedLock) acquire(key string) func() {
	ch := make(chan struct{})
	l.locks[key] = ch
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.locks, key)
			close(ch)
			l.mu.Unlock()
		})
	}
}
