package feed

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

type source interface {
	Fetch(ctx context.Context, feedURL string, v Validators) (*Result, error)
}

// Pool limits the number of in-flight fetches. Submitted work runs on its own goroutine
// once a slot is free, callers receive a Future to wait on.
type Pool struct {
	src source
	sem *semaphore.Weighted
}

// NewPool makes a pool running at most size fetches concurrently
func NewPool(src source, size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{src: src, sem: semaphore.NewWeighted(int64(size))}
}

// Future is a pending fetch result
type Future struct {
	done chan struct{}
	res  *Result
	err  error
}

// Submit schedules a fetch and returns immediately
func (p *Pool) Submit(ctx context.Context, feedURL string, v Validators) *Future {
	fut := &Future{done: make(chan struct{})}
	go func() {
		defer close(fut.done)
		if err := p.sem.Acquire(ctx, 1); err != nil {
			fut.err = networkError(feedURL, 0, fmt.Errorf("wait for fetch slot: %w", err))
			return
		}
		defer p.sem.Release(1)
		fut.res, fut.err = p.src.Fetch(ctx, feedURL, v)
	}()
	return fut
}

// Fetch submits a fetch and waits for it
func (p *Pool) Fetch(ctx context.Context, feedURL string, v Validators) (*Result, error) {
	return p.Submit(ctx, feedURL, v).Wait(ctx)
}

// Done is closed once the result is available
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the fetch completes or ctx is done
func (f *Future) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-f.done:
		return f.res, f.err
	case <-ctx.Done():
		return nil, &FetchError{Kind: KindNetwork, Err: fmt.Errorf("wait for fetch: %w", ctx.Err())}
	}
}
