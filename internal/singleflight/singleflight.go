// Package singleflight coalesces concurrent page loads so that one miss
// per page id reaches the backing store at a time.
package singleflight

import (
	"context"
	"sync"
)

// Group runs at most one fn per key at a time. Goroutines arriving while a
// call for the same key is in flight wait for it and share its error.
//
// Unlike a value cache, callers do not receive a value: after the flight
// they re-run their own lookup, which observes whatever the leader loaded.
type Group[K comparable] struct {
	mu sync.Mutex
	m  map[K]*call
}

type call struct {
	done chan struct{} // closed once err is published
	err  error
}

// Do runs fn for key unless a call is already in flight, in which case it
// waits for that call. shared reports whether the result came from another
// goroutine's call. A follower whose ctx is cancelled returns ctx.Err();
// the leader is never interrupted by followers.
func (g *Group[K]) Do(ctx context.Context, key K, fn func() error) (shared bool, err error) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*call)
	}
	if c, ok := g.m[key]; ok {
		g.mu.Unlock()
		select {
		case <-c.done:
			return true, c.err
		case <-ctx.Done():
			return true, ctx.Err()
		}
	}

	c := &call{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()

	// Publish even if fn panics so followers are not stranded.
	defer func() {
		g.mu.Lock()
		delete(g.m, key)
		g.mu.Unlock()
		close(c.done)
	}()

	c.err = fn()
	return false, c.err
}

// InFlight reports how many keys currently have a call running.
func (g *Group[K]) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.m)
}
