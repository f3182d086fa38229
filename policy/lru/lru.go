// Package lru implements the LRU eviction policy.
package lru

import "github.com/IvanBrykalov/pagecache/policy"

// lru is a classic Least-Recently-Used policy. Recency comes from the
// cache clock stamped into each slot on every access.
type lru struct {
	h policy.Hooks
}

type lruPolicy struct{}

// New returns a Policy factory that constructs LRU selectors.
func New() policy.Policy { return lruPolicy{} }

func (lruPolicy) Kind() policy.Kind { return policy.LRU }

// New implements policy.Policy by binding the cache hooks.
func (lruPolicy) New(h policy.Hooks) policy.Selector { return &lru{h: h} }

// Victim returns the slot with the oldest access stamp. Empty slots are
// used first.
func (p *lru) Victim() int {
	return policy.Pick(p.h, func(a, b policy.Stats) bool { return a.LastAccess < b.LastAccess })
}
