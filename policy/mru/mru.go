// Package mru implements the most-recently-used eviction policy, which
// suits cyclic scans larger than the cache.
package mru

import "github.com/IvanBrykalov/pagecache/policy"

type mru struct {
	h policy.Hooks
}

type mruPolicy struct{}

// New returns a Policy factory for MRU selectors.
func New() policy.Policy { return mruPolicy{} }

func (mruPolicy) Kind() policy.Kind { return policy.MRU }

func (mruPolicy) New(h policy.Hooks) policy.Selector { return &mru{h: h} }

// Victim returns the slot with the newest access stamp. Empty slots are
// still filled first so a cold cache warms up before MRU kicks in.
func (p *mru) Victim() int {
	return policy.Pick(p.h, func(a, b policy.Stats) bool { return a.LastAccess > b.LastAccess })
}
