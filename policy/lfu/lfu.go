// Package lfu implements the least-frequently-used eviction policy.
package lfu

import "github.com/IvanBrykalov/pagecache/policy"

// lfu evicts the valid slot with the fewest hits since it was last loaded.
type lfu struct {
	h policy.Hooks
}

type lfuPolicy struct{}

// New returns a Policy factory for LFU selectors.
func New() policy.Policy { return lfuPolicy{} }

func (lfuPolicy) Kind() policy.Kind { return policy.LFU }

func (lfuPolicy) New(h policy.Hooks) policy.Selector { return &lfu{h: h} }

func (p *lfu) Victim() int {
	return policy.Pick(p.h, func(a, b policy.Stats) bool { return a.Hits < b.Hits })
}
