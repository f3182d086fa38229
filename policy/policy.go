// Package policy defines how a page cache picks the slot to overwrite on a
// miss. A Policy is a factory; the cache binds it to its slots through
// Hooks and asks the resulting Selector for victims.
package policy

import (
	"fmt"
	"strings"
)

// Kind enumerates the supported eviction strategies.
type Kind int

const (
	// FIFO visits slots round-robin regardless of access pattern.
	FIFO Kind = iota
	// LFU evicts the slot accessed the fewest times since it was loaded.
	LFU
	// LRU evicts the slot whose most recent access is the oldest.
	LRU
	// MRU evicts the slot whose most recent access is the newest.
	MRU
)

func (k Kind) String() string {
	switch k {
	case FIFO:
		return "fifo"
	case LFU:
		return "lfu"
	case LRU:
		return "lru"
	case MRU:
		return "mru"
	}
	return fmt.Sprintf("policy(%d)", int(k))
}

// ParseKind accepts the names printed by Kind.String, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fifo":
		return FIFO, nil
	case "lfu":
		return LFU, nil
	case "lru":
		return LRU, nil
	case "mru":
		return MRU, nil
	}
	return 0, fmt.Errorf("policy: unknown eviction policy %q (use fifo, lfu, lru or mru)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler (YAML config, CLI flags).
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Stats is a point-in-time view of one slot's usage metadata.
// Fields are read individually and atomically, so a snapshot may mix
// values from concurrent accesses.
type Stats struct {
	// Valid is false for slots that hold no page yet.
	Valid bool
	// Claimed is true while another goroutine is evicting/loading the slot.
	Claimed bool
	// Hits counts reads and writes through guards since the slot was last loaded.
	Hits uint64
	// LastAccess is the cache clock value of the most recent access or load.
	LastAccess uint64
}

// Hooks expose the cache's slots to a Selector. Implementations are
// provided by the cache and are safe for concurrent use.
type Hooks interface {
	// Len returns the fixed number of slots.
	Len() int
	// Stats returns the usage metadata of slot i (0 <= i < Len()).
	Stats(i int) Stats
}

// Selector picks eviction victims for one cache instance.
// Victim may be called concurrently by several evicting goroutines.
type Selector interface {
	// Victim returns the index of the slot to overwrite.
	Victim() int
}

// Policy is a factory that creates a Selector bound to a cache's hooks.
type Policy interface {
	Kind() Kind
	New(Hooks) Selector
}

// Pick scans all slots and returns the best victim. Unclaimed slots win
// over claimed ones, then empty slots over valid ones; among valid slots
// the one for which before(candidate, best) holds wins. Ties keep the
// lowest index. Pick returns -1 only when there are no slots.
func Pick(h Hooks, before func(a, b Stats) bool) int {
	best := -1
	var bs Stats
	for i, n := 0, h.Len(); i < n; i++ {
		s := h.Stats(i)
		if best < 0 || preferred(s, bs, before) {
			best, bs = i, s
		}
	}
	return best
}

func preferred(a, b Stats, before func(a, b Stats) bool) bool {
	if a.Claimed != b.Claimed {
		return !a.Claimed
	}
	if a.Valid != b.Valid {
		return !a.Valid
	}
	if !a.Valid {
		return false
	}
	return before(a, b)
}
