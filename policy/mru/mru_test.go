package mru

import (
	"testing"

	"github.com/IvanBrykalov/pagecache/policy"
)

type mockHooks struct{ stats []policy.Stats }

func (h *mockHooks) Len() int                 { return len(h.stats) }
func (h *mockHooks) Stats(i int) policy.Stats { return h.stats[i] }

func TestMRU_PicksNewestAccess(t *testing.T) {
	t.Parallel()

	h := &mockHooks{stats: []policy.Stats{
		{Valid: true, LastAccess: 3},
		{Valid: true, LastAccess: 8},
		{Valid: true, LastAccess: 5},
	}}
	if got := New().New(h).Victim(); got != 1 {
		t.Fatalf("Victim must pick MRU slot 1, got %d", got)
	}
}

// A cold cache is filled before MRU starts evicting.
func TestMRU_EmptyFirst(t *testing.T) {
	t.Parallel()

	h := &mockHooks{stats: []policy.Stats{
		{Valid: true, LastAccess: 8},
		{Valid: false},
		{Valid: false},
	}}
	if got := New().New(h).Victim(); got != 1 {
		t.Fatalf("Victim must pick first empty slot 1, got %d", got)
	}
}
