package fifo

import (
	"sync"
	"testing"

	"github.com/IvanBrykalov/pagecache/policy"
)

type mockHooks struct {
	n        int
	statsCnt int
}

func (h *mockHooks) Len() int { return h.n }
func (h *mockHooks) Stats(int) policy.Stats {
	h.statsCnt++
	return policy.Stats{}
}

// Successive victims walk 0..n-1 and wrap around.
func TestFIFO_RoundRobin(t *testing.T) {
	t.Parallel()

	h := &mockHooks{n: 3}
	p := New().New(h)

	want := []int{0, 1, 2, 0, 1, 2, 0}
	for i, w := range want {
		if got := p.Victim(); got != w {
			t.Fatalf("eviction %d: want slot %d, got %d", i, w, got)
		}
	}
	if h.statsCnt != 0 {
		t.Fatalf("FIFO must not consult slot stats")
	}
}

// Concurrent callers never receive the same cursor value within one lap.
func TestFIFO_ConcurrentDistinct(t *testing.T) {
	t.Parallel()

	const n = 64
	p := New().New(&mockHooks{n: n})

	var (
		mu   sync.Mutex
		seen = make(map[int]int)
		wg   sync.WaitGroup
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			v := p.Victim()
			mu.Lock()
			seen[v]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Fatalf("want %d distinct slots, got %d", n, len(seen))
	}
}

func TestFIFO_NoSlots(t *testing.T) {
	t.Parallel()

	if got := New().New(&mockHooks{}).Victim(); got != -1 {
		t.Fatalf("want -1 for empty cache, got %d", got)
	}
}
