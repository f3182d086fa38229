package policy

import "testing"

type sliceHooks []Stats

func (h sliceHooks) Len() int          { return len(h) }
func (h sliceHooks) Stats(i int) Stats { return h[i] }

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, k := range []Kind{FIFO, LFU, LRU, MRU} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Fatalf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if got, err := ParseKind(" LRU "); err != nil || got != LRU {
		t.Fatalf("ParseKind must be case-insensitive, got %v, %v", got, err)
	}
	if _, err := ParseKind("arc"); err == nil {
		t.Fatal("ParseKind must reject unknown names")
	}
}

func TestKind_UnmarshalText(t *testing.T) {
	t.Parallel()

	var k Kind
	if err := k.UnmarshalText([]byte("mru")); err != nil || k != MRU {
		t.Fatalf("UnmarshalText = %v, %v", k, err)
	}
	if err := k.UnmarshalText([]byte("bogus")); err == nil {
		t.Fatal("want error for unknown policy")
	}
}

func TestPick_Order(t *testing.T) {
	t.Parallel()

	oldest := func(a, b Stats) bool { return a.LastAccess < b.LastAccess }

	cases := []struct {
		name  string
		hooks sliceHooks
		want  int
	}{
		{"no slots", nil, -1},
		{"all empty keeps lowest", sliceHooks{{}, {}, {}}, 0},
		{"empty beats valid", sliceHooks{{Valid: true}, {}}, 1},
		{"unclaimed beats empty claimed", sliceHooks{{Claimed: true}, {Valid: true, LastAccess: 9}}, 1},
		{"all claimed still answers", sliceHooks{{Claimed: true, Valid: true, LastAccess: 2}, {Claimed: true, Valid: true, LastAccess: 1}}, 1},
		{"before decides", sliceHooks{{Valid: true, LastAccess: 5}, {Valid: true, LastAccess: 4}}, 1},
	}
	for _, tc := range cases {
		if got := Pick(tc.hooks, oldest); got != tc.want {
			t.Fatalf("%s: want %d, got %d", tc.name, tc.want, got)
		}
	}
}
