package glyph

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "counts.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreMergeAndCounts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := NewCounter()
	c.Add("a")
	c.Add("a")
	c.Add("b")
	if err := s.Merge(ctx, c); err != nil {
		t.Fatal(err)
	}

	// Merging a second batch accumulates.
	c2 := NewCounter()
	c2.Add("a")
	if err := s.Merge(ctx, c2); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := loaded.Count("a"); got != 3 {
		t.Fatalf("count(a) = %d, want 3", got)
	}
	if got := loaded.Count("b"); got != 1 {
		t.Fatalf("count(b) = %d, want 1", got)
	}
}

func TestStoreFrequent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := NewCounter()
	for i := 0; i < 10; i++ {
		c.Add("common")
	}
	c.Add("rare")
	if err := s.Merge(ctx, c); err != nil {
		t.Fatal(err)
	}

	freq, err := s.Frequent(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(freq) != 1 || !freq[Hash("common")] {
		t.Fatalf("unexpected frequent set: %v", freq)
	}
}
