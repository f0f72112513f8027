package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory[string](0)

	if _, hit, err := store.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("expected clean miss, hit=%v err=%v", hit, err)
	}

	if err := store.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, hit, err := store.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("expected hit, hit=%v err=%v", hit, err)
	}
	if got != "v1" {
		t.Fatalf("unexpected value: %q", got)
	}

	// Last writer wins.
	if err := store.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, _, _ = store.Get(ctx, "k")
	if got != "v2" {
		t.Fatalf("overwrite lost: %q", got)
	}
}

func TestMemoryExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory[int](50 * time.Millisecond)

	if err := store.Set(ctx, "k", 42); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(120 * time.Millisecond)

	if _, hit, _ := store.Get(ctx, "k"); hit {
		t.Fatal("entry should have expired")
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory[int](0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n%5))
			_ = store.Set(ctx, key, n)
			_, _, _ = store.Get(ctx, key)
		}(i)
	}
	wg.Wait()
}

func TestMemoryStructValues(t *testing.T) {
	t.Parallel()

	type pair struct {
		A string
		B int
	}

	ctx := context.Background()
	store := NewMemory[pair](0)

	want := pair{A: "x", B: 7}
	if err := store.Set(ctx, "k", want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, hit, err := store.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("expected hit, hit=%v err=%v", hit, err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
