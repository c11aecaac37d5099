package dedupe

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryClaim(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	m := NewMemory(time.Minute)
	m.now = func() time.Time { return now }

	fresh, err := m.Claim(ctx, "u:1")
	if err != nil || !fresh {
		t.Fatalf("first claim = %v, %v; want true, nil", fresh, err)
	}
	fresh, err = m.Claim(ctx, "u:1")
	if err != nil || fresh {
		t.Fatalf("second claim = %v, %v; want false, nil", fresh, err)
	}

	now = now.Add(time.Minute)
	fresh, _ = m.Claim(ctx, "u:1")
	if !fresh {
		t.Fatalf("claim after ttl should be fresh")
	}
}

func TestMemoryPrunesExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	m := NewMemory(time.Second)
	m.now = func() time.Time { return now }

	for i := 0; i < pruneEvery-1; i++ {
		if _, err := m.Claim(ctx, string(rune('a'+i%26))+string(rune('0'+i/26))); err != nil {
			t.Fatalf("claim: %v", err)
		}
	}
	now = now.Add(2 * time.Second)
	if _, err := m.Claim(ctx, "last"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if got := m.Len(); got != 1 {
		t.Fatalf("Len after prune = %d, want 1", got)
	}
}

func TestMemoryClosed(t *testing.T) {
	m := NewMemory(time.Minute)
	_ = m.Close()
	if _, err := m.Claim(context.Background(), "x"); !errors.Is(err, ErrClosed) {
		t.Fatalf("want ErrClosed, got %v", err)
	}
}
