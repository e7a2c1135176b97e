package handoff

import (
	"context"
	"testing"
	"time"

	"github.com/prepdeck/examprep-service/internal/attempt"
)

func TestMemoryStorePutAndTake(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	if err := store.Put(ctx, &attempt.Result{AttemptID: "att-1", Score: 2}); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Take(ctx, "att-1")
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if got.Score != 2 {
		t.Fatalf("expected score 2, got %d", got.Score)
	}

	if _, err := store.Take(ctx, "att-1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on second take, got %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStoreWithClock(time.Minute, func() time.Time { return now })
	ctx := context.Background()

	if err := store.Put(ctx, &attempt.Result{AttemptID: "att-1"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	now = now.Add(2 * time.Minute)

	if _, err := store.Take(ctx, "att-1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestMemoryStoreMissingKey(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	if _, err := store.Take(context.Background(), "nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
