package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) *goredis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestLockRepoAcquireRelease(t *testing.T) {
	ctx := context.Background()
	repo := NewLockRepo(newTestClient(t))

	ok, err := repo.AcquireReview(ctx, "comp-1", "mod-a", time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !ok {
		t.Fatal("expected first acquire to succeed")
	}

	ok, err = repo.AcquireReview(ctx, "comp-1", "mod-b", time.Minute)
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if ok {
		t.Fatal("expected second acquire to be rejected while lock is held")
	}

	if err := repo.ReleaseReview(ctx, "comp-1", "mod-a"); err != nil {
		t.Fatalf("release: %v", err)
	}

	ok, err = repo.AcquireReview(ctx, "comp-1", "mod-b", time.Minute)
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	if !ok {
		t.Fatal("expected acquire to succeed after release")
	}
}

func TestLockRepoReleaseByNonOwnerKeepsLock(t *testing.T) {
	ctx := context.Background()
	repo := NewLockRepo(newTestClient(t))

	if _, err := repo.AcquireReview(ctx, "comp-2", "mod-a", time.Minute); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	if err := repo.ReleaseReview(ctx, "comp-2", "mod-b"); err != nil {
		t.Fatalf("release by non-owner: %v", err)
	}

	ok, err := repo.AcquireReview(ctx, "comp-2", "mod-c", time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if ok {
		t.Fatal("expected lock to survive a release by a non-owner")
	}
}

func TestReminderRepoDeduplicatesPerDay(t *testing.T) {
	ctx := context.Background()
	repo := NewReminderRepo(newTestClient(t))

	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	first, err := repo.MarkSent(ctx, "comp-3", day, 24*time.Hour)
	if err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	if !first {
		t.Fatal("expected first mark to report unsent")
	}

	laterSameDay, err := repo.MarkSent(ctx, "comp-3", day.Add(6*time.Hour), 24*time.Hour)
	if err != nil {
		t.Fatalf("mark sent again: %v", err)
	}
	if laterSameDay {
		t.Fatal("expected same-day mark to be deduplicated")
	}

	nextDay, err := repo.MarkSent(ctx, "comp-3", day.Add(24*time.Hour), 24*time.Hour)
	if err != nil {
		t.Fatalf("mark sent next day: %v", err)
	}
	if !nextDay {
		t.Fatal("expected next-day mark to go through")
	}
}
