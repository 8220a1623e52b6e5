package driven

import (
	"context"
	"testing"
	"time"

	"github.com/alorle/playlist-manager/internal/channel"
	"github.com/alorle/playlist-manager/internal/probe"
)

func newTestProbeResult(t *testing.T, url string, status channel.Status, at time.Time) probe.Result {
	t.Helper()
	r, err := probe.NewResult("ch-1", url, status, probe.MethodHead, at, 150*time.Millisecond, "")
	if err != nil {
		t.Fatalf("failed to create probe result: %v", err)
	}
	return r
}

func TestNewProbeBoltDBRepository(t *testing.T) {
	t.Run("nil db returns error", func(t *testing.T) {
		_, err := NewProbeBoltDBRepository(nil)
		if err == nil {
			t.Fatal("expected error for nil db, got nil")
		}
	})

	t.Run("valid db succeeds", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		repo, err := NewProbeBoltDBRepository(db)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo == nil {
			t.Fatal("expected non-nil repository")
		}
	})
}

func TestProbeBoltDBRepository_SaveAndFindByURL(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo, err := NewProbeBoltDBRepository(db)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}

	ctx := context.Background()
	now := time.Now()

	r1 := newTestProbeResult(t, "http://a/live", channel.StatusOnline, now)
	r2 := newTestProbeResult(t, "http://a/live", channel.StatusOffline, now.Add(-30*time.Minute))
	r3 := newTestProbeResult(t, "http://b/live", channel.StatusOnline, now)

	for _, r := range []probe.Result{r1, r2, r3} {
		if err := repo.Save(ctx, r); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	results, err := repo.FindByURL(ctx, "http://a/live")
	if err != nil {
		t.Fatalf("FindByURL failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].CheckedAt().After(results[1].CheckedAt()) {
		t.Error("results should be ordered most recent first")
	}
	if results[0].Status() != channel.StatusOnline || results[1].Status() != channel.StatusOffline {
		t.Errorf("unexpected statuses %v, %v", results[0].Status(), results[1].Status())
	}
	if results[0].Method() != probe.MethodHead || results[0].Duration() != 150*time.Millisecond {
		t.Errorf("fields not preserved: %+v", results[0])
	}

	results, err = repo.FindByURL(ctx, "http://unknown")
	if err != nil {
		t.Fatalf("FindByURL failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results for unknown url, got %d", len(results))
	}
}

func TestProbeBoltDBRepository_DeleteBefore(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo, err := NewProbeBoltDBRepository(db)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}

	ctx := context.Background()
	now := time.Now()

	for _, r := range []probe.Result{
		newTestProbeResult(t, "http://a/live", channel.StatusOnline, now),
		newTestProbeResult(t, "http://a/live", channel.StatusOnline, now.Add(-2*time.Hour)),
		newTestProbeResult(t, "http://b/live", channel.StatusOffline, now.Add(-3*time.Hour)),
	} {
		if err := repo.Save(ctx, r); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	if err := repo.DeleteBefore(ctx, now.Add(-time.Hour)); err != nil {
		t.Fatalf("DeleteBefore failed: %v", err)
	}

	a, _ := repo.FindByURL(ctx, "http://a/live")
	if len(a) != 1 {
		t.Errorf("expected 1 result for a, got %d", len(a))
	}
	b, _ := repo.FindByURL(ctx, "http://b/live")
	if len(b) != 0 {
		t.Errorf("expected 0 results for b, got %d", len(b))
	}
}

func TestProbeBoltDBRepository_CanceledContext(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo, err := NewProbeBoltDBRepository(db)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := repo.Save(ctx, newTestProbeResult(t, "http://a", channel.StatusOnline, time.Now())); err == nil {
		t.Error("expected error for canceled context")
	}
	if _, err := repo.FindByURL(ctx, "http://a"); err == nil {
		t.Error("expected error for canceled context")
	}
}
