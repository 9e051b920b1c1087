package draft

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"kazzy/internal/models"
)

// flakyRemote fails a fixed number of saves before succeeding.
type flakyRemote struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakyRemote) Save(ctx context.Context, d models.DraftOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return errors.New("transient")
	}
	return nil
}

func (f *flakyRemote) Load(ctx context.Context) (models.DraftOrder, bool, error) {
	return models.DraftOrder{}, false, nil
}

func (f *flakyRemote) Delete(ctx context.Context) error { return nil }

func (f *flakyRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestSyncer(remote RemoteStore) *Syncer {
	s := NewSyncer(remote)
	s.backoff = time.Millisecond
	return s
}

func TestSyncerRetriesUntilSuccess(t *testing.T) {
	remote := &flakyRemote{failures: 2}
	s := newTestSyncer(remote)
	defer s.Close()

	s.Enqueue(models.DraftOrder{RouteID: "north"})
	s.Flush()

	if got := remote.callCount(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
	if s.Status() != StatusSynced {
		t.Fatalf("expected synced status, got %q", s.Status())
	}
}

func TestSyncerGivesUpAfterBoundedAttempts(t *testing.T) {
	remote := &flakyRemote{failures: 100}
	s := newTestSyncer(remote)
	defer s.Close()

	s.Enqueue(models.DraftOrder{RouteID: "north"})
	s.Flush()

	if got := remote.callCount(); got != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", got)
	}
	if s.Status() != StatusFailed {
		t.Fatalf("expected failed status, got %q", s.Status())
	}
}

func TestSyncerStartsIdle(t *testing.T) {
	s := newTestSyncer(&flakyRemote{})
	defer s.Close()

	if s.Status() != StatusIdle {
		t.Fatalf("expected idle before any enqueue, got %q", s.Status())
	}
}

func TestEnqueueAfterCloseIsNoOp(t *testing.T) {
	remote := &flakyRemote{}
	s := newTestSyncer(remote)
	s.Close()

	s.Enqueue(models.DraftOrder{RouteID: "north"})
	if remote.callCount() != 0 {
		t.Fatal("expected no save after close")
	}
}
