package draft

import (
	"context"
	"log"
	"sync"
	"time"

	"kazzy/internal/models"
)

// Status of the remote write task, observable so the UI can show a sync
// indicator instead of failing silently.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusSynced  Status = "synced"
	StatusFailed  Status = "failed"
)

// Syncer owns the asynchronous remote persistence of the draft. Writes
// never block the caller: Enqueue replaces any still-queued draft (latest
// wins) and a single worker pushes to the remote store with bounded
// retry and backoff. Failure leaves the mirror as the durable copy.
type Syncer struct {
	remote   RemoteStore
	attempts int
	backoff  time.Duration
	timeout  time.Duration

	mu       sync.Mutex
	cond     *sync.Cond
	queued   *models.DraftOrder
	inFlight bool
	closed   bool
	status   Status
}

func NewSyncer(remote RemoteStore) *Syncer {
	s := &Syncer{
		remote:   remote,
		attempts: 3,
		backoff:  500 * time.Millisecond,
		timeout:  5 * time.Second,
		status:   StatusIdle,
	}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// Enqueue hands a draft snapshot to the worker. Never blocks; an older
// queued snapshot that has not started writing yet is replaced.
func (s *Syncer) Enqueue(d models.DraftOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queued = &d
	s.status = StatusPending
	s.cond.Broadcast()
}

// Status returns the state of the last remote write.
func (s *Syncer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Flush blocks until no write is queued or in flight. Test and shutdown
// helper; UI paths never call it.
func (s *Syncer) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.queued != nil || s.inFlight {
		s.cond.Wait()
	}
}

// Close stops the worker after the current queue drains.
func (s *Syncer) Close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()
	s.Flush()
}

func (s *Syncer) run() {
	for {
		s.mu.Lock()
		for s.queued == nil && !s.closed {
			s.cond.Wait()
		}
		if s.queued == nil && s.closed {
			s.mu.Unlock()
			return
		}
		d := *s.queued
		s.queued = nil
		s.inFlight = true
		s.mu.Unlock()

		err := s.saveWithRetry(d)

		s.mu.Lock()
		s.inFlight = false
		if s.queued == nil {
			if err != nil {
				s.status = StatusFailed
			} else {
				s.status = StatusSynced
			}
		}
		s.cond.Broadcast()
		s.mu.Unlock()
	}
}

func (s *Syncer) saveWithRetry(d models.DraftOrder) error {
	var err error
	for attempt := 0; attempt < s.attempts; attempt++ {
		if attempt > 0 {
			time.Sleep(s.backoff << (attempt - 1))
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		err = s.remote.Save(ctx, d)
		cancel()
		if err == nil {
			return nil
		}
		log.Printf("[DRAFT] [ERROR] remote save attempt %d failed: %v", attempt+1, err)
	}
	return err
}
