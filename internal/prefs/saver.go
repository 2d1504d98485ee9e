package prefs

import (
	"context"
	"errors"
	"sync"
	"time"

	"colormaker/internal/logging"
)

// ErrSaverClosed is returned by Submit after Close.
var ErrSaverClosed = errors.New("saver closed")

// DefaultWriteTimeout bounds one SetAll call when no timeout is configured.
const DefaultWriteTimeout = 2 * time.Second

// SaverStats counts persistence activity. LastError is the result of the
// most recent attempt, nil once a write succeeds again.
type SaverStats struct {
	Submitted uint64
	Attempted uint64
	Failed    uint64
	LastError error
}

// Saver writes records to a Backend on a background goroutine. Submit never
// blocks: a record that has not been written yet is replaced by the newer
// one, so only the latest state reaches the backend. The goroutine starts on
// the first Submit.
type Saver struct {
	backend Backend
	timeout time.Duration
	audit   *logging.AuditLogger

	mu       sync.Mutex
	pending  *Record
	seq      uint64 // sequence of the latest submitted record
	done     uint64 // sequence covered by the last completed write
	progress chan struct{}
	stats    SaverStats
	closed   bool

	stopOnce sync.Once
	started  bool
	wake     chan struct{}
	stop     chan struct{}
	finished chan struct{}
}

// NewSaver returns a saver for backend. A non-positive timeout uses
// DefaultWriteTimeout. Failed writes are recorded on audit, or on an audit
// logger without a session when audit is nil.
func NewSaver(backend Backend, timeout time.Duration, audit *logging.AuditLogger) *Saver {
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	if audit == nil {
		audit = logging.Audit()
	}
	return &Saver{
		backend:  backend,
		timeout:  timeout,
		audit:    audit,
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Submit queues r for writing, replacing any record still pending.
func (s *Saver) Submit(r Record) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSaverClosed
	}
	s.pending = &r
	s.seq++
	s.stats.Submitted++
	if !s.started {
		s.started = true
		go s.run()
	}
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

func (s *Saver) run() {
	defer close(s.finished)
	for {
		select {
		case <-s.wake:
			s.drain()
		case <-s.stop:
			s.drain()
			return
		}
	}
}

// drain writes until nothing is pending.
func (s *Saver) drain() {
	for {
		s.mu.Lock()
		if s.pending == nil {
			s.mu.Unlock()
			return
		}
		r := *s.pending
		s.pending = nil
		target := s.seq
		s.mu.Unlock()

		err := s.write(r, target)

		s.mu.Lock()
		s.stats.Attempted++
		s.stats.LastError = err
		if err != nil {
			s.stats.Failed++
		}
		s.done = target
		close(s.progress)
		s.progress = make(chan struct{})
		s.mu.Unlock()
	}
}

func (s *Saver) write(r Record, seq uint64) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	log := logging.Get(logging.CategoryPersist).With("seq", seq)
	timer := logging.StartTimer(logging.CategoryPersist, "SetAll")
	err := s.backend.SetAll(ctx, r.Encode())
	timer.StopWithThreshold(s.timeout / 2)
	if err != nil {
		log.Error("PersistenceWriteFailed: %v", err)
		s.audit.SaveFailed(err)
		return err
	}
	log.Debug("saved %v", r)
	return nil
}

// Flush waits until the latest submitted record has been attempted. Write
// failures are not returned; see Stats.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	target := s.seq
	for s.done < target {
		ch := s.progress
		s.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
		s.mu.Lock()
	}
	s.mu.Unlock()
	return nil
}

// Close writes any pending record and stops the goroutine. It does not close
// the backend. Calling Close more than once is safe.
func (s *Saver) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	started := s.started
	s.mu.Unlock()

	if !started {
		return nil
	}
	s.stopOnce.Do(func() { close(s.stop) })

	select {
	case <-s.finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns a copy of the counters.
func (s *Saver) Stats() SaverStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
