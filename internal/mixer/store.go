// Package mixer owns the live color state. Store applies every user intent
// under one lock, keeps the channel invariants, tells subscribers about the
// new state, and hands a full record to the persistence sink after each
// mutation.
package mixer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"colormaker/internal/channel"
	"colormaker/internal/logging"
	"colormaker/internal/prefs"
)

// Re-exported so callers of the store need not import channel for errors.
var (
	ErrInvalidInput   = channel.ErrInvalidInput
	ErrUnknownChannel = channel.ErrUnknownChannel
)

// Sink receives the full record after every mutation. Submit must not
// block; prefs.Saver is the production implementation.
type Sink interface {
	Submit(r prefs.Record) error
}

// Stats reports store activity.
type Stats struct {
	Mutations uint64
	Rejected  uint64
	Saves     prefs.SaverStats
}

// Option configures Open.
type Option func(*options)

type options struct {
	writeTimeout time.Duration
}

// WithWriteTimeout bounds each background write.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) { o.writeTimeout = d }
}

type subscriber struct {
	id int
	fn func(channel.ColorState)
}

// Store is the single owner of the mixer state.
type Store struct {
	mu        sync.Mutex
	state     channel.ColorState
	sink      Sink
	saver     *prefs.Saver
	subs      []subscriber
	nextSub   int
	mutations uint64
	rejected  uint64
	audit     *logging.AuditLogger
}

// New returns a store holding initial. A nil sink disables persistence.
func New(initial channel.ColorState, sink Sink) *Store {
	return &Store{
		state: initial,
		sink:  sink,
		audit: logging.Audit(),
	}
}

// Open hydrates a store from backend and persists later mutations to it
// through a background saver. A failed read is logged and the store starts
// from defaults. The caller keeps ownership of backend.
func Open(ctx context.Context, backend prefs.Backend, opts ...Option) (*Store, error) {
	o := options{writeTimeout: prefs.DefaultWriteTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	rec, err := prefs.Load(ctx, backend)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("failed to load preferences: %w", err)
		}
		logging.Get(logging.CategoryStore).Warn("PersistenceReadFailed: %v; using defaults", err)
	}

	audit := logging.Audit()
	if sb, ok := backend.(interface{ SessionID() string }); ok {
		audit = logging.AuditWithSession(sb.SessionID())
	}
	saver := prefs.NewSaver(backend, o.writeTimeout, audit)
	s := New(rec.State(), saver)
	s.saver = saver
	s.audit = audit

	s.audit.Loaded(s.state.Hex(), err)
	logging.Get(logging.CategoryMixer).Info("Loaded %s", s.state)
	return s, nil
}

// SetValue sets the channel value. Out-of-range values return
// ErrInvalidInput and leave the state unchanged.
func (s *Store) SetValue(id channel.ID, v float64) error {
	s.mu.Lock()
	c := s.state.At(id)
	if c == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrUnknownChannel, int(id))
	}
	if err := c.SetValue(v); err != nil {
		s.rejected++
		s.mu.Unlock()
		s.audit.InputRejected(id.String(), fmt.Sprint(v), err)
		return err
	}
	snap := s.commitLocked()
	s.mu.Unlock()

	logging.MixerDebug("%s value=%s", id, channel.FormatValue(v))
	s.audit.ValueSet(id.String(), v, snap.Hex())
	s.notify(snap)
	return nil
}

// SetValueText parses text and applies it as SetValue does. Unparsable or
// out-of-range text returns ErrInvalidInput; nothing changes and nothing is
// written.
func (s *Store) SetValueText(id channel.ID, text string) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownChannel, int(id))
	}
	v, err := channel.ParseValue(text)
	if err != nil {
		s.mu.Lock()
		s.rejected++
		s.mu.Unlock()
		s.audit.InputRejected(id.String(), text, err)
		return err
	}
	return s.SetValue(id, v)
}

// SetEnabled toggles a channel. Setting the current state changes nothing
// but still persists.
func (s *Store) SetEnabled(id channel.ID, enabled bool) error {
	s.mu.Lock()
	c := s.state.At(id)
	if c == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrUnknownChannel, int(id))
	}
	changed := c.SetEnabled(enabled)
	snap := s.commitLocked()
	s.mu.Unlock()

	logging.MixerDebug("%s enabled=%t changed=%t", id, enabled, changed)
	s.audit.EnabledSet(id.String(), enabled, changed, snap.Hex())
	s.notify(snap)
	return nil
}

// Reset turns every channel back to fully on.
func (s *Store) Reset() {
	s.mu.Lock()
	s.state = channel.DefaultState()
	snap := s.commitLocked()
	s.mu.Unlock()

	logging.MixerDebug("reset")
	s.audit.Reset(snap.Hex())
	s.notify(snap)
}

// EffectiveColor returns the composed display color.
func (s *Store) EffectiveColor() (r, g, b float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Effective()
}

// Snapshot returns a copy of the full state.
func (s *Store) Snapshot() channel.ColorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to run after each mutation with the new state.
// Callbacks run on the mutating goroutine after the lock is released, so
// they may call back into the store. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(channel.ColorState)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Stats returns mutation and persistence counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	st := Stats{Mutations: s.mutations, Rejected: s.rejected}
	s.mu.Unlock()
	if s.saver != nil {
		st.Saves = s.saver.Stats()
	}
	return st
}

// Flush waits for the latest state to be written.
func (s *Store) Flush(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	return s.saver.Flush(ctx)
}

// Close writes the pending state and stops the saver started by Open.
func (s *Store) Close(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	if err := s.saver.Close(ctx); err != nil {
		return fmt.Errorf("failed to flush preferences: %w", err)
	}
	return nil
}

// commitLocked counts the mutation and submits the new record. Submitting
// under the lock keeps the sink's order equal to the mutation order.
func (s *Store) commitLocked() channel.ColorState {
	s.mutations++
	if s.sink != nil {
		if err := s.sink.Submit(prefs.RecordFromState(s.state)); err != nil {
			logging.Get(logging.CategoryPersist).Warn("dropped save: %v", err)
		}
	}
	return s.state
}

func (s *Store) notify(snap channel.ColorState) {
	s.mu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(snap)
	}
}
