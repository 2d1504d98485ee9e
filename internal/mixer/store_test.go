package mixer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"colormaker/internal/channel"
	"colormaker/internal/logging"
	"colormaker/internal/prefs"
)

// recordingSink captures every submitted record in order.
type recordingSink struct {
	mu      sync.Mutex
	records []prefs.Record
}

func (r *recordingSink) Submit(rec prefs.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func (r *recordingSink) last() prefs.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[len(r.records)-1]
}

func newStore(t *testing.T) (*Store, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	return New(channel.DefaultState(), sink), sink
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestSetValueOnEnabledChannel(t *testing.T) {
	s, sink := newStore(t)

	require.NoError(t, s.SetValue(channel.Green, 0.4))

	got := s.Snapshot().Green
	assert.Equal(t, channel.Channel{Value: 0.4, Enabled: true, Backup: 0.4}, got)
	assert.Equal(t, 1, sink.count())
	assert.Equal(t, 0.4, sink.last().Green)
}

func TestSetValueOnDisabledChannelKeepsBackup(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.SetValue(channel.Red, 0.6))
	require.NoError(t, s.SetEnabled(channel.Red, false))

	require.NoError(t, s.SetValue(channel.Red, 0.2))

	got := s.Snapshot().Red
	assert.Equal(t, 0.2, got.Value)
	assert.Equal(t, 0.6, got.Backup)
	r, _, _ := s.EffectiveColor()
	assert.Zero(t, r)
}

func TestDisableEnableRestoresValue(t *testing.T) {
	for _, id := range channel.IDs {
		t.Run(id.String(), func(t *testing.T) {
			s, _ := newStore(t)
			require.NoError(t, s.SetValue(id, 0.37))
			require.NoError(t, s.SetEnabled(id, false))
			require.NoError(t, s.SetEnabled(id, true))
			assert.Equal(t, channel.Channel{Value: 0.37, Enabled: true, Backup: 0.37}, s.Snapshot().Get(id))
		})
	}
}

func TestEffectiveColor(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.SetValue(channel.Red, 0.25))
	require.NoError(t, s.SetValue(channel.Blue, 0))

	r, g, b := s.EffectiveColor()
	assert.Equal(t, [3]float64{0.25, 1, 0}, [3]float64{r, g, b})

	for _, id := range channel.IDs {
		require.NoError(t, s.SetEnabled(id, false))
	}
	r, g, b = s.EffectiveColor()
	assert.Equal(t, [3]float64{0, 0, 0}, [3]float64{r, g, b})
}

func TestResetIsIdempotent(t *testing.T) {
	s, sink := newStore(t)
	require.NoError(t, s.SetValue(channel.Red, 0.1))
	require.NoError(t, s.SetEnabled(channel.Blue, false))

	s.Reset()
	first := s.Snapshot()
	s.Reset()

	if diff := cmp.Diff(channel.DefaultState(), first); diff != "" {
		t.Errorf("after reset (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first, s.Snapshot()); diff != "" {
		t.Errorf("second reset changed state (-want +got):\n%s", diff)
	}
	assert.Equal(t, prefs.DefaultRecord(), sink.last())
	assert.Equal(t, 4, sink.count())
}

func TestInvalidInputLeavesStateUnchanged(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"letters", "abc"},
		{"above range", "1.5"},
		{"below range", "-0.1"},
		{"empty", "   "},
		{"nan", "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, sink := newStore(t)
			require.NoError(t, s.SetValue(channel.Red, 0.3))
			before := s.Snapshot()
			writes := sink.count()

			err := s.SetValueText(channel.Red, tt.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))

			if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
				t.Errorf("state changed (-want +got):\n%s", diff)
			}
			assert.Equal(t, writes, sink.count(), "rejected input must not persist")
			assert.Equal(t, uint64(1), s.Stats().Rejected)
		})
	}

	s, _ := newStore(t)
	assert.ErrorIs(t, s.SetValue(channel.Green, 1.5), ErrInvalidInput)
	assert.Equal(t, 1.0, s.Snapshot().Green.Value)
}

func TestSetValueTextTrimsAndParses(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.SetValueText(channel.Blue, "  0.75\n"))
	assert.Equal(t, 0.75, s.Snapshot().Blue.Value)
}

func TestUnknownChannel(t *testing.T) {
	s, sink := newStore(t)
	assert.ErrorIs(t, s.SetValue(channel.ID(7), 0.5), ErrUnknownChannel)
	assert.ErrorIs(t, s.SetValueText(channel.ID(7), "0.5"), ErrUnknownChannel)
	assert.ErrorIs(t, s.SetEnabled(channel.ID(-1), true), ErrUnknownChannel)
	assert.Zero(t, sink.count())
}

func TestRedDisableEnableScenario(t *testing.T) {
	s, sink := newStore(t)

	require.NoError(t, s.SetValue(channel.Red, 0.25))
	require.NoError(t, s.SetEnabled(channel.Red, false))

	assert.Equal(t, channel.Channel{Value: 0, Enabled: false, Backup: 0.25}, s.Snapshot().Red)
	r, g, b := s.EffectiveColor()
	assert.Equal(t, [3]float64{0, 1, 1}, [3]float64{r, g, b})

	require.NoError(t, s.SetEnabled(channel.Red, true))
	assert.Equal(t, channel.Channel{Value: 0.25, Enabled: true, Backup: 0.25}, s.Snapshot().Red)
	assert.Equal(t, 3, sink.count())
}

func TestNoOpToggleStillPersists(t *testing.T) {
	s, sink := newStore(t)
	before := s.Snapshot()

	require.NoError(t, s.SetEnabled(channel.Green, true))

	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, 1, sink.count())
}

func TestSubscribe(t *testing.T) {
	s, _ := newStore(t)

	var seen []string
	cancel := s.Subscribe(func(st channel.ColorState) {
		seen = append(seen, st.Hex())
		// Reentrant reads must not deadlock.
		_ = s.Snapshot()
	})

	require.NoError(t, s.SetEnabled(channel.Red, false))
	s.Reset()
	cancel()
	cancel()
	require.NoError(t, s.SetValue(channel.Blue, 0))

	assert.Equal(t, []string{"#00ffff", "#ffffff"}, seen)
}

func TestConcurrentMutationsKeepInvariants(t *testing.T) {
	s, sink := newStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := channel.IDs[i%len(channel.IDs)]
			for j := 0; j < 100; j++ {
				_ = s.SetValue(id, float64(j)/100)
				_ = s.SetEnabled(id, j%3 != 0)
			}
		}(i)
	}
	wg.Wait()

	for _, id := range channel.IDs {
		c := s.Snapshot().Get(id)
		if c.Enabled {
			assert.Equal(t, c.Value, c.Backup, "%s enabled shape", id)
		} else {
			assert.Zero(t, c.Value, "%s disabled shape", id)
		}
	}
	assert.Equal(t, uint64(1600), s.Stats().Mutations)
	assert.Equal(t, prefs.RecordFromState(s.Snapshot()), sink.last())
}

func TestOpenPersistsAndReloads(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := testCtx(t)
	backend := prefs.NewMemoryBackend()

	s, err := Open(ctx, backend, WithWriteTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, channel.DefaultState(), s.Snapshot())

	require.NoError(t, s.SetValue(channel.Red, 0.5))
	require.NoError(t, s.SetEnabled(channel.Red, false))
	require.NoError(t, s.SetValue(channel.Blue, 0))
	require.NoError(t, s.Close(ctx))

	assert.Equal(t, map[string]string{
		"red": "0.5", "redActive": "false",
		"green": "1", "greenActive": "true",
		"blue": "0", "blueActive": "true",
	}, backend.Data())

	s2, err := Open(ctx, backend)
	require.NoError(t, err)
	defer s2.Close(ctx)

	want := channel.ColorState{
		Red:   channel.Channel{Value: 0, Enabled: false, Backup: 0.5},
		Green: channel.Default(),
		Blue:  channel.Channel{Value: 0, Enabled: true, Backup: 0},
	}
	if diff := cmp.Diff(want, s2.Snapshot()); diff != "" {
		t.Fatalf("reloaded state (-want +got):\n%s", diff)
	}

	require.NoError(t, s2.SetEnabled(channel.Red, true))
	assert.Equal(t, 0.5, s2.Snapshot().Red.Value)
}

func TestOpenToleratesReadAndWriteFailures(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := testCtx(t)
	backend := prefs.NewMemoryBackend()
	backend.SetReadError(errors.New("corrupt"))
	backend.SetWriteError(errors.New("disk full"))

	s, err := Open(ctx, backend)
	require.NoError(t, err)
	assert.Equal(t, channel.DefaultState(), s.Snapshot())

	require.NoError(t, s.SetValue(channel.Green, 0.2))
	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, 0.2, s.Snapshot().Green.Value)

	st := s.Stats()
	assert.Equal(t, uint64(1), st.Mutations)
	assert.Equal(t, uint64(1), st.Saves.Failed)
	require.NoError(t, s.Close(ctx))
}

// sessionBackend gives a memory backend a session id like SQLiteBackend.
type sessionBackend struct {
	*prefs.MemoryBackend
}

func (sessionBackend) SessionID() string { return "sess-42" }

func TestSaveFailureAuditCarriesSession(t *testing.T) {
	defer goleak.VerifyNone(t)
	core, audit := observer.New(zapcore.InfoLevel)
	logging.UseAuditCore(core)
	t.Cleanup(logging.CloseAudit)

	ctx := testCtx(t)
	backend := sessionBackend{prefs.NewMemoryBackend()}
	backend.SetWriteError(errors.New("disk full"))

	s, err := Open(ctx, backend)
	require.NoError(t, err)
	require.NoError(t, s.SetValue(channel.Blue, 0.4))
	require.NoError(t, s.Flush(ctx))
	require.NoError(t, s.Close(ctx))

	failed := audit.FilterMessage(string(logging.AuditSaveFailed)).All()
	require.Len(t, failed, 1)
	assert.Equal(t, "sess-42", failed[0].ContextMap()["session"])
	for _, e := range audit.All() {
		assert.Equal(t, "sess-42", e.ContextMap()["session"], e.Message)
	}
}

func TestOpenWithCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Open(ctx, prefs.NewMemoryBackend())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewWithoutSink(t *testing.T) {
	s := New(channel.DefaultState(), nil)
	require.NoError(t, s.SetValue(channel.Red, 0))
	require.NoError(t, s.Flush(context.Background()))
	require.NoError(t, s.Close(context.Background()))
	assert.Zero(t, s.Stats().Saves.Attempted)
}
