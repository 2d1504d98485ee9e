package prefs

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colormaker/internal/channel"
)

func TestKeys(t *testing.T) {
	assert.Equal(t,
		[]string{"red", "redActive", "green", "greenActive", "blue", "blueActive"},
		Keys())
}

func TestDecodeEmptyIsDefault(t *testing.T) {
	r := DecodeRecord(map[string]string{})
	assert.Equal(t, DefaultRecord(), r)
	if diff := cmp.Diff(channel.DefaultState(), r.State()); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeFallsBackPerKey(t *testing.T) {
	r := DecodeRecord(map[string]string{
		"red":         "0.25",
		"redActive":   "maybe",
		"green":       "1.5",
		"greenActive": "false",
		"blue":        "NaN",
		"other":       "ignored",
	})
	want := Record{
		Red: 0.25, Green: 1, Blue: 1,
		RedActive: true, GreenActive: false, BlueActive: true,
	}
	assert.Equal(t, want, r)
}

func TestEncode(t *testing.T) {
	r := Record{Red: 0.5, Green: 1, Blue: 0, RedActive: false, GreenActive: true, BlueActive: true}
	assert.Equal(t, map[string]string{
		"red": "0.5", "redActive": "false",
		"green": "1", "greenActive": "true",
		"blue": "0", "blueActive": "true",
	}, r.Encode())
}

func TestDisabledChannelRoundTrip(t *testing.T) {
	stored := map[string]string{
		"red": "0.5", "redActive": "false",
		"green": "1", "greenActive": "true",
		"blue": "0", "blueActive": "true",
	}

	s := DecodeRecord(stored).State()
	want := channel.ColorState{
		Red:   channel.Channel{Value: 0, Enabled: false, Backup: 0.5},
		Green: channel.Channel{Value: 1, Enabled: true, Backup: 1},
		Blue:  channel.Channel{Value: 0, Enabled: true, Backup: 0},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Fatalf("reloaded state mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, stored, RecordFromState(s).Encode())

	// Re-enabling restores the persisted level.
	s.At(channel.Red).SetEnabled(true)
	assert.Equal(t, 0.5, s.Red.Value)
}

func TestRecordFromStateUsesRestorableLevel(t *testing.T) {
	s := channel.DefaultState()
	require.NoError(t, s.At(channel.Blue).SetValue(0.3))
	s.At(channel.Blue).SetEnabled(false)

	r := RecordFromState(s)
	assert.Equal(t, 0.3, r.Blue)
	assert.False(t, r.BlueActive)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		r, err := Load(ctx, NewMemoryBackend())
		require.NoError(t, err)
		assert.Equal(t, DefaultRecord(), r)
	})

	t.Run("read failure", func(t *testing.T) {
		b := NewMemoryBackend()
		boom := errors.New("disk gone")
		b.SetReadError(boom)
		r, err := Load(ctx, b)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, DefaultRecord(), r)
	})

	t.Run("partial", func(t *testing.T) {
		b := NewMemoryBackendWith(map[string]string{"green": "0.75"})
		r, err := Load(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, 0.75, r.Green)
		assert.Equal(t, 1.0, r.Red)
		assert.True(t, r.GreenActive)
	})
}
