package prefs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colormaker/internal/config"
)

var sample = Record{Red: 0.5, Green: 1, Blue: 0.125, RedActive: false, GreenActive: true, BlueActive: true}

func TestSQLiteBackendPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.db")

	b, err := NewSQLiteBackend(config.DriverPureGo, path)
	require.NoError(t, err)
	assert.NotEmpty(t, b.SessionID())
	assert.Equal(t, path, b.Path())

	got, err := b.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, b.SetAll(ctx, DefaultRecord().Encode()))
	require.NoError(t, b.SetAll(ctx, sample.Encode()))
	require.NoError(t, b.Close())

	b2, err := NewSQLiteBackend(config.DriverPureGo, path)
	require.NoError(t, err)
	defer b2.Close()
	assert.NotEqual(t, b.SessionID(), b2.SessionID())

	r, err := Load(ctx, b2)
	require.NoError(t, err)
	assert.Equal(t, sample, r)
}

func TestSQLiteBackendInMemory(t *testing.T) {
	ctx := context.Background()
	b, err := NewSQLiteBackend(config.DriverPureGo, ":memory:")
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.SetAll(ctx, map[string]string{"red": "0.1"}))
	got, err := b.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"red": "0.1"}, got)
}

func TestFileBackendPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "prefs.yaml")

	b, err := NewFileBackend(path)
	require.NoError(t, err)

	got, err := b.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, b.SetAll(ctx, sample.Encode()))
	require.NoError(t, b.Close())

	b2, err := NewFileBackend(path)
	require.NoError(t, err)
	r, err := Load(ctx, b2)
	require.NoError(t, err)
	assert.Equal(t, sample, r)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files left behind")
}

func TestFileBackendReadsHandEditedScalars(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("red: 0.2\nredActive: false\ncomment: hi\n"), 0644))

	b, err := NewFileBackend(path)
	require.NoError(t, err)

	r, err := Load(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, 0.2, r.Red)
	assert.False(t, r.RedActive)

	// Unknown keys survive a write.
	require.NoError(t, b.SetAll(context.Background(), r.Encode()))
	got, err := b.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hi", got["comment"])
}

func TestFileBackendRejectsCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("red: [unterminated\n"), 0644))

	b, err := NewFileBackend(path)
	require.NoError(t, err)

	r, err := Load(context.Background(), b)
	assert.Error(t, err)
	assert.Equal(t, DefaultRecord(), r)
}

func TestOpenBackend(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.StoreConfig
		want    interface{}
		wantErr bool
	}{
		{"sqlite", config.StoreConfig{Backend: config.BackendSQLite, Path: filepath.Join(dir, "a.db")}, &SQLiteBackend{}, false},
		{"file", config.StoreConfig{Backend: config.BackendFile, Path: filepath.Join(dir, "a.yaml")}, &FileBackend{}, false},
		{"memory", config.StoreConfig{Backend: config.BackendMemory}, &MemoryBackend{}, false},
		{"unknown", config.StoreConfig{Backend: "etcd"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := OpenBackend(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer b.Close()
			assert.IsType(t, tt.want, b)
		})
	}
}
