package prefs

import (
	"context"
	"sync"
)

// MemoryBackend is an in-process store. It backs the memory backend option
// and doubles as a test fake with injectable failures.
type MemoryBackend struct {
	mu       sync.Mutex
	data     map[string]string
	readErr  error
	writeErr error
	writes   int
	onWrite  func(map[string]string)
}

// NewMemoryBackend returns an empty store.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]string)}
}

// NewMemoryBackendWith returns a store pre-populated with data.
func NewMemoryBackendWith(data map[string]string) *MemoryBackend {
	m := NewMemoryBackend()
	for k, v := range data {
		m.data[k] = v
	}
	return m
}

func (m *MemoryBackend) GetAll(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.readErr != nil {
		return nil, m.readErr
	}
	return copyMap(m.data), nil
}

func (m *MemoryBackend) SetAll(ctx context.Context, values map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.writes++
	if m.writeErr != nil {
		err := m.writeErr
		m.mu.Unlock()
		return err
	}
	for k, v := range values {
		m.data[k] = v
	}
	hook := m.onWrite
	snapshot := copyMap(m.data)
	m.mu.Unlock()

	if hook != nil {
		hook(snapshot)
	}
	return nil
}

func (m *MemoryBackend) Close() error {
	return nil
}

// SetReadError makes GetAll fail with err (nil clears it).
func (m *MemoryBackend) SetReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// SetWriteError makes SetAll fail with err (nil clears it).
func (m *MemoryBackend) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// OnWrite registers a hook called after each successful write, outside
// the lock.
func (m *MemoryBackend) OnWrite(fn func(map[string]string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onWrite = fn
}

// Writes counts SetAll calls, failed ones included.
func (m *MemoryBackend) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Data returns a copy of the stored preferences.
func (m *MemoryBackend) Data() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyMap(m.data)
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
