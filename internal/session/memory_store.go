package session

import (
	"context"
	"sync"
)

// MemorySliceStore keeps the slice in process memory. It backs tests and
// demo deployments that do not want durable sessions.
type MemorySliceStore struct {
	mu      sync.Mutex
	slice   Slice
	present bool
}

func NewMemorySliceStore() *MemorySliceStore {
	return &MemorySliceStore{}
}

func (m *MemorySliceStore) Save(_ context.Context, slice Slice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slice = Slice{User: cloneUser(slice.User), Token: slice.Token}
	m.present = true
	return nil
}

func (m *MemorySliceStore) Load(_ context.Context) (Slice, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.present {
		return Slice{}, false, nil
	}
	return Slice{User: cloneUser(m.slice.User), Token: m.slice.Token}, true, nil
}

func (m *MemorySliceStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slice = Slice{}
	m.present = false
	return nil
}
