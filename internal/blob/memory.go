package blob

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Store.
type Memory struct {
	mu      sync.RWMutex
	data    map[Collection]map[string]Blob
	blocked bool
	failPut map[string]error
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: map[Collection]map[string]Blob{}}
}

// SetBlocked simulates another consumer holding the store open.
func (m *Memory) SetBlocked(blocked bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocked = blocked
}

// FailPut makes every Put of key return err until cleared with a nil err.
func (m *Memory) FailPut(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut == nil {
		m.failPut = map[string]error{}
	}
	if err == nil {
		delete(m.failPut, key)
		return
	}
	m.failPut[key] = err
}

// Put stores a copy of data.
func (m *Memory) Put(_ context.Context, c Collection, key string, data []byte, contentType string) error {
	if err := validate(c, key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failPut[key]; err != nil {
		return err
	}
	if m.data[c] == nil {
		m.data[c] = map[string]Blob{}
	}
	m.data[c][key] = Blob{Key: key, Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

// Get returns a copy of the blob or nil.
func (m *Memory) Get(_ context.Context, c Collection, key string) (*Blob, error) {
	if err := validate(c, key); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[c][key]
	if !ok {
		return nil, nil
	}
	b.Data = append([]byte(nil), b.Data...)
	return &b, nil
}

// Delete removes the blob and reports whether it existed.
func (m *Memory) Delete(_ context.Context, c Collection, key string) (bool, error) {
	if err := validate(c, key); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[c][key]
	delete(m.data[c], key)
	return ok, nil
}

// List returns every blob in c ordered by key.
func (m *Memory) List(_ context.Context, c Collection) ([]Blob, error) {
	if err := validate(c, "-"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Blob, 0, len(m.data[c]))
	for _, b := range m.data[c] {
		b.Data = append([]byte(nil), b.Data...)
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Drop clears every collection unless the store is blocked.
func (m *Memory) Drop(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.blocked {
		return ErrBlocked
	}
	m.data = map[Collection]map[string]Blob{}
	return nil
}

// Driver reports DriverMemory.
func (m *Memory) Driver() Driver { return DriverMemory }
