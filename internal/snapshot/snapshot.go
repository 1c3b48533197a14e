// Package snapshot persists the session document under a single fixed key.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// DefaultKey is the key the session document is stored under.
const DefaultKey = "inventarioProState"

// DefaultMaxBytes is the default storage quota for the session document.
const DefaultMaxBytes = 5 << 20

// ErrQuotaExceeded is returned by Save when the document does not fit.
var ErrQuotaExceeded = errors.New("snapshot: storage quota exceeded")

// Driver identifies a Store implementation.
type Driver string

// Drivers.
const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Store holds one document. Load returns nil, nil when nothing is stored.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
	Driver() Driver
}

func checkQuota(data []byte, maxBytes int) error {
	if maxBytes > 0 && len(data) > maxBytes {
		return fmt.Errorf("%w: %d bytes over a %d byte limit", ErrQuotaExceeded, len(data), maxBytes)
	}
	return nil
}

// Memory is an in-process Store, mostly for tests.
type Memory struct {
	mu       sync.RWMutex
	data     []byte
	maxBytes int
	saves    int
}

// NewMemory returns an empty Memory store. maxBytes <= 0 disables the quota.
func NewMemory(maxBytes int) *Memory {
	return &Memory{maxBytes: maxBytes}
}

// Load returns a copy of the stored document.
func (m *Memory) Load(context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

// Save replaces the stored document.
func (m *Memory) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if err := checkQuota(data, m.maxBytes); err != nil {
		return err
	}
	m.data = append([]byte(nil), data...)
	return nil
}

// Clear removes the stored document.
func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}

// SetMaxBytes changes the quota.
func (m *Memory) SetMaxBytes(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxBytes = n
}

// Saves returns how many times Save was called, including failed calls.
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// Driver reports DriverMemory.
func (m *Memory) Driver() Driver { return DriverMemory }
