package snapshot

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/inventario/internal/model"
	"github.com/erazemk/inventario/internal/notify"
	"github.com/erazemk/inventario/internal/state"
)

func TestPersisterLoadAbsent(t *testing.T) {
	p := NewPersister(NewMemory(0), nil, nil)

	s, ok, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, state.DefaultTheme, s.Theme)
}

func TestPersisterLoadMalformedDiscards(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	require.NoError(t, m.Save(ctx, []byte(`{"inventory":`)))
	p := NewPersister(m, nil, nil)

	s, ok, err := p.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotNil(t, s)

	stored, _ := m.Load(ctx)
	assert.Nil(t, stored, "malformed document must be removed")
}

func TestPersisterSaveLoad(t *testing.T) {
	ctx := context.Background()
	p := NewPersister(NewMemory(0), nil, nil)

	s := state.Default()
	s.Inventory = append(s.Inventory, model.InventoryItem{Key: "100001", Serial: "X1", Located: model.No})
	require.NoError(t, p.Save(ctx, s))

	loaded, ok, err := p.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, loaded.Inventory, 1)
	assert.True(t, loaded.HasSerial("x1"))
}

func TestPersisterStorageExhaustion(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	var rec notify.Recorder
	p := NewPersister(m, &rec, nil)

	s := state.Default()
	var mu sync.Mutex
	readOnly := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return s.ReadOnlyMode
	}
	var attempts atomic.Int32
	auto, err := NewAutosave(func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		attempts.Add(1)
		return p.Save(ctx, s)
	}, nil)
	require.NoError(t, err)
	defer auto.Shutdown()
	p.AttachAutosave(auto)

	require.NoError(t, auto.Start(10*time.Millisecond))
	require.Eventually(t, func() bool { return attempts.Load() >= 1 }, time.Second, 5*time.Millisecond)

	m.SetMaxBytes(10)
	require.Eventually(t, func() bool { return readOnly() }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return !auto.Running() }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, rec.Count(notify.KindStorageExhausted))
	blocking := rec.Notices()[0]
	assert.True(t, blocking.Blocking)

	saves := m.Saves()
	mu.Lock()
	err = p.Save(ctx, s)
	mu.Unlock()
	require.NoError(t, err, "save in read-only mode is a silent no-op")
	assert.Equal(t, saves, m.Saves())

	fired := attempts.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, fired, attempts.Load(), "autosave must not fire again")
}

func TestPersisterWriteRawBypassesReadOnly(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	p := NewPersister(m, nil, nil)

	require.NoError(t, p.WriteRaw(ctx, []byte(`{"readOnlyMode":false}`)))
	raw, err := p.ReadRaw(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"readOnlyMode":false}`, string(raw))
}

func TestAutosaveRestart(t *testing.T) {
	var calls atomic.Int32
	auto, err := NewAutosave(func(context.Context) error {
		calls.Add(1)
		return nil
	}, nil)
	require.NoError(t, err)
	defer auto.Shutdown()

	assert.False(t, auto.Running())
	require.NoError(t, auto.Start(0))
	assert.Equal(t, DefaultAutosaveInterval, auto.Interval())

	require.NoError(t, auto.Start(10*time.Millisecond))
	assert.Equal(t, 10*time.Millisecond, auto.Interval())
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, auto.Stop())
	require.NoError(t, auto.Stop())
	assert.False(t, auto.Running())
	assert.Zero(t, auto.Interval())
}
