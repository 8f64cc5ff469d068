package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_PutIfAbsent(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	inserted, err := m.PutIfAbsent(ctx, "cid-1", 101)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = m.PutIfAbsent(ctx, "cid-1", 101)
	require.NoError(t, err)
	assert.False(t, inserted)

	seen, err := m.Contains(ctx, "cid-1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestMemory_Delete(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	_, err := m.PutIfAbsent(ctx, "cid-1", 101)
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx, "cid-1"))
	require.NoError(t, m.Delete(ctx, "cid-1")) // deleting again is fine

	seen, err := m.Contains(ctx, "cid-1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory(10 * time.Minute)
	now := time.Now()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := m.PutIfAbsent(ctx, "cid-1", 101)
	require.NoError(t, err)

	now = now.Add(11 * time.Minute)

	seen, err := m.Contains(ctx, "cid-1")
	require.NoError(t, err)
	assert.False(t, seen, "expired entry must not read as present")

	inserted, err := m.PutIfAbsent(ctx, "cid-1", 101)
	require.NoError(t, err)
	assert.True(t, inserted, "expired entry must not block re-insert")
}

func TestMemory_Sweep(t *testing.T) {
	m := NewMemory(10 * time.Minute)
	now := time.Now()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := m.PutIfAbsent(ctx, "cid-old", 101)
	require.NoError(t, err)

	now = now.Add(11 * time.Minute)
	_, err = m.PutIfAbsent(ctx, "cid-fresh", 102)
	require.NoError(t, err)

	assert.Equal(t, 1, m.Sweep())

	seen, err := m.Contains(ctx, "cid-fresh")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestMemory_ConcurrentPutIfAbsent(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	const goroutines = 50
	var inserted sync.Map
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := m.PutIfAbsent(ctx, "cid-1", 101)
			require.NoError(t, err)
			if ok {
				inserted.Store(i, true)
			}
		}(i)
	}
	wg.Wait()

	count := 0
	inserted.Range(func(_, _ any) bool {
		count++
		return true
	})
	assert.Equal(t, 1, count, "exactly one insert wins")
}
