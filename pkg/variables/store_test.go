package variables_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cascadehq/cascade/pkg/variables"
)

func TestStoreSetGet(t *testing.T) {
	t.Parallel()

	store := variables.NewStore()

	_, ok := store.Get("missing")
	assert.False(t, ok)

	store.Set("region", "eu-west-1")

	value, ok := store.Get("region")
	assert.True(t, ok)
	assert.Equal(t, "eu-west-1", value)

	store.Set("region", "us-east-1")

	value, _ = store.Get("region")
	assert.Equal(t, "us-east-1", value)
}

func TestStoreSnapshotIsolation(t *testing.T) {
	t.Parallel()

	store := variables.NewStoreFrom(map[string]any{"a": float64(1)})

	snapshot := store.Snapshot()
	snapshot["a"] = float64(99)
	snapshot["b"] = "new"

	value, _ := store.Get("a")
	assert.Equal(t, float64(1), value)
	assert.Equal(t, 1, store.Len())
}

func TestStoreConcurrentWriters(t *testing.T) {
	t.Parallel()

	store := variables.NewStore()

	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			store.Set("counter", i)
		}()
	}

	wg.Wait()

	_, ok := store.Get("counter")
	assert.True(t, ok)
	assert.Equal(t, 1, store.Len())
}
