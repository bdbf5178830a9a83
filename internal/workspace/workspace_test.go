package workspace

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-etl-builder/internal/model"
)

func TestWorkspace(t *testing.T) {
	ws := New()

	_, ok := ws.Lookup(1)
	assert.False(t, ok)

	ds := model.NewDataset("a")
	require.NoError(t, ds.AppendRow(int64(1)))
	ws.Put(1, ds)

	got, ok := ws.Lookup(1)
	require.True(t, ok)
	assert.Same(t, ds, got)
	assert.Equal(t, 1, ws.Len())

	ws.Delete(1)
	_, ok = ws.Lookup(1)
	assert.False(t, ok)
	assert.Equal(t, 0, ws.Len())
}

func TestWorkspaceConcurrent(t *testing.T) {
	ws := New()
	var wg sync.WaitGroup
	for i := int64(0); i < 16; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			ws.Put(id, model.NewDataset("x"))
			_, _ = ws.Lookup(id)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 16, ws.Len())
}
