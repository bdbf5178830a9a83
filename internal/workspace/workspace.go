// Package workspace keeps the current in-memory dataset of each open source.
package workspace

import (
	"sync"

	"go-etl-builder/internal/model"
)

// Workspace maps a source ID to its current dataset.
// Datasets handed to Put are owned by the workspace afterwards and must not be modified.
type Workspace struct {
	mu       sync.RWMutex
	datasets map[int64]*model.Dataset
}

// New creates an empty workspace
func New() *Workspace {
	return &Workspace{datasets: make(map[int64]*model.Dataset)}
}

// Lookup returns the current dataset of a source
func (w *Workspace) Lookup(sourceID int64) (*model.Dataset, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ds, ok := w.datasets[sourceID]
	return ds, ok
}

// Put replaces the current dataset of a source
func (w *Workspace) Put(sourceID int64, ds *model.Dataset) {
	w.mu.Lock()
	w.datasets[sourceID] = ds
	w.mu.Unlock()
}

// Delete forgets a source
func (w *Workspace) Delete(sourceID int64) {
	w.mu.Lock()
	delete(w.datasets, sourceID)
	w.mu.Unlock()
}

func (w *Workspace) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.datasets)
}
