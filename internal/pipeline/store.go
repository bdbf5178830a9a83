package pipeline

import (
	"sort"
	"sync"
)

// sourcePipeline is the step sequence of one source, guarded by its own lock
type sourcePipeline struct {
	mu    sync.RWMutex
	steps []Step
}

// Store maps a source ID to its ordered pipeline.
// The outer lock only guards the map; each source's steps have their own lock,
// so work on one source never waits on another source's append or read.
type Store struct {
	mu        sync.RWMutex
	pipelines map[int64]*sourcePipeline
}

// NewStore creates an empty pipeline store
func NewStore() *Store {
	return &Store{pipelines: make(map[int64]*sourcePipeline)}
}

// entry returns the pipeline for a source, creating it when create is set
func (s *Store) entry(sourceID int64, create bool) *sourcePipeline {
	s.mu.RLock()
	p, ok := s.pipelines[sourceID]
	s.mu.RUnlock()
	if ok || !create {
		return p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok = s.pipelines[sourceID]; !ok {
		p = &sourcePipeline{}
		s.pipelines[sourceID] = p
	}
	return p
}

// Append adds a step to the end of the source's pipeline, creating the pipeline if needed
func (s *Store) Append(sourceID int64, step Step) {
	if step == nil {
		return
	}
	p := s.entry(sourceID, true)
	p.mu.Lock()
	p.steps = append(p.steps, step)
	p.mu.Unlock()
}

// Get returns a copy of the source's steps in append order.
// An unknown source yields an empty, non-nil list.
func (s *Store) Get(sourceID int64) []Step {
	p := s.entry(sourceID, false)
	if p == nil {
		return []Step{}
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	steps := make([]Step, len(p.steps))
	copy(steps, p.steps)
	return steps
}

// Len returns how many steps the source has recorded
func (s *Store) Len(sourceID int64) int {
	p := s.entry(sourceID, false)
	if p == nil {
		return 0
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.steps)
}

// Reset replaces the source's pipeline with an empty one
func (s *Store) Reset(sourceID int64) {
	p := s.entry(sourceID, true)
	p.mu.Lock()
	p.steps = nil
	p.mu.Unlock()
}

// Delete drops the source's pipeline. Called when the source itself is removed.
func (s *Store) Delete(sourceID int64) {
	s.mu.Lock()
	delete(s.pipelines, sourceID)
	s.mu.Unlock()
}

// Sources lists the source IDs that have a pipeline, in ascending order
func (s *Store) Sources() []int64 {
	s.mu.RLock()
	ids := make([]int64, 0, len(s.pipelines))
	for id := range s.pipelines {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
