package jobs

import "sync"

// Store maps job identifiers to job records. Implementations must support
// concurrent reads during writes without ever exposing a partially-written
// record.
type Store interface {
	// Put inserts or replaces a job record as a single atomic unit.
	Put(job Job)
	// Get returns a snapshot of the record, if present.
	Get(id string) (Job, bool)
}

// MemoryStore is a process-lifetime, concurrency-safe Store. Records are
// never deleted and do not survive a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]Job)}
}

// Put replaces the stored record wholesale. Writers must never mutate
// slices referenced by a previously published record; they build fresh
// values instead, which keeps reader snapshots consistent.
func (s *MemoryStore) Put(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

// Get returns a value snapshot of the record.
func (s *MemoryStore) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	return job, ok
}
