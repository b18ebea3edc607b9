package storage

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/docuflow/docuflow-backend/internal/review/domain"
)

// JobStore holds review jobs in memory while clients poll for results.
// Jobs expire after a TTL; results live in the audit table for anything
// longer-lived than a polling session.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*domain.ReviewJob
	ttl  time.Duration
}

// NewJobStore creates an in-memory job store with the given TTL
func NewJobStore(ttl time.Duration) *JobStore {
	s := &JobStore{
		jobs: make(map[string]*domain.ReviewJob),
		ttl:  ttl,
	}
	go s.cleanupLoop()
	return s
}

// GenerateJobID creates a cryptographically random job ID
func GenerateJobID() string {
	b := make([]byte, 16)
	rand.Read(b)
	const hex = "0123456789abcdef"
	id := make([]byte, 32)
	for i, v := range b {
		id[i*2] = hex[v>>4]
		id[i*2+1] = hex[v&0x0f]
	}
	return string(id)
}

// StoreJob stores a review job
func (s *JobStore) StoreJob(job *domain.ReviewJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.JobID] = job
}

// GetJob retrieves a review job by ID, or nil when unknown or expired.
// Workers keep appending results while a batch runs, so callers get a
// snapshot with its own Results slice, safe to read or encode outside the
// store lock.
func (s *JobStore) GetJob(jobID string) *domain.ReviewJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil
	}
	snapshot := *job
	snapshot.Results = append([]domain.FileResult(nil), job.Results...)
	return &snapshot
}

// UpdateJob applies update to an existing job under the store lock
func (s *JobStore) UpdateJob(jobID string, update func(*domain.ReviewJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[jobID]; ok {
		update(job)
	}
}

// DeleteJob removes a job from the store
func (s *JobStore) DeleteJob(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
}

// cleanupLoop periodically removes expired jobs
func (s *JobStore) cleanupLoop() {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()
	for range ticker.C {
		s.cleanup()
	}
}

func (s *JobStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-s.ttl)
	for id, job := range s.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
}
