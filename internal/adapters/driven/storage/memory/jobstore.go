package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
	"github.com/inkwell-sync/inkwell/internal/core/ports/driven"
)

// Ensure JobStore implements the interface.
var _ driven.JobStore = (*JobStore)(nil)

// JobStore is an in-memory implementation of driven.JobStore.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]domain.ConversionJob
}

// NewJobStore creates a new in-memory job store.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]domain.ConversionJob),
	}
}

// Save stores or updates a job.
func (s *JobStore) Save(_ context.Context, job domain.ConversionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	return nil
}

// Get retrieves a job by ID.
func (s *JobStore) Get(_ context.Context, id string) (*domain.ConversionJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &job, nil
}

// ListBySource returns jobs for a source, newest first.
func (s *JobStore) ListBySource(_ context.Context, sourceID string, limit int) ([]domain.ConversionJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var jobs []domain.ConversionJob
	for _, job := range s.jobs {
		if sourceID == "" || job.SourceID == sourceID {
			jobs = append(jobs, job)
		}
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})

	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}
