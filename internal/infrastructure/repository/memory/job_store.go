package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/trackside/livetracker/internal/domain/trackjob"
)

// JobStore is the scheduler's own job record store.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]trackjob.Job
}

func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]trackjob.Job)}
}

func (s *JobStore) Get(_ context.Context, matchID string) (trackjob.Job, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[matchID]
	return job, ok, nil
}

func (s *JobStore) List(_ context.Context) ([]trackjob.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]trackjob.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchID < out[j].MatchID })
	return out, nil
}

func (s *JobStore) Save(_ context.Context, job trackjob.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[job.MatchID] = job
	return nil
}

func (s *JobStore) Delete(_ context.Context, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.jobs, matchID)
	return nil
}
