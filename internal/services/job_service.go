package services

import (
	"github.com/horizon-travel/crm-api/internal/jobs"
)

// JobService exposes worker pool health for the admin endpoint
type JobService struct {
	worker *jobs.Worker
}

func NewJobService(worker *jobs.Worker) *JobService {
	return &JobService{worker: worker}
}

// GetStatus returns a snapshot of the background worker counters
func (s *JobService) GetStatus() jobs.WorkerStats {
	return s.worker.GetStats()
}
