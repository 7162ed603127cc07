package service

import (
	"context"

	"aave_topup/internal/app/port"
	"aave_topup/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

// JobStatusReport pairs the scheduler's view of the jobs with the current position.
type JobStatusReport struct {
	Owner      common.Address
	Jobs       []entity.JobStatus
	Assessment entity.Assessment
}

// JobStatusService lists registered jobs next to the live health factor.
type JobStatusService struct {
	scheduler port.JobScheduler
	monitor   port.HealthMonitor
	logger    port.Logger
}

// NewJobStatusService creates a JobStatusService.
func NewJobStatusService(scheduler port.JobScheduler, monitor port.HealthMonitor, l port.Logger) *JobStatusService {
	return &JobStatusService{
		scheduler: scheduler,
		monitor:   monitor,
		logger:    l.With("component", "JobStatusService"),
	}
}

// Status fetches jobs owned by owner and the current assessment of monitored.
// A scheduler failure is returned; the health factor read degrades to Unknown.
func (s *JobStatusService) Status(ctx context.Context, owner, monitored common.Address) (JobStatusReport, error) {
	report := JobStatusReport{Owner: owner}

	jobs, err := s.scheduler.JobsByUser(ctx, owner)
	if err != nil {
		s.logger.Error("Failed to list jobs", "owner", owner.Hex(), "error", err)
		return report, err
	}
	report.Jobs = jobs
	report.Assessment = s.monitor.HealthFactor(ctx, monitored)

	active := 0
	for _, j := range jobs {
		if j.Active {
			active++
		}
	}
	s.logger.Info("Fetched job status",
		"owner", owner.Hex(),
		"jobs", len(jobs),
		"active", active,
		"classification", string(report.Assessment.Classification),
	)
	return report, nil
}
