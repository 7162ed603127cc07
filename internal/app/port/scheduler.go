package port

import (
	"context"

	"aave_topup/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

// JobScheduler talks to the external job-execution network.
type JobScheduler interface {
	// CreateJob submits a job and normalizes every response shape, including transport failures.
	CreateJob(ctx context.Context, spec entity.JobSpecification) entity.JobResult
	JobsByUser(ctx context.Context, user common.Address) ([]entity.JobStatus, error)
}

// ValueSourceProber performs a bounded diagnostic GET against a value-source URL.
type ValueSourceProber interface {
	Probe(ctx context.Context, url string) entity.ProbeResult
}
