package service

import (
	"context"
	"testing"

	"aave_topup/internal/domain/entity"
	"aave_topup/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStatusCombinesJobsAndHealth(t *testing.T) {
	scheduler := new(mockScheduler)
	scheduler.On("JobsByUser", mock.Anything, testOwner).Return([]entity.JobStatus{
		{JobID: "1", Status: "running", Active: true},
		{JobID: "2", Status: "completed", Completed: true},
	}, nil)
	source := new(mockAccountSource)
	source.On("FetchAccountData", mock.Anything, testUser).Return(snapshotWithHF("1.3"), nil)
	monitor := NewHealthMonitor(source, newTestEvaluator(), logger.NewNop())

	report, err := NewJobStatusService(scheduler, monitor, logger.NewNop()).
		Status(context.Background(), testOwner, testUser)
	require.NoError(t, err)

	assert.Len(t, report.Jobs, 2)
	assert.Equal(t, entity.ClassificationModerate, report.Assessment.Classification)
}

func TestStatusPropagatesSchedulerError(t *testing.T) {
	scheduler := new(mockScheduler)
	scheduler.On("JobsByUser", mock.Anything, testOwner).Return(nil, entity.ErrUpstreamUnavailable)
	monitor := NewHealthMonitor(new(mockAccountSource), newTestEvaluator(), logger.NewNop())

	_, err := NewJobStatusService(scheduler, monitor, logger.NewNop()).
		Status(context.Background(), testOwner, testUser)

	assert.ErrorIs(t, err, entity.ErrUpstreamUnavailable)
}
