package service

import (
	"context"
	"fmt"
	"math/big"
	"testing"
	"time"

	"aave_topup/internal/domain/entity"
	"aave_topup/internal/pkg/logger"
	"aave_topup/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func snapshotWithHF(hf string) entity.AccountSnapshot {
	return entity.AccountSnapshot{
		TotalCollateral:  decimal.NewFromInt(2000),
		TotalDebt:        decimal.NewFromInt(1000),
		AvailableBorrows: decimal.NewFromInt(100),
		HealthFactor:     decimal.RequireFromString(hf),
	}
}

func TestHealthFactorDegradesToUnknown(t *testing.T) {
	source := new(mockAccountSource)
	source.On("FetchAccountData", mock.Anything, testUser).
		Return(entity.AccountSnapshot{}, fmt.Errorf("%w: dial tcp: i/o timeout", entity.ErrUpstreamUnavailable))

	m := NewHealthMonitor(source, newTestEvaluator(), logger.NewNop())
	a := m.HealthFactor(context.Background(), testUser)

	assert.True(t, a.Value.IsZero())
	assert.Equal(t, entity.ClassificationUnknown, a.Classification)
	assert.False(t, a.Safe())
}

func TestHealthFactorBelowThreshold(t *testing.T) {
	source := new(mockAccountSource)
	source.On("FetchAccountData", mock.Anything, testUser).Return(snapshotWithHF("1.1"), nil)

	m := NewHealthMonitor(source, newTestEvaluator(), logger.NewNop())
	a := m.HealthFactor(context.Background(), testUser)

	assert.Equal(t, "1.1", a.Value.String())
	assert.Equal(t, entity.ClassificationHighRisk, a.Classification)
	assert.False(t, a.Safe())
	assert.Equal(t, "1.2", m.Threshold().String())
}

func TestInspectPropagatesErrors(t *testing.T) {
	source := new(mockAccountSource)
	source.On("FetchAccountData", mock.Anything, testUser).
		Return(entity.AccountSnapshot{}, entity.ErrUpstreamUnavailable)

	m := NewHealthMonitor(source, newTestEvaluator(), logger.NewNop())
	_, _, err := m.Inspect(context.Background(), testUser)

	assert.ErrorIs(t, err, entity.ErrUpstreamUnavailable)
}

func TestVerifyWaitsForSettle(t *testing.T) {
	source := new(mockAccountSource)
	source.On("FetchAccountData", mock.Anything, testUser).Return(snapshotWithHF("1.6"), nil)

	m := NewHealthMonitor(source, newTestEvaluator(), logger.NewNop())
	v, err := m.Verify(context.Background(), testUser, 30*time.Millisecond)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, v.Latency, 30*time.Millisecond)
	assert.Equal(t, testUser.Hex(), v.Address)
	assert.Equal(t, entity.ClassificationSafe, v.Assessment.Classification)
	assert.True(t, v.Assessment.Safe())
	assert.Equal(t, "2000", v.Snapshot.TotalCollateral.String())
	assert.False(t, v.Timestamp.IsZero())
}

func TestVerifyCancelledDuringSettle(t *testing.T) {
	source := new(mockAccountSource)
	m := NewHealthMonitor(source, newTestEvaluator(), logger.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := m.Verify(ctx, testUser, time.Second)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	source.AssertNotCalled(t, "FetchAccountData", mock.Anything, mock.Anything)
}

func TestHealthFactorGaugeOnlyForTrackedAddress(t *testing.T) {
	tracked := common.HexToAddress("0x7777777777777777777777777777777777777777")
	foreign := common.HexToAddress("0x8888888888888888888888888888888888888888")

	source := new(mockAccountSource)
	source.On("FetchAccountData", mock.Anything, mock.Anything).Return(snapshotWithHF("1.1"), nil)
	m := NewHealthMonitor(source, newTestEvaluator(), logger.NewNop(), tracked)

	before := testutil.CollectAndCount(metrics.HealthFactor)
	for i := 0; i < 3; i++ {
		m.HealthFactor(context.Background(), common.BigToAddress(big.NewInt(int64(0x9000+i))))
	}
	m.HealthFactor(context.Background(), foreign)
	assert.Equal(t, before, testutil.CollectAndCount(metrics.HealthFactor))

	m.HealthFactor(context.Background(), tracked)
	assert.Equal(t, before+1, testutil.CollectAndCount(metrics.HealthFactor))
	assert.InDelta(t, 1.1, testutil.ToFloat64(metrics.HealthFactor.WithLabelValues(tracked.Hex())), 1e-9)
}
