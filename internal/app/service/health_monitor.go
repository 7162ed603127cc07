package service

import (
	"context"
	"time"

	"aave_topup/internal/app/port"
	"aave_topup/internal/domain/entity"
	"aave_topup/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// healthMonitorImpl implements port.HealthMonitor.
type healthMonitorImpl struct {
	source    port.AccountDataSource
	evaluator *HealthFactorEvaluator
	logger    port.Logger
	tracked   map[common.Address]struct{}
}

// NewHealthMonitor creates a monitor that reads through source and classifies with evaluator.
// The per-address gauge is only set for tracked addresses; other lookups count toward the
// classification totals only.
func NewHealthMonitor(source port.AccountDataSource, evaluator *HealthFactorEvaluator, l port.Logger, tracked ...common.Address) port.HealthMonitor {
	set := make(map[common.Address]struct{}, len(tracked))
	for _, addr := range tracked {
		set[addr] = struct{}{}
	}
	return &healthMonitorImpl{
		source:    source,
		evaluator: evaluator,
		logger:    l.With("component", "HealthMonitor"),
		tracked:   set,
	}
}

func (m *healthMonitorImpl) Threshold() decimal.Decimal {
	return m.evaluator.Threshold()
}

// HealthFactor never fails. A read error yields value 0, which classifies as Unknown.
func (m *healthMonitorImpl) HealthFactor(ctx context.Context, user common.Address) entity.Assessment {
	snapshot, err := m.source.FetchAccountData(ctx, user)
	if err != nil {
		m.logger.Warn("Health factor read degraded to zero", "user", user.Hex(), "error", err)
		snapshot = entity.AccountSnapshot{HealthFactor: decimal.Zero}
	}
	assessment := m.evaluator.Evaluate(snapshot)
	m.record(user, assessment)
	return assessment
}

// Inspect returns the snapshot and its assessment, failing on read errors.
func (m *healthMonitorImpl) Inspect(ctx context.Context, user common.Address) (entity.AccountSnapshot, entity.Assessment, error) {
	snapshot, err := m.source.FetchAccountData(ctx, user)
	if err != nil {
		return entity.AccountSnapshot{}, entity.Assessment{}, err
	}
	assessment := m.evaluator.Evaluate(snapshot)
	m.record(user, assessment)
	return snapshot, assessment, nil
}

// Verify waits for settle so a just-submitted transaction can confirm, then re-reads the position.
func (m *healthMonitorImpl) Verify(ctx context.Context, user common.Address, settle time.Duration) (entity.Verification, error) {
	start := time.Now()
	if settle > 0 {
		m.logger.Debug("Waiting before verification read", "user", user.Hex(), "settle", settle)
		timer := time.NewTimer(settle)
		select {
		case <-ctx.Done():
			timer.Stop()
			return entity.Verification{}, ctx.Err()
		case <-timer.C:
		}
	}

	snapshot, assessment, err := m.Inspect(ctx, user)
	if err != nil {
		m.logger.Error("Verification read failed", "user", user.Hex(), "error", err)
		return entity.Verification{}, err
	}

	v := entity.Verification{
		Timestamp:  time.Now().UTC(),
		Address:    user.Hex(),
		Snapshot:   snapshot,
		Assessment: assessment,
		Latency:    time.Since(start),
	}
	m.logger.Info("Verification completed",
		"user", v.Address,
		"healthFactor", assessment.Value.String(),
		"classification", string(assessment.Classification),
		"safe", assessment.Safe(),
		"latency", v.Latency,
	)
	return v, nil
}

func (m *healthMonitorImpl) record(user common.Address, a entity.Assessment) {
	metrics.Classifications.WithLabelValues(string(a.Classification)).Inc()
	if a.Classification == entity.ClassificationNoDebt {
		return
	}
	if _, ok := m.tracked[user]; !ok {
		return
	}
	metrics.HealthFactor.WithLabelValues(user.Hex()).Set(a.Value.InexactFloat64())
}
