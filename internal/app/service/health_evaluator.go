package service

import (
	"aave_topup/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// HealthFactorEvaluator classifies scaled health factors against a fixed RiskPolicy.
type HealthFactorEvaluator struct {
	policy entity.RiskPolicy
	safeAt decimal.Decimal
}

// NewHealthFactorEvaluator creates an evaluator. Zero Margin or NoDebtCutoff fall back to the defaults.
func NewHealthFactorEvaluator(policy entity.RiskPolicy) *HealthFactorEvaluator {
	if policy.Margin.IsZero() {
		policy.Margin = entity.DefaultClassificationMargin
	}
	if policy.NoDebtCutoff.IsZero() {
		policy.NoDebtCutoff = entity.DefaultNoDebtCutoff
	}
	return &HealthFactorEvaluator{
		policy: policy,
		safeAt: policy.Threshold.Add(policy.Margin),
	}
}

// Policy returns the boundaries in use.
func (e *HealthFactorEvaluator) Policy() entity.RiskPolicy {
	return e.policy
}

// Threshold returns the configured risk threshold.
func (e *HealthFactorEvaluator) Threshold() decimal.Decimal {
	return e.policy.Threshold
}

// Evaluate classifies the snapshot's health factor.
func (e *HealthFactorEvaluator) Evaluate(snapshot entity.AccountSnapshot) entity.Assessment {
	return entity.Assessment{
		Value:          snapshot.HealthFactor,
		Classification: e.Classify(snapshot.HealthFactor),
		Threshold:      e.policy.Threshold,
	}
}

// Classify applies the boundaries in order, first match wins.
// The NoDebt and Safe boundaries are inclusive.
func (e *HealthFactorEvaluator) Classify(value decimal.Decimal) entity.Classification {
	switch {
	case value.IsZero():
		return entity.ClassificationUnknown
	case value.GreaterThanOrEqual(e.policy.NoDebtCutoff):
		return entity.ClassificationNoDebt
	case value.GreaterThanOrEqual(e.safeAt):
		return entity.ClassificationSafe
	case value.GreaterThan(e.policy.Threshold):
		return entity.ClassificationModerate
	case value.GreaterThan(entity.LiquidationBoundary):
		return entity.ClassificationHighRisk
	default:
		return entity.ClassificationLiquidatable
	}
}
