package entity

import "github.com/shopspring/decimal"

// Classification is the risk bucket of a health factor.
type Classification string

const (
	ClassificationUnknown      Classification = "unknown"
	ClassificationNoDebt       Classification = "no_debt"
	ClassificationSafe         Classification = "safe"
	ClassificationModerate     Classification = "moderate"
	ClassificationHighRisk     Classification = "high_risk"
	ClassificationLiquidatable Classification = "liquidatable"
)

// Severity orders known classifications from safest (0) to most severe.
// Unknown is outside the scale and returns -1.
func (c Classification) Severity() int {
	switch c {
	case ClassificationNoDebt:
		return 0
	case ClassificationSafe:
		return 1
	case ClassificationModerate:
		return 2
	case ClassificationHighRisk:
		return 3
	case ClassificationLiquidatable:
		return 4
	default:
		return -1
	}
}

var (
	// DefaultNoDebtCutoff is the value above which a health factor is treated as saturated (no debt).
	DefaultNoDebtCutoff = decimal.New(1, 50)
	// DefaultClassificationMargin separates Safe from Moderate above the threshold.
	DefaultClassificationMargin = decimal.NewFromFloat(0.3)
	// LiquidationBoundary is the health factor at or below which a position can be liquidated.
	LiquidationBoundary = decimal.NewFromInt(1)
)

// RiskPolicy holds the immutable classification boundaries.
type RiskPolicy struct {
	Threshold    decimal.Decimal
	Margin       decimal.Decimal
	NoDebtCutoff decimal.Decimal
}

// NewRiskPolicy builds a policy around threshold with the default margin and no-debt cutoff.
func NewRiskPolicy(threshold decimal.Decimal) RiskPolicy {
	return RiskPolicy{
		Threshold:    threshold,
		Margin:       DefaultClassificationMargin,
		NoDebtCutoff: DefaultNoDebtCutoff,
	}
}
