package entity

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// RawAccountData mirrors the getUserAccountData return tuple in base units.
type RawAccountData struct {
	TotalCollateralBase         *big.Int
	TotalDebtBase               *big.Int
	AvailableBorrowsBase        *big.Int
	CurrentLiquidationThreshold *big.Int
	LTV                         *big.Int
	HealthFactor                *big.Int
}

// AccountSnapshot is the scaled projection of a lending position at query time.
// It is built fresh on every read and never cached.
type AccountSnapshot struct {
	TotalCollateral  decimal.Decimal `json:"totalCollateral"`
	TotalDebt        decimal.Decimal `json:"totalDebt"`
	HealthFactor     decimal.Decimal `json:"healthFactor"`
	AvailableBorrows decimal.Decimal `json:"availableBorrows"`
}

// Assessment is the evaluated health factor of a snapshot.
type Assessment struct {
	Value          decimal.Decimal
	Classification Classification
	Threshold      decimal.Decimal
}

// Safe reports whether the value is strictly above the risk threshold.
func (a Assessment) Safe() bool {
	return a.Value.GreaterThan(a.Threshold)
}

// Verification is the result of a post-remediation re-read.
type Verification struct {
	Timestamp  time.Time
	Address    string
	Snapshot   AccountSnapshot
	Assessment Assessment
	Latency    time.Duration
}
