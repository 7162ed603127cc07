package port

import (
	"context"
	"time"

	"aave_topup/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// AccountDataSource produces scaled snapshots of a lending position.
type AccountDataSource interface {
	// FetchAccountData fails with entity.ErrUpstreamUnavailable when the read call errors.
	FetchAccountData(ctx context.Context, user common.Address) (entity.AccountSnapshot, error)
}

// HealthMonitor combines the data source with the evaluator for the HTTP surface.
type HealthMonitor interface {
	// HealthFactor never fails: read errors degrade to a zero, Unknown assessment.
	HealthFactor(ctx context.Context, user common.Address) entity.Assessment
	Inspect(ctx context.Context, user common.Address) (entity.AccountSnapshot, entity.Assessment, error)
	Verify(ctx context.Context, user common.Address, settle time.Duration) (entity.Verification, error)
	Threshold() decimal.Decimal
}
