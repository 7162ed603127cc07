package service

import (
	"context"
	"fmt"
	"time"

	"aave_topup/internal/app/port"
	"aave_topup/internal/domain/entity"
	"aave_topup/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/time/rate"
)

// accountDataSourceImpl implements port.AccountDataSource.
type accountDataSourceImpl struct {
	reader  port.LendingPoolReader
	limiter *rate.Limiter
	logger  port.Logger
}

// NewAccountDataSource creates a data source reading through reader.
// A nil limiter disables rate limiting.
func NewAccountDataSource(reader port.LendingPoolReader, limiter *rate.Limiter, l port.Logger) port.AccountDataSource {
	return &accountDataSourceImpl{
		reader:  reader,
		limiter: limiter,
		logger:  l.With("component", "AccountDataSource"),
	}
}

// FetchAccountData reads the user's position and scales every figure from wad to decimal.
func (s *accountDataSourceImpl) FetchAccountData(ctx context.Context, user common.Address) (entity.AccountSnapshot, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			s.logger.Warn("Rate limiter rejected account data read", "user", user.Hex(), "error", err)
			return entity.AccountSnapshot{}, fmt.Errorf("%w: rate limiter: %v", entity.ErrUpstreamUnavailable, err)
		}
	}

	start := time.Now()
	raw, err := s.reader.GetUserAccountData(ctx, user)
	latency := time.Since(start)
	if err != nil {
		s.logger.Error("Failed to fetch account data", "user", user.Hex(), "latency", latency, "error", err)
		return entity.AccountSnapshot{}, fmt.Errorf("%w: %v", entity.ErrUpstreamUnavailable, err)
	}

	snapshot := entity.AccountSnapshot{
		TotalCollateral:  utils.ScaleBaseUnits(raw.TotalCollateralBase, utils.WadDecimals),
		TotalDebt:        utils.ScaleBaseUnits(raw.TotalDebtBase, utils.WadDecimals),
		AvailableBorrows: utils.ScaleBaseUnits(raw.AvailableBorrowsBase, utils.WadDecimals),
		HealthFactor:     utils.ScaleBaseUnits(raw.HealthFactor, utils.WadDecimals),
	}
	s.logger.Debug("Fetched account data",
		"user", user.Hex(),
		"latency", latency,
		"healthFactor", snapshot.HealthFactor.String(),
		"totalDebt", snapshot.TotalDebt.String(),
	)
	return snapshot, nil
}
