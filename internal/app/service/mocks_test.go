package service

import (
	"context"
	"math/big"

	"aave_topup/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
)

type mockPoolReader struct{ mock.Mock }

func (m *mockPoolReader) GetUserAccountData(ctx context.Context, user common.Address) (entity.RawAccountData, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(entity.RawAccountData), args.Error(1)
}

type mockAccountSource struct{ mock.Mock }

func (m *mockAccountSource) FetchAccountData(ctx context.Context, user common.Address) (entity.AccountSnapshot, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(entity.AccountSnapshot), args.Error(1)
}

type mockCreator struct{ mock.Mock }

func (m *mockCreator) CreateSafeWallet(ctx context.Context, owner common.Address) (common.Address, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(common.Address), args.Error(1)
}

type mockStore struct{ mock.Mock }

func (m *mockStore) Load() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *mockStore) Save(address common.Address) error {
	return m.Called(address).Error(0)
}

type mockScheduler struct{ mock.Mock }

func (m *mockScheduler) CreateJob(ctx context.Context, spec entity.JobSpecification) entity.JobResult {
	return m.Called(ctx, spec).Get(0).(entity.JobResult)
}

func (m *mockScheduler) JobsByUser(ctx context.Context, user common.Address) ([]entity.JobStatus, error) {
	args := m.Called(ctx, user)
	jobs, _ := args.Get(0).([]entity.JobStatus)
	return jobs, args.Error(1)
}

type mockProber struct{ mock.Mock }

func (m *mockProber) Probe(ctx context.Context, url string) entity.ProbeResult {
	return m.Called(ctx, url).Get(0).(entity.ProbeResult)
}

type mockChain struct{ mock.Mock }

func (m *mockChain) ChainID(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	id, _ := args.Get(0).(*big.Int)
	return id, args.Error(1)
}

func (m *mockChain) HasCode(ctx context.Context, address common.Address) (bool, error) {
	args := m.Called(ctx, address)
	return args.Bool(0), args.Error(1)
}

func wad(units int64, fraction int64) *big.Int {
	// units + fraction/1000, in 18-decimal base units
	v := new(big.Int).Mul(big.NewInt(units*1000+fraction), big.NewInt(1_000_000_000_000_000))
	return v
}
