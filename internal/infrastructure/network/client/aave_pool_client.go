package client

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"aave_topup/internal/app/port"
	"aave_topup/internal/domain/entity"
	"aave_topup/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// AavePoolABI covers the pool methods used for reads and the top-up call.
const AavePoolABI = `[{"inputs":[{"internalType":"address","name":"asset","type":"address"},{"internalType":"uint256","name":"amount","type":"uint256"},{"internalType":"address","name":"onBehalfOf","type":"address"},{"internalType":"uint16","name":"referralCode","type":"uint16"}],"name":"supply","outputs":[],"stateMutability":"nonpayable","type":"function"},{"inputs":[{"internalType":"address","name":"user","type":"address"}],"name":"getUserAccountData","outputs":[{"internalType":"uint256","name":"totalCollateralBase","type":"uint256"},{"internalType":"uint256","name":"totalDebtBase","type":"uint256"},{"internalType":"uint256","name":"availableBorrowsBase","type":"uint256"},{"internalType":"uint256","name":"currentLiquidationThreshold","type":"uint256"},{"internalType":"uint256","name":"ltv","type":"uint256"},{"internalType":"uint256","name":"healthFactor","type":"uint256"}],"stateMutability":"view","type":"function"}]`

const getUserAccountDataMethod = "getUserAccountData"

var (
	parsedPoolABI  abi.ABI
	parsedPoolOnce sync.Once
)

func initParsedPoolABI() {
	parsedPoolOnce.Do(func() {
		var err error
		parsedPoolABI, err = abi.JSON(strings.NewReader(AavePoolABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse Aave pool ABI: %v", err))
		}
		for _, name := range []string{getUserAccountDataMethod, entity.TopUpTargetFunction} {
			if _, ok := parsedPoolABI.Methods[name]; !ok {
				panic(name + " method not found in parsed Aave pool ABI")
			}
		}
	})
}

// AavePoolClient reads account data from an Aave V3 pool.
type AavePoolClient struct {
	caller         bind.ContractCaller
	pool           common.Address
	rpcCallTimeout time.Duration
}

// NewAavePoolClient binds a pool address to a contract caller such as *ethclient.Client.
func NewAavePoolClient(caller bind.ContractCaller, pool common.Address, rpcCallTimeout time.Duration) port.LendingPoolReader {
	initParsedPoolABI()
	return &AavePoolClient{caller: caller, pool: pool, rpcCallTimeout: rpcCallTimeout}
}

// GetUserAccountData calls getUserAccountData(user) and returns the raw base-unit tuple.
func (c *AavePoolClient) GetUserAccountData(ctx context.Context, user common.Address) (raw entity.RawAccountData, err error) {
	done := metrics.TrackRPC(getUserAccountDataMethod)
	defer func() { done(err) }()

	callData, err := parsedPoolABI.Pack(getUserAccountDataMethod, user)
	if err != nil {
		return entity.RawAccountData{}, fmt.Errorf("failed to pack %s: %w", getUserAccountDataMethod, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	out, err := c.caller.CallContract(callCtx, ethereum.CallMsg{To: &c.pool, Data: callData}, nil)
	if err != nil {
		return entity.RawAccountData{}, fmt.Errorf("%s call on pool %s failed: %w", getUserAccountDataMethod, c.pool.Hex(), err)
	}
	if len(out) == 0 {
		return entity.RawAccountData{}, fmt.Errorf("%s returned no data; is %s a pool contract?", getUserAccountDataMethod, c.pool.Hex())
	}

	values, err := parsedPoolABI.Unpack(getUserAccountDataMethod, out)
	if err != nil {
		return entity.RawAccountData{}, fmt.Errorf("failed to unpack %s result: %w", getUserAccountDataMethod, err)
	}
	if len(values) != 6 {
		return entity.RawAccountData{}, fmt.Errorf("%s returned %d values, want 6", getUserAccountDataMethod, len(values))
	}

	ints := make([]*big.Int, len(values))
	for i, v := range values {
		n, ok := v.(*big.Int)
		if !ok || n == nil {
			return entity.RawAccountData{}, fmt.Errorf("unexpected type in %s result at %d: %T", getUserAccountDataMethod, i, v)
		}
		ints[i] = n
	}

	return entity.RawAccountData{
		TotalCollateralBase:         ints[0],
		TotalDebtBase:               ints[1],
		AvailableBorrowsBase:        ints[2],
		CurrentLiquidationThreshold: ints[3],
		LTV:                         ints[4],
		HealthFactor:                ints[5],
	}, nil
}
