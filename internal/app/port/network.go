package port

import (
	"context"
	"math/big"

	"aave_topup/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

// LendingPoolReader reads raw account figures from the lending pool contract.
type LendingPoolReader interface {
	GetUserAccountData(ctx context.Context, user common.Address) (entity.RawAccountData, error)
}

// ChainInspector answers connectivity and contract-presence questions about the RPC network.
type ChainInspector interface {
	ChainID(ctx context.Context) (*big.Int, error)
	HasCode(ctx context.Context, address common.Address) (bool, error)
}

// NetworkDefinitionProvider resolves built-in deployments.
type NetworkDefinitionProvider interface {
	GetAllNetworkDefinitions() []entity.NetworkDefinition
	GetNetworkDefinitionByChainID(chainID uint64) (entity.NetworkDefinition, bool)
}
