package client

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"aave_topup/internal/app/port"

	"github.com/ethereum/go-ethereum/common"
)

// ChainReader is the subset of *ethclient.Client used for diagnostics.
type ChainReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

type chainInspector struct {
	reader  ChainReader
	timeout time.Duration
}

// NewChainInspector wraps reader with a per-call timeout.
func NewChainInspector(reader ChainReader, timeout time.Duration) port.ChainInspector {
	return &chainInspector{reader: reader, timeout: timeout}
}

func (i *chainInspector) ChainID(ctx context.Context) (*big.Int, error) {
	callCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	id, err := i.reader.ChainID(callCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}
	return id, nil
}

// HasCode reports whether a contract is deployed at address on the latest block.
func (i *chainInspector) HasCode(ctx context.Context, address common.Address) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	code, err := i.reader.CodeAt(callCtx, address, nil)
	if err != nil {
		return false, fmt.Errorf("failed to get code at %s: %w", address.Hex(), err)
	}
	return len(code) > 0, nil
}
