package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aave_topup/internal/app/port"

	"github.com/ethereum/go-ethereum/ethclient"
)

// DialWithFallback connects to the first reachable RPC URL. When expectedChainID is non-zero,
// endpoints reporting a different chain are skipped.
func DialWithFallback(ctx context.Context, rpcURLs []string, expectedChainID uint64, connectionTimeout time.Duration, logger port.Logger) (*ethclient.Client, error) {
	if len(rpcURLs) == 0 {
		return nil, errors.New("no RPC URLs configured")
	}

	var lastErr error
	for _, rpcURL := range rpcURLs {
		dialCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
		client, err := ethclient.DialContext(dialCtx, rpcURL)
		if err != nil {
			cancel()
			lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
			logger.Warn("RPC dial failed", "rpc", rpcURL, "error", err)
			continue
		}

		if expectedChainID != 0 {
			chainID, err := client.ChainID(dialCtx)
			if err != nil {
				cancel()
				client.Close()
				lastErr = fmt.Errorf("failed to verify chain id for %s: %w", rpcURL, err)
				logger.Warn("RPC chain id check failed", "rpc", rpcURL, "error", err)
				continue
			}
			if !chainID.IsUint64() || chainID.Uint64() != expectedChainID {
				cancel()
				client.Close()
				lastErr = fmt.Errorf("chain id mismatch for %s: expected %d, got %s", rpcURL, expectedChainID, chainID)
				logger.Warn("RPC serves a different chain", "rpc", rpcURL, "expected", expectedChainID, "got", chainID.String())
				continue
			}
		}
		cancel()

		logger.Info("Connected to RPC", "rpc", rpcURL)
		return client, nil
	}
	return nil, fmt.Errorf("all RPC connection attempts failed: %w", lastErr)
}
