package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"aave_topup/internal/app/port"
	"aave_topup/internal/domain/entity"
	"aave_topup/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
)

// SafeWalletCoordinator resolves the execution wallet once per instance and memoizes it.
type SafeWalletCoordinator struct {
	configured string
	owner      common.Address
	creator    port.SafeWalletCreator
	store      port.SafeAddressStore
	logger     port.Logger

	mu     sync.Mutex
	handle entity.SafeWalletHandle
}

// NewSafeWalletCoordinator creates a coordinator. configured may be empty, in which case
// the first Resolve provisions a wallet for owner through creator.
func NewSafeWalletCoordinator(configured string, owner common.Address, creator port.SafeWalletCreator, l port.Logger) *SafeWalletCoordinator {
	return &SafeWalletCoordinator{
		configured: strings.TrimSpace(configured),
		owner:      owner,
		creator:    creator,
		logger:     l.With("component", "SafeWalletCoordinator"),
	}
}

// PersistTo makes the coordinator save newly created wallets to store.
func (c *SafeWalletCoordinator) PersistTo(store port.SafeAddressStore) *SafeWalletCoordinator {
	c.store = store
	return c
}

// Handle returns a copy of the current handle.
func (c *SafeWalletCoordinator) Handle() entity.SafeWalletHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle
}

// Resolve returns the memoized address, adopting the configured one or creating a wallet on first use.
// A failed creation leaves the handle unset so the call can be retried.
func (c *SafeWalletCoordinator) Resolve(ctx context.Context) (common.Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle.Resolved() {
		return c.handle.Address, nil
	}

	if c.configured != "" {
		addr, err := utils.ParseAddress(c.configured)
		if err != nil {
			return common.Address{}, fmt.Errorf("%w: safe wallet address: %v", entity.ErrConfiguration, err)
		}
		c.handle = entity.SafeWalletHandle{State: entity.SafeWalletFromConfig, Address: addr}
		c.logger.Info("Using configured Safe wallet", "safe", addr.Hex())
		return addr, nil
	}

	if c.creator == nil {
		return common.Address{}, fmt.Errorf("%w: no Safe factory configured", entity.ErrWalletCreationFailed)
	}

	c.logger.Info("Creating Safe wallet", "owner", c.owner.Hex())
	addr, err := c.creator.CreateSafeWallet(ctx, c.owner)
	if err != nil {
		c.logger.Error("Safe wallet creation failed", "owner", c.owner.Hex(), "error", err)
		if errors.Is(err, entity.ErrWalletCreationFailed) {
			return common.Address{}, err
		}
		return common.Address{}, fmt.Errorf("%w: %v", entity.ErrWalletCreationFailed, err)
	}

	c.handle = entity.SafeWalletHandle{State: entity.SafeWalletCreated, Address: addr}
	c.logger.Info("Safe wallet created", "owner", c.owner.Hex(), "safe", addr.Hex())

	if c.store != nil {
		if err := c.store.Save(addr); err != nil {
			c.logger.Warn("Failed to persist Safe wallet address", "safe", addr.Hex(), "error", err)
		}
	}
	return addr, nil
}
