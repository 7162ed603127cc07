package port

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// SafeWalletCreator provisions a new Safe wallet owned by owner.
type SafeWalletCreator interface {
	CreateSafeWallet(ctx context.Context, owner common.Address) (common.Address, error)
}

// SafeAddressStore persists a resolved Safe address between runs.
type SafeAddressStore interface {
	Load() (string, error)
	Save(address common.Address) error
}

// SafeAddressProvider returns a pre-existing Safe address, or "" when none is known.
type SafeAddressProvider interface {
	ConfiguredSafeAddress() (string, error)
}
