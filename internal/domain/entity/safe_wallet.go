package entity

import "github.com/ethereum/go-ethereum/common"

// SafeWalletState tracks how the execution wallet was resolved.
type SafeWalletState int

const (
	SafeWalletUnset SafeWalletState = iota
	SafeWalletFromConfig
	SafeWalletCreated
)

func (s SafeWalletState) String() string {
	switch s {
	case SafeWalletFromConfig:
		return "resolved-from-config"
	case SafeWalletCreated:
		return "created"
	default:
		return "unset"
	}
}

// SafeWalletHandle is the memoized execution wallet. Address is meaningful only once State is not Unset.
type SafeWalletHandle struct {
	State   SafeWalletState
	Address common.Address
}

// Resolved reports whether the handle holds an address.
func (h SafeWalletHandle) Resolved() bool {
	return h.State != SafeWalletUnset
}
