package utils

import (
	"fmt"
	"strings"

	"aave_topup/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

// ParseAddress validates a 0x-prefixed 20-byte hex address.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return common.Address{}, fmt.Errorf("%w: %q", entity.ErrInvalidAddress, s)
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", entity.ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}
