package utils

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// WadDecimals is the fixed-point precision of pool totals and the health factor.
const WadDecimals = 18

// ScaleBaseUnits converts a base-unit integer into a decimal with the given precision.
// Example: amount=1500000000000000000, decimals=18 => 1.5
func ScaleBaseUnits(amount *big.Int, decimals int32) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -decimals)
}

// FormatBigInt renders a base-unit amount as a trimmed decimal string.
func FormatBigInt(amount *big.Int, decimals uint8) string {
	return ScaleBaseUnits(amount, int32(decimals)).String()
}

// ParseBaseUnits parses a non-negative base-unit integer string such as "10000000000000000".
func ParseBaseUnits(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("not a base-10 integer: %q", s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("amount must not be negative: %s", s)
	}
	return v, nil
}
