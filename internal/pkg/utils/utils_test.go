package utils

import (
	"math/big"
	"testing"

	"aave_topup/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleBaseUnits(t *testing.T) {
	wad := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	onePointFive := new(big.Int).Div(new(big.Int).Mul(wad, big.NewInt(3)), big.NewInt(2))
	assert.Equal(t, "1.5", ScaleBaseUnits(onePointFive, WadDecimals).String())
	assert.Equal(t, "2000", ScaleBaseUnits(new(big.Int).Mul(wad, big.NewInt(2000)), WadDecimals).String())
	assert.True(t, ScaleBaseUnits(nil, WadDecimals).IsZero())
}

func TestFormatBigInt(t *testing.T) {
	assert.Equal(t, "0.01", FormatBigInt(big.NewInt(10000000000000000), 18))
	assert.Equal(t, "1.2345", FormatBigInt(big.NewInt(1234500000000000000), 18))
	assert.Equal(t, "42", FormatBigInt(big.NewInt(42), 0))
	assert.Equal(t, "0", FormatBigInt(nil, 18))
}

func TestParseBaseUnits(t *testing.T) {
	v, err := ParseBaseUnits(" 10000000000000000 ")
	require.NoError(t, err)
	assert.Equal(t, "10000000000000000", v.String())

	_, err = ParseBaseUnits("0.01")
	assert.Error(t, err)
	_, err = ParseBaseUnits("-5")
	assert.Error(t, err)
}

func TestParseAddress(t *testing.T) {
	const weth = "0xfFf9976782d46CC05630D1f6eBAb18b2324d6B14"
	addr, err := ParseAddress(weth)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(weth), addr)

	for _, bad := range []string{"", "not-an-address", "fFf9976782d46CC05630D1f6eBAb18b2324d6B14", "0x1234"} {
		_, err := ParseAddress(bad)
		assert.ErrorIs(t, err, entity.ErrInvalidAddress, bad)
	}
}
