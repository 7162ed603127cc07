package networkdefinition

import (
	"testing"

	"aave_topup/internal/domain/entity"
	"aave_topup/internal/pkg/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltInDefinitionsAreWellFormed(t *testing.T) {
	p := NewNetworkDefinitionProvider(logger.NewNop())
	defs := p.GetAllNetworkDefinitions()
	require.Len(t, defs, 2)
	assert.Equal(t, uint64(11155111), defs[0].ChainID)

	for _, def := range defs {
		assert.True(t, common.IsHexAddress(def.PoolAddress), def.Name)
		assert.True(t, common.IsHexAddress(def.WETHAddress), def.Name)
		assert.NotEmpty(t, def.PrimaryRPCURL, def.Name)
	}
}

func TestLookupAndOverride(t *testing.T) {
	custom := entity.NetworkDefinition{ChainID: 11155111, Name: "Sepolia (custom)", PoolAddress: "0x0000000000000000000000000000000000000009"}
	p := NewNetworkDefinitionProvider(logger.NewNop(), custom)

	def, ok := p.GetNetworkDefinitionByChainID(11155111)
	require.True(t, ok)
	assert.Equal(t, "Sepolia (custom)", def.Name)

	_, ok = p.GetNetworkDefinitionByChainID(1)
	assert.False(t, ok)
}
