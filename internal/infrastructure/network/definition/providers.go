package networkdefinition

import (
	"sort"

	"aave_topup/internal/app/port"
	"aave_topup/internal/domain/entity"
)

// Built-in Aave V3 testnet deployments.
var ( //nolint:gochecknoglobals // Global for definitions
	Sepolia = entity.NetworkDefinition{
		ChainID:          11155111,
		Name:             "Sepolia",
		Identifier:       "sepolia",
		NativeSymbol:     "ETH",
		PrimaryRPCURL:    "https://ethereum-sepolia-rpc.publicnode.com",
		FallbackRPCURLs:  []string{"https://rpc.sepolia.org", "https://1rpc.io/sepolia"},
		BlockExplorerURL: "https://sepolia.etherscan.io",
		PoolAddress:      "0x6Ae43d3271ff6888e7Fc43Fd7321a503ff738951",
		PoolDataProvider: "0x3e9708d80f7B3e43118013075F7e95CE3AB31F31",
		WETHAddress:      "0xfFf9976782d46CC05630D1f6eBAb18b2324d6B14",
	}
	OptimismSepolia = entity.NetworkDefinition{
		ChainID:          11155420,
		Name:             "OP Sepolia",
		Identifier:       "op-sepolia",
		NativeSymbol:     "ETH",
		PrimaryRPCURL:    "https://sepolia.optimism.io",
		FallbackRPCURLs:  []string{"https://optimism-sepolia-rpc.publicnode.com"},
		BlockExplorerURL: "https://sepolia-optimism.etherscan.io",
		PoolAddress:      "0xb50201558B00496A145fE76f7424749556E326D8",
		WETHAddress:      "0x4200000000000000000000000000000000000006",
	}
)

// NetworkDefinitionProvider serves the built-in deployments.
type NetworkDefinitionProvider struct {
	logger port.Logger
	defs   map[uint64]entity.NetworkDefinition
}

// NewNetworkDefinitionProvider registers the built-in deployments plus any extra ones.
// Extra definitions replace built-ins with the same chain id.
func NewNetworkDefinitionProvider(logger port.Logger, extra ...entity.NetworkDefinition) port.NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{
		logger: logger,
		defs:   make(map[uint64]entity.NetworkDefinition),
	}
	for _, def := range append([]entity.NetworkDefinition{Sepolia, OptimismSepolia}, extra...) {
		if _, exists := p.defs[def.ChainID]; exists {
			logger.Debug("Overriding network definition", "chain_id", def.ChainID, "name", def.Name)
		}
		p.defs[def.ChainID] = def
	}
	return p
}

// GetAllNetworkDefinitions returns all definitions ordered by chain id.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	out := make([]entity.NetworkDefinition, 0, len(p.defs))
	for _, def := range p.defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChainID < out[j].ChainID })
	return out
}

// GetNetworkDefinitionByChainID returns the deployment for chainID.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByChainID(chainID uint64) (entity.NetworkDefinition, bool) {
	def, ok := p.defs[chainID]
	if !ok {
		p.logger.Warn("No built-in network definition for chain", "chain_id", chainID)
	}
	return def, ok
}
