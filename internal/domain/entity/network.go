package entity

// NetworkDefinition holds an Aave V3 deployment on a specific chain.
type NetworkDefinition struct {
	ChainID          uint64   `json:"chainId" yaml:"chainId"`
	Name             string   `json:"name" yaml:"name"`
	Identifier       string   `json:"identifier" yaml:"identifier"`
	NativeSymbol     string   `json:"nativeSymbol" yaml:"nativeSymbol"`
	PrimaryRPCURL    string   `json:"primaryRpcUrl" yaml:"primaryRpcUrl"`
	FallbackRPCURLs  []string `json:"fallbackRpcUrls" yaml:"fallbackRpcUrls"`
	BlockExplorerURL string   `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	PoolAddress      string   `json:"poolAddress" yaml:"poolAddress"`
	PoolDataProvider string   `json:"poolDataProvider,omitempty" yaml:"poolDataProvider,omitempty"`
	WETHAddress      string   `json:"wethAddress" yaml:"wethAddress"`
}
