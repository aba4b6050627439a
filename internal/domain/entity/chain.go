package entity

// ChainDefinition holds everything the pipeline needs to know about one
// network: identity, native asset, RPC endpoint, gas constants and the
// chain-specific derivative token conventions.
type ChainDefinition struct {
	ChainID      uint64 `yaml:"chainId" json:"chain_id"`
	Name         string `yaml:"name" json:"name"`
	Identifier   string `yaml:"identifier" json:"identifier"`
	NativeSymbol string `yaml:"nativeSymbol" json:"native_symbol"`
	RPCURL       string `yaml:"rpcUrl" json:"rpc_url"`

	// Gas limits per operation class. Rebalancing trades are swap-class.
	GasLimitSwap     uint64 `yaml:"gasLimitSwap" json:"gas_limit_swap"`
	GasLimitTransfer uint64 `yaml:"gasLimitTransfer" json:"gas_limit_transfer"`
	GasLimitApprove  uint64 `yaml:"gasLimitApprove" json:"gas_limit_approve"`

	// DerivativePrefixes are symbol prefixes of wrapped/lending tokens on
	// this chain (longest prefix wins), e.g. "aArb" for Aave on Arbitrum.
	DerivativePrefixes []string `yaml:"derivativePrefixes" json:"derivative_prefixes"`

	// FallbackNativePriceUSD is used for fee conversion when the oracle
	// cannot price the gas token.
	FallbackNativePriceUSD float64 `yaml:"fallbackNativePriceUsd" json:"fallback_native_price_usd"`
}
