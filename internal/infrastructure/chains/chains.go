package chains

import (
	"rebalancer/internal/app/port"
	"rebalancer/internal/domain/entity"
)

// Gas limits per operation class, shared by all supported EVM chains.
const (
	gasLimitSwap     = 150000
	gasLimitTransfer = 21000
	gasLimitApprove  = 46000
)

// Predefined chain definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.ChainDefinition{
		ChainID:                1,
		Name:                   "Ethereum Mainnet",
		Identifier:             "ethereum",
		NativeSymbol:           "ETH",
		RPCURL:                 "https://ethereum-rpc.publicnode.com",
		GasLimitSwap:           gasLimitSwap,
		GasLimitTransfer:       gasLimitTransfer,
		GasLimitApprove:        gasLimitApprove,
		DerivativePrefixes:     []string{"aEth", "st", "w", "a", "c"},
		FallbackNativePriceUSD: 2500,
	}
	Optimism = entity.ChainDefinition{
		ChainID:                10,
		Name:                   "OP Mainnet",
		Identifier:             "optimism",
		NativeSymbol:           "ETH",
		RPCURL:                 "https://optimism.publicnode.com",
		GasLimitSwap:           gasLimitSwap,
		GasLimitTransfer:       gasLimitTransfer,
		GasLimitApprove:        gasLimitApprove,
		DerivativePrefixes:     []string{"aOpt", "w", "a"},
		FallbackNativePriceUSD: 2500,
	}
	BSC = entity.ChainDefinition{
		ChainID:                56,
		Name:                   "BNB Smart Chain",
		Identifier:             "bsc",
		NativeSymbol:           "BNB",
		RPCURL:                 "https://bsc.publicnode.com",
		GasLimitSwap:           gasLimitSwap,
		GasLimitTransfer:       gasLimitTransfer,
		GasLimitApprove:        gasLimitApprove,
		DerivativePrefixes:     []string{"v", "w", "a"},
		FallbackNativePriceUSD: 600,
	}
	Polygon = entity.ChainDefinition{
		ChainID:                137,
		Name:                   "Polygon PoS",
		Identifier:             "polygon",
		NativeSymbol:           "MATIC",
		RPCURL:                 "https://polygon-rpc.com",
		GasLimitSwap:           gasLimitSwap,
		GasLimitTransfer:       gasLimitTransfer,
		GasLimitApprove:        gasLimitApprove,
		DerivativePrefixes:     []string{"aPol", "am", "w", "a"},
		FallbackNativePriceUSD: 1,
	}
	Arbitrum = entity.ChainDefinition{
		ChainID:                42161,
		Name:                   "Arbitrum One",
		Identifier:             "arbitrum",
		NativeSymbol:           "ETH",
		RPCURL:                 "https://arb1.arbitrum.io/rpc",
		GasLimitSwap:           gasLimitSwap,
		GasLimitTransfer:       gasLimitTransfer,
		GasLimitApprove:        gasLimitApprove,
		DerivativePrefixes:     []string{"aArb", "w", "a"},
		FallbackNativePriceUSD: 2500,
	}
)

// allKnownDefinitions is a helper to quickly access all hardcoded definitions.
var allKnownDefinitions = map[uint64]entity.ChainDefinition{
	Ethereum.ChainID: Ethereum,
	Optimism.ChainID: Optimism,
	BSC.ChainID:      BSC,
	Polygon.ChainID:  Polygon,
	Arbitrum.ChainID: Arbitrum,
}

// stablecoins are pinned to exactly 1.0 USD and never priced via the oracle.
var stablecoins = map[string]struct{}{
	"USDT": {},
	"USDC": {},
	"DAI":  {},
	"BUSD": {},
	"TUSD": {},
}

// underlyingWhitelist limits which tickers a derivative prefix may wrap, so
// that a coincidental prefix match on an unrelated symbol is not aggregated.
var underlyingWhitelist = map[string]struct{}{
	"USDT": {},
	"USDC": {},
	"WBTC": {},
	"WETH": {},
	"ETH":  {},
	"BTC":  {},
	"DAI":  {},
	"BUSD": {},
	"TUSD": {},
}

// Provider implements port.ChainProvider over the hardcoded definitions,
// optionally overridden from configuration.
type Provider struct {
	logger port.Logger
	defs   map[uint64]entity.ChainDefinition
}

// NewProvider creates a Provider. Overrides replace or extend the built-in
// definitions keyed by chain id; an override with only an RPC URL set patches
// just that field of the built-in entry.
func NewProvider(log port.Logger, overrides []entity.ChainDefinition) *Provider {
	defs := make(map[uint64]entity.ChainDefinition, len(allKnownDefinitions))
	for id, def := range allKnownDefinitions {
		defs[id] = def
	}

	for _, ov := range overrides {
		if ov.ChainID == 0 {
			log.Warn("chain override without chainId ignored", "name", ov.Name)
			continue
		}
		base, known := defs[ov.ChainID]
		if !known {
			defs[ov.ChainID] = ov
			log.Info("registered chain from configuration", "chainId", ov.ChainID, "identifier", ov.Identifier)
			continue
		}
		defs[ov.ChainID] = mergeDefinition(base, ov)
		log.Debug("patched built-in chain from configuration", "chainId", ov.ChainID)
	}

	return &Provider{logger: log, defs: defs}
}

// GetChainByID returns the definition for a chain id and true when known.
func (p *Provider) GetChainByID(chainID uint64) (entity.ChainDefinition, bool) {
	def, ok := p.defs[chainID]
	return def, ok
}

// GetAllChains returns every known chain definition.
func (p *Provider) GetAllChains() []entity.ChainDefinition {
	out := make([]entity.ChainDefinition, 0, len(p.defs))
	for _, def := range p.defs {
		out = append(out, def)
	}
	return out
}

// StablecoinSymbols returns the set of symbols pinned to 1.0 USD.
func (p *Provider) StablecoinSymbols() map[string]struct{} {
	return stablecoins
}

// UnderlyingWhitelist returns the tickers a derivative prefix may wrap.
func (p *Provider) UnderlyingWhitelist() map[string]struct{} {
	return underlyingWhitelist
}

func mergeDefinition(base, ov entity.ChainDefinition) entity.ChainDefinition {
	out := base
	if ov.Name != "" {
		out.Name = ov.Name
	}
	if ov.Identifier != "" {
		out.Identifier = ov.Identifier
	}
	if ov.NativeSymbol != "" {
		out.NativeSymbol = ov.NativeSymbol
	}
	if ov.RPCURL != "" {
		out.RPCURL = ov.RPCURL
	}
	if ov.GasLimitSwap != 0 {
		out.GasLimitSwap = ov.GasLimitSwap
	}
	if ov.GasLimitTransfer != 0 {
		out.GasLimitTransfer = ov.GasLimitTransfer
	}
	if ov.GasLimitApprove != 0 {
		out.GasLimitApprove = ov.GasLimitApprove
	}
	if len(ov.DerivativePrefixes) > 0 {
		out.DerivativePrefixes = ov.DerivativePrefixes
	}
	if ov.FallbackNativePriceUSD != 0 {
		out.FallbackNativePriceUSD = ov.FallbackNativePriceUSD
	}
	return out
}
