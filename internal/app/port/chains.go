package port

import "rebalancer/internal/domain/entity"

// ChainProvider resolves chain definitions.
type ChainProvider interface {
	// GetChainByID returns the definition for a chain id and true when known.
	GetChainByID(chainID uint64) (entity.ChainDefinition, bool)

	// GetAllChains returns every known chain definition.
	GetAllChains() []entity.ChainDefinition

	// StablecoinSymbols returns the set of symbols whose USD price is pinned
	// to exactly 1.0.
	StablecoinSymbols() map[string]struct{}

	// UnderlyingWhitelist returns the tickers a derivative prefix may wrap.
	UnderlyingWhitelist() map[string]struct{}
}
