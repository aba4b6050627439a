package port

import "context"

// AllocationParser extracts a target allocation from a free-text portfolio
// description, e.g. "40% BTC, 35% ETH, 25% USDC". Output is untrusted input:
// callers must re-normalize and validate it like any directly supplied
// allocation. Implementations need not be deterministic.
type AllocationParser interface {
	ParseAllocation(ctx context.Context, description string) (map[string]float64, error)
}
