package port

import (
	"context"
	"math/big"

	"rebalancer/internal/domain/entity"
)

// BalanceSource fetches token holdings for a wallet from an indexer.
// Implementations return whatever subset of records they could obtain; a
// non-nil error means the wallet could not be queried at all.
type BalanceSource interface {
	FetchAccountTokenHoldings(ctx context.Context, chainID uint64, address string) ([]entity.RawTokenRecord, error)
}

// NativeSource fetches the native (gas token) balance of a wallet in wei.
type NativeSource interface {
	FetchNativeBalance(ctx context.Context, chainID uint64, address string) (*big.Int, error)
}

// FeeSource fetches the current network fee rate in wei per gas unit.
type FeeSource interface {
	FetchNetworkFeeRate(ctx context.Context, chainID uint64) (*big.Int, error)
}
