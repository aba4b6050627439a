package evmrpc

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"rebalancer/internal/app/port"
)

// Source exposes on-chain reads over JSON-RPC: native balances and the
// current gas price. It implements port.NativeSource and port.FeeSource.
type Source struct {
	provider *clientProvider
	logger   port.Logger
}

// NewSource creates a Source resolving RPC endpoints via the chain provider.
func NewSource(chains port.ChainProvider, log port.Logger) *Source {
	return &Source{
		provider: newClientProvider(chains, log),
		logger:   log,
	}
}

// FetchNativeBalance returns the wallet's gas-token balance in wei.
func (s *Source) FetchNativeBalance(ctx context.Context, chainID uint64, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid wallet address: %s", address)
	}

	client, err := s.provider.getClient(ctx, chainID)
	if err != nil {
		return nil, err
	}

	balance, err := client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, fmt.Errorf("eth_getBalance failed for %s: %w", address, err)
	}
	return balance, nil
}

// FetchNetworkFeeRate returns the suggested gas price in wei per gas unit.
func (s *Source) FetchNetworkFeeRate(ctx context.Context, chainID uint64) (*big.Int, error) {
	client, err := s.provider.getClient(ctx, chainID)
	if err != nil {
		return nil, err
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("eth_gasPrice failed for chain %d: %w", chainID, err)
	}
	return gasPrice, nil
}
