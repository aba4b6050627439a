package evmrpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"rebalancer/internal/app/port"
)

const defaultConnectionTimeout = 10 * time.Second

// clientProvider dials and caches one ethclient per chain so repeated
// pipeline runs do not reconnect.
type clientProvider struct {
	chains            port.ChainProvider
	logger            port.Logger
	mu                sync.Mutex
	clients           map[uint64]*ethclient.Client
	connectionTimeout time.Duration
}

func newClientProvider(chains port.ChainProvider, log port.Logger) *clientProvider {
	return &clientProvider{
		chains:            chains,
		logger:            log,
		clients:           make(map[uint64]*ethclient.Client),
		connectionTimeout: defaultConnectionTimeout,
	}
}

// getClient retrieves a cached client for the chain or dials its RPC URL.
func (p *clientProvider) getClient(ctx context.Context, chainID uint64) (*ethclient.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, exists := p.clients[chainID]; exists {
		return client, nil
	}

	def, ok := p.chains.GetChainByID(chainID)
	if !ok {
		return nil, fmt.Errorf("no chain definition for chain id %d", chainID)
	}

	dialCtx, cancel := context.WithTimeout(ctx, p.connectionTimeout)
	defer cancel()

	client, err := ethclient.DialContext(dialCtx, def.RPCURL)
	if err != nil {
		p.logger.Error("failed to connect to RPC", "chain", def.Identifier, "rpc", def.RPCURL, "error", err)
		return nil, fmt.Errorf("failed to connect to RPC for %s: %w", def.Name, err)
	}

	p.clients[chainID] = client
	p.logger.Info("created and cached new EVM client", "chain", def.Identifier, "rpc", def.RPCURL)
	return client, nil
}
