package chains

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rebalancer/internal/domain/entity"
)

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

func TestProviderLookup(t *testing.T) {
	p := NewProvider(noopLogger{}, nil)

	def, ok := p.GetChainByID(42161)
	require.True(t, ok)
	assert.Equal(t, "arbitrum", def.Identifier)
	assert.Equal(t, "ETH", def.NativeSymbol)
	assert.EqualValues(t, 150000, def.GasLimitSwap)

	_, ok = p.GetChainByID(999)
	assert.False(t, ok)

	assert.Len(t, p.GetAllChains(), 5)
}

func TestProviderOverridePatchesBuiltIn(t *testing.T) {
	p := NewProvider(noopLogger{}, []entity.ChainDefinition{
		{ChainID: 1, RPCURL: "https://rpc.example.org/eth"},
	})

	def, ok := p.GetChainByID(1)
	require.True(t, ok)
	assert.Equal(t, "https://rpc.example.org/eth", def.RPCURL)
	// Untouched fields keep their built-in values.
	assert.Equal(t, "ethereum", def.Identifier)
	assert.InDelta(t, 2500, def.FallbackNativePriceUSD, 0.001)
}

func TestProviderOverrideRegistersNewChain(t *testing.T) {
	p := NewProvider(noopLogger{}, []entity.ChainDefinition{
		{
			ChainID:      8453,
			Name:         "Base Mainnet",
			Identifier:   "base",
			NativeSymbol: "ETH",
			RPCURL:       "https://base.publicnode.com",
		},
	})

	def, ok := p.GetChainByID(8453)
	require.True(t, ok)
	assert.Equal(t, "base", def.Identifier)
	assert.Len(t, p.GetAllChains(), 6)
}

func TestStablecoinAndWhitelistSets(t *testing.T) {
	p := NewProvider(noopLogger{}, nil)

	for _, symbol := range []string{"USDT", "USDC", "DAI", "BUSD", "TUSD"} {
		_, ok := p.StablecoinSymbols()[symbol]
		assert.True(t, ok, "missing stablecoin %s", symbol)
	}

	_, ok := p.UnderlyingWhitelist()["WBTC"]
	assert.True(t, ok)
	_, ok = p.UnderlyingWhitelist()["DOGE"]
	assert.False(t, ok)
}
