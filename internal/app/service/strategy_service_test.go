package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rebalancer/internal/app/port"
	"rebalancer/internal/domain/entity"
)

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type fakeAnalyzer struct {
	result entity.RebalanceResult
	calls  int
}

func (f *fakeAnalyzer) Analyze(context.Context, entity.RebalanceRequest) entity.RebalanceResult {
	f.calls++
	return f.result
}

type fakeParser struct {
	allocation map[string]float64
	err        error
}

func (f *fakeParser) ParseAllocation(context.Context, string) (map[string]float64, error) {
	return f.allocation, f.err
}

func newTestService(analyzer *fakeAnalyzer, parser *fakeParser) (*StrategyService, *MemStore) {
	store := NewMemStore(10)
	return NewStrategyService(analyzer, parser, store, noopLogger{}), store
}

func TestCreateStrategyParsesDescription(t *testing.T) {
	parser := &fakeParser{allocation: map[string]float64{"BTC": 60, "ETH": 40}}
	svc, _ := newTestService(&fakeAnalyzer{}, parser)

	strategy, err := svc.CreateStrategy(context.Background(), "main", "60% BTC, 40% ETH", entity.RebalanceRequest{
		WalletAddresses: []string{"0xw1"},
		ChainID:         1,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, strategy.ID)
	assert.Equal(t, map[string]float64{"BTC": 60, "ETH": 40}, strategy.Request.TargetAllocation)
	// Defaults are applied at creation time.
	assert.InDelta(t, entity.DefaultThresholdPercent, strategy.Request.ThresholdPercent, 1e-9)
	assert.InDelta(t, entity.DefaultMinProfitThresholdUSD, strategy.Request.MinProfitThresholdUSD, 1e-9)

	stored, ok := svc.GetStrategy(strategy.ID)
	require.True(t, ok)
	assert.Equal(t, "main", stored.Name)
}

func TestCreateStrategyKeepsExplicitAllocation(t *testing.T) {
	parser := &fakeParser{err: fmt.Errorf("parser must not be called")}
	svc, _ := newTestService(&fakeAnalyzer{}, parser)

	strategy, err := svc.CreateStrategy(context.Background(), "explicit", "", entity.RebalanceRequest{
		WalletAddresses:  []string{"0xw1"},
		ChainID:          1,
		TargetAllocation: map[string]float64{"USDT": 100},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"USDT": 100}, strategy.Request.TargetAllocation)
}

func TestCreateStrategyRejectsUnparseable(t *testing.T) {
	parser := &fakeParser{err: fmt.Errorf("nothing recognized")}
	svc, _ := newTestService(&fakeAnalyzer{}, parser)

	_, err := svc.CreateStrategy(context.Background(), "bad", "gibberish", entity.RebalanceRequest{
		WalletAddresses: []string{"0xw1"},
	})
	assert.Error(t, err)

	_, err = svc.CreateStrategy(context.Background(), "no wallets", "", entity.RebalanceRequest{
		TargetAllocation: map[string]float64{"BTC": 100},
	})
	assert.Error(t, err)
}

func TestRunStrategyPersistsResult(t *testing.T) {
	analyzer := &fakeAnalyzer{result: entity.RebalanceResult{
		RecommendationText: "hold",
		TotalPortfolioUSD:  1234,
	}}
	svc, store := newTestService(analyzer, &fakeParser{allocation: map[string]float64{"BTC": 100}})

	strategy, err := svc.CreateStrategy(context.Background(), "s", "all BTC", entity.RebalanceRequest{
		WalletAddresses: []string{"0xw1"},
		ChainID:         1,
	})
	require.NoError(t, err)

	result, err := svc.RunStrategy(context.Background(), strategy.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, analyzer.calls)
	assert.InDelta(t, 1234, result.TotalPortfolioUSD, 1e-9)

	recs := store.List(0)
	require.Len(t, recs, 1)
	assert.Equal(t, strategy.ID, recs[0].StrategyID)

	_, err = svc.RunStrategy(context.Background(), "missing")
	assert.Error(t, err)
}

func TestDeleteStrategy(t *testing.T) {
	svc, _ := newTestService(&fakeAnalyzer{}, &fakeParser{allocation: map[string]float64{"BTC": 100}})

	strategy, err := svc.CreateStrategy(context.Background(), "s", "all BTC", entity.RebalanceRequest{
		WalletAddresses: []string{"0xw1"},
	})
	require.NoError(t, err)

	assert.True(t, svc.DeleteStrategy(strategy.ID))
	assert.False(t, svc.DeleteStrategy(strategy.ID))
	assert.Empty(t, svc.ListStrategies())
}

func TestMemStoreOrderAndCapacity(t *testing.T) {
	store := NewMemStore(3)
	for i := 0; i < 5; i++ {
		store.Append(port.StoredRecommendation{ID: fmt.Sprintf("r%d", i)})
	}

	all := store.List(0)
	require.Len(t, all, 3)
	// Newest first, oldest evicted.
	assert.Equal(t, "r4", all[0].ID)
	assert.Equal(t, "r2", all[2].ID)

	limited := store.List(2)
	require.Len(t, limited, 2)
	assert.Equal(t, "r4", limited[0].ID)
}
