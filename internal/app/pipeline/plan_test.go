package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rebalancer/internal/domain/entity"
)

func planPipeline() *Pipeline {
	return newTestPipeline(&fakeBalances{}, &fakeNative{}, &fakeOracle{}, &fakeFees{})
}

func TestBuildPlanThresholdIsStrict(t *testing.T) {
	p := planPipeline()
	st := State{
		Request: entity.RebalanceRequest{
			TargetAllocation: map[string]float64{"AAA": 50, "BBB": 50},
			ThresholdPercent: 5,
		},
		Valuation: entity.PortfolioValuation{
			PerAssetUSD: map[string]float64{"AAA": 5500, "BBB": 4500},
			TotalUSD:    10000,
		},
	}

	// Deviation is exactly 5 percent on both sides; at threshold, not beyond.
	out := p.buildPlan(st)
	assert.False(t, out.Plan.Needed)
	assert.Empty(t, out.Plan.Actions)

	st.Request.ThresholdPercent = 4.99
	out = p.buildPlan(st)
	require.True(t, out.Plan.Needed)
	require.Len(t, out.Plan.Actions, 2)
}

func TestBuildPlanDirectionsAndAmounts(t *testing.T) {
	p := planPipeline()
	st := State{
		Request: entity.RebalanceRequest{
			TargetAllocation: map[string]float64{"AAA": 50, "BBB": 50},
			ThresholdPercent: 5,
		},
		Valuation: entity.PortfolioValuation{
			PerAssetUSD: map[string]float64{"AAA": 8000, "BBB": 2000},
			TotalUSD:    10000,
		},
	}

	out := p.buildPlan(st)
	require.Len(t, out.Plan.Actions, 2)

	// Actions are emitted in symbol order.
	over := out.Plan.Actions[0]
	assert.Equal(t, "AAA", over.Symbol)
	assert.Equal(t, entity.DirectionSell, over.Direction)
	assert.InDelta(t, 3000, over.AmountUSD, 0.01)
	assert.InDelta(t, 30, over.DeviationPercent, 0.01)

	under := out.Plan.Actions[1]
	assert.Equal(t, "BBB", under.Symbol)
	assert.Equal(t, entity.DirectionBuy, under.Direction)
	assert.InDelta(t, 3000, under.AmountUSD, 0.01)
}

func TestBuildPlanUnallocatedAssetIsIgnored(t *testing.T) {
	p := planPipeline()
	st := State{
		Request: entity.RebalanceRequest{
			TargetAllocation: map[string]float64{"AAA": 100},
			ThresholdPercent: 5,
		},
		Valuation: entity.PortfolioValuation{
			// BBB has value but no target; only targeted symbols get actions.
			PerAssetUSD: map[string]float64{"AAA": 9000, "BBB": 1000},
			TotalUSD:    10000,
		},
	}

	out := p.buildPlan(st)
	require.Len(t, out.Plan.Actions, 1)
	assert.Equal(t, "AAA", out.Plan.Actions[0].Symbol)
	assert.Equal(t, entity.DirectionBuy, out.Plan.Actions[0].Direction)
}

func TestNormalizeAllocation(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]float64
		want  map[string]float64
		ok    bool
	}{
		{
			name:  "already normalized",
			input: map[string]float64{"BTC": 60, "ETH": 40},
			want:  map[string]float64{"BTC": 60, "ETH": 40},
			ok:    true,
		},
		{
			name:  "scaled up",
			input: map[string]float64{"btc": 1, "eth": 3},
			want:  map[string]float64{"BTC": 25, "ETH": 75},
			ok:    true,
		},
		{
			name:  "scaled down",
			input: map[string]float64{"BTC": 120, "ETH": 80},
			want:  map[string]float64{"BTC": 60, "ETH": 40},
			ok:    true,
		},
		{name: "empty", input: map[string]float64{}, ok: false},
		{name: "zero sum", input: map[string]float64{"BTC": 0}, ok: false},
		{name: "negative sum", input: map[string]float64{"BTC": -10}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeAllocation(tt.input)
			require.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			require.Len(t, got, len(tt.want))
			sum := 0.0
			for symbol, want := range tt.want {
				assert.InDelta(t, want, got[symbol], 1e-9)
				sum += got[symbol]
			}
			assert.InDelta(t, 100, sum, 1e-9)
		})
	}
}

func TestNetBenefitsFiltersByFeeShare(t *testing.T) {
	p := planPipeline()
	st := State{
		Request: entity.RebalanceRequest{MinProfitThresholdUSD: 50},
		Plan: entity.RebalancePlan{
			Needed: true,
			Actions: []entity.DeviationEntry{
				{Symbol: "BTC", Direction: entity.DirectionSell, AmountUSD: 10000},
				{Symbol: "DUST", Direction: entity.DirectionBuy, AmountUSD: 100},
			},
		},
		Gas: entity.GasEstimate{TotalFeeUSD: 100},
	}

	out := p.netBenefits(st)
	require.NotNil(t, out.Decision)
	d := out.Decision

	// Fee share is $50 per action: the $10k move (benefit $200) clears it,
	// the $100 move (benefit $2) does not.
	require.Len(t, d.Trades, 1)
	assert.Equal(t, "BTC", d.Trades[0].Symbol)
	assert.InDelta(t, 150, d.Trades[0].NetBenefitUSD, 0.01)

	// Only included trades contribute to the benefit total.
	assert.InDelta(t, 200, d.TotalExpectedBenefitUSD, 0.01)
	assert.InDelta(t, 100, d.NetBenefitUSD, 0.01)
	assert.True(t, d.ShouldRebalance)
}

func TestNetBenefitsBelowMinProfitHolds(t *testing.T) {
	p := planPipeline()
	st := State{
		Request: entity.RebalanceRequest{MinProfitThresholdUSD: 50},
		Plan: entity.RebalancePlan{
			Needed: true,
			Actions: []entity.DeviationEntry{
				{Symbol: "BTC", Direction: entity.DirectionSell, AmountUSD: 2000},
			},
		},
		Gas: entity.GasEstimate{TotalFeeUSD: 10},
	}

	out := p.netBenefits(st)
	require.NotNil(t, out.Decision)
	// Benefit 40, fee 10: net 30 is positive but under the $50 minimum.
	assert.InDelta(t, 30, out.Decision.NetBenefitUSD, 0.01)
	assert.False(t, out.Decision.ShouldRebalance)
}

func TestEstimateCostUsesFallbackNativePrice(t *testing.T) {
	fees := &fakeFees{gasPriceWei: gwei(10)}
	p := newTestPipeline(&fakeBalances{}, &fakeNative{}, &fakeOracle{}, fees)

	st := State{
		Chain: testChain,
		Plan: entity.RebalancePlan{
			Needed:  true,
			Actions: []entity.DeviationEntry{{Symbol: "BTC", AmountUSD: 1000}},
		},
		// No resolved ETH price: the chain table constant applies.
		Prices: map[string]float64{},
	}

	out := p.estimateCost(context.Background(), st)
	assert.False(t, out.Gas.Degraded)
	// 10 gwei * 150k gas * 1 tx = 0.0015 ETH at the $2,500 fallback.
	assert.InDelta(t, 3.75, out.Gas.TotalFeeUSD, 0.001)
	assert.InDelta(t, 10, out.Gas.GasPriceGwei, 0.001)
}
