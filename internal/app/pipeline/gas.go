package pipeline

import (
	"context"
	"math/big"
	"strings"

	"rebalancer/internal/domain/entity"
	"rebalancer/internal/pkg/metrics"
)

const (
	weiPerGwei  = 1e9
	weiPerEther = 1e18

	// Conservative total fee substituted when the fee-rate source is down.
	fallbackTotalFeeUSD = 50.0
)

// estimateCost projects the network fee for executing the planned trades.
// Rebalancing trades are swap-class operations, so the chain's swap gas
// limit applies, not the cheaper transfer or approve limits. When the
// fee-rate source is unreachable the stage substitutes a fixed conservative
// default and marks the estimate as degraded so the downgrade is visible.
func (p *Pipeline) estimateCost(ctx context.Context, st State) State {
	numTx := len(st.Plan.Actions)
	if numTx < 1 {
		numTx = 1
	}
	gasLimit := st.Chain.GasLimitSwap
	if gasLimit == 0 {
		gasLimit = 150000
	}

	callCtx, cancel := p.callCtx(ctx)
	feeRateWei, err := p.fees.FetchNetworkFeeRate(callCtx, st.Request.ChainID)
	cancel()
	if err != nil || feeRateWei == nil || feeRateWei.Sign() <= 0 {
		metrics.StageFailures.WithLabelValues(string(StageEstimatingCost)).Inc()
		p.logger.Warn("fee rate source unavailable, using conservative default",
			"chain", st.Chain.Identifier, "error", err)
		st.Gas = entity.GasEstimate{
			Chain:           st.Chain.Identifier,
			GasLimitPerTx:   gasLimit,
			NumTransactions: numTx,
			TotalFeeUSD:     fallbackTotalFeeUSD,
			FeePerTxUSD:     fallbackTotalFeeUSD / float64(numTx),
			Degraded:        true,
		}
		st.logf("fee estimate degraded: source unreachable, assuming %.2f USD total", fallbackTotalFeeUSD)
		return st
	}

	gasPriceWei, _ := new(big.Float).SetInt(feeRateWei).Float64()
	nativePrice := p.nativePriceUSD(st)

	totalFeeNative := gasPriceWei * float64(gasLimit) * float64(numTx) / weiPerEther
	totalFeeUSD := totalFeeNative * nativePrice

	st.Gas = entity.GasEstimate{
		Chain:           st.Chain.Identifier,
		GasPriceGwei:    gasPriceWei / weiPerGwei,
		GasLimitPerTx:   gasLimit,
		NumTransactions: numTx,
		TotalFeeUSD:     totalFeeUSD,
		FeePerTxUSD:     totalFeeUSD / float64(numTx),
	}
	st.logf("estimated network cost: %.2f USD for %d tx at %.2f gwei",
		totalFeeUSD, numTx, st.Gas.GasPriceGwei)
	return st
}

// nativePriceUSD returns the gas token price for fee conversion, falling
// back to the chain table's constant when the oracle had no quote.
func (p *Pipeline) nativePriceUSD(st State) float64 {
	sym := strings.ToUpper(st.Chain.NativeSymbol)
	if price, ok := st.Prices[sym]; ok && price > 0 {
		return price
	}
	p.logger.Warn("native token price unavailable, using fallback constant",
		"symbol", sym, "fallback", st.Chain.FallbackNativePriceUSD)
	return st.Chain.FallbackNativePriceUSD
}
