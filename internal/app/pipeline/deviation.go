package pipeline

import (
	"math"
	"sort"
	"strings"

	"rebalancer/internal/domain/entity"
)

// buildPlan compares the current allocation with the normalized target and
// emits an adjustment for every asset whose deviation strictly exceeds the
// threshold. A zero-value portfolio yields an empty plan, never an error.
func (p *Pipeline) buildPlan(st State) State {
	st.Plan = entity.RebalancePlan{
		TotalPortfolioUSD: st.Valuation.TotalUSD,
		ThresholdPercent:  st.Request.ThresholdPercent,
	}

	target, ok := NormalizeAllocation(st.Request.TargetAllocation)
	if !ok {
		// Target percentages that cannot be normalized (zero or negative
		// sum) are logged and treated as "skip rebalancing".
		st.logf("target allocation does not normalize, skipping rebalancing")
		return st
	}

	if st.Valuation.TotalUSD <= 0 {
		st.logf("no portfolio value, rebalancing not possible")
		return st
	}

	total := st.Valuation.TotalUSD
	symbols := make([]string, 0, len(target))
	for symbol := range target {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		targetPercent := target[symbol]
		currentUSD := st.Valuation.PerAssetUSD[symbol]
		currentPercent := currentUSD / total * 100
		targetUSD := targetPercent / 100 * total
		deviation := currentPercent - targetPercent

		if math.Abs(deviation) <= st.Request.ThresholdPercent {
			continue
		}
		direction := entity.DirectionBuy
		if deviation > 0 {
			direction = entity.DirectionSell
		}
		st.Plan.Actions = append(st.Plan.Actions, entity.DeviationEntry{
			Symbol:           symbol,
			CurrentPercent:   currentPercent,
			TargetPercent:    targetPercent,
			DeviationPercent: deviation,
			CurrentUSD:       currentUSD,
			TargetUSD:        targetUSD,
			Direction:        direction,
			AmountUSD:        math.Abs(currentUSD - targetUSD),
		})
	}

	st.Plan.Needed = len(st.Plan.Actions) > 0
	st.logf("deviation check: %d of %d targets outside %.2f%% threshold",
		len(st.Plan.Actions), len(target), st.Request.ThresholdPercent)
	return st
}

// NormalizeAllocation scales target percentages so they sum to exactly 100
// and upper-cases the symbols. It reports false when the input is empty or
// its sum is not positive. An allocation already summing to 100 comes back
// unchanged apart from float rounding.
func NormalizeAllocation(target map[string]float64) (map[string]float64, bool) {
	if len(target) == 0 {
		return nil, false
	}
	sum := 0.0
	for _, v := range target {
		sum += v
	}
	if sum <= 0 {
		return nil, false
	}
	out := make(map[string]float64, len(target))
	for symbol, v := range target {
		out[strings.ToUpper(strings.TrimSpace(symbol))] += v / sum * 100
	}
	return out, true
}
