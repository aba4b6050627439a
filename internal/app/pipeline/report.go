package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"rebalancer/internal/domain/entity"
	"rebalancer/internal/pkg/utils"
)

// compose renders the structured outcome into the recommendation text. Pure
// formatting: nothing here may alter an upstream value.
func (p *Pipeline) compose(st State) State {
	var b strings.Builder

	fmt.Fprintf(&b, "Portfolio analysis (%s)\n", st.Chain.Name)
	fmt.Fprintf(&b, "Total value: %s\n", utils.FormatUSD(st.Valuation.TotalUSD))

	if st.Valuation.Empty() {
		b.WriteString("\nNo valued holdings were found in the tracked wallets. ")
		b.WriteString("Rebalancing is not possible for an empty portfolio.\n")
		st.Recommendation = b.String()
		st.logf("recommendation composed (empty portfolio)")
		return st
	}

	b.WriteString("\nHoldings:\n")
	p.writeHoldings(&b, st)

	if !st.Plan.Needed {
		fmt.Fprintf(&b, "\nAll assets are within the %.1f%% deviation threshold. No rebalancing needed.\n",
			st.Plan.ThresholdPercent)
		st.Recommendation = b.String()
		st.logf("recommendation composed (no rebalancing needed)")
		return st
	}

	b.WriteString("\nDeviations beyond threshold:\n")
	for _, a := range st.Plan.Actions {
		fmt.Fprintf(&b, "  %-6s %s %s (current %.2f%%, target %.2f%%, deviation %+.2f%%)\n",
			a.Symbol, a.Direction, utils.FormatUSD(a.AmountUSD),
			a.CurrentPercent, a.TargetPercent, a.DeviationPercent)
	}

	if st.Decision != nil {
		d := st.Decision
		fmt.Fprintf(&b, "\nEstimated network cost: %s (%d tx", utils.FormatUSD(d.TotalFeeUSD), st.Gas.NumTransactions)
		if st.Gas.Degraded {
			b.WriteString(", conservative default: fee source unavailable")
		}
		b.WriteString(")\n")
		fmt.Fprintf(&b, "Expected benefit: %s, net: %s\n",
			utils.FormatUSD(d.TotalExpectedBenefitUSD), utils.FormatUSD(d.NetBenefitUSD))

		if len(d.Trades) > 0 {
			b.WriteString("\nSuggested trades:\n")
			for _, t := range d.Trades {
				fmt.Fprintf(&b, "  %s %s of %s (net benefit %s after %s fee share)\n",
					t.Direction, utils.FormatUSD(t.AmountUSD), t.Symbol,
					utils.FormatUSD(t.NetBenefitUSD), utils.FormatUSD(t.AllocatedFeeUSD))
			}
		}

		if d.ShouldRebalance {
			fmt.Fprintf(&b, "\nRecommendation: rebalance now. Net benefit %s exceeds the %s minimum.\n",
				utils.FormatUSD(d.NetBenefitUSD), utils.FormatUSD(d.MinProfitThresholdUSD))
		} else {
			fmt.Fprintf(&b, "\nRecommendation: hold. Net benefit %s does not clear the %s minimum.\n",
				utils.FormatUSD(d.NetBenefitUSD), utils.FormatUSD(d.MinProfitThresholdUSD))
		}
	}

	st.Recommendation = b.String()
	st.logf("recommendation composed")
	return st
}

// writeHoldings prints the per-asset breakdown, listing wrapped/lending
// positions separately under their underlying asset so the reader can see
// what the aggregate is made of.
func (p *Pipeline) writeHoldings(b *strings.Builder, st State) {
	symbols := make([]string, 0, len(st.Valuation.PerAssetUSD))
	for symbol := range st.Valuation.PerAssetUSD {
		symbols = append(symbols, symbol)
	}
	sort.Slice(symbols, func(i, j int) bool {
		return st.Valuation.PerAssetUSD[symbols[i]] > st.Valuation.PerAssetUSD[symbols[j]]
	})

	derivatives := make(map[string][]entity.NormalizedHolding)
	for _, h := range st.Holdings {
		if h.IsDerivative {
			derivatives[h.AggregationSymbol] = append(derivatives[h.AggregationSymbol], h)
		}
	}

	total := st.Valuation.TotalUSD
	for _, symbol := range symbols {
		value := st.Valuation.PerAssetUSD[symbol]
		percent := 0.0
		if total > 0 {
			percent = value / total * 100
		}
		fmt.Fprintf(b, "  %-6s %s (%.2f%%)\n", symbol, utils.FormatUSD(value), percent)
		for _, d := range derivatives[symbol] {
			fmt.Fprintf(b, "         incl. %.6f %s (wrapped %s)\n", d.Quantity, d.Symbol, d.Underlying)
		}
	}
}
