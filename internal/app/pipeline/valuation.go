package pipeline

import (
	"rebalancer/internal/domain/entity"
)

// computeValuation combines normalized quantities with resolved prices into
// the per-asset USD map. Assets without a resolved price fall back to the
// best-effort value accumulated during normalization, re-checked against the
// same sanity bounds so a bad indexer artifact does not leak into totals.
// An empty portfolio is a valid terminal state, not an error.
func (p *Pipeline) computeValuation(st State) State {
	perAsset := make(map[string]float64, len(st.Totals))
	total := 0.0

	for symbol, t := range st.Totals {
		var value float64
		if price, ok := st.Prices[symbol]; ok {
			value = t.Quantity * price
		} else {
			value = p.boundedFallbackValue(symbol, t)
		}
		if value <= 0 {
			continue
		}
		perAsset[symbol] = value
		total += value
	}

	st.Valuation = entity.PortfolioValuation{PerAssetUSD: perAsset, TotalUSD: total}
	if st.Valuation.Empty() {
		st.logf("portfolio is empty: no asset could be valued")
	} else {
		st.logf("portfolio valued at %.2f USD across %d assets", total, len(perAsset))
	}
	return st
}

// boundedFallbackValue re-applies the normalizer's plausibility rules to the
// implied unit price of an accumulated best-effort value before trusting it.
func (p *Pipeline) boundedFallbackValue(symbol string, t entity.AssetTotals) float64 {
	if t.USDValue <= 0 || t.Quantity <= 0 {
		return 0
	}
	implied := t.USDValue / t.Quantity
	if _, stable := p.chains.StablecoinSymbols()[symbol]; stable {
		if implied > maxStablecoinUnit {
			return t.Quantity * 1.0
		}
		return t.USDValue
	}
	if implied >= maxPlausiblePrice {
		return 0
	}
	return t.USDValue
}
