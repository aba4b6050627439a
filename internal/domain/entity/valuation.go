package entity

// AssetTotals accumulates quantity and best-effort USD value per aggregation
// symbol across all wallets of one run.
type AssetTotals struct {
	Quantity float64
	USDValue float64
}

// PortfolioValuation maps aggregation symbols to their USD value.
// TotalUSD is the sum of PerAssetUSD values; an empty map with TotalUSD == 0
// is a valid terminal state meaning no rebalancing is possible.
type PortfolioValuation struct {
	PerAssetUSD map[string]float64 `json:"per_asset_usd"`
	TotalUSD    float64            `json:"total_usd"`
}

// Empty reports whether the portfolio carries no value at all.
func (v PortfolioValuation) Empty() bool {
	return len(v.PerAssetUSD) == 0 || v.TotalUSD == 0
}
