package entity

// Default thresholds applied when a request leaves them unset.
const (
	DefaultThresholdPercent      = 5.0
	DefaultMinProfitThresholdUSD = 50.0
)

// RebalanceRequest is the single input record of one pipeline invocation.
type RebalanceRequest struct {
	WalletAddresses       []string           `json:"wallet_addresses"`
	TokenSymbols          []string           `json:"token_symbols"`
	ChainID               uint64             `json:"chain_id"`
	TargetAllocation      map[string]float64 `json:"target_allocation"`
	ThresholdPercent      float64            `json:"threshold_percent"`
	MinProfitThresholdUSD float64            `json:"min_profit_threshold_usd"`
}

// WithDefaults returns a copy with unset thresholds replaced by defaults.
func (r RebalanceRequest) WithDefaults() RebalanceRequest {
	if r.ThresholdPercent <= 0 {
		r.ThresholdPercent = DefaultThresholdPercent
	}
	if r.MinProfitThresholdUSD <= 0 {
		r.MinProfitThresholdUSD = DefaultMinProfitThresholdUSD
	}
	return r
}

// RebalanceResult is the single output record of one pipeline invocation.
// Error is a domain-level failure rendered as data; the pipeline boundary
// never surfaces a Go error for it.
type RebalanceResult struct {
	RecommendationText string             `json:"recommendation_text"`
	ExecutionLog       []string           `json:"execution_log"`
	RebalancingNeeded  bool               `json:"rebalancing_needed"`
	TotalPortfolioUSD  float64            `json:"total_portfolio_value_usd"`
	Decision           *RebalanceDecision `json:"decision,omitempty"`
	Error              string             `json:"error,omitempty"`
}
