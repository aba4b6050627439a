package entity

// GasEstimate is the projected network cost of executing a set of
// rebalancing transactions. Degraded reports that the fee-rate source was
// unreachable and a conservative default was substituted.
type GasEstimate struct {
	Chain           string  `json:"chain"`
	GasPriceGwei    float64 `json:"gas_price_gwei"`
	GasLimitPerTx   uint64  `json:"gas_limit_per_tx"`
	NumTransactions int     `json:"num_transactions"`
	TotalFeeUSD     float64 `json:"total_fee_usd"`
	FeePerTxUSD     float64 `json:"fee_per_tx_usd"`
	Degraded        bool    `json:"degraded,omitempty"`
}

// TradeSuggestion is one proposed trade with its share of the network fee
// netted against the modeled benefit.
type TradeSuggestion struct {
	Symbol             string         `json:"symbol"`
	Direction          TradeDirection `json:"direction"`
	AmountUSD          float64        `json:"amount_usd"`
	ExpectedBenefitUSD float64        `json:"expected_benefit_usd"`
	AllocatedFeeUSD    float64        `json:"allocated_fee_usd"`
	NetBenefitUSD      float64        `json:"net_benefit_usd"`
	Recommended        bool           `json:"recommended"`
}

// RebalanceDecision is the final go/no-go outcome of one pipeline run.
type RebalanceDecision struct {
	ShouldRebalance         bool              `json:"should_rebalance"`
	TotalFeeUSD             float64           `json:"total_fee_usd"`
	TotalExpectedBenefitUSD float64           `json:"total_expected_benefit_usd"`
	NetBenefitUSD           float64           `json:"net_benefit_usd"`
	MinProfitThresholdUSD   float64           `json:"min_profit_threshold_usd"`
	Trades                  []TradeSuggestion `json:"trades"`
}
