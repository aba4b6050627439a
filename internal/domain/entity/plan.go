package entity

// TradeDirection tells whether an asset is overweight or underweight
// relative to its target share.
type TradeDirection string

const (
	DirectionBuy  TradeDirection = "BUY"
	DirectionSell TradeDirection = "SELL"
)

// DeviationEntry is one asset whose current share deviates from its target
// share by more than the threshold.
type DeviationEntry struct {
	Symbol           string         `json:"symbol"`
	CurrentPercent   float64        `json:"current_percent"`
	TargetPercent    float64        `json:"target_percent"`
	DeviationPercent float64        `json:"deviation_percent"`
	CurrentUSD       float64        `json:"current_usd"`
	TargetUSD        float64        `json:"target_usd"`
	Direction        TradeDirection `json:"direction"`
	AmountUSD        float64        `json:"amount_usd"`
}

// RebalancePlan is the output of the deviation stage.
type RebalancePlan struct {
	TotalPortfolioUSD float64          `json:"total_portfolio_usd"`
	ThresholdPercent  float64          `json:"threshold_percent"`
	Needed            bool             `json:"needed"`
	Actions           []DeviationEntry `json:"actions"`
}
