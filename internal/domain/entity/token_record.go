package entity

// RawTokenRecord is a single token holding as reported by the balance source
// for one wallet. Balance is the raw on-chain integer amount, hex or decimal
// encoded, unscaled by Decimals. It exists only within one pipeline run.
type RawTokenRecord struct {
	Symbol          string  `json:"symbol"`
	Balance         string  `json:"balance"`
	Decimals        int     `json:"decimals"`
	ContractAddress string  `json:"contract_address,omitempty"`
	CurrentUSDValue float64 `json:"current_usd_value,omitempty"`
	CurrentUSDPrice float64 `json:"current_usd_price,omitempty"`
}

// NormalizedHolding is a token holding after decoding and derivative
// resolution. AggregationSymbol is the underlying ticker for wrapped/lending
// tokens and equals Symbol otherwise. Quantity is always > 0; zero or
// unparseable entries are dropped during normalization.
type NormalizedHolding struct {
	Symbol            string
	Quantity          float64
	AggregationSymbol string
	IsDerivative      bool
	Underlying        string
}
