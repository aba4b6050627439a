package port

import "context"

// PriceOracle quotes a symbol against USD. The returned value is the raw
// oracle payload: implementations are not trusted to return a clean number,
// so callers run it through the pricing parser. A non-nil error means the
// quote is unavailable; callers fall back rather than fail.
type PriceOracle interface {
	FetchUnitPriceUSD(ctx context.Context, symbol string) (any, error)
}
