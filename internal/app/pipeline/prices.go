package pipeline

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"rebalancer/internal/app/pipeline/pricing"
	"rebalancer/internal/pkg/metrics"
)

// Resolved prices outside (0, 1e15) are oracle artifacts and are discarded.
const maxResolvedPrice = 1e15

// resolvePrices obtains a USD unit price for every symbol the run touches:
// portfolio aggregation symbols, explicitly requested tokens and the chain's
// gas token. The stage never fails; it returns whatever subset it could
// resolve, and downstream stages treat missing symbols as unpriceable.
func (p *Pipeline) resolvePrices(ctx context.Context, st State) State {
	symbols := p.collectSymbols(st)
	underlyingOf := derivativeIndex(st)
	stables := p.chains.StablecoinSymbols()

	prices := make(map[string]float64, len(symbols))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxConcurrentRoutines)
	for _, symbol := range symbols {
		symbol := symbol
		// Stablecoins are pinned to exactly 1.0 regardless of what any
		// oracle would say; no call needed.
		if _, ok := stables[symbol]; ok {
			mu.Lock()
			prices[symbol] = 1.0
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			quote, lookup := symbol, symbol
			if underlying, ok := underlyingOf[symbol]; ok {
				// Derivatives are priced through their underlying asset.
				lookup = underlying
			}

			price, ok := p.fetchPrice(gctx, lookup)
			if ok {
				mu.Lock()
				prices[quote] = price
				prices[lookup] = price
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	// Implied-price fallback: when the oracle had nothing, derive a unit
	// price from the best-effort USD totals the normalizer accumulated. The
	// same plausibility bounds apply as everywhere else, so a bad reported
	// figure cannot sneak past the valuation stage through this path.
	for _, symbol := range symbols {
		if _, ok := prices[symbol]; ok {
			continue
		}
		t := st.Totals[symbol]
		if t.Quantity <= 0 || t.USDValue <= 0 {
			continue
		}
		implied := t.USDValue / t.Quantity
		if implied >= maxPlausiblePrice {
			st.logf("implied price for %s outside sanity bounds, discarded: %.2f", symbol, implied)
			continue
		}
		prices[symbol] = implied
		st.logf("price for %s implied from reported values: %.6f", symbol, implied)
	}

	st.Prices = prices
	st.logf("resolved prices for %d of %d symbols", len(prices), len(symbols))
	return st
}

// fetchPrice performs one oracle call with its own timeout and runs the
// payload through the pricing grammar and sanity bounds. Any failure is
// "try next fallback", never an error.
func (p *Pipeline) fetchPrice(ctx context.Context, symbol string) (float64, bool) {
	callCtx, cancel := p.callCtx(ctx)
	defer cancel()

	raw, err := p.oracle.FetchUnitPriceUSD(callCtx, symbol)
	if err != nil {
		metrics.OracleRequests.WithLabelValues("error").Inc()
		p.logger.Debug("oracle quote failed", "symbol", symbol, "error", err)
		return 0, false
	}
	price, ok := pricing.Parse(raw)
	if !ok {
		metrics.OracleRequests.WithLabelValues("unparseable").Inc()
		p.logger.Warn("oracle payload not parseable", "symbol", symbol)
		return 0, false
	}
	if price <= 0 || price >= maxResolvedPrice {
		metrics.OracleRequests.WithLabelValues("unparseable").Inc()
		p.logger.Warn("oracle price outside sanity bounds, discarded", "symbol", symbol, "price", price)
		return 0, false
	}
	metrics.OracleRequests.WithLabelValues("ok").Inc()
	return price, true
}

// collectSymbols returns the union of aggregation symbols, requested tokens
// and the native gas token, deduplicated and upper-cased.
func (p *Pipeline) collectSymbols(st State) []string {
	seen := make(map[string]struct{})
	var symbols []string
	add := func(s string) {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		symbols = append(symbols, s)
	}

	for symbol := range st.Totals {
		add(symbol)
	}
	for _, symbol := range st.Request.TokenSymbols {
		add(symbol)
	}
	add(st.Chain.NativeSymbol)
	return symbols
}

// derivativeIndex maps upper-cased derivative symbols to their underlying
// ticker, built from the normalized holdings of this run.
func derivativeIndex(st State) map[string]string {
	idx := make(map[string]string)
	for _, h := range st.Holdings {
		if h.IsDerivative && h.Underlying != "" {
			idx[strings.ToUpper(h.Symbol)] = h.Underlying
		}
	}
	return idx
}
