package pipeline

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"rebalancer/internal/domain/entity"
	"rebalancer/internal/pkg/metrics"
	"rebalancer/internal/pkg/utils"
)

const (
	maxSymbolLength   = 20
	symbolSeparator   = "|"
	defaultDecimals   = 18
	nativeDecimals    = 18
	maxPlausiblePrice = 1e6
	maxStablecoinUnit = 2.0
)

// fetchBalances pulls token holdings and the native balance for every wallet
// concurrently, then folds them into normalized holdings and per-asset
// running totals. Individual wallet failures are tolerated; the stage fails
// only when every wallet is unreachable.
func (p *Pipeline) fetchBalances(ctx context.Context, st State) State {
	wallets := st.Request.WalletAddresses

	type walletResult struct {
		address string
		records []entity.RawTokenRecord
		native  float64
		failed  bool
	}

	results := make([]walletResult, len(wallets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxConcurrentRoutines)
	for i, addr := range wallets {
		i, addr := i, addr
		g.Go(func() error {
			res := walletResult{address: addr}

			callCtx, cancel := p.callCtx(gctx)
			records, err := p.balances.FetchAccountTokenHoldings(callCtx, st.Request.ChainID, addr)
			cancel()
			if err != nil {
				p.logger.Warn("token holdings fetch failed", "wallet", addr, "error", err)
				res.failed = true
			} else {
				res.records = records
			}

			callCtx, cancel = p.callCtx(gctx)
			wei, err := p.native.FetchNativeBalance(callCtx, st.Request.ChainID, addr)
			cancel()
			if err != nil {
				p.logger.Warn("native balance fetch failed", "wallet", addr, "error", err)
			} else {
				// Any successful native read proves the wallet is reachable,
				// a zero balance included.
				res.native = utils.ToUnits(wei, nativeDecimals)
				res.failed = false
			}

			results[i] = res
			return nil
		})
	}
	// Workers only record per-wallet outcomes, they never return errors.
	_ = g.Wait()

	st.Totals = make(map[string]entity.AssetTotals)
	failed := 0
	for _, res := range results {
		if res.failed {
			failed++
			st.logf("wallet %s: balance source unreachable, skipped", res.address)
			continue
		}
		for _, rec := range res.records {
			holding, usd, ok := p.normalizeRecord(st.Chain, rec)
			if !ok {
				st.DroppedRecords++
				continue
			}
			st.Holdings = append(st.Holdings, holding)
			addTotal(st.Totals, holding.AggregationSymbol, holding.Quantity, usd)
		}
		if res.native > 0 {
			sym := strings.ToUpper(st.Chain.NativeSymbol)
			st.Holdings = append(st.Holdings, entity.NormalizedHolding{
				Symbol:            sym,
				Quantity:          res.native,
				AggregationSymbol: sym,
			})
			// Native balances carry no reported USD value; the price stage
			// fills that in.
			addTotal(st.Totals, sym, res.native, 0)
		}
	}
	st.FailedWallets = failed

	if failed == len(wallets) {
		metrics.StageFailures.WithLabelValues(string(StageFetchingBalances)).Inc()
		st.failf("balance source unreachable for all %d wallets", len(wallets))
		return st
	}

	st.logf("normalized %d holdings across %d wallets (%d records dropped, %d wallets failed)",
		len(st.Holdings), len(wallets)-failed, st.DroppedRecords, failed)
	return st
}

// normalizeRecord decodes one raw token record. It reports ok=false for
// records that must be dropped: unparseable or non-positive balances and
// malformed symbols. The returned usd value is best-effort, using reported
// figures where they pass sanity checks.
func (p *Pipeline) normalizeRecord(chain entity.ChainDefinition, rec entity.RawTokenRecord) (entity.NormalizedHolding, float64, bool) {
	sym := strings.TrimSpace(rec.Symbol)
	if sym == "" || len(sym) > maxSymbolLength || strings.Contains(sym, symbolSeparator) {
		return entity.NormalizedHolding{}, 0, false
	}

	amount, ok := utils.ParseRawAmount(rec.Balance)
	if !ok {
		// One malformed balance never aborts the batch.
		p.logger.Debug("unparseable balance, treated as zero", "symbol", sym, "raw", rec.Balance)
		return entity.NormalizedHolding{}, 0, false
	}
	decimals := rec.Decimals
	if decimals <= 0 {
		decimals = defaultDecimals
	}
	quantity := utils.ToUnits(amount, decimals)
	if quantity <= 0 {
		return entity.NormalizedHolding{}, 0, false
	}

	holding := entity.NormalizedHolding{
		Symbol:            sym,
		Quantity:          quantity,
		AggregationSymbol: strings.ToUpper(sym),
	}
	if underlying, ok := p.detectDerivative(chain, sym); ok {
		holding.IsDerivative = true
		holding.Underlying = underlying
		holding.AggregationSymbol = underlying
	}

	return holding, p.bestEffortUSD(holding, rec), true
}

// detectDerivative matches chain-specific wrapped/lending prefixes against
// the underlying ticker whitelist. Longest prefix wins so that "aArbWBTC"
// resolves via "aArb" before the bare "a" prefix gets a chance.
func (p *Pipeline) detectDerivative(chain entity.ChainDefinition, symbol string) (string, bool) {
	whitelist := p.chains.UnderlyingWhitelist()
	best := ""
	for _, prefix := range chain.DerivativePrefixes {
		if len(prefix) <= len(best) || len(symbol) <= len(prefix) {
			continue
		}
		if !strings.HasPrefix(symbol, prefix) {
			continue
		}
		rest := strings.ToUpper(symbol[len(prefix):])
		if _, ok := whitelist[rest]; ok {
			best = prefix
		}
	}
	if best == "" {
		return "", false
	}
	return strings.ToUpper(symbol[len(best):]), true
}

// bestEffortUSD derives a USD value from reported indexer figures. Reported
// unit prices are sanity-bounded: stablecoins above $2 fall back to $1, any
// other symbol above the plausibility cap contributes nothing.
func (p *Pipeline) bestEffortUSD(h entity.NormalizedHolding, rec entity.RawTokenRecord) float64 {
	if rec.CurrentUSDValue > 0 {
		return rec.CurrentUSDValue
	}
	price := rec.CurrentUSDPrice
	if price <= 0 {
		return 0
	}
	if _, stable := p.chains.StablecoinSymbols()[h.AggregationSymbol]; stable {
		if price > maxStablecoinUnit {
			price = 1.0
		}
		return h.Quantity * price
	}
	if price >= maxPlausiblePrice {
		return 0
	}
	return h.Quantity * price
}

func addTotal(totals map[string]entity.AssetTotals, symbol string, qty, usd float64) {
	t := totals[symbol]
	t.Quantity += qty
	t.USDValue += usd
	totals[symbol] = t
}
