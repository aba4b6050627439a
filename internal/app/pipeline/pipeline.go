// Package pipeline implements the rebalancing decision workflow: balances
// are normalized into per-asset quantities, priced, valued, compared against
// a target allocation, and the proposed adjustments are netted against the
// estimated network cost to produce a recommendation.
//
// The workflow is a fixed topology with one fork: when no adjustment exceeds
// the deviation threshold, the cost and netting stages are skipped. Every
// stage contains its own failures; the caller always receives a well-formed
// result record.
package pipeline

import (
	"context"
	"time"

	"rebalancer/internal/app/port"
	"rebalancer/internal/domain/entity"
	"rebalancer/internal/pkg/metrics"
)

// BenefitEstimator models the expected monetary benefit of one adjustment.
// The default is a fixed fraction of the adjusted amount; this is a
// placeholder heuristic, not a market simulation.
type BenefitEstimator func(amountUSD float64) float64

// FixedFractionBenefit returns the default estimator: fraction * amount.
func FixedFractionBenefit(fraction float64) BenefitEstimator {
	return func(amountUSD float64) float64 {
		return amountUSD * fraction
	}
}

const defaultBenefitFraction = 0.02

// Config carries the tunables of one pipeline instance.
type Config struct {
	// CallTimeout bounds each outbound call (one wallet fetch, one symbol
	// quote, one fee-rate read).
	CallTimeout time.Duration

	// MaxConcurrentRoutines bounds the fan-out inside the balance and price
	// stages.
	MaxConcurrentRoutines int
}

func (c Config) withDefaults() Config {
	if c.CallTimeout <= 0 {
		c.CallTimeout = 10 * time.Second
	}
	if c.MaxConcurrentRoutines <= 0 {
		c.MaxConcurrentRoutines = 5
	}
	return c
}

// Pipeline runs the rebalancing analysis against a set of collaborators.
// All collaborators are injected; the pipeline holds no global state and a
// single instance may serve concurrent runs.
type Pipeline struct {
	chains   port.ChainProvider
	balances port.BalanceSource
	native   port.NativeSource
	oracle   port.PriceOracle
	fees     port.FeeSource
	logger   port.Logger
	cfg      Config

	// Benefit may be replaced to plug a different benefit model into the
	// netting stage.
	Benefit BenefitEstimator
}

// New creates a Pipeline with the given collaborators.
func New(
	chains port.ChainProvider,
	balances port.BalanceSource,
	native port.NativeSource,
	oracle port.PriceOracle,
	fees port.FeeSource,
	logger port.Logger,
	cfg Config,
) *Pipeline {
	return &Pipeline{
		chains:   chains,
		balances: balances,
		native:   native,
		oracle:   oracle,
		fees:     fees,
		logger:   logger,
		cfg:      cfg.withDefaults(),
		Benefit:  FixedFractionBenefit(defaultBenefitFraction),
	}
}

// Analyze executes one full pipeline run. It never panics and never returns
// a Go error: domain-level failures are carried in the result's Error field,
// with whatever partial execution log accumulated before the failure.
func (p *Pipeline) Analyze(ctx context.Context, req entity.RebalanceRequest) entity.RebalanceResult {
	req = req.WithDefaults()
	st := State{Stage: StageFetchingBalances, Request: req}

	if msg, ok := p.validate(req); !ok {
		st.failf("%s", msg)
		metrics.PipelineRuns.WithLabelValues("error").Inc()
		return p.result(st)
	}

	chain, ok := p.chains.GetChainByID(req.ChainID)
	if !ok {
		st.failf("unknown chain id %d", req.ChainID)
		metrics.PipelineRuns.WithLabelValues("error").Inc()
		return p.result(st)
	}
	st.Chain = chain
	st.logf("starting analysis: chain=%s wallets=%d threshold=%.2f%%",
		chain.Identifier, len(req.WalletAddresses), req.ThresholdPercent)

	for st.Stage != StageDone {
		select {
		case <-ctx.Done():
			st.failf("run cancelled: %v", ctx.Err())
		default:
			st = p.step(ctx, st)
		}
		st.Stage = st.next()
	}

	switch {
	case st.Err != "":
		metrics.PipelineRuns.WithLabelValues("error").Inc()
	case st.Decision != nil && st.Decision.ShouldRebalance:
		metrics.PipelineRuns.WithLabelValues("rebalance").Inc()
	default:
		metrics.PipelineRuns.WithLabelValues("hold").Inc()
	}
	return p.result(st)
}

// step dispatches the current stage. Each stage receives the full state and
// returns an updated copy; nothing here mutates shared structures.
func (p *Pipeline) step(ctx context.Context, st State) State {
	switch st.Stage {
	case StageFetchingBalances:
		return p.fetchBalances(ctx, st)
	case StageFetchingPrices:
		return p.resolvePrices(ctx, st)
	case StageValuating:
		return p.computeValuation(st)
	case StageDeciding:
		return p.buildPlan(st)
	case StageEstimatingCost:
		return p.estimateCost(ctx, st)
	case StageNetting:
		return p.netBenefits(st)
	case StageComposing:
		return p.compose(st)
	}
	return st
}

func (p *Pipeline) validate(req entity.RebalanceRequest) (string, bool) {
	if len(req.WalletAddresses) == 0 {
		return "no wallet addresses provided", false
	}
	if len(req.TargetAllocation) == 0 {
		return "no target allocation provided", false
	}
	return "", true
}

func (p *Pipeline) result(st State) entity.RebalanceResult {
	res := entity.RebalanceResult{
		RecommendationText: st.Recommendation,
		ExecutionLog:       st.ExecutionLog,
		RebalancingNeeded:  st.Plan.Needed,
		TotalPortfolioUSD:  st.Valuation.TotalUSD,
		Decision:           st.Decision,
		Error:              st.Err,
	}
	if res.ExecutionLog == nil {
		res.ExecutionLog = []string{}
	}
	return res
}

// callCtx derives the per-call timeout context used for every outbound
// request, so one slow wallet or symbol cannot stall the whole stage.
func (p *Pipeline) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.cfg.CallTimeout)
}
