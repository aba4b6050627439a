package pipeline

import (
	"fmt"

	"rebalancer/internal/domain/entity"
)

// Stage names the nodes of the pipeline workflow.
type Stage string

const (
	StageFetchingBalances Stage = "fetching_balances"
	StageFetchingPrices   Stage = "fetching_prices"
	StageValuating        Stage = "valuating"
	StageDeciding         Stage = "deciding"
	StageEstimatingCost   Stage = "estimating_cost"
	StageNetting          Stage = "netting"
	StageComposing        Stage = "composing"
	StageDone             Stage = "done"
)

// State is the record threaded through every stage of one run. Stages take
// it by value and return an updated copy; the orchestrator owns the only
// live reference, so no two runs or stages ever share mutable state. Maps
// and slices inside it are written only by the stage that introduces them.
type State struct {
	Stage Stage

	Request entity.RebalanceRequest
	Chain   entity.ChainDefinition

	// Set by the balance normalization stage.
	Holdings       []entity.NormalizedHolding
	Totals         map[string]entity.AssetTotals
	DroppedRecords int
	FailedWallets  int

	// Set by the price resolution stage. Symbols with no resolvable price
	// are absent; later stages treat absence as "valuation unavailable".
	Prices map[string]float64

	Valuation entity.PortfolioValuation
	Plan      entity.RebalancePlan
	Gas       entity.GasEstimate
	Decision  *entity.RebalanceDecision

	Recommendation string
	ExecutionLog   []string

	// Err short-circuits the workflow to Done when non-empty. Partial state
	// accumulated so far is still returned to the caller.
	Err string
}

// logf appends a formatted entry to the execution log.
func (s *State) logf(format string, args ...any) {
	s.ExecutionLog = append(s.ExecutionLog, fmt.Sprintf(format, args...))
}

// failf records an unrecoverable error for this run.
func (s *State) failf(format string, args ...any) {
	s.Err = fmt.Sprintf(format, args...)
	s.logf("error: %s", s.Err)
}

// next returns the stage to run after the current one, applying the single
// conditional fork after Deciding: the cost/netting branch runs only when a
// rebalance is actually needed.
func (s State) next() Stage {
	if s.Err != "" {
		return StageDone
	}
	switch s.Stage {
	case StageFetchingBalances:
		return StageFetchingPrices
	case StageFetchingPrices:
		return StageValuating
	case StageValuating:
		return StageDeciding
	case StageDeciding:
		if s.Plan.Needed {
			return StageEstimatingCost
		}
		return StageComposing
	case StageEstimatingCost:
		return StageNetting
	case StageNetting:
		return StageComposing
	default:
		return StageDone
	}
}
