package pipeline

import (
	"rebalancer/internal/domain/entity"
)

// netBenefits nets the modeled benefit of each planned trade against its
// even share of the network fee and produces the final go/no-go decision.
// Only trades whose benefit beats their fee share are suggested, and only
// those contribute to the decision-level benefit total.
func (p *Pipeline) netBenefits(st State) State {
	actions := st.Plan.Actions
	decision := entity.RebalanceDecision{
		TotalFeeUSD:           st.Gas.TotalFeeUSD,
		MinProfitThresholdUSD: st.Request.MinProfitThresholdUSD,
	}

	if len(actions) > 0 {
		feeShare := st.Gas.TotalFeeUSD / float64(len(actions))
		for _, action := range actions {
			expected := p.Benefit(action.AmountUSD)
			if expected <= feeShare {
				continue
			}
			decision.Trades = append(decision.Trades, entity.TradeSuggestion{
				Symbol:             action.Symbol,
				Direction:          action.Direction,
				AmountUSD:          action.AmountUSD,
				ExpectedBenefitUSD: expected,
				AllocatedFeeUSD:    feeShare,
				NetBenefitUSD:      expected - feeShare,
				Recommended:        true,
			})
			decision.TotalExpectedBenefitUSD += expected
		}
	}

	decision.NetBenefitUSD = decision.TotalExpectedBenefitUSD - decision.TotalFeeUSD
	decision.ShouldRebalance = decision.NetBenefitUSD > st.Request.MinProfitThresholdUSD

	st.Decision = &decision
	st.logf("netting: %d of %d trades clear their fee share, net benefit %.2f USD (min %.2f)",
		len(decision.Trades), len(actions), decision.NetBenefitUSD, st.Request.MinProfitThresholdUSD)
	return st
}
