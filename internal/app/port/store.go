package port

import "rebalancer/internal/domain/entity"

// StoredRecommendation is one persisted pipeline result with its origin.
type StoredRecommendation struct {
	ID         string                  `json:"id"`
	StrategyID string                  `json:"strategy_id,omitempty"`
	CreatedAt  string                  `json:"created_at"`
	Result     entity.RebalanceResult  `json:"result"`
	Request    entity.RebalanceRequest `json:"request"`
}

// RecommendationStore persists pipeline results. The pipeline itself never
// writes to it; the surrounding services do, after a run returns.
type RecommendationStore interface {
	Append(rec StoredRecommendation)
	List(limit int) []StoredRecommendation
}
