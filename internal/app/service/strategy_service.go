package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"rebalancer/internal/app/port"
	"rebalancer/internal/domain/entity"
)

// Analyzer runs one rebalancing analysis. Satisfied by pipeline.Pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, req entity.RebalanceRequest) entity.RebalanceResult
}

// StrategyService manages saved strategies and runs analyses against them.
// Strategies live in memory; results go to the recommendation store.
type StrategyService struct {
	analyzer Analyzer
	parser   port.AllocationParser
	store    port.RecommendationStore
	logger   port.Logger

	mu         sync.RWMutex
	strategies map[string]entity.Strategy
}

// NewStrategyService creates a StrategyService.
func NewStrategyService(
	analyzer Analyzer,
	parser port.AllocationParser,
	store port.RecommendationStore,
	log port.Logger,
) *StrategyService {
	return &StrategyService{
		analyzer:   analyzer,
		parser:     parser,
		store:      store,
		logger:     log,
		strategies: make(map[string]entity.Strategy),
	}
}

// CreateStrategy saves a strategy. When the request carries no explicit
// target allocation, the free-text description is parsed into one.
func (s *StrategyService) CreateStrategy(ctx context.Context, name, description string, req entity.RebalanceRequest) (entity.Strategy, error) {
	if len(req.TargetAllocation) == 0 {
		allocation, err := s.parser.ParseAllocation(ctx, description)
		if err != nil {
			return entity.Strategy{}, fmt.Errorf("cannot derive target allocation: %w", err)
		}
		req.TargetAllocation = allocation
	}
	if len(req.WalletAddresses) == 0 {
		return entity.Strategy{}, fmt.Errorf("strategy needs at least one wallet address")
	}

	strategy := entity.Strategy{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Request:     req.WithDefaults(),
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	s.strategies[strategy.ID] = strategy
	s.mu.Unlock()

	s.logger.Info("strategy created",
		"id", strategy.ID, "name", name, "assets", len(req.TargetAllocation))
	return strategy, nil
}

// GetStrategy returns a saved strategy by id.
func (s *StrategyService) GetStrategy(id string) (entity.Strategy, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	strategy, ok := s.strategies[id]
	return strategy, ok
}

// ListStrategies returns all saved strategies ordered by creation time.
func (s *StrategyService) ListStrategies() []entity.Strategy {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Strategy, 0, len(s.strategies))
	for _, strategy := range s.strategies {
		out = append(out, strategy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// DeleteStrategy removes a saved strategy; it reports whether one existed.
func (s *StrategyService) DeleteStrategy(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.strategies[id]
	delete(s.strategies, id)
	return ok
}

// Analyze runs one ad-hoc analysis and persists the result.
func (s *StrategyService) Analyze(ctx context.Context, req entity.RebalanceRequest) entity.RebalanceResult {
	result := s.analyzer.Analyze(ctx, req)
	s.persist("", req, result)
	return result
}

// RunStrategy executes a saved strategy and persists the result.
func (s *StrategyService) RunStrategy(ctx context.Context, id string) (entity.RebalanceResult, error) {
	strategy, ok := s.GetStrategy(id)
	if !ok {
		return entity.RebalanceResult{}, fmt.Errorf("strategy %s not found", id)
	}

	result := s.analyzer.Analyze(ctx, strategy.Request)
	s.persist(strategy.ID, strategy.Request, result)
	return result, nil
}

// Recommendations returns the most recent stored results, newest first.
func (s *StrategyService) Recommendations(limit int) []port.StoredRecommendation {
	return s.store.List(limit)
}

func (s *StrategyService) persist(strategyID string, req entity.RebalanceRequest, result entity.RebalanceResult) {
	s.store.Append(port.StoredRecommendation{
		ID:         uuid.NewString(),
		StrategyID: strategyID,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		Result:     result,
		Request:    req,
	})
}
