package service

import (
	"context"
	"time"

	"rebalancer/internal/app/port"
)

const defaultMonitorInterval = 3600 * time.Second

// Monitor periodically re-runs every saved strategy so allocation drift is
// noticed without a manual request. One strategy failing never stops the
// sweep.
type Monitor struct {
	service  *StrategyService
	logger   port.Logger
	interval time.Duration
}

// NewMonitor creates a Monitor. A non-positive interval selects the default
// of one hour.
func NewMonitor(service *StrategyService, log port.Logger, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = defaultMonitorInterval
	}
	return &Monitor{service: service, logger: log, interval: interval}
}

// Run blocks until the context is cancelled, sweeping all strategies on each
// tick. It is meant to be started in its own goroutine.
func (m *Monitor) Run(ctx context.Context) {
	m.logger.Info("monitor started", "interval", m.interval.String())

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopped")
			return
		case <-ticker.C:
			m.sweep(ctx)
		}
	}
}

func (m *Monitor) sweep(ctx context.Context) {
	strategies := m.service.ListStrategies()
	if len(strategies) == 0 {
		m.logger.Debug("monitor sweep: no strategies registered")
		return
	}

	m.logger.Info("monitor sweep started", "strategies", len(strategies))
	for _, strategy := range strategies {
		if ctx.Err() != nil {
			return
		}
		result, err := m.service.RunStrategy(ctx, strategy.ID)
		if err != nil {
			m.logger.Warn("monitor run failed", "strategy", strategy.ID, "error", err)
			continue
		}
		if result.Decision != nil && result.Decision.ShouldRebalance {
			m.logger.Info("monitor: rebalancing recommended",
				"strategy", strategy.ID, "name", strategy.Name,
				"netBenefitUsd", result.Decision.NetBenefitUSD)
		}
	}
}
