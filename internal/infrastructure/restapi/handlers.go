package restapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rebalancer/internal/app/pipeline"
	"rebalancer/internal/app/port"
	"rebalancer/internal/app/service"
	"rebalancer/internal/domain/entity"
)

// Handler serves the rebalancing HTTP API.
type Handler struct {
	strategies *service.StrategyService
	parser     port.AllocationParser
	chains     port.ChainProvider
	logger     port.Logger
}

// NewHandler creates a Handler.
func NewHandler(
	strategies *service.StrategyService,
	parser port.AllocationParser,
	chains port.ChainProvider,
	log port.Logger,
) *Handler {
	return &Handler{
		strategies: strategies,
		parser:     parser,
		chains:     chains,
		logger:     log,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// AnalyzeHandler runs one ad-hoc rebalancing analysis.
// POST /api/v1/rebalance
func (h *Handler) AnalyzeHandler(c *gin.Context) {
	var req entity.RebalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	result := h.strategies.Analyze(c.Request.Context(), req)
	status := http.StatusOK
	if result.Error != "" {
		// Domain failures are data, but input-shaped ones deserve a 422 so
		// callers can tell them apart from healthy hold decisions.
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}

type parseAllocationRequest struct {
	Description string `json:"description" binding:"required"`
	Normalize   bool   `json:"normalize"`
}

type parseAllocationResponse struct {
	Allocation map[string]float64 `json:"allocation"`
	Normalized bool               `json:"normalized"`
}

// ParseAllocationHandler turns a free-text description into an allocation.
// POST /api/v1/allocations/parse
func (h *Handler) ParseAllocationHandler(c *gin.Context) {
	var req parseAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	allocation, err := h.parser.ParseAllocation(c.Request.Context(), req.Description)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	resp := parseAllocationResponse{Allocation: allocation}
	if req.Normalize {
		if normalized, ok := pipeline.NormalizeAllocation(allocation); ok {
			resp.Allocation = normalized
			resp.Normalized = true
		}
	}
	c.JSON(http.StatusOK, resp)
}

type createStrategyRequest struct {
	Name        string                  `json:"name" binding:"required"`
	Description string                  `json:"description"`
	Request     entity.RebalanceRequest `json:"request"`
}

// CreateStrategyHandler saves a strategy for later and periodic runs.
// POST /api/v1/strategies
func (h *Handler) CreateStrategyHandler(c *gin.Context) {
	var req createStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	strategy, err := h.strategies.CreateStrategy(c.Request.Context(), req.Name, req.Description, req.Request)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, strategy)
}

// ListStrategiesHandler returns all saved strategies.
// GET /api/v1/strategies
func (h *Handler) ListStrategiesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"strategies": h.strategies.ListStrategies()})
}

// GetStrategyHandler returns one saved strategy.
// GET /api/v1/strategies/:id
func (h *Handler) GetStrategyHandler(c *gin.Context) {
	strategy, ok := h.strategies.GetStrategy(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "strategy not found"})
		return
	}
	c.JSON(http.StatusOK, strategy)
}

// DeleteStrategyHandler removes a saved strategy.
// DELETE /api/v1/strategies/:id
func (h *Handler) DeleteStrategyHandler(c *gin.Context) {
	if !h.strategies.DeleteStrategy(c.Param("id")) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "strategy not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// RunStrategyHandler executes a saved strategy immediately.
// POST /api/v1/strategies/:id/run
func (h *Handler) RunStrategyHandler(c *gin.Context) {
	result, err := h.strategies.RunStrategy(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// RecommendationsHandler returns recent stored results, newest first.
// GET /api/v1/recommendations?limit=N
func (h *Handler) RecommendationsHandler(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": h.strategies.Recommendations(limit)})
}

// ChainsHandler returns every known chain definition.
// GET /api/v1/chains
func (h *Handler) ChainsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"chains": h.chains.GetAllChains()})
}

// HealthHandler reports liveness.
// GET /health
func (h *Handler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
