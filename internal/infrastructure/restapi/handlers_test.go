package restapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rebalancer/internal/app/service"
	"rebalancer/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type fakeAnalyzer struct {
	result entity.RebalanceResult
}

func (f *fakeAnalyzer) Analyze(context.Context, entity.RebalanceRequest) entity.RebalanceResult {
	return f.result
}

type fakeParser struct {
	allocation map[string]float64
}

func (f *fakeParser) ParseAllocation(context.Context, string) (map[string]float64, error) {
	return f.allocation, nil
}

type fakeChains struct{}

func (fakeChains) GetChainByID(uint64) (entity.ChainDefinition, bool) {
	return entity.ChainDefinition{}, false
}

func (fakeChains) GetAllChains() []entity.ChainDefinition {
	return []entity.ChainDefinition{{ChainID: 1, Identifier: "ethereum"}}
}

func (fakeChains) StablecoinSymbols() map[string]struct{} { return nil }

func (fakeChains) UnderlyingWhitelist() map[string]struct{} { return nil }

func newTestRouter(analyzer *fakeAnalyzer, parser *fakeParser) *gin.Engine {
	gin.SetMode(gin.TestMode)
	strategies := service.NewStrategyService(analyzer, parser, service.NewMemStore(10), noopLogger{})
	handler := NewHandler(strategies, parser, fakeChains{}, noopLogger{})
	return SetupRouter(handler, RouterOptions{})
}

func doRequest(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	router := newTestRouter(&fakeAnalyzer{}, &fakeParser{})
	w := doRequest(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestAnalyzeHandler(t *testing.T) {
	analyzer := &fakeAnalyzer{result: entity.RebalanceResult{
		RecommendationText: "hold",
		TotalPortfolioUSD:  5000,
		ExecutionLog:       []string{},
	}}
	router := newTestRouter(analyzer, &fakeParser{})

	body := `{"wallet_addresses":["0xw1"],"chain_id":1,"target_allocation":{"BTC":100}}`
	w := doRequest(t, router, http.MethodPost, "/api/v1/rebalance", body)
	require.Equal(t, http.StatusOK, w.Code)

	var result entity.RebalanceResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "hold", result.RecommendationText)
	assert.InDelta(t, 5000, result.TotalPortfolioUSD, 1e-9)
}

func TestAnalyzeHandlerBadBody(t *testing.T) {
	router := newTestRouter(&fakeAnalyzer{}, &fakeParser{})
	w := doRequest(t, router, http.MethodPost, "/api/v1/rebalance", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeHandlerDomainFailure(t *testing.T) {
	analyzer := &fakeAnalyzer{result: entity.RebalanceResult{
		Error:        "unknown chain id 999",
		ExecutionLog: []string{},
	}}
	router := newTestRouter(analyzer, &fakeParser{})

	body := `{"wallet_addresses":["0xw1"],"chain_id":999,"target_allocation":{"BTC":100}}`
	w := doRequest(t, router, http.MethodPost, "/api/v1/rebalance", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestParseAllocationHandler(t *testing.T) {
	parser := &fakeParser{allocation: map[string]float64{"BTC": 30, "ETH": 30}}
	router := newTestRouter(&fakeAnalyzer{}, parser)

	w := doRequest(t, router, http.MethodPost, "/api/v1/allocations/parse",
		`{"description":"30% BTC, 30% ETH","normalize":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp parseAllocationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Normalized)
	assert.InDelta(t, 50, resp.Allocation["BTC"], 1e-9)
	assert.InDelta(t, 50, resp.Allocation["ETH"], 1e-9)
}

func TestStrategyLifecycle(t *testing.T) {
	parser := &fakeParser{allocation: map[string]float64{"BTC": 100}}
	router := newTestRouter(&fakeAnalyzer{result: entity.RebalanceResult{ExecutionLog: []string{}}}, parser)

	created := doRequest(t, router, http.MethodPost, "/api/v1/strategies",
		`{"name":"main","description":"all BTC","request":{"wallet_addresses":["0xw1"],"chain_id":1}}`)
	require.Equal(t, http.StatusCreated, created.Code)

	var strategy entity.Strategy
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &strategy))
	require.NotEmpty(t, strategy.ID)

	run := doRequest(t, router, http.MethodPost, "/api/v1/strategies/"+strategy.ID+"/run", "")
	assert.Equal(t, http.StatusOK, run.Code)

	recs := doRequest(t, router, http.MethodGet, "/api/v1/recommendations?limit=5", "")
	assert.Equal(t, http.StatusOK, recs.Code)
	assert.Contains(t, recs.Body.String(), strategy.ID)

	deleted := doRequest(t, router, http.MethodDelete, "/api/v1/strategies/"+strategy.ID, "")
	assert.Equal(t, http.StatusNoContent, deleted.Code)

	missing := doRequest(t, router, http.MethodGet, "/api/v1/strategies/"+strategy.ID, "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestChainsHandler(t *testing.T) {
	router := newTestRouter(&fakeAnalyzer{}, &fakeParser{})
	w := doRequest(t, router, http.MethodGet, "/api/v1/chains", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ethereum")
}

func TestRecommendationsHandlerRejectsBadLimit(t *testing.T) {
	router := newTestRouter(&fakeAnalyzer{}, &fakeParser{})
	w := doRequest(t, router, http.MethodGet, "/api/v1/recommendations?limit=nope", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
