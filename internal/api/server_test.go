package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"pairScope/internal/model"
	"pairScope/internal/pairlist"
)

func newTestManager(t *testing.T) *pairlist.Manager {
	t.Helper()
	tickers := map[string]model.TickerInfo{
		"BTC/USDT": {Symbol: "BTC/USDT", QuoteVolume24h: 300},
		"ETH/USDT": {Symbol: "ETH/USDT", QuoteVolume24h: 200},
		"SOL/USDT": {Symbol: "SOL/USDT", QuoteVolume24h: 100},
	}
	markets := []model.MarketInfo{
		{Symbol: "BTC/USDT", Active: true},
		{Symbol: "ETH/USDT", Active: true},
		{Symbol: "SOL/USDT", Active: true},
		{Symbol: "DOGE/USDT", Active: true},
	}
	m := pairlist.NewManager(pairlist.ManagerConfig{
		MarketProvider: func(context.Context) ([]model.MarketInfo, error) {
			return markets, nil
		},
		TickerProvider: func(context.Context) (map[string]model.TickerInfo, error) {
			return tickers, nil
		},
	}, nil)
	m.LoadFromConfig(pairlist.PipelineConfig{Filters: []pairlist.Options{
		{"method": pairlist.MethodStaticPairList, "whitelist": []string{"SOL/USDT", "BTC/USDT", "ETH/USDT"}},
		{"method": pairlist.MethodVolumePairList, "number_assets": 2},
	}})
	return m
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRefreshThenPairs(t *testing.T) {
	m := newTestManager(t)
	srv := NewServer(m, Config{Metrics: http.NotFoundHandler()}, nil)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/pairs")
	require.Equal(t, http.StatusOK, rec.Code)
	var before pairsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &before))
	assert.Empty(t, before.Pairs)

	rec = do(t, h, http.MethodPost, "/refresh")
	require.Equal(t, http.StatusOK, rec.Code)
	var refreshed refreshResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshed))
	assert.True(t, refreshed.Published)
	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT"}, refreshed.Pairs)

	rec = do(t, h, http.MethodGet, "/pairs")
	var after pairsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
	assert.Equal(t, 2, after.Count)
	assert.False(t, after.UpdatedAt.IsZero())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestStats(t *testing.T) {
	m := newTestManager(t)
	m.Refresh(context.Background())
	h := NewServer(m, Config{}, nil).Handler()

	rec := do(t, h, http.MethodGet, "/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats pairlist.Statistics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.PairCount)
	assert.Equal(t, []string{pairlist.MethodStaticPairList, pairlist.MethodVolumePairList}, stats.Filters)
	assert.Equal(t, int64(1), stats.RefreshCount)
}

func TestRoutes(t *testing.T) {
	h := NewServer(newTestManager(t), Config{}, nil).Handler()

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/refresh").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/metrics").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/nope").Code)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	srv := NewServer(newTestManager(t), Config{Addr: "127.0.0.1:0"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestWriteJSONLogsEncodeFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	srv := NewServer(newTestManager(t), Config{}, zap.New(core))

	rec := httptest.NewRecorder()
	srv.writeJSON(rec, http.StatusOK, map[string]interface{}{"bad": make(chan int)})

	entries := logs.FilterMessage("http response write failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, int64(http.StatusOK), entries[0].ContextMap()["status"])
}
