package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairScope/internal/model"
	"pairScope/internal/pairlist"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("PAIRLIST_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("PAIRLIST_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	store, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, store.Migrate(ctx))
	return store
}

func TestNewStoreRequiresDSN(t *testing.T) {
	_, err := NewStore(context.Background(), "")
	assert.Error(t, err)
}

func TestMarketsRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	symbol := "T" + uuid.NewString()[:8] + "/USDT"
	listed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, store.UpsertMarkets(ctx, []model.MarketInfo{{
		Symbol: symbol, Base: "T", Quote: "USDT", Type: model.PairTypeFutures, Active: true,
		ListedAt: listed, MarketCap: 1e9, MarketCapRank: 7,
	}}))

	markets, err := store.LoadMarkets(ctx)
	require.NoError(t, err)
	found := model.IndexMarkets(markets)[symbol]
	assert.Equal(t, model.PairTypeFutures, found.Type)
	assert.Equal(t, 7, found.MarketCapRank)
	assert.True(t, found.ListedAt.Equal(listed))
}

func TestPerformanceRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	symbol := "P" + uuid.NewString()[:8] + "/USDT"

	require.NoError(t, store.UpsertPerformance(ctx, map[string]float64{symbol: -0.02}))
	scores, err := store.LoadPerformance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, -0.02, scores[symbol], 1e-12)
}

func TestPutReportKeepsOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	report := pairlist.RefreshReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().Add(time.Hour),
		Duration:  12 * time.Millisecond,
		Pairs:     []string{"SOL/USDT", "BTC/USDT", "ETH/USDT"},
	}
	require.NoError(t, store.PutReport(ctx, report))

	pairs, ok, err := store.LatestPairs(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, report.Pairs, pairs)
}
