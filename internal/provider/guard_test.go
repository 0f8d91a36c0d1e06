package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairScope/internal/model"
)

func TestGuardRetriesMarkets(t *testing.T) {
	g := NewGuard(GuardConfig{Name: "markets", MaxRetries: 2, RetryBackoff: time.Millisecond}, nil)
	calls := 0
	markets := g.Markets(func(context.Context) ([]model.MarketInfo, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("flaky")
		}
		return []model.MarketInfo{{Symbol: "BTC/USDT", Active: true}}, nil
	})

	out, err := markets(context.Background())
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, 2, calls)
}

func TestGuardTimeout(t *testing.T) {
	g := NewGuard(GuardConfig{Name: "tickers", Timeout: 20 * time.Millisecond}, nil)
	tickers := g.Tickers(func(ctx context.Context) (map[string]model.TickerInfo, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	start := time.Now()
	_, err := tickers(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestGuardOpensBreaker(t *testing.T) {
	g := NewGuard(GuardConfig{Name: "remote", TripAfter: 2, OpenFor: time.Minute}, nil)
	calls := 0
	remote := g.RemotePairs(func(context.Context) ([]string, error) {
		calls++
		return nil, errors.New("down")
	})

	for i := 0; i < 2; i++ {
		_, err := remote(context.Background())
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, g.State())

	_, err := remote(context.Background())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, calls)
}

func TestGuardRateLimitHonoursContext(t *testing.T) {
	g := NewGuard(GuardConfig{Name: "perf", RateLimit: 0.001}, nil)
	perf := g.Performance(func(context.Context) (map[string]float64, error) {
		return map[string]float64{"A": 1}, nil
	})

	_, err := perf(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = perf(ctx)
	assert.Error(t, err)
}
