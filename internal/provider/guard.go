package provider

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"pairScope/internal/model"
	"pairScope/internal/pairlist"
)

// GuardConfig controls how provider calls are protected.
type GuardConfig struct {
	Name         string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	// RateLimit is calls per second; 0 disables limiting.
	RateLimit float64
	// TripAfter consecutive failed calls opens the breaker; 0 means 3.
	TripAfter uint32
	// OpenFor is how long the breaker stays open; 0 means 60s.
	OpenFor time.Duration
}

// Guard wraps provider calls with a timeout, retries, a circuit breaker and
// an optional rate limit.
type Guard struct {
	cfg     GuardConfig
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewGuard(cfg GuardConfig, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	tripAfter := cfg.TripAfter
	if tripAfter == 0 {
		tripAfter = 3
	}
	openFor := cfg.OpenFor
	if openFor <= 0 {
		openFor = 60 * time.Second
	}

	settings := gobreaker.Settings{
		Name:     cfg.Name,
		Interval: 60 * time.Second,
		Timeout:  openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= tripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("provider breaker state change", zap.String("provider", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	}

	g := &Guard{
		cfg:     cfg,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger.With(zap.String("provider", cfg.Name)),
	}
	if cfg.RateLimit > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return g
}

// State returns the breaker state.
func (g *Guard) State() gobreaker.State {
	return g.breaker.State()
}

// Call runs fn under the guard.
func Call[T any](ctx context.Context, g *Guard, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return zero, err
		}
	}

	result, err := g.breaker.Execute(func() (interface{}, error) {
		var value T
		err := withRetry(ctx, g.cfg.MaxRetries, g.cfg.RetryBackoff, func(ctx context.Context) error {
			callCtx, cancel := g.callContext(ctx)
			defer cancel()

			var err error
			value, err = fn(callCtx)
			if err != nil {
				g.logger.Warn("provider call failed", zap.Error(err))
			}
			return err
		})
		return value, err
	})
	if err != nil {
		return zero, err
	}
	value, _ := result.(T)
	return value, nil
}

func (g *Guard) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.cfg.Timeout)
}

func (g *Guard) Markets(p pairlist.MarketProvider) pairlist.MarketProvider {
	return func(ctx context.Context) ([]model.MarketInfo, error) {
		return Call[[]model.MarketInfo](ctx, g, p)
	}
}

func (g *Guard) Tickers(p pairlist.TickerProvider) pairlist.TickerProvider {
	return func(ctx context.Context) (map[string]model.TickerInfo, error) {
		return Call[map[string]model.TickerInfo](ctx, g, p)
	}
}

func (g *Guard) Performance(p pairlist.PerformanceProvider) pairlist.PerformanceProvider {
	return func(ctx context.Context) (map[string]float64, error) {
		return Call[map[string]float64](ctx, g, p)
	}
}

func (g *Guard) RemotePairs(p pairlist.RemotePairProvider) pairlist.RemotePairProvider {
	return func(ctx context.Context) ([]string, error) {
		return Call[[]string](ctx, g, p)
	}
}
