package main

import (
	"context"
	"fmt"

	goredis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"pairScope/internal/config"
	"pairScope/internal/metrics"
	"pairScope/internal/pairlist"
	"pairScope/internal/provider"
	"pairScope/internal/provider/redis"
	"pairScope/internal/storage"
	"pairScope/internal/storage/postgres"
)

// app owns the manager and every resource wired into it.
type app struct {
	manager *pairlist.Manager
	metrics *metrics.Collector
	store   *postgres.Store
	redis   *goredis.Client
}

func openStore(ctx context.Context, dsn string) (*postgres.Store, error) {
	store, err := postgres.NewStore(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	if cfg.Tickers == "" {
		return nil, fmt.Errorf("tickers snapshot is required")
	}
	if cfg.Markets == "" && cfg.PGDSN == "" {
		return nil, fmt.Errorf("markets snapshot or pg dsn is required")
	}
	if len(cfg.Pipeline.Filters) == 0 {
		return nil, fmt.Errorf("pairlist_filters is empty")
	}

	a := &app{metrics: metrics.NewCollector()}
	guard := func(name string) *provider.Guard {
		return provider.NewGuard(provider.GuardConfig{
			Name:         name,
			Timeout:      cfg.ProviderTimeout,
			MaxRetries:   cfg.MaxRetries,
			RetryBackoff: cfg.RetryBackoff,
			RateLimit:    cfg.RateLimit,
		}, logger)
	}

	var (
		markets     pairlist.MarketProvider
		performance pairlist.PerformanceProvider
	)
	if cfg.PGDSN != "" {
		store, err := openStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		a.store = store
		markets = store.LoadMarkets
		performance = store.LoadPerformance
	}
	if cfg.Markets != "" {
		markets = provider.JSONLMarkets(cfg.Markets, logger)
	}
	if cfg.Performance != "" {
		performance = provider.JSONPerformance(cfg.Performance)
	}

	managerCfg := pairlist.ManagerConfig{
		MarketProvider: guard("markets").Markets(markets),
		TickerProvider: guard("tickers").Tickers(provider.JSONLTickers(cfg.Tickers, logger)),
	}
	if performance != nil {
		managerCfg.PerformanceProvider = guard("performance").Performance(performance)
	}

	if cfg.RedisAddr != "" {
		a.redis = redis.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		source := redis.NewSource(a.redis, cfg.RedisPrefix)
		remoteGuard := guard("remote")
		managerCfg.RemoteSource = func(producer string) pairlist.RemotePairProvider {
			return remoteGuard.RemotePairs(source.Resolve(producer))
		}
	}

	a.manager = pairlist.NewManager(managerCfg, logger)
	a.manager.LoadFromConfig(cfg.Pipeline)

	a.manager.AddObserver(a.metrics)
	checkpoint := storage.NewCheckpointStore(cfg.Checkpoint, cfg.CheckpointEnabled)
	a.manager.AddObserver(a.metrics.Track(storage.Observer(checkpoint)))
	if cfg.Report != "" {
		a.manager.AddObserver(a.metrics.Track(storage.Observer(storage.NewJsonlStorage(cfg.Report))))
	}
	if a.store != nil {
		a.manager.AddObserver(a.metrics.Track(storage.Observer(a.store)))
	}
	if a.redis != nil && cfg.PublishAs != "" {
		a.manager.AddObserver(a.metrics.Track(redis.NewPublisher(a.redis, cfg.RedisPrefix, cfg.PublishAs, cfg.PublishTTL)))
	}

	var history latestPairs
	if a.store != nil {
		history = a.store.LatestPairs
	}
	if pairs, ok := warmStart(ctx, checkpoint, history, logger); ok {
		a.manager.Seed(pairs)
	}
	return a, nil
}

// latestPairs returns the last recorded list, if any.
type latestPairs func(ctx context.Context) ([]string, bool, error)

// warmStart picks the list to serve before the first refresh: the checkpoint
// file first, then the last list recorded in Postgres.
func warmStart(ctx context.Context, checkpoint *storage.CheckpointStore, history latestPairs, logger *zap.Logger) ([]string, bool) {
	cp, ok, err := checkpoint.Load()
	if err != nil {
		logger.Warn("checkpoint load failed", zap.Error(err))
	} else if ok {
		logger.Info("seeded from checkpoint", zap.String("run_id", cp.RunID), zap.Int("pairs", len(cp.Pairs)))
		return cp.Pairs, true
	}

	if history == nil {
		return nil, false
	}
	pairs, ok, err := history(ctx)
	if err != nil {
		logger.Warn("pairlist history load failed", zap.Error(err))
		return nil, false
	}
	if ok {
		logger.Info("seeded from pairlist history", zap.Int("pairs", len(pairs)))
	}
	return pairs, ok
}

func (a *app) Close() {
	if a.manager != nil {
		a.manager.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}
