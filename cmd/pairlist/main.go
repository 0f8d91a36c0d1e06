package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pairScope/internal/api"
	"pairScope/internal/config"
	"pairScope/internal/pairlist"
	"pairScope/internal/provider"
)

func main() {
	root := &cobra.Command{
		Use:          "pairlist",
		Short:        "Tradable pair selection pipeline",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run one refresh and print the pair list",
		RunE:  runOnce,
	}
	addPipelineFlags(runCmd.Flags())
	root.AddCommand(runCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Refresh periodically and serve the list over HTTP",
		RunE:  runServe,
	}
	addPipelineFlags(serveCmd.Flags())
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().Int("refresh-period", 0, "refresh interval in seconds, 0 uses the config or 1800")
	root.AddCommand(serveCmd)

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Load market and performance snapshots into Postgres",
		RunE:  runImport,
	}
	importCmd.Flags().String("markets", "", "markets JSONL snapshot")
	importCmd.Flags().String("performance", "", "performance JSON snapshot")
	importCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	importCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(importCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addPipelineFlags(fs *pflag.FlagSet) {
	fs.String("markets", "", "markets JSONL snapshot")
	fs.String("tickers", "", "tickers JSONL snapshot")
	fs.String("performance", "", "performance JSON snapshot")
	fs.String("report", "", "append refresh reports to this JSONL file")
	fs.String("checkpoint", "./data/pairlist_checkpoint.json", "checkpoint file path")
	fs.Bool("checkpoint-enabled", true, "enable checkpointing")
	fs.String("redis-addr", "", "redis address for producer lists")
	fs.String("redis-password", "", "redis password")
	fs.Int("redis-db", 0, "redis database")
	fs.String("redis-prefix", "pairlist:", "redis key prefix")
	fs.String("publish-as", "", "publish every list to redis under this producer name")
	fs.Duration("publish-ttl", 2*time.Hour, "TTL of published lists")
	fs.String("pg-dsn", "", "Postgres DSN for markets, performance and history")
	fs.Duration("provider-timeout", 30*time.Second, "timeout per provider call")
	fs.Int("max-retries", 3, "maximum retry attempts per provider call")
	fs.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	fs.Float64("rate-limit", 0, "provider calls per second, 0 disables")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
}

func loadConfig(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func runOnce(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	if !app.manager.Refresh(ctx) {
		logger.Warn("refresh did not publish, printing previous list")
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Pairs      []string            `json:"pairs"`
		Statistics pairlist.Statistics `json:"statistics"`
	}{
		Pairs:      app.manager.Pairs(),
		Statistics: app.manager.Statistics(),
	})
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	period, _ := cmd.Flags().GetInt("refresh-period")
	if !app.manager.StartAutoRefresh(ctx, period) {
		return fmt.Errorf("auto refresh already running")
	}

	logger.Info("pairlist serve start",
		zap.String("listen", cfg.Listen),
		zap.Int("refresh_interval", app.manager.RefreshInterval()),
		zap.Strings("filters", app.manager.Filters()),
		zap.Bool("redis", cfg.RedisAddr != ""),
		zap.Bool("postgres", cfg.PGDSN != ""),
	)

	server := api.NewServer(app.manager, api.Config{
		Addr:           cfg.Listen,
		RefreshTimeout: cfg.ProviderTimeout * 2,
		Metrics:        app.metrics.Handler(),
	}, logger)
	return server.ListenAndServe(ctx)
}

func runImport(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.PGDSN == "" {
		return fmt.Errorf("pg dsn is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Markets != "" {
		markets, err := provider.JSONLMarkets(cfg.Markets, logger)(ctx)
		if err != nil {
			return err
		}
		if err := store.UpsertMarkets(ctx, markets); err != nil {
			return fmt.Errorf("upsert markets: %w", err)
		}
		logger.Info("markets imported", zap.Int("count", len(markets)))
	}
	if cfg.Performance != "" {
		scores, err := provider.JSONPerformance(cfg.Performance)(ctx)
		if err != nil {
			return err
		}
		if err := store.UpsertPerformance(ctx, scores); err != nil {
			return fmt.Errorf("upsert performance: %w", err)
		}
		logger.Info("performance imported", zap.Int("count", len(scores)))
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
