package pairlist

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pairScope/internal/model"
)

// AgeFilter keeps pairs listed for at least minDaysListed days.
// It reads market metadata, not tickers. Without a market provider it passes
// everything; pairs missing from the metadata are dropped.
type AgeFilter struct {
	logger        *zap.Logger
	minDaysListed int
	markets       MarketProvider
	now           func() time.Time
}

func NewAgeFilter(logger *zap.Logger) *AgeFilter {
	return &AgeFilter{logger: nopIfNil(logger), minDaysListed: 10, now: time.Now}
}

func (f *AgeFilter) Name() string { return MethodAgeFilter }

func (f *AgeFilter) Configure(opts Options) error {
	r := newOptionReader(opts)
	r.Int("min_days_listed", &f.minDaysListed)
	return r.Err()
}

func (f *AgeFilter) SetMarketProvider(provider MarketProvider) {
	f.markets = provider
}

func (f *AgeFilter) Filter(ctx context.Context, pairs []string, _ map[string]model.TickerInfo) []string {
	if f.markets == nil {
		f.logger.Warn("no market provider, passing all pairs", zap.String("filter", f.Name()))
		return cloneStrings(pairs)
	}
	markets, err := f.markets(ctx)
	if err != nil {
		f.logger.Warn("market provider failed, passing all pairs", zap.String("filter", f.Name()), zap.Error(err))
		return cloneStrings(pairs)
	}

	index := model.IndexMarkets(markets)
	now := f.now()
	out := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		market, ok := index[pair]
		if !ok {
			continue
		}
		days := market.DaysListed(now)
		if days < f.minDaysListed {
			f.logger.Debug("pair too young", zap.String("pair", pair), zap.Int("days_listed", days))
			continue
		}
		out = append(out, pair)
	}

	logResult(f.logger, f.Name(), len(pairs), len(out), zap.Int("min_days_listed", f.minDaysListed))
	return out
}
