package pairlist

import (
	"context"

	"go.uber.org/zap"

	"pairScope/internal/model"
)

// PerformanceFilter drops pairs whose external profit ratio is below minProfit.
// Pairs without a score are kept.
type PerformanceFilter struct {
	logger    *zap.Logger
	minProfit float64
	scores    PerformanceProvider
}

func NewPerformanceFilter(logger *zap.Logger) *PerformanceFilter {
	return &PerformanceFilter{logger: nopIfNil(logger)}
}

func (f *PerformanceFilter) Name() string { return MethodPerformanceFilter }

func (f *PerformanceFilter) Configure(opts Options) error {
	r := newOptionReader(opts)
	r.Float("min_profit", &f.minProfit)
	return r.Err()
}

func (f *PerformanceFilter) SetPerformanceProvider(provider PerformanceProvider) {
	f.scores = provider
}

func (f *PerformanceFilter) Filter(ctx context.Context, pairs []string, _ map[string]model.TickerInfo) []string {
	if f.scores == nil {
		f.logger.Warn("no performance provider, passing all pairs", zap.String("filter", f.Name()))
		return cloneStrings(pairs)
	}
	scores, err := f.scores(ctx)
	if err != nil {
		f.logger.Warn("performance provider failed, passing all pairs", zap.String("filter", f.Name()), zap.Error(err))
		return cloneStrings(pairs)
	}

	out := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		profit, ok := scores[pair]
		if ok && profit < f.minProfit {
			f.logger.Debug("pair underperforming", zap.String("pair", pair), zap.Float64("profit", profit))
			continue
		}
		out = append(out, pair)
	}

	logResult(f.logger, f.Name(), len(pairs), len(out), zap.Float64("min_profit", f.minProfit))
	return out
}
