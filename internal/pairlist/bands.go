package pairlist

import (
	"context"
	"math"

	"go.uber.org/zap"

	"pairScope/internal/model"
)

// SpreadFilter drops pairs whose spread ratio exceeds a ceiling.
// Pairs without a ticker are dropped.
type SpreadFilter struct {
	logger         *zap.Logger
	maxSpreadRatio float64
}

func NewSpreadFilter(logger *zap.Logger) *SpreadFilter {
	return &SpreadFilter{logger: nopIfNil(logger), maxSpreadRatio: 0.005}
}

func (f *SpreadFilter) Name() string { return MethodSpreadFilter }

func (f *SpreadFilter) Configure(opts Options) error {
	r := newOptionReader(opts)
	r.Float("max_spread_ratio", &f.maxSpreadRatio)
	return r.Err()
}

func (f *SpreadFilter) Filter(_ context.Context, pairs []string, tickers map[string]model.TickerInfo) []string {
	out := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		ticker, ok := tickers[pair]
		if !ok {
			continue
		}
		ratio := ticker.SpreadRatio()
		if ratio > f.maxSpreadRatio {
			f.logger.Debug("spread too wide", zap.String("pair", pair), zap.Float64("spread_ratio", ratio))
			continue
		}
		out = append(out, pair)
	}

	logResult(f.logger, f.Name(), len(pairs), len(out), zap.Float64("max_spread_ratio", f.maxSpreadRatio))
	return out
}

// PriceFilter keeps pairs whose last price lies in [min, max].
// Pairs without a ticker are dropped.
type PriceFilter struct {
	logger   *zap.Logger
	minPrice float64
	maxPrice float64
}

func NewPriceFilter(logger *zap.Logger) *PriceFilter {
	return &PriceFilter{logger: nopIfNil(logger), maxPrice: math.MaxFloat64}
}

func (f *PriceFilter) Name() string { return MethodPriceFilter }

func (f *PriceFilter) Configure(opts Options) error {
	r := newOptionReader(opts)
	r.Float("min_price", &f.minPrice)
	r.Float("max_price", &f.maxPrice)
	return r.Err()
}

func (f *PriceFilter) Filter(_ context.Context, pairs []string, tickers map[string]model.TickerInfo) []string {
	out := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		ticker, ok := tickers[pair]
		if !ok {
			continue
		}
		if ticker.LastPrice >= f.minPrice && ticker.LastPrice <= f.maxPrice {
			out = append(out, pair)
		}
	}

	logResult(f.logger, f.Name(), len(pairs), len(out), zap.Float64("min_price", f.minPrice), zap.Float64("max_price", f.maxPrice))
	return out
}

// VolatilityFilter keeps pairs whose 24h volatility lies in [min, max].
// Pairs without a ticker are dropped.
type VolatilityFilter struct {
	logger        *zap.Logger
	minVolatility float64
	maxVolatility float64
}

func NewVolatilityFilter(logger *zap.Logger) *VolatilityFilter {
	return &VolatilityFilter{logger: nopIfNil(logger), maxVolatility: math.MaxFloat64}
}

func (f *VolatilityFilter) Name() string { return MethodVolatilityFilter }

func (f *VolatilityFilter) Configure(opts Options) error {
	r := newOptionReader(opts)
	r.Float("min_volatility", &f.minVolatility)
	r.Float("max_volatility", &f.maxVolatility)
	return r.Err()
}

func (f *VolatilityFilter) Filter(_ context.Context, pairs []string, tickers map[string]model.TickerInfo) []string {
	out := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		ticker, ok := tickers[pair]
		if !ok {
			continue
		}
		volatility := ticker.Volatility()
		if volatility >= f.minVolatility && volatility <= f.maxVolatility {
			out = append(out, pair)
		}
	}

	logResult(f.logger, f.Name(), len(pairs), len(out), zap.Float64("min_volatility", f.minVolatility), zap.Float64("max_volatility", f.maxVolatility))
	return out
}
