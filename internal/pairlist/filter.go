package pairlist

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"pairScope/internal/model"
)

// Filter method names, used for config dispatch, logging and statistics.
const (
	MethodStaticPairList    = "StaticPairList"
	MethodVolumePairList    = "VolumePairList"
	MethodSpreadFilter      = "SpreadFilter"
	MethodBlacklistFilter   = "BlacklistFilter"
	MethodPriceFilter       = "PriceFilter"
	MethodVolatilityFilter  = "VolatilityFilter"
	MethodAgeFilter         = "AgeFilter"
	MethodOffsetFilter      = "OffsetFilter"
	MethodShuffleFilter     = "ShuffleFilter"
	MethodPerformanceFilter = "PerformanceFilter"
	MethodProducerPairList  = "ProducerPairList"
	MethodMarketCapPairList = "MarketCapPairList"
)

var (
	// ErrUnknownMethod is returned by the registry for unregistered filter names.
	ErrUnknownMethod = errors.New("unknown pair filter method")
	// ErrMissingMethod is returned for a filter declaration without a method field.
	ErrMissingMethod = errors.New("filter config missing method")
)

// Filter is one stage of the selection chain.
//
// Filter receives the current working set in order and returns the next one.
// It must not mutate the input slice.
type Filter interface {
	Name() string
	Configure(opts Options) error
	Filter(ctx context.Context, pairs []string, tickers map[string]model.TickerInfo) []string
}

// TickerProvider returns the live ticker snapshot keyed by symbol.
type TickerProvider func(ctx context.Context) (map[string]model.TickerInfo, error)

// MarketProvider returns the market metadata universe.
type MarketProvider func(ctx context.Context) ([]model.MarketInfo, error)

// PerformanceProvider returns profit ratios keyed by symbol.
type PerformanceProvider func(ctx context.Context) (map[string]float64, error)

// RemotePairProvider returns a pair list produced by another instance.
type RemotePairProvider func(ctx context.Context) ([]string, error)

// MarketAware filters consult market metadata.
type MarketAware interface {
	SetMarketProvider(provider MarketProvider)
}

// PerformanceAware filters consult external performance scores.
type PerformanceAware interface {
	SetPerformanceProvider(provider PerformanceProvider)
}

// RemoteSource resolves the pair-list provider of a named producer.
type RemoteSource func(producer string) RemotePairProvider

// RemoteAware filters replace the working set with a remote producer's list.
type RemoteAware interface {
	ProducerName() string
	SetRemotePairProvider(provider RemotePairProvider)
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func logResult(logger *zap.Logger, name string, in, out int, fields ...zap.Field) {
	base := []zap.Field{zap.String("filter", name), zap.Int("in", in), zap.Int("out", out)}
	logger.Info("filter applied", append(base, fields...)...)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func cloneStrings(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	return out
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
