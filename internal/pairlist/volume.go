package pairlist

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"pairScope/internal/model"
)

// VolumePairList ranks pairs by a ticker metric and keeps the top N.
// Pairs without a ticker are dropped. A number_assets of 0 or less keeps
// every ranked pair rather than none.
type VolumePairList struct {
	logger       *zap.Logger
	numberAssets int
	minValue     float64
	sortKey      model.SortKey
}

func NewVolumePairList(logger *zap.Logger) *VolumePairList {
	return &VolumePairList{
		logger:       nopIfNil(logger),
		numberAssets: 20,
		sortKey:      model.SortQuoteVolume,
	}
}

func (f *VolumePairList) Name() string { return MethodVolumePairList }

func (f *VolumePairList) Configure(opts Options) error {
	r := newOptionReader(opts)
	r.Int("number_assets", &f.numberAssets)
	r.Float("min_value", &f.minValue)

	var key string
	r.String("sort_key", &key)
	err := r.Err()
	if key != "" {
		parsed, ok := model.ParseSortKey(key)
		if !ok {
			return errors.Join(err, fmt.Errorf("option sort_key=%s: unsupported sort key", key))
		}
		f.sortKey = parsed
	}
	return err
}

func (f *VolumePairList) Filter(_ context.Context, pairs []string, tickers map[string]model.TickerInfo) []string {
	ranked := make([]rankedPair, 0, len(pairs))
	for _, pair := range pairs {
		ticker, ok := tickers[pair]
		if !ok {
			continue
		}
		value := ticker.Metric(f.sortKey)
		if value < f.minValue {
			continue
		}
		ranked = append(ranked, rankedPair{pair: pair, value: value})
	}

	out := topN(ranked, f.numberAssets)
	logResult(f.logger, f.Name(), len(pairs), len(out), zap.String("sort_key", string(f.sortKey)))
	return out
}
