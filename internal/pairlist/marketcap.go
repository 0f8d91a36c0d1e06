package pairlist

import (
	"context"

	"go.uber.org/zap"

	"pairScope/internal/model"
)

// MarketCapPairList keeps pairs ranked within maxRank and orders them by
// market cap, keeping the top numberAssets. Without a market provider it
// passes everything; unranked or unknown pairs are dropped. A number_assets
// of 0 or less keeps every pair within maxRank rather than none.
type MarketCapPairList struct {
	logger       *zap.Logger
	numberAssets int
	maxRank      int
	markets      MarketProvider
}

func NewMarketCapPairList(logger *zap.Logger) *MarketCapPairList {
	return &MarketCapPairList{logger: nopIfNil(logger), numberAssets: 20, maxRank: 100}
}

func (f *MarketCapPairList) Name() string { return MethodMarketCapPairList }

func (f *MarketCapPairList) Configure(opts Options) error {
	r := newOptionReader(opts)
	r.Int("number_assets", &f.numberAssets)
	r.Int("max_rank", &f.maxRank)
	return r.Err()
}

func (f *MarketCapPairList) SetMarketProvider(provider MarketProvider) {
	f.markets = provider
}

func (f *MarketCapPairList) Filter(ctx context.Context, pairs []string, _ map[string]model.TickerInfo) []string {
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
	ranked := make([]rankedPair, 0, len(pairs))
	for _, pair := range pairs {
		market, ok := index[pair]
		if !ok || !market.Ranked() || market.MarketCapRank > f.maxRank {
			continue
		}
		ranked = append(ranked, rankedPair{pair: pair, value: market.MarketCap})
	}

	out := topN(ranked, f.numberAssets)
	logResult(f.logger, f.Name(), len(pairs), len(out), zap.Int("max_rank", f.maxRank))
	return out
}
