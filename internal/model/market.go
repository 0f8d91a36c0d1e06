package model

import (
	"strings"
	"time"
)

// PairType is the instrument class of a market.
type PairType string

const (
	PairTypeSpot    PairType = "spot"
	PairTypeFutures PairType = "futures"
	PairTypeMargin  PairType = "margin"
)

// ParsePairType maps a case-insensitive name to a PairType. Unknown names map to spot.
func ParsePairType(input string) PairType {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "futures", "future", "swap":
		return PairTypeFutures
	case "margin":
		return PairTypeMargin
	default:
		return PairTypeSpot
	}
}

// MarketInfo holds the trading rules and listing data of a pair.
type MarketInfo struct {
	Symbol string   `json:"symbol"`
	Base   string   `json:"base"`
	Quote  string   `json:"quote"`
	Type   PairType `json:"type"`
	Active bool     `json:"active"`

	MinAmount float64 `json:"min_amount"`
	MaxAmount float64 `json:"max_amount"`
	MinPrice  float64 `json:"min_price"`
	MaxPrice  float64 `json:"max_price"`
	MinCost   float64 `json:"min_cost"`

	AmountPrecision int `json:"amount_precision"`
	PricePrecision  int `json:"price_precision"`

	MakerFee float64 `json:"maker_fee"`
	TakerFee float64 `json:"taker_fee"`

	ListedAt time.Time `json:"listed_at"`

	MarketCap float64 `json:"market_cap"`
	// MarketCapRank <= 0 means unranked.
	MarketCapRank int `json:"market_cap_rank"`
}

// Ranked reports whether the market has a known market-cap rank.
func (m MarketInfo) Ranked() bool {
	return m.MarketCapRank > 0
}

// DaysListed returns whole days elapsed between ListedAt and now.
func (m MarketInfo) DaysListed(now time.Time) int {
	return int(now.Sub(m.ListedAt).Hours()) / 24
}

// IndexMarkets builds a symbol lookup. Later duplicates win.
func IndexMarkets(markets []MarketInfo) map[string]MarketInfo {
	out := make(map[string]MarketInfo, len(markets))
	for _, market := range markets {
		out[market.Symbol] = market
	}
	return out
}
