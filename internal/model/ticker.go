package model

import (
	"math"
	"strings"
	"time"
)

// TickerInfo is a point-in-time 24h statistics snapshot for a pair.
type TickerInfo struct {
	Symbol             string    `json:"symbol"`
	LastPrice          float64   `json:"last_price"`
	Bid                float64   `json:"bid"`
	Ask                float64   `json:"ask"`
	High24h            float64   `json:"high_24h"`
	Low24h             float64   `json:"low_24h"`
	Volume24h          float64   `json:"volume_24h"`
	QuoteVolume24h     float64   `json:"quote_volume_24h"`
	PriceChangePercent float64   `json:"price_change_percent_24h"`
	Timestamp          time.Time `json:"timestamp"`
}

// Spread returns ask minus bid.
func (t TickerInfo) Spread() float64 {
	return t.Ask - t.Bid
}

// SpreadRatio returns the spread relative to the ask. A non-positive ask yields +Inf.
func (t TickerInfo) SpreadRatio() float64 {
	if t.Ask <= 0 {
		return math.Inf(1)
	}
	return (t.Ask - t.Bid) / t.Ask
}

// Volatility returns the 24h range relative to the last price. A non-positive last price yields 0.
func (t TickerInfo) Volatility() float64 {
	if t.LastPrice <= 0 {
		return 0
	}
	return (t.High24h - t.Low24h) / t.LastPrice
}

// SortKey selects the ranking metric of the volume filter.
type SortKey string

const (
	SortQuoteVolume SortKey = "quoteVolume"
	SortVolume      SortKey = "volume"
	SortPriceChange SortKey = "priceChange"
	SortVolatility  SortKey = "volatility"
)

// ParseSortKey maps a config name to a SortKey.
func ParseSortKey(input string) (SortKey, bool) {
	switch strings.TrimSpace(input) {
	case string(SortQuoteVolume):
		return SortQuoteVolume, true
	case string(SortVolume):
		return SortVolume, true
	case string(SortPriceChange):
		return SortPriceChange, true
	case string(SortVolatility):
		return SortVolatility, true
	default:
		return "", false
	}
}

// Metric returns the ticker value ranked under key.
func (t TickerInfo) Metric(key SortKey) float64 {
	switch key {
	case SortVolume:
		return t.Volume24h
	case SortPriceChange:
		return math.Abs(t.PriceChangePercent)
	case SortVolatility:
		return t.Volatility()
	default:
		return t.QuoteVolume24h
	}
}
