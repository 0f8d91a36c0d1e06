package model

import (
	"encoding/json"
	"math"
	"testing"
)

func TestTickerSpreadRatio(t *testing.T) {
	ticker := TickerInfo{Bid: 100, Ask: 100.4}

	if got := ticker.Spread(); math.Abs(got-0.4) > 1e-9 {
		t.Fatalf("spread mismatch: %v", got)
	}
	if got := ticker.SpreadRatio(); math.Abs(got-0.4/100.4) > 1e-12 {
		t.Fatalf("spread ratio mismatch: %v", got)
	}
}

func TestTickerSpreadRatioZeroAsk(t *testing.T) {
	ticker := TickerInfo{Bid: 0, Ask: 0}
	if got := ticker.SpreadRatio(); !math.IsInf(got, 1) {
		t.Fatalf("expected +Inf for zero ask, got %v", got)
	}
}

func TestTickerVolatility(t *testing.T) {
	ticker := TickerInfo{LastPrice: 50, High24h: 55, Low24h: 45}
	if got := ticker.Volatility(); math.Abs(got-0.2) > 1e-12 {
		t.Fatalf("volatility mismatch: %v", got)
	}
}

func TestTickerVolatilityZeroPrice(t *testing.T) {
	ticker := TickerInfo{LastPrice: 0, High24h: 10, Low24h: 1}
	if got := ticker.Volatility(); got != 0 {
		t.Fatalf("expected zero volatility, got %v", got)
	}
}

func TestTickerMetric(t *testing.T) {
	ticker := TickerInfo{
		LastPrice:          10,
		High24h:            12,
		Low24h:             9,
		Volume24h:          1500,
		QuoteVolume24h:     15000,
		PriceChangePercent: -4.5,
	}

	cases := map[SortKey]float64{
		SortQuoteVolume: 15000,
		SortVolume:      1500,
		SortPriceChange: 4.5,
		SortVolatility:  0.3,
	}
	for key, want := range cases {
		if got := ticker.Metric(key); math.Abs(got-want) > 1e-9 {
			t.Fatalf("metric %s mismatch: %v != %v", key, got, want)
		}
	}
}

func TestParseSortKey(t *testing.T) {
	if key, ok := ParseSortKey("priceChange"); !ok || key != SortPriceChange {
		t.Fatalf("unexpected parse result: %v %v", key, ok)
	}
	if _, ok := ParseSortKey("marketCap"); ok {
		t.Fatalf("expected unknown sort key to fail")
	}
}

func TestTickerJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(TickerInfo{Symbol: "BTC/USDT", QuoteVolume24h: 1})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := decoded["quote_volume_24h"]; !ok {
		t.Fatalf("quote_volume_24h missing: %s", data)
	}
	if _, ok := decoded["price_change_percent_24h"]; !ok {
		t.Fatalf("price_change_percent_24h missing: %s", data)
	}
}
