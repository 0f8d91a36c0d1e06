package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestJSONLMarkets(t *testing.T) {
	path := writeFile(t, "markets.jsonl", `{"symbol":"BTC/USDT","base":"BTC","quote":"USDT","type":"spot","active":true,"market_cap_rank":1}

not json
{"symbol":"OLD/USDT","active":false}
`)

	markets, err := JSONLMarkets(path, nil)(context.Background())
	if err != nil {
		t.Fatalf("load markets: %v", err)
	}
	if len(markets) != 2 {
		t.Fatalf("expected 2 markets, got %d", len(markets))
	}
	if markets[0].Symbol != "BTC/USDT" || !markets[0].Active || markets[0].MarketCapRank != 1 {
		t.Fatalf("market mismatch: %+v", markets[0])
	}
}

func TestJSONLTickers(t *testing.T) {
	path := writeFile(t, "tickers.jsonl", `{"symbol":"BTC/USDT","last_price":100,"quote_volume_24h":5}
{"last_price":1}
{"symbol":"BTC/USDT","last_price":101,"quote_volume_24h":6}
`)

	tickers, err := JSONLTickers(path, nil)(context.Background())
	if err != nil {
		t.Fatalf("load tickers: %v", err)
	}
	if len(tickers) != 1 {
		t.Fatalf("expected 1 ticker, got %d", len(tickers))
	}
	if tickers["BTC/USDT"].LastPrice != 101 {
		t.Fatalf("later duplicate should win: %+v", tickers["BTC/USDT"])
	}
}

func TestJSONLMissingFile(t *testing.T) {
	if _, err := JSONLMarkets(filepath.Join(t.TempDir(), "none.jsonl"), nil)(context.Background()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestJSONPerformance(t *testing.T) {
	path := writeFile(t, "perf.json", `{"BTC/USDT": 0.12, "ETH/USDT": -0.03}`)
	scores, err := JSONPerformance(path)(context.Background())
	if err != nil {
		t.Fatalf("load performance: %v", err)
	}
	if scores["ETH/USDT"] != -0.03 {
		t.Fatalf("score mismatch: %v", scores)
	}
}
