package model

import (
	"testing"
	"time"
)

func TestMarketDaysListed(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	market := MarketInfo{ListedAt: now.Add(-(9*24 + 23) * time.Hour)}

	if got := market.DaysListed(now); got != 9 {
		t.Fatalf("days listed mismatch: %d", got)
	}
}

func TestMarketRanked(t *testing.T) {
	if (MarketInfo{MarketCapRank: 0}).Ranked() {
		t.Fatalf("rank 0 should be unranked")
	}
	if (MarketInfo{MarketCapRank: -1}).Ranked() {
		t.Fatalf("negative rank should be unranked")
	}
	if !(MarketInfo{MarketCapRank: 3}).Ranked() {
		t.Fatalf("rank 3 should be ranked")
	}
}

func TestIndexMarkets(t *testing.T) {
	index := IndexMarkets([]MarketInfo{
		{Symbol: "BTC/USDT", MarketCapRank: 1},
		{Symbol: "ETH/USDT", MarketCapRank: 2},
		{Symbol: "BTC/USDT", MarketCapRank: 7},
	})

	if len(index) != 2 {
		t.Fatalf("index size mismatch: %d", len(index))
	}
	if index["BTC/USDT"].MarketCapRank != 7 {
		t.Fatalf("later duplicate should win: %+v", index["BTC/USDT"])
	}
}

func TestParsePairType(t *testing.T) {
	if ParsePairType("FUTURES") != PairTypeFutures {
		t.Fatalf("futures not parsed")
	}
	if ParsePairType("margin") != PairTypeMargin {
		t.Fatalf("margin not parsed")
	}
	if ParsePairType("") != PairTypeSpot {
		t.Fatalf("default should be spot")
	}
}
