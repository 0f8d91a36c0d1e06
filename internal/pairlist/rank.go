package pairlist

import "sort"

type rankedPair struct {
	pair  string
	value float64
}

// topN sorts descending by value, keeping input order for ties, and keeps at
// most limit entries. A non-positive limit keeps all.
func topN(ranked []rankedPair, limit int) []string {
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].value > ranked[j].value
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]string, 0, len(ranked))
	for _, entry := range ranked {
		out = append(out, entry.pair)
	}
	return out
}
