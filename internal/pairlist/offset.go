package pairlist

import (
	"context"

	"go.uber.org/zap"

	"pairScope/internal/model"
)

// OffsetFilter skips the first offset pairs and keeps the next numberAssets.
// numberAssets of 0 keeps the rest of the list.
type OffsetFilter struct {
	logger       *zap.Logger
	offset       int
	numberAssets int
}

func NewOffsetFilter(logger *zap.Logger) *OffsetFilter {
	return &OffsetFilter{logger: nopIfNil(logger)}
}

func (f *OffsetFilter) Name() string { return MethodOffsetFilter }

func (f *OffsetFilter) Configure(opts Options) error {
	r := newOptionReader(opts)
	r.Int("offset", &f.offset)
	r.Int("number_assets", &f.numberAssets)
	return r.Err()
}

func (f *OffsetFilter) Filter(_ context.Context, pairs []string, _ map[string]model.TickerInfo) []string {
	start := f.offset
	if start < 0 {
		start = 0
	}
	if start > len(pairs) {
		start = len(pairs)
	}
	end := len(pairs)
	if f.numberAssets > 0 && f.numberAssets < end-start {
		end = start + f.numberAssets
	}

	out := cloneStrings(pairs[start:end])
	logResult(f.logger, f.Name(), len(pairs), len(out), zap.Int("offset", f.offset), zap.Int("number_assets", f.numberAssets))
	return out
}
