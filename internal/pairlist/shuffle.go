package pairlist

import (
	"context"
	"math/rand/v2"

	"go.uber.org/zap"

	"pairScope/internal/model"
)

// ShuffleFilter randomizes the working set order. A non-zero seed makes the
// order reproducible across runs.
type ShuffleFilter struct {
	logger *zap.Logger
	seed   uint64
}

func NewShuffleFilter(logger *zap.Logger) *ShuffleFilter {
	return &ShuffleFilter{logger: nopIfNil(logger)}
}

func (f *ShuffleFilter) Name() string { return MethodShuffleFilter }

func (f *ShuffleFilter) Configure(opts Options) error {
	r := newOptionReader(opts)
	r.Uint64("seed", &f.seed)
	return r.Err()
}

func (f *ShuffleFilter) Filter(_ context.Context, pairs []string, _ map[string]model.TickerInfo) []string {
	out := cloneStrings(pairs)
	swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
	if f.seed == 0 {
		rand.Shuffle(len(out), swap)
	} else {
		rand.New(rand.NewPCG(f.seed, f.seed)).Shuffle(len(out), swap)
	}

	logResult(f.logger, f.Name(), len(pairs), len(out), zap.Uint64("seed", f.seed))
	return out
}
