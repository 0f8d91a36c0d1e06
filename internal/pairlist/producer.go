package pairlist

import (
	"context"

	"go.uber.org/zap"

	"pairScope/internal/model"
)

// ProducerPairList discards the incoming working set and substitutes the list
// published by a remote producer. Without a provider it returns an empty set.
type ProducerPairList struct {
	logger       *zap.Logger
	producerName string
	remote       RemotePairProvider
}

func NewProducerPairList(logger *zap.Logger) *ProducerPairList {
	return &ProducerPairList{logger: nopIfNil(logger)}
}

func (f *ProducerPairList) Name() string { return MethodProducerPairList }

func (f *ProducerPairList) Configure(opts Options) error {
	r := newOptionReader(opts)
	r.String("producer_name", &f.producerName)
	return r.Err()
}

// ProducerName returns the configured producer identifier.
func (f *ProducerPairList) ProducerName() string { return f.producerName }

func (f *ProducerPairList) SetRemotePairProvider(provider RemotePairProvider) {
	f.remote = provider
}

func (f *ProducerPairList) Filter(ctx context.Context, pairs []string, _ map[string]model.TickerInfo) []string {
	if f.remote == nil {
		f.logger.Error("no remote pair provider", zap.String("filter", f.Name()), zap.String("producer", f.producerName))
		return []string{}
	}
	remote, err := f.remote(ctx)
	if err != nil {
		f.logger.Error("remote pair provider failed", zap.String("filter", f.Name()), zap.String("producer", f.producerName), zap.Error(err))
		return []string{}
	}

	out := dedupe(remote)
	logResult(f.logger, f.Name(), len(pairs), len(out), zap.String("producer", f.producerName))
	return out
}
