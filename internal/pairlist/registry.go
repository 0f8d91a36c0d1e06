package pairlist

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Factory builds an unconfigured filter.
type Factory func(logger *zap.Logger) Filter

// Registry maps filter method names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry holding every built-in filter.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register(MethodStaticPairList, func(l *zap.Logger) Filter { return NewStaticPairList(l) })
	r.Register(MethodVolumePairList, func(l *zap.Logger) Filter { return NewVolumePairList(l) })
	r.Register(MethodSpreadFilter, func(l *zap.Logger) Filter { return NewSpreadFilter(l) })
	r.Register(MethodBlacklistFilter, func(l *zap.Logger) Filter { return NewBlacklist(l) })
	r.Register(MethodPriceFilter, func(l *zap.Logger) Filter { return NewPriceFilter(l) })
	r.Register(MethodVolatilityFilter, func(l *zap.Logger) Filter { return NewVolatilityFilter(l) })
	r.Register(MethodAgeFilter, func(l *zap.Logger) Filter { return NewAgeFilter(l) })
	r.Register(MethodOffsetFilter, func(l *zap.Logger) Filter { return NewOffsetFilter(l) })
	r.Register(MethodShuffleFilter, func(l *zap.Logger) Filter { return NewShuffleFilter(l) })
	r.Register(MethodPerformanceFilter, func(l *zap.Logger) Filter { return NewPerformanceFilter(l) })
	r.Register(MethodProducerPairList, func(l *zap.Logger) Filter { return NewProducerPairList(l) })
	r.Register(MethodMarketCapPairList, func(l *zap.Logger) Filter { return NewMarketCapPairList(l) })
	return r
}

// Register adds or replaces a factory.
func (r *Registry) Register(method string, factory Factory) {
	r.mu.Lock()
	r.factories[method] = factory
	r.mu.Unlock()
}

// Methods lists registered names in sorted order.
func (r *Registry) Methods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for method := range r.factories {
		out = append(out, method)
	}
	sort.Strings(out)
	return out
}

// Create builds an unconfigured filter by method name.
func (r *Registry) Create(method string, logger *zap.Logger) (Filter, error) {
	r.mu.RLock()
	factory, ok := r.factories[method]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
	return factory(nopIfNil(logger)), nil
}

// CreateFromConfig builds and configures a filter from a declaration.
func (r *Registry) CreateFromConfig(opts Options, logger *zap.Logger) (Filter, error) {
	method := opts.Method()
	if method == "" {
		return nil, ErrMissingMethod
	}
	filter, err := r.Create(method, logger)
	if err != nil {
		return nil, err
	}
	if err := filter.Configure(opts); err != nil {
		return nil, fmt.Errorf("configure %s: %w", method, err)
	}
	return filter, nil
}
