package pairlist

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pairScope/internal/model"
)

// DefaultRefreshInterval is the auto-refresh interval in seconds.
const DefaultRefreshInterval = 1800

// ManagerConfig holds the providers and settings of a Manager.
type ManagerConfig struct {
	TickerProvider      TickerProvider
	MarketProvider      MarketProvider
	PerformanceProvider PerformanceProvider
	RemoteSource        RemoteSource
	// RefreshInterval in seconds; 0 means DefaultRefreshInterval.
	RefreshInterval int
	// Registry resolves filter methods; nil uses the built-in set.
	Registry *Registry
}

// Manager runs the filter chain and publishes the resulting pair list.
//
// Refresh calls are serialized. Readers take mu only long enough to copy the
// published state, so they never wait on providers or filters.
type Manager struct {
	logger   *zap.Logger
	registry *Registry

	refreshMu sync.Mutex

	mu              sync.Mutex
	pairs           []string
	filters         []Filter
	observers       []Observer
	tickers         TickerProvider
	markets         MarketProvider
	performance     PerformanceProvider
	remote          RemoteSource
	refreshInterval int
	lastRefresh     time.Time

	refreshCount     atomic.Int64
	filterExecutions atomic.Int64

	loopMu  sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running atomic.Bool
	tick    time.Duration

	now func() time.Time
}

func NewManager(cfg ManagerConfig, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := cfg.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	interval := cfg.RefreshInterval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Manager{
		logger:          logger,
		registry:        registry,
		pairs:           []string{},
		tickers:         cfg.TickerProvider,
		markets:         cfg.MarketProvider,
		performance:     cfg.PerformanceProvider,
		remote:          cfg.RemoteSource,
		refreshInterval: interval,
		tick:            time.Second,
		now:             time.Now,
	}
}

func (m *Manager) SetTickerProvider(provider TickerProvider) {
	m.mu.Lock()
	m.tickers = provider
	m.mu.Unlock()
}

func (m *Manager) SetMarketProvider(provider MarketProvider) {
	m.mu.Lock()
	m.markets = provider
	m.mu.Unlock()
}

// SetPerformanceProvider sets the hook handed to config-loaded performance filters.
func (m *Manager) SetPerformanceProvider(provider PerformanceProvider) {
	m.mu.Lock()
	m.performance = provider
	m.mu.Unlock()
}

// SetRemoteSource sets the resolver used for config-loaded producer filters.
func (m *Manager) SetRemoteSource(source RemoteSource) {
	m.mu.Lock()
	m.remote = source
	m.mu.Unlock()
}

// AddObserver registers an observer notified after each publish.
func (m *Manager) AddObserver(observer Observer) {
	if observer == nil {
		return
	}
	m.mu.Lock()
	m.observers = append(m.observers, observer)
	m.mu.Unlock()
}

// LoadFromConfig replaces the filter chain with the declared filters.
// Invalid declarations are logged and skipped. Hooks are resolved without
// holding the manager lock, so a RemoteSource may call back into the manager.
func (m *Manager) LoadFromConfig(cfg PipelineConfig) {
	m.mu.Lock()
	hooks := managerHooks{markets: m.markets, performance: m.performance, remote: m.remote}
	m.mu.Unlock()

	filters := make([]Filter, 0, len(cfg.Filters))
	for i, opts := range cfg.Filters {
		filter, err := m.registry.CreateFromConfig(opts, m.logger)
		if err != nil {
			m.logger.Error("skip filter declaration", zap.Int("index", i), zap.String("method", opts.Method()), zap.Error(err))
			continue
		}
		hooks.inject(filter)
		filters = append(filters, filter)
		m.logger.Info("loaded filter", zap.String("filter", filter.Name()))
	}

	m.mu.Lock()
	m.filters = filters
	if cfg.RefreshPeriod > 0 {
		m.refreshInterval = cfg.RefreshPeriod
	}
	interval := m.refreshInterval
	m.mu.Unlock()

	m.logger.Info("pairlist configured", zap.Int("filters", len(filters)), zap.Int("refresh_interval", interval))
}

// managerHooks is a copy of the providers handed to config-loaded filters.
type managerHooks struct {
	markets     MarketProvider
	performance PerformanceProvider
	remote      RemoteSource
}

func (h managerHooks) inject(filter Filter) {
	if aware, ok := filter.(MarketAware); ok && h.markets != nil {
		aware.SetMarketProvider(h.markets)
	}
	if aware, ok := filter.(PerformanceAware); ok && h.performance != nil {
		aware.SetPerformanceProvider(h.performance)
	}
	if aware, ok := filter.(RemoteAware); ok && h.remote != nil {
		if provider := h.remote(aware.ProducerName()); provider != nil {
			aware.SetRemotePairProvider(provider)
		}
	}
}

// AddFilter appends a filter to the chain as is.
func (m *Manager) AddFilter(filter Filter) {
	if filter == nil {
		return
	}
	m.mu.Lock()
	m.filters = append(m.filters, filter)
	m.mu.Unlock()
	m.logger.Info("added filter", zap.String("filter", filter.Name()))
}

func (m *Manager) ClearFilters() {
	m.mu.Lock()
	m.filters = nil
	m.mu.Unlock()
}

// Filters returns filter names in chain order.
func (m *Manager) Filters() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return filterNames(m.filters)
}

// Seed publishes a restored list without running the chain.
func (m *Manager) Seed(pairs []string) {
	seeded := dedupe(pairs)
	m.mu.Lock()
	m.pairs = seeded
	m.mu.Unlock()
	m.logger.Info("pair list seeded", zap.Int("pairs", len(seeded)))
}

// Refresh runs the filter chain once and publishes the result. It reports
// whether a new list was published; on missing market data the previous list
// is kept.
func (m *Manager) Refresh(ctx context.Context) bool {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	startedAt := m.now()
	runID := uuid.NewString()
	logger := m.logger.With(zap.String("run_id", runID))

	m.mu.Lock()
	marketProvider := m.markets
	tickerProvider := m.tickers
	filters := append([]Filter(nil), m.filters...)
	observers := append([]Observer(nil), m.observers...)
	m.mu.Unlock()

	pairs := activePairs(ctx, marketProvider, logger)
	if len(pairs) == 0 {
		logger.Warn("no pairs available from market provider, keeping previous list")
		return false
	}

	tickers := fetchTickers(ctx, tickerProvider, logger)
	logger.Info("pairlist refresh start", zap.Int("pairs", len(pairs)), zap.Int("tickers", len(tickers)))

	initial := len(pairs)
	steps := make([]FilterStep, 0, len(filters))
	for _, filter := range filters {
		if len(pairs) == 0 {
			logger.Debug("working set empty, chain stopped", zap.String("next_filter", filter.Name()))
			break
		}
		stepStart := time.Now()
		in := len(pairs)
		pairs = m.applyFilter(ctx, filter, pairs, tickers, logger)
		m.filterExecutions.Add(1)
		steps = append(steps, FilterStep{
			Filter:   filter.Name(),
			In:       in,
			Out:      len(pairs),
			Duration: time.Since(stepStart),
		})
	}
	if pairs == nil {
		pairs = []string{}
	}

	published := cloneStrings(pairs)
	m.mu.Lock()
	m.pairs = published
	m.lastRefresh = m.now()
	m.mu.Unlock()
	m.refreshCount.Add(1)

	report := RefreshReport{
		RunID:        runID,
		StartedAt:    startedAt,
		Duration:     m.now().Sub(startedAt),
		InitialPairs: initial,
		Tickers:      len(tickers),
		Steps:        steps,
		Pairs:        cloneStrings(published),
	}
	logger.Info("pair list refreshed", zap.Int("pairs", len(published)), zap.Duration("took", report.Duration))

	for _, observer := range observers {
		if err := observer.ObserveRefresh(ctx, report); err != nil {
			logger.Warn("refresh observer failed", zap.Error(err))
		}
	}
	return true
}

// applyFilter runs one filter, passing the working set through if it panics.
func (m *Manager) applyFilter(ctx context.Context, filter Filter, pairs []string, tickers map[string]model.TickerInfo, logger *zap.Logger) (out []string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("filter panicked, working set passed through", zap.String("filter", filter.Name()), zap.String("panic", fmt.Sprint(r)))
			out = pairs
		}
	}()
	return filter.Filter(ctx, pairs, tickers)
}

func activePairs(ctx context.Context, provider MarketProvider, logger *zap.Logger) []string {
	if provider == nil {
		logger.Warn("no market provider set")
		return nil
	}
	markets, err := provider(ctx)
	if err != nil {
		logger.Warn("market provider failed", zap.Error(err))
		return nil
	}
	seen := make(map[string]struct{}, len(markets))
	pairs := make([]string, 0, len(markets))
	for _, market := range markets {
		if !market.Active || market.Symbol == "" {
			continue
		}
		if _, ok := seen[market.Symbol]; ok {
			continue
		}
		seen[market.Symbol] = struct{}{}
		pairs = append(pairs, market.Symbol)
	}
	return pairs
}

func fetchTickers(ctx context.Context, provider TickerProvider, logger *zap.Logger) map[string]model.TickerInfo {
	if provider == nil {
		return map[string]model.TickerInfo{}
	}
	tickers, err := provider(ctx)
	if err != nil {
		logger.Warn("ticker provider failed, continuing without tickers", zap.Error(err))
		return map[string]model.TickerInfo{}
	}
	if tickers == nil {
		return map[string]model.TickerInfo{}
	}
	return tickers
}

// Pairs returns a copy of the published list.
func (m *Manager) Pairs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneStrings(m.pairs)
}

func (m *Manager) PairCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pairs)
}

func (m *Manager) HasPair(pair string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.pairs {
		if p == pair {
			return true
		}
	}
	return false
}

// LastRefreshTime is zero until the first publish.
func (m *Manager) LastRefreshTime() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRefresh
}

// RefreshInterval returns the auto-refresh interval in seconds.
func (m *Manager) RefreshInterval() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshInterval
}

func (m *Manager) RefreshCount() int64 {
	return m.refreshCount.Load()
}

func (m *Manager) Statistics() Statistics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Statistics{
		PairCount:             len(m.pairs),
		FilterCount:           len(m.filters),
		Filters:               filterNames(m.filters),
		RefreshCount:          m.refreshCount.Load(),
		TotalFilterExecutions: m.filterExecutions.Load(),
		LastRefreshTime:       m.lastRefresh,
		AutoRefreshRunning:    m.running.Load(),
		RefreshInterval:       m.refreshInterval,
	}
}

func filterNames(filters []Filter) []string {
	names := make([]string, 0, len(filters))
	for _, filter := range filters {
		names = append(names, filter.Name())
	}
	return names
}
