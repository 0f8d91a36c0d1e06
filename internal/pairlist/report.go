package pairlist

import (
	"context"
	"time"
)

// FilterStep records one filter invocation within a refresh.
type FilterStep struct {
	Filter   string        `json:"filter"`
	In       int           `json:"in"`
	Out      int           `json:"out"`
	Duration time.Duration `json:"duration_ns"`
}

// RefreshReport describes a completed refresh that published a new list.
type RefreshReport struct {
	RunID        string        `json:"run_id"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration_ns"`
	InitialPairs int           `json:"initial_pairs"`
	Tickers      int           `json:"tickers"`
	Steps        []FilterStep  `json:"steps"`
	Pairs        []string      `json:"pairs"`
}

// Observer is notified after every publish.
type Observer interface {
	ObserveRefresh(ctx context.Context, report RefreshReport) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, report RefreshReport) error

func (f ObserverFunc) ObserveRefresh(ctx context.Context, report RefreshReport) error {
	return f(ctx, report)
}

// Statistics is a snapshot of the manager state.
type Statistics struct {
	PairCount             int       `json:"pair_count"`
	FilterCount           int       `json:"filter_count"`
	Filters               []string  `json:"filters"`
	RefreshCount          int64     `json:"refresh_count"`
	TotalFilterExecutions int64     `json:"total_filter_executions"`
	LastRefreshTime       time.Time `json:"last_refresh_time"`
	AutoRefreshRunning    bool      `json:"auto_refresh_running"`
	RefreshInterval       int       `json:"refresh_interval"`
}

// PipelineConfig is the declarative pipeline document.
type PipelineConfig struct {
	Filters []Options `json:"pairlist_filters" mapstructure:"pairlist_filters"`
	// RefreshPeriod in seconds; 0 keeps the current interval.
	RefreshPeriod int `json:"refresh_period" mapstructure:"refresh_period"`
}
