package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pairScope/internal/pairlist"
)

// Collector exports refresh reports as Prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	Refreshes       prometheus.Counter
	Pairs           prometheus.Gauge
	RefreshDuration prometheus.Histogram
	StepDuration    *prometheus.HistogramVec
	StepRemoved     *prometheus.CounterVec
	ObserverErrors  prometheus.Counter
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pairlist_refresh_total",
			Help: "Refreshes that published a new pair list",
		}),
		Pairs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pairlist_pairs",
			Help: "Pairs in the published list",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pairlist_refresh_duration_seconds",
			Help:    "Duration of a full refresh",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}),
		StepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pairlist_filter_duration_seconds",
			Help:    "Duration of each filter step",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"filter"}),
		StepRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pairlist_filter_removed_total",
			Help: "Pairs removed by each filter",
		}, []string{"filter"}),
		ObserverErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pairlist_sink_errors_total",
			Help: "Failed sink writes",
		}),
	}

	c.registry.MustRegister(
		c.Refreshes,
		c.Pairs,
		c.RefreshDuration,
		c.StepDuration,
		c.StepRemoved,
		c.ObserverErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveRefresh records one published refresh.
func (c *Collector) ObserveRefresh(_ context.Context, report pairlist.RefreshReport) error {
	c.Refreshes.Inc()
	c.Pairs.Set(float64(len(report.Pairs)))
	c.RefreshDuration.Observe(report.Duration.Seconds())
	for _, step := range report.Steps {
		c.StepDuration.WithLabelValues(step.Filter).Observe(step.Duration.Seconds())
		if removed := step.In - step.Out; removed > 0 {
			c.StepRemoved.WithLabelValues(step.Filter).Add(float64(removed))
		}
	}
	return nil
}

// Track wraps an observer so its failures are counted.
func (c *Collector) Track(next pairlist.Observer) pairlist.Observer {
	return pairlist.ObserverFunc(func(ctx context.Context, report pairlist.RefreshReport) error {
		err := next.ObserveRefresh(ctx, report)
		if err != nil {
			c.ObserverErrors.Inc()
		}
		return err
	})
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
