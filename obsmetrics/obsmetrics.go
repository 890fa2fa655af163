// Package obsmetrics implements the Prometheus-backed metrics collector
// the graph executor and plugin runtime report against. It keeps the
// teacher's PrometheusCollector seam (a narrow "observe one completed unit
// of work" interface) but backs it with the real
// github.com/prometheus/client_golang/prometheus client instead of the
// teacher's in-tree text-format writer.
package obsmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector records graph and system execution outcomes as Prometheus
// metrics. It is the spiritual successor of the teacher's
// PrometheusCollector/WorkGroupSummary pairing, generalized from "work
// group" to "graph node" vocabulary.
type Collector struct {
	graphDuration  *prometheus.HistogramVec
	graphTotal     *prometheus.CounterVec
	systemDuration *prometheus.HistogramVec
	systemTotal    *prometheus.CounterVec
	pluginTickDur  *prometheus.HistogramVec
}

// Options configures bucket boundaries, mirroring the teacher's
// PrometheusCollectorOptions.DurationBuckets.
type Options struct {
	DurationBuckets []float64
}

func defaultBuckets() []float64 {
	return prometheus.DefBuckets
}

// New constructs a Collector and registers its metrics against reg. Pass
// prometheus.NewRegistry() for an isolated registry (tests, multiple
// runtimes in one process) or prometheus.DefaultRegisterer for the global
// one.
func New(reg prometheus.Registerer, opts Options) *Collector {
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = defaultBuckets()
	}

	c := &Collector{
		graphDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "polaris",
			Subsystem: "graphexec",
			Name:      "graph_duration_seconds",
			Help:      "Duration of a complete graph execution run.",
			Buckets:   buckets,
		}, []string{"graph", "outcome"}),
		graphTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "polaris",
			Subsystem: "graphexec",
			Name:      "graph_runs_total",
			Help:      "Count of graph executions by outcome.",
		}, []string{"graph", "outcome"}),
		systemDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "polaris",
			Subsystem: "graphexec",
			Name:      "system_duration_seconds",
			Help:      "Duration of an individual system node's Run.",
			Buckets:   buckets,
		}, []string{"system", "outcome"}),
		systemTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "polaris",
			Subsystem: "graphexec",
			Name:      "system_runs_total",
			Help:      "Count of system node executions by outcome.",
		}, []string{"system", "outcome"}),
		pluginTickDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "polaris",
			Subsystem: "plugin",
			Name:      "tick_duration_seconds",
			Help:      "Duration of a plugin runtime Tick(schedule) dispatch.",
			Buckets:   buckets,
		}, []string{"schedule"}),
	}

	reg.MustRegister(c.graphDuration, c.graphTotal, c.systemDuration, c.systemTotal, c.pluginTickDur)
	return c
}

// ObserveGraph records one completed (or failed) graph run.
func (c *Collector) ObserveGraph(graphName string, d time.Duration, ok bool) {
	if c == nil {
		return
	}
	outcome := outcomeLabel(ok)
	c.graphDuration.WithLabelValues(graphName, outcome).Observe(d.Seconds())
	c.graphTotal.WithLabelValues(graphName, outcome).Inc()
}

// ObserveSystem records one completed (or failed) system node Run.
func (c *Collector) ObserveSystem(systemName string, d time.Duration, ok bool) {
	if c == nil {
		return
	}
	outcome := outcomeLabel(ok)
	c.systemDuration.WithLabelValues(systemName, outcome).Observe(d.Seconds())
	c.systemTotal.WithLabelValues(systemName, outcome).Inc()
}

// ObserveTick records how long a plugin runtime's Tick(schedule) dispatch
// took to run every registered plugin's Update.
func (c *Collector) ObserveTick(scheduleName string, d time.Duration) {
	if c == nil {
		return
	}
	c.pluginTickDur.WithLabelValues(scheduleName).Observe(d.Seconds())
}

func outcomeLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
