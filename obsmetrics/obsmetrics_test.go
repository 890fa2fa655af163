package obsmetrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TeamRadiantAI/polaris-sub000/obsmetrics"
)

func TestObserveGraphRecordsSuccessAndFailureSeparately(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := obsmetrics.New(reg, obsmetrics.Options{})

	c.ObserveGraph("ingest", 10*time.Millisecond, true)
	c.ObserveGraph("ingest", 5*time.Millisecond, false)

	expected := `
		# HELP polaris_graphexec_graph_runs_total Count of graph executions by outcome.
		# TYPE polaris_graphexec_graph_runs_total counter
		polaris_graphexec_graph_runs_total{graph="ingest",outcome="failure"} 1
		polaris_graphexec_graph_runs_total{graph="ingest",outcome="success"} 1
	`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "polaris_graphexec_graph_runs_total"))
}

func TestObserveSystemIncrementsMatchingOutcomeLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := obsmetrics.New(reg, obsmetrics.Options{})

	c.ObserveSystem("fetch", time.Millisecond, true)
	c.ObserveSystem("fetch", time.Millisecond, true)

	expected := `
		# HELP polaris_graphexec_system_runs_total Count of system node executions by outcome.
		# TYPE polaris_graphexec_system_runs_total counter
		polaris_graphexec_system_runs_total{outcome="success",system="fetch"} 2
	`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "polaris_graphexec_system_runs_total"))
}

func TestObserveTickRecordsAgainstScheduleLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := obsmetrics.New(reg, obsmetrics.Options{})

	assert.NotPanics(t, func() { c.ObserveTick("RunIngest", 2*time.Millisecond) })
	n, err := testutil.GatherAndCount(reg, "polaris_plugin_tick_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNilCollectorToleratesEveryCall(t *testing.T) {
	var c *obsmetrics.Collector
	assert.NotPanics(t, func() {
		c.ObserveGraph("g", time.Millisecond, true)
		c.ObserveSystem("s", time.Millisecond, false)
		c.ObserveTick("sched", time.Millisecond)
	})
}

func TestCustomDurationBucketsAreHonored(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := obsmetrics.New(reg, obsmetrics.Options{DurationBuckets: []float64{0.5, 1, 2}})
	require.NotNil(t, c)
	c.ObserveGraph("g", time.Millisecond, true)

	n, err := testutil.GatherAndCount(reg, "polaris_graphexec_graph_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
