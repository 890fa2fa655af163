package examples

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TeamRadiantAI/polaris-sub000/graph"
	"github.com/TeamRadiantAI/polaris-sub000/plugin"
	"github.com/TeamRadiantAI/polaris-sub000/resource"
	"github.com/TeamRadiantAI/polaris-sub000/schedule"
)

func TestBuildIngestGraphIsStructurallyValid(t *testing.T) {
	g := buildIngestGraph()
	require.True(t, g.HasEntry)
	assert.NoError(t, graph.Validate(g))
}

func TestIngestPluginRunsEndToEnd(t *testing.T) {
	p := NewIngestPlugin(zap.NewNop(), prometheus.NewRegistry())

	rt := plugin.NewRuntime()
	rt.AddPlugin(p)
	require.NoError(t, rt.Finish())

	require.NoError(t, rt.Tick(schedule.Of[RunIngest]()))

	storedGraph, err := resource.Get[*graph.Graph](rt.Capabilities())
	require.NoError(t, err)
	assert.True(t, storedGraph.HasEntry)
}

func TestCronTriggerBindsRunIngestSchedule(t *testing.T) {
	p := NewIngestPlugin(zap.NewNop(), prometheus.NewRegistry())
	rt := plugin.NewRuntime()
	rt.AddPlugin(p)
	require.NoError(t, rt.Finish())

	trigger, err := NewCronTrigger(rt, "@every 1h")
	require.NoError(t, err)
	trigger.Start()
	defer trigger.Stop()

	assert.Nil(t, trigger.LastError())
}
