package plugin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TeamRadiantAI/polaris-sub000/plugin"
	"github.com/TeamRadiantAI/polaris-sub000/resource"
)

type recorder struct {
	order *[]string
}

type basePlugin struct {
	plugin.BasePlugin
	recorder
	name string
}

func (p basePlugin) Name() string { return p.name }
func (p basePlugin) Build(rt *plugin.Runtime) error {
	*p.order = append(*p.order, p.name)
	return nil
}

type dependentPlugin struct {
	basePlugin
	deps []plugin.ID
}

func (p dependentPlugin) Dependencies() []plugin.ID { return p.deps }

// Plugin identity is per Go type, so tests needing several distinct
// plugins give each its own type.
type pluginA struct{ basePlugin }
type pluginB struct{ basePlugin }
type pluginC struct{ basePlugin }
type cycleA struct{ dependentPlugin }
type cycleB struct{ dependentPlugin }

func TestFinishBuildsInDependencyOrder(t *testing.T) {
	var order []string
	a := basePlugin{recorder: recorder{order: &order}, name: "A"}
	b := dependentPlugin{basePlugin: basePlugin{recorder: recorder{order: &order}, name: "B"}, deps: []plugin.ID{plugin.Of(a)}}

	rt := plugin.NewRuntime()
	rt.AddPlugin(b)
	rt.AddPlugin(a)

	require.NoError(t, rt.Finish())
	assert.Equal(t, []string{"A", "B"}, order)
}

func TestFinishTwiceIsFatal(t *testing.T) {
	var order []string
	a := basePlugin{recorder: recorder{order: &order}, name: "A"}

	rt := plugin.NewRuntime()
	rt.AddPlugin(a)

	require.NoError(t, rt.Finish())
	err := rt.Finish()
	require.Error(t, err)
	assert.ErrorAs(t, err, new(*plugin.ErrAlreadyFinished))
	assert.Equal(t, []string{"A"}, order, "second Finish must not re-run Build")
}

func TestFinishRejectsMissingDependency(t *testing.T) {
	var order []string
	ghost := basePlugin{recorder: recorder{order: &order}, name: "Ghost"}
	b := dependentPlugin{basePlugin: basePlugin{recorder: recorder{order: &order}, name: "B"}, deps: []plugin.ID{plugin.Of(ghost)}}

	rt := plugin.NewRuntime()
	rt.AddPlugin(b)

	err := rt.Finish()
	require.Error(t, err)
	var missing *plugin.ErrMissingDependency
	assert.ErrorAs(t, err, &missing)
}

func TestFinishRejectsDependencyCycle(t *testing.T) {
	var order []string
	bPlugin := cycleB{dependentPlugin{basePlugin: basePlugin{recorder: recorder{order: &order}, name: "B"}, deps: []plugin.ID{plugin.Of(cycleA{})}}}
	a := cycleA{dependentPlugin{basePlugin: basePlugin{recorder: recorder{order: &order}, name: "A"}, deps: []plugin.ID{plugin.Of(cycleB{})}}}

	rt := plugin.NewRuntime()
	rt.AddPlugin(a)
	rt.AddPlugin(bPlugin)

	err := rt.Finish()
	require.Error(t, err)
	var cycle *plugin.ErrDependencyCycle
	assert.ErrorAs(t, err, &cycle)
}

func TestFinishRejectsDuplicateUniquePlugin(t *testing.T) {
	var order []string
	a1 := basePlugin{recorder: recorder{order: &order}, name: "A"}
	a2 := basePlugin{recorder: recorder{order: &order}, name: "A"}

	rt := plugin.NewRuntime()
	rt.AddPlugin(a1)
	rt.AddPlugin(a2)

	err := rt.Finish()
	require.Error(t, err)
	var dup *plugin.ErrDuplicateUniquePlugin
	assert.ErrorAs(t, err, &dup)
}

type spawningPlugin struct {
	basePlugin
	spawn plugin.Plugin
}

func (p spawningPlugin) Build(rt *plugin.Runtime) error {
	*p.order = append(*p.order, p.name)
	rt.AddPlugin(p.spawn)
	return nil
}

func TestFinishBuildsPluginsAddedDuringBuildImmediately(t *testing.T) {
	var order []string
	child := basePlugin{recorder: recorder{order: &order}, name: "Child"}
	parent := spawningPlugin{basePlugin: basePlugin{recorder: recorder{order: &order}, name: "Parent"}, spawn: child}

	rt := plugin.NewRuntime()
	rt.AddPlugin(parent)

	require.NoError(t, rt.Finish())
	assert.Equal(t, []string{"Parent", "Child"}, order)
}

type capabilityPublisher struct {
	plugin.BasePlugin
}

type capability struct{ value int }

func (capabilityPublisher) Name() string { return "publisher" }
func (capabilityPublisher) Build(rt *plugin.Runtime) error {
	resource.Insert(rt.Capabilities(), capability{value: 42})
	return nil
}

func TestRuntimeCapabilitiesVisibleAfterBuild(t *testing.T) {
	rt := plugin.NewRuntime()
	rt.AddPlugin(capabilityPublisher{})
	require.NoError(t, rt.Finish())

	got, err := resource.Get[capability](rt.Capabilities())
	require.NoError(t, err)
	assert.Equal(t, 42, got.value)
}

func TestGroupBuilderAddBefore(t *testing.T) {
	var order []string
	a := pluginA{basePlugin{recorder: recorder{order: &order}, name: "A"}}
	b := pluginB{basePlugin{recorder: recorder{order: &order}, name: "B"}}
	c := pluginC{basePlugin{recorder: recorder{order: &order}, name: "C"}}

	gb := plugin.NewGroupBuilder().Add(a).Add(c)
	gb.AddBefore(plugin.Of(c), b)

	rt := plugin.NewRuntime()
	rt.AddPlugins(gb)
	require.NoError(t, rt.Finish())
	assert.Equal(t, []string{"A", "B", "C"}, order)
}

func TestGroupBuilderDisable(t *testing.T) {
	var order []string
	a := pluginA{basePlugin{recorder: recorder{order: &order}, name: "A"}}
	b := pluginB{basePlugin{recorder: recorder{order: &order}, name: "B"}}

	gb := plugin.NewGroupBuilder().Add(a).Add(b)
	gb.Disable(plugin.Of(b))

	assert.Equal(t, 1, gb.Len())
}
