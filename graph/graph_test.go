package graph_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TeamRadiantAI/polaris-sub000/graph"
	"github.com/TeamRadiantAI/polaris-sub000/predicate"
	"github.com/TeamRadiantAI/polaris-sub000/sysctx"
	"github.com/TeamRadiantAI/polaris-sub000/system"
)

func noop(name string) system.System {
	return system.Erase[system.Void](system.Func[system.Void]{
		FuncName: name,
		Fn: func(ctx context.Context, sc *sysctx.Context) (system.Void, error) {
			return system.Void{}, nil
		},
	})
}

func TestSequentialChainLinksEachNode(t *testing.T) {
	b := graph.NewBuilder()
	b.AddSystem("s1", noop("s1")).AddSystem("s2", noop("s2")).AddSystem("s3", noop("s3"))
	g := b.Build()

	require.NoError(t, graph.Validate(g))
	assert.Len(t, g.Nodes, 3)
	assert.Len(t, g.Edges, 2)
}

type flag struct{ v bool }

func TestConditionalBranchBecomesLastNode(t *testing.T) {
	b := graph.NewBuilder()
	pred := predicate.NewPredicate(func(f flag) bool { return f.v })

	var decisionID graph.NodeID
	b.AddSystem("start", noop("start"))
	decisionID, _ = b.LastNode()
	b.AddConditionalBranch("decide", pred,
		func(tb *graph.Builder) { tb.AddSystem("true-branch", noop("true-branch")) },
		func(fb *graph.Builder) { fb.AddSystem("false-branch", noop("false-branch")) },
	)
	_ = decisionID
	b.AddSystem("after", noop("after"))
	g := b.Build()

	require.NoError(t, graph.Validate(g))

	var decisionNode *graph.Node
	for _, n := range g.Nodes {
		if n.Kind == graph.NodeDecision {
			decisionNode = n
		}
	}
	require.NotNil(t, decisionNode)

	foundEdgeFromDecision := false
	for _, e := range g.Edges {
		if e.From == decisionNode.ID && e.Kind == graph.EdgeSequential {
			foundEdgeFromDecision = true
		}
	}
	assert.True(t, foundEdgeFromDecision, "the 'after' system must attach after the decision node, not after either branch")
}

func TestValidateCatchesMissingEntryPoint(t *testing.T) {
	g := graph.NewGraph()
	err := graph.Validate(g)
	assert.Error(t, err)
}

func TestValidateCatchesEmptySwitch(t *testing.T) {
	b := graph.NewBuilder()
	disc := predicate.NewDiscriminator(func(f flag) string { return "x" })
	b.AddSwitch("sw", disc, nil, nil)
	g := b.Build()

	err := graph.Validate(g)
	assert.Error(t, err)
}

func TestValidateCatchesLoopWithoutTermination(t *testing.T) {
	b := graph.NewBuilder()
	b.AddLoop("loop", 0, nil, func(bb *graph.Builder) {
		bb.AddSystem("body", noop("body"))
	})
	g := b.Build()

	err := graph.Validate(g)
	assert.Error(t, err)
}

func TestValidateCatchesEmptyParallel(t *testing.T) {
	b := graph.NewBuilder()
	b.AddParallel("par")
	g := b.Build()

	err := graph.Validate(g)
	assert.Error(t, err)
}

func TestSetTimeoutRejectsNonSystemTarget(t *testing.T) {
	b := graph.NewBuilder()
	disc := predicate.NewDiscriminator(func(f flag) string { return "x" })
	b.AddSwitch("sw", disc, []graph.SwitchCase{
		{Key: "x", Build: func(cb *graph.Builder) { cb.AddSystem("leaf", noop("leaf")) }},
	}, nil)
	switchID, _ := b.LastNode()

	_, err := b.SetTimeout(switchID, time.Second, func(hb *graph.Builder) {
		hb.AddSystem("handler", noop("handler"))
	})
	assert.ErrorIs(t, err, graph.ErrTimeoutTargetNotSystem)
}

func TestSetTimeoutAcceptsSystemTarget(t *testing.T) {
	b := graph.NewBuilder()
	b.AddSystem("s1", noop("s1"))
	sysID, _ := b.LastNode()

	_, err := b.SetTimeout(sysID, time.Second, func(hb *graph.Builder) {
		hb.AddSystem("handler", noop("handler"))
	})
	assert.NoError(t, err)
}

func TestParallelWiresJoinAndLastNodeIsJoin(t *testing.T) {
	b := graph.NewBuilder()
	b.AddParallel("par",
		func(a *graph.Builder) { a.AddSystem("a", noop("a")) },
		func(bb *graph.Builder) { bb.AddSystem("b", noop("b")) },
	)
	joinID, ok := b.LastNode()
	require.True(t, ok)
	g := b.Build()

	require.NoError(t, graph.Validate(g))
	joinNode := g.Nodes[joinID]
	require.NotNil(t, joinNode)
	assert.Equal(t, graph.NodeJoin, joinNode.Kind)
	assert.Len(t, joinNode.Sources, 2)
}
