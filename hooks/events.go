// Package hooks implements the lifecycle event model and the registry that
// dispatches events to observers and capability providers at each point in
// a graph's execution.
package hooks

import (
	"fmt"
	"time"

	"github.com/TeamRadiantAI/polaris-sub000/graph"
	"github.com/TeamRadiantAI/polaris-sub000/schedule"
)

// Event is the sum type of every lifecycle point the executor announces.
// Each concrete type below is one variant; ScheduleID reports which
// schedule marker the event dispatches under and NodeID reports the
// associated graph node, when the event is node-scoped.
type Event interface {
	ScheduleID() schedule.ID
	NodeID() (graph.NodeID, bool)
	fmt.Stringer
}

type GraphStart struct {
	GraphName string
	// RunID correlates the graph-level events (GraphStart, GraphComplete,
	// GraphFailure) of one Executor.Run call, for hosts that fan events
	// out to a tracing/log backend and need to stitch them back together
	// (the generalization of the teacher's per-WorkGroupSummary
	// correlation id). Node-level events carry no RunID.
	RunID string
}

func (e GraphStart) ScheduleID() schedule.ID        { return schedule.Of[schedule.OnGraphStart]() }
func (e GraphStart) NodeID() (graph.NodeID, bool)   { return 0, false }
func (e GraphStart) String() string                 { return fmt.Sprintf("GraphStart(%s, run: %s)", e.GraphName, e.RunID) }

type GraphComplete struct {
	GraphName     string
	RunID         string
	Duration      time.Duration
	NodesExecuted int
}

func (e GraphComplete) ScheduleID() schedule.ID      { return schedule.Of[schedule.OnGraphComplete]() }
func (e GraphComplete) NodeID() (graph.NodeID, bool) { return 0, false }
func (e GraphComplete) String() string {
	return fmt.Sprintf("GraphComplete(%s, run: %s, nodes: %d, duration: %s)", e.GraphName, e.RunID, e.NodesExecuted, e.Duration)
}

type GraphFailure struct {
	GraphName string
	RunID     string
	Err       error
}

func (e GraphFailure) ScheduleID() schedule.ID      { return schedule.Of[schedule.OnGraphFailure]() }
func (e GraphFailure) NodeID() (graph.NodeID, bool) { return 0, false }
func (e GraphFailure) String() string {
	return fmt.Sprintf("GraphFailure(%s, run: %s, err: %v)", e.GraphName, e.RunID, e.Err)
}

type SystemStart struct {
	SystemName string
	Node       graph.NodeID
}

func (e SystemStart) ScheduleID() schedule.ID      { return schedule.Of[schedule.OnSystemStart]() }
func (e SystemStart) NodeID() (graph.NodeID, bool) { return e.Node, true }
func (e SystemStart) String() string {
	return fmt.Sprintf("SystemStart(%s @ %d)", e.SystemName, e.Node)
}

type SystemComplete struct {
	SystemName string
	Node       graph.NodeID
	Duration   time.Duration
}

func (e SystemComplete) ScheduleID() schedule.ID      { return schedule.Of[schedule.OnSystemComplete]() }
func (e SystemComplete) NodeID() (graph.NodeID, bool) { return e.Node, true }
func (e SystemComplete) String() string {
	return fmt.Sprintf("SystemComplete(%s @ %d, duration: %s)", e.SystemName, e.Node, e.Duration)
}

type SystemError struct {
	SystemName string
	Node       graph.NodeID
	Err        error
}

func (e SystemError) ScheduleID() schedule.ID      { return schedule.Of[schedule.OnSystemError]() }
func (e SystemError) NodeID() (graph.NodeID, bool) { return e.Node, true }
func (e SystemError) String() string {
	return fmt.Sprintf("SystemError(%s @ %d, err: %v)", e.SystemName, e.Node, e.Err)
}

type DecisionStart struct {
	Node graph.NodeID
}

func (e DecisionStart) ScheduleID() schedule.ID      { return schedule.Of[schedule.OnDecisionStart]() }
func (e DecisionStart) NodeID() (graph.NodeID, bool) { return e.Node, true }
func (e DecisionStart) String() string               { return fmt.Sprintf("DecisionStart(@ %d)", e.Node) }

type DecisionComplete struct {
	Node   graph.NodeID
	Result bool
}

func (e DecisionComplete) ScheduleID() schedule.ID      { return schedule.Of[schedule.OnDecisionComplete]() }
func (e DecisionComplete) NodeID() (graph.NodeID, bool) { return e.Node, true }
func (e DecisionComplete) String() string {
	return fmt.Sprintf("DecisionComplete(@ %d, result: %v)", e.Node, e.Result)
}

type SwitchStart struct {
	Node graph.NodeID
}

func (e SwitchStart) ScheduleID() schedule.ID      { return schedule.Of[schedule.OnSwitchStart]() }
func (e SwitchStart) NodeID() (graph.NodeID, bool) { return e.Node, true }
func (e SwitchStart) String() string               { return fmt.Sprintf("SwitchStart(@ %d)", e.Node) }

type SwitchComplete struct {
	Node    graph.NodeID
	CaseKey string
}

func (e SwitchComplete) ScheduleID() schedule.ID      { return schedule.Of[schedule.OnSwitchComplete]() }
func (e SwitchComplete) NodeID() (graph.NodeID, bool) { return e.Node, true }
func (e SwitchComplete) String() string {
	return fmt.Sprintf("SwitchComplete(@ %d, case: %s)", e.Node, e.CaseKey)
}

type LoopStart struct {
	Node graph.NodeID
}

func (e LoopStart) ScheduleID() schedule.ID      { return schedule.Of[schedule.OnLoopStart]() }
func (e LoopStart) NodeID() (graph.NodeID, bool) { return e.Node, true }
func (e LoopStart) String() string               { return fmt.Sprintf("LoopStart(@ %d)", e.Node) }

type LoopIteration struct {
	Node      graph.NodeID
	Iteration int
}

func (e LoopIteration) ScheduleID() schedule.ID      { return schedule.Of[schedule.OnLoopIteration]() }
func (e LoopIteration) NodeID() (graph.NodeID, bool) { return e.Node, true }
func (e LoopIteration) String() string {
	return fmt.Sprintf("LoopIteration(@ %d, iteration: %d)", e.Node, e.Iteration)
}

type LoopEnd struct {
	Node       graph.NodeID
	Iterations int
}

func (e LoopEnd) ScheduleID() schedule.ID      { return schedule.Of[schedule.OnLoopEnd]() }
func (e LoopEnd) NodeID() (graph.NodeID, bool) { return e.Node, true }
func (e LoopEnd) String() string {
	return fmt.Sprintf("LoopEnd(@ %d, iterations: %d)", e.Node, e.Iterations)
}

type ParallelStart struct {
	Node        graph.NodeID
	BranchCount int
}

func (e ParallelStart) ScheduleID() schedule.ID      { return schedule.Of[schedule.OnParallelStart]() }
func (e ParallelStart) NodeID() (graph.NodeID, bool) { return e.Node, true }
func (e ParallelStart) String() string {
	return fmt.Sprintf("ParallelStart(@ %d, branches: %d)", e.Node, e.BranchCount)
}

type ParallelComplete struct {
	Node               graph.NodeID
	BranchCount        int
	TotalNodesExecuted int
	Duration           time.Duration
}

func (e ParallelComplete) ScheduleID() schedule.ID      { return schedule.Of[schedule.OnParallelComplete]() }
func (e ParallelComplete) NodeID() (graph.NodeID, bool) { return e.Node, true }
func (e ParallelComplete) String() string {
	return fmt.Sprintf("ParallelComplete(@ %d, branches: %d, executed: %d, duration: %s)",
		e.Node, e.BranchCount, e.TotalNodesExecuted, e.Duration)
}

var (
	_ Event = GraphStart{}
	_ Event = GraphComplete{}
	_ Event = GraphFailure{}
	_ Event = SystemStart{}
	_ Event = SystemComplete{}
	_ Event = SystemError{}
	_ Event = DecisionStart{}
	_ Event = DecisionComplete{}
	_ Event = SwitchStart{}
	_ Event = SwitchComplete{}
	_ Event = LoopStart{}
	_ Event = LoopIteration{}
	_ Event = LoopEnd{}
	_ Event = ParallelStart{}
	_ Event = ParallelComplete{}
)
