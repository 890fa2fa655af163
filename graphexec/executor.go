// Package graphexec implements the recursive graph executor: it walks a
// validated graph.Graph from its entry point, dispatching each node kind
// per its own rules, invoking lifecycle hooks along the way, and enforcing
// bounded recursion depth and bounded loop iterations so a misbuilt graph
// fails loudly instead of hanging.
package graphexec

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/TeamRadiantAI/polaris-sub000/graph"
	"github.com/TeamRadiantAI/polaris-sub000/hooks"
	"github.com/TeamRadiantAI/polaris-sub000/obslog"
	"github.com/TeamRadiantAI/polaris-sub000/obsmetrics"
	"github.com/TeamRadiantAI/polaris-sub000/sysctx"
)

const (
	// DefaultMaxRecursionDepth bounds how deep nested subgraphs (loop
	// bodies inside parallel branches inside loop bodies, and so on) may
	// nest before a run is aborted as likely-runaway.
	DefaultMaxRecursionDepth = 64
	// DefaultMaxLoopIterations is the hard safety cap applied to a loop
	// whose own MaxIterations is zero or negative (a pure
	// Terminate-predicate loop), as a last-resort guard against a
	// never-true termination predicate. A loop with its own positive
	// MaxIterations uses that cap instead.
	DefaultMaxLoopIterations = 1000
)

// Option configures an Executor.
type Option func(*Executor)

// WithMaxRecursionDepth overrides DefaultMaxRecursionDepth.
func WithMaxRecursionDepth(n int) Option {
	return func(e *Executor) { e.maxDepth = n }
}

// WithMaxLoopIterations overrides DefaultMaxLoopIterations.
func WithMaxLoopIterations(n int) Option {
	return func(e *Executor) { e.maxLoopIterations = n }
}

// WithHooks attaches a hook registry whose Invoke is called at every
// lifecycle point. A nil registry (the default) is a no-op.
func WithHooks(api *hooks.API) Option {
	return func(e *Executor) { e.hooks = api }
}

// WithLogger attaches a structured logger that records graph start/
// complete/failure at Info/Error level. The default is a no-op logger.
func WithLogger(log obslog.Logger) Option {
	return func(e *Executor) { e.log = log }
}

// WithMetrics attaches a Prometheus-backed collector that records graph
// and system durations/outcomes. A nil collector (the default) is a no-op:
// every Collector method already tolerates a nil receiver.
func WithMetrics(m *obsmetrics.Collector) Option {
	return func(e *Executor) { e.metrics = m }
}

// WithWorkerPool bounds parallel-node branch execution to a fixed pool of
// n goroutines instead of spawning one goroutine per branch. This is the
// "thread-pooled cooperative scheduling" alternative spec.md §5 calls out
// alongside the unbounded default; it matters for graphs whose Parallel
// nodes fan out wide enough that unbounded goroutine creation would be
// wasteful.
func WithWorkerPool(n int) Option {
	return func(e *Executor) { e.pool = newWorkerPool(n) }
}

// Executor walks a graph to completion.
type Executor struct {
	maxDepth          int
	maxLoopIterations int
	hooks             *hooks.API
	log               obslog.Logger
	metrics           *obsmetrics.Collector
	pool              *workerPool
}

// New constructs an Executor with the defaults applied, then opts.
func New(opts ...Option) *Executor {
	e := &Executor{
		maxDepth:          DefaultMaxRecursionDepth,
		maxLoopIterations: DefaultMaxLoopIterations,
		log:               obslog.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result summarizes a completed (successful) run.
type Result struct {
	NodesExecuted int
	Duration      time.Duration
}

func (e *Executor) invoke(sc *sysctx.Context, event hooks.Event) {
	if e.hooks != nil {
		e.hooks.Invoke(sc, event)
	}
}

// Run walks g from its entry point to completion against root. The
// graph-level events of this call (GraphStart, and GraphComplete or
// GraphFailure) and its log lines carry the same RunID (a fresh random
// correlation id, per the teacher's per-run tracing identifier) so a host
// forwarding them to a log or trace backend can group them back into one
// run. Node-level events carry no RunID.
func (e *Executor) Run(ctx context.Context, g *graph.Graph, root *sysctx.Context, graphName string) (*Result, error) {
	if !g.HasEntry {
		return nil, &ExecutionError{Kind: KindEmptyGraph}
	}

	runID := uuid.NewString()
	log := e.log.With("graph", graphName).With("run_id", runID)

	start := time.Now()
	e.invoke(root, hooks.GraphStart{GraphName: graphName, RunID: runID})
	log.Info("graph run started")

	count, err := e.walk(ctx, g, g.EntryPoint, root, 0)
	duration := time.Since(start)
	e.metrics.ObserveGraph(graphName, duration, err == nil)
	if err != nil {
		e.invoke(root, hooks.GraphFailure{GraphName: graphName, RunID: runID, Err: err})
		log.Error("graph run failed", "error", err, "nodes_executed", count, "duration", duration)
		return &Result{NodesExecuted: count, Duration: duration}, err
	}

	e.invoke(root, hooks.GraphComplete{GraphName: graphName, RunID: runID, Duration: duration, NodesExecuted: count})
	log.Info("graph run completed", "nodes_executed", count, "duration", duration)
	return &Result{NodesExecuted: count, Duration: duration}, nil
}

// walk follows Sequential continuations from start until a node has none,
// returning the number of nodes it executed.
func (e *Executor) walk(ctx context.Context, g *graph.Graph, start graph.NodeID, sc *sysctx.Context, depth int) (int, error) {
	if depth >= e.maxDepth {
		return 0, &ExecutionError{Kind: KindRecursionLimitExceeded, Node: start}
	}

	total := 0
	cur := start
	for {
		next, hasNext, executed, err := e.execNode(ctx, g, cur, sc, depth)
		total += executed
		if err != nil {
			return total, err
		}
		if !hasNext {
			return total, nil
		}
		cur = next
	}
}

func (e *Executor) execNode(ctx context.Context, g *graph.Graph, id graph.NodeID, sc *sysctx.Context, depth int) (graph.NodeID, bool, int, error) {
	n, ok := g.Nodes[id]
	if !ok {
		return 0, false, 0, &ExecutionError{Kind: KindNodeNotFound, Node: id}
	}

	switch n.Kind {
	case graph.NodeSystem:
		return e.execSystem(ctx, g, n, sc, depth)
	case graph.NodeDecision:
		return e.execDecision(g, n, sc)
	case graph.NodeSwitch:
		return e.execSwitch(g, n, sc)
	case graph.NodeLoop:
		return e.execLoop(ctx, g, n, sc, depth)
	case graph.NodeParallel:
		return e.execParallel(ctx, g, n, sc, depth)
	case graph.NodeJoin:
		// A join ends a parallel branch's walk; execParallel continues past
		// it once every branch has finished and merged.
		return 0, false, 0, nil
	default:
		return 0, false, 0, &ExecutionError{Kind: KindUnimplemented, Node: id, Tag: "unknown node kind"}
	}
}

func (e *Executor) execSystem(ctx context.Context, g *graph.Graph, n *graph.Node, sc *sysctx.Context, depth int) (graph.NodeID, bool, int, error) {
	e.invoke(sc, hooks.SystemStart{SystemName: n.Name, Node: n.ID})
	runStart := time.Now()

	output, runErr, timedOut := e.runSystemWithTimeout(ctx, g, n, sc)
	duration := time.Since(runStart)

	if timedOut {
		if handlerTarget, ok := outgoingTimeout(g, n.ID); ok {
			hcount, herr := e.walk(ctx, g, handlerTarget, sc, depth+1)
			if herr != nil {
				return 0, false, hcount + 1, herr
			}
			next, hasNext := outgoingSequential(g, n.ID)
			return next, hasNext, hcount + 1, nil
		}
		e.metrics.ObserveSystem(n.Name, duration, false)
		return 0, false, 1, &ExecutionError{Kind: KindTimeout, Node: n.ID}
	}

	if runErr != nil {
		e.metrics.ObserveSystem(n.Name, duration, false)
		e.invoke(sc, hooks.SystemError{SystemName: n.Name, Node: n.ID, Err: runErr})
		if handlerTarget, ok := outgoingError(g, n.ID); ok {
			hcount, herr := e.walk(ctx, g, handlerTarget, sc, depth+1)
			if herr != nil {
				return 0, false, hcount + 1, herr
			}
			next, hasNext := outgoingSequential(g, n.ID)
			return next, hasNext, hcount + 1, nil
		}
		return 0, false, 1, &ExecutionError{Kind: KindSystemError, Node: n.ID, Err: runErr}
	}

	// Boxing the returned value into the context's output store is the
	// executor's sole responsibility: a system never calls InsertOutput
	// itself, so the type actually stored always matches OutputKey().
	sc.InsertBoxedOutput(n.System.OutputKey(), output)

	e.metrics.ObserveSystem(n.Name, duration, true)
	e.invoke(sc, hooks.SystemComplete{SystemName: n.Name, Node: n.ID, Duration: duration})
	next, hasNext := outgoingSequential(g, n.ID)
	return next, hasNext, 1, nil
}

// runSystemWithTimeout runs n's system, racing it against n's own
// TimeoutDuration when n.HasTimeout is set. timedOut reports whether the
// deadline won the race; in that case output and runErr are the zero value
// and the goroutine running the system is abandoned once its context is
// canceled.
func (e *Executor) runSystemWithTimeout(ctx context.Context, g *graph.Graph, n *graph.Node, sc *sysctx.Context) (output any, runErr error, timedOut bool) {
	if !n.HasTimeout {
		output, runErr = n.System.RunErased(ctx, sc)
		return output, runErr, false
	}

	runCtx, cancel := context.WithTimeout(ctx, n.TimeoutDuration)
	defer cancel()

	type outcome struct {
		output any
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		out, err := n.System.RunErased(runCtx, sc)
		done <- outcome{output: out, err: err}
	}()

	select {
	case r := <-done:
		return r.output, r.err, false
	case <-runCtx.Done():
		return nil, nil, true
	}
}

func (e *Executor) execDecision(g *graph.Graph, n *graph.Node, sc *sysctx.Context) (graph.NodeID, bool, int, error) {
	e.invoke(sc, hooks.DecisionStart{Node: n.ID})
	if n.Predicate == nil {
		return 0, false, 1, &ExecutionError{Kind: KindMissingPredicate, Node: n.ID}
	}
	result, err := n.Predicate.Evaluate(sc)
	if err != nil {
		return 0, false, 1, &ExecutionError{Kind: KindPredicateError, Node: n.ID, Err: err}
	}
	e.invoke(sc, hooks.DecisionComplete{Node: n.ID, Result: result})

	target := n.FalseTarget
	if result {
		target = n.TrueTarget
	}
	if target == 0 {
		return 0, false, 1, &ExecutionError{Kind: KindMissingBranch, Node: n.ID}
	}
	return target, true, 1, nil
}

func (e *Executor) execSwitch(g *graph.Graph, n *graph.Node, sc *sysctx.Context) (graph.NodeID, bool, int, error) {
	e.invoke(sc, hooks.SwitchStart{Node: n.ID})
	if n.Discriminator == nil {
		return 0, false, 1, &ExecutionError{Kind: KindMissingDiscriminator, Node: n.ID}
	}
	key, err := n.Discriminator.Evaluate(sc)
	if err != nil {
		return 0, false, 1, &ExecutionError{Kind: KindPredicateError, Node: n.ID, Err: err}
	}
	e.invoke(sc, hooks.SwitchComplete{Node: n.ID, CaseKey: key})

	target, ok := n.Cases[key]
	if !ok {
		if n.HasDefault {
			target = n.DefaultTarget
		} else {
			return 0, false, 1, &ExecutionError{Kind: KindNoMatchingCase, Node: n.ID, Tag: key}
		}
	}
	return target, true, 1, nil
}

func (e *Executor) execLoop(ctx context.Context, g *graph.Graph, n *graph.Node, sc *sysctx.Context, depth int) (graph.NodeID, bool, int, error) {
	e.invoke(sc, hooks.LoopStart{Node: n.ID})

	// Derive the effective cap: the node's own MaxIterations if it set one,
	// else the executor's runaway safety net (itself optional — a host may
	// disable it with WithMaxLoopIterations(0) to mean "no cap").
	maxIter := n.MaxIterations
	hasCap := maxIter > 0
	if !hasCap && e.maxLoopIterations > 0 {
		maxIter = e.maxLoopIterations
		hasCap = true
	}
	if !hasCap && n.Terminate == nil {
		return 0, false, 1, &ExecutionError{Kind: KindNoTerminationCondition, Node: n.ID}
	}

	total := 1 // the loop node itself
	iterations := 0
	for {
		if n.Terminate != nil {
			done, err := n.Terminate.Evaluate(sc)
			if err != nil {
				return 0, false, total, &ExecutionError{Kind: KindPredicateError, Node: n.ID, Err: err}
			}
			if done {
				break
			}
		}
		if hasCap && iterations >= maxIter {
			if n.Terminate != nil {
				return 0, false, total, &ExecutionError{Kind: KindMaxIterationsExceeded, Node: n.ID}
			}
			break
		}

		e.invoke(sc, hooks.LoopIteration{Node: n.ID, Iteration: iterations})
		if n.BodyEntry != 0 {
			count, err := e.walk(ctx, g, n.BodyEntry, sc, depth+1)
			total += count
			if err != nil {
				return 0, false, total, err
			}
		}
		iterations++
	}

	e.invoke(sc, hooks.LoopEnd{Node: n.ID, Iterations: iterations})
	// The builder also links the loop node to its body entry with a
	// Sequential edge; skip it so the walk continues after the loop.
	var next graph.NodeID
	hasNext := false
	for _, edge := range g.Edges {
		if edge.From == n.ID && edge.Kind == graph.EdgeSequential && edge.To != n.BodyEntry {
			next, hasNext = edge.To, true
			break
		}
	}
	return next, hasNext, total, nil
}

func (e *Executor) execParallel(ctx context.Context, g *graph.Graph, n *graph.Node, sc *sysctx.Context, depth int) (graph.NodeID, bool, int, error) {
	e.invoke(sc, hooks.ParallelStart{Node: n.ID, BranchCount: len(n.Branches)})
	start := time.Now()

	group, gctx := errgroup.WithContext(ctx)
	branchContexts := make([]*sysctx.Context, len(n.Branches))
	counts := make([]int, len(n.Branches))

	for i, branchEntry := range n.Branches {
		i, branchEntry := i, branchEntry
		branchCtx := sc.Child()
		branchContexts[i] = branchCtx
		branch := func() error {
			count, err := e.walk(gctx, g, branchEntry, branchCtx, depth+1)
			counts[i] = count
			return err
		}
		if e.pool != nil {
			group.Go(func() error { return e.pool.run(gctx, branch) })
		} else {
			group.Go(branch)
		}
	}

	runErr := group.Wait()
	total := 1 // the parallel node itself
	for _, c := range counts {
		total += c
	}

	if runErr != nil {
		return 0, false, total, &ExecutionError{Kind: KindSystemError, Node: n.ID, Err: runErr}
	}

	// Merge in branch-declaration order so that when two branches produce
	// the same output type, the later-declared branch's value survives —
	// a deterministic, caller-controlled resolution of the conflict.
	for _, bc := range branchContexts {
		sc.Outputs().MergeFrom(bc.TakeOutputs())
	}

	duration := time.Since(start)
	e.invoke(sc, hooks.ParallelComplete{Node: n.ID, BranchCount: len(n.Branches), TotalNodesExecuted: total, Duration: duration})

	if n.JoinTarget == 0 {
		return 0, false, total, &ExecutionError{Kind: KindMissingJoin, Node: n.ID}
	}
	next, hasNext := outgoingSequential(g, n.JoinTarget)
	return next, hasNext, total + 1, nil
}

func outgoingSequential(g *graph.Graph, id graph.NodeID) (graph.NodeID, bool) {
	for _, e := range g.Edges {
		if e.From == id && e.Kind == graph.EdgeSequential {
			return e.To, true
		}
	}
	return 0, false
}

func outgoingError(g *graph.Graph, id graph.NodeID) (graph.NodeID, bool) {
	for _, e := range g.Edges {
		if e.From == id && e.Kind == graph.EdgeError {
			return e.To, true
		}
	}
	return 0, false
}

func outgoingTimeout(g *graph.Graph, id graph.NodeID) (graph.NodeID, bool) {
	target, _, ok := timeoutEdge(g, id)
	return target, ok
}

func timeoutEdge(g *graph.Graph, id graph.NodeID) (graph.NodeID, time.Duration, bool) {
	for _, e := range g.Edges {
		if e.From == id && e.Kind == graph.EdgeTimeout {
			return e.To, e.Duration, true
		}
	}
	return 0, 0, false
}
