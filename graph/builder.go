package graph

import (
	"errors"
	"time"

	"github.com/TeamRadiantAI/polaris-sub000/predicate"
	"github.com/TeamRadiantAI/polaris-sub000/system"
)

// ErrTimeoutTargetNotSystem is returned by SetTimeout when the target node
// is not a System node. The original implementation panics on this
// condition; this port returns an error instead, per the redesign recorded
// in SPEC_FULL.md/DESIGN.md.
var ErrTimeoutTargetNotSystem = errors.New("graph: timeout target must be a system node")

// Builder assembles a Graph (or a subgraph nested inside one: a branch, a
// loop body, a parallel lane). Every Add* call appends a new node — a
// Builder never merges into or mutates a node created by a different Add*
// call or a different Builder instance sharing the same Graph.
type Builder struct {
	graph    *Graph
	first    NodeID
	hasFirst bool
	last     NodeID
	hasLast  bool
}

// NewBuilder constructs a root builder for a brand new graph.
func NewBuilder() *Builder {
	return &Builder{graph: NewGraph()}
}

func (b *Builder) child() *Builder {
	return &Builder{graph: b.graph}
}

func (b *Builder) link(n *Node) {
	if b.hasLast {
		b.graph.addEdge(Edge{ID: b.graph.Allocator.NextEdge(), Kind: EdgeSequential, From: b.last, To: n.ID})
	}
	if !b.hasFirst {
		b.first = n.ID
		b.hasFirst = true
	}
	b.last = n.ID
	b.hasLast = true
}

// LastNode returns the node this builder would attach its next call after,
// and whether one exists yet.
func (b *Builder) LastNode() (NodeID, bool) { return b.last, b.hasLast }

// AddSystem appends a System node running sys.
func (b *Builder) AddSystem(name string, sys system.System) *Builder {
	n := &Node{ID: b.graph.Allocator.NextNode(), Kind: NodeSystem, Name: name, System: sys}
	b.graph.addNode(n)
	b.link(n)
	return b
}

// AddConditionalBranch appends a Decision node evaluating pred, dispatching
// to whichever of trueFn/falseFn's subgraph runs. Per the original
// implementation's behavior (confirmed against its source and preserved
// here rather than redesigned), the decision node itself — not either
// branch's tail — becomes this builder's last node, so a call chained after
// AddConditionalBranch attaches after the decision, not after a branch.
func (b *Builder) AddConditionalBranch(name string, pred predicate.ErasedPredicate, trueFn, falseFn func(*Builder)) *Builder {
	d := &Node{ID: b.graph.Allocator.NextNode(), Kind: NodeDecision, Name: name, Predicate: pred}
	b.graph.addNode(d)
	b.link(d)

	if trueFn != nil {
		tb := b.child()
		trueFn(tb)
		if tb.hasFirst {
			d.TrueTarget = tb.first
			b.graph.addEdge(Edge{ID: b.graph.Allocator.NextEdge(), Kind: EdgeConditional, From: d.ID, To: tb.first, Label: "true"})
		}
	}
	if falseFn != nil {
		fb := b.child()
		falseFn(fb)
		if fb.hasFirst {
			d.FalseTarget = fb.first
			b.graph.addEdge(Edge{ID: b.graph.Allocator.NextEdge(), Kind: EdgeConditional, From: d.ID, To: fb.first, Label: "false"})
		}
	}

	b.last = d.ID
	b.hasLast = true
	return b
}

// SwitchCase pairs a discriminator case key with the builder function for
// its branch. AddSwitch takes a slice (not a map) of these so the caller's
// declaration order survives onto Node.CaseOrder — a plain map has no
// iteration order, and spec fidelity requires "case order is preserved".
type SwitchCase struct {
	Key   string
	Build func(*Builder)
}

// AddSwitch appends a Switch node evaluating disc, dispatching by case key.
// Like AddConditionalBranch, the switch node itself becomes last, not any
// case's tail. Case order follows cases' slice order; duplicate keys are
// rejected by keeping only the first occurrence's edge, matching "first
// equal in case-order wins" at the executor.
func (b *Builder) AddSwitch(name string, disc predicate.ErasedDiscriminator, cases []SwitchCase, defaultFn func(*Builder)) *Builder {
	s := &Node{ID: b.graph.Allocator.NextNode(), Kind: NodeSwitch, Name: name, Discriminator: disc, Cases: make(map[string]NodeID)}
	b.graph.addNode(s)
	b.link(s)

	for _, c := range cases {
		if _, seen := s.Cases[c.Key]; seen {
			continue
		}
		cb := b.child()
		c.Build(cb)
		if cb.hasFirst {
			s.Cases[c.Key] = cb.first
			s.CaseOrder = append(s.CaseOrder, c.Key)
			b.graph.addEdge(Edge{ID: b.graph.Allocator.NextEdge(), Kind: EdgeConditional, From: s.ID, To: cb.first, Label: c.Key})
		}
	}
	if defaultFn != nil {
		db := b.child()
		defaultFn(db)
		if db.hasFirst {
			s.DefaultTarget = db.first
			s.HasDefault = true
			b.graph.addEdge(Edge{ID: b.graph.Allocator.NextEdge(), Kind: EdgeConditional, From: s.ID, To: db.first, Label: "default"})
		}
	}

	b.last = s.ID
	b.hasLast = true
	return b
}

// AddLoop appends a Loop node running bodyFn's subgraph up to maxIterations
// times, or fewer if terminate evaluates true; terminate is evaluated before
// each iteration, including the first. terminate
// may be nil, meaning the loop always runs exactly maxIterations times.
func (b *Builder) AddLoop(name string, maxIterations int, terminate predicate.ErasedPredicate, bodyFn func(*Builder)) *Builder {
	l := &Node{ID: b.graph.Allocator.NextNode(), Kind: NodeLoop, Name: name, MaxIterations: maxIterations, Terminate: terminate}
	b.graph.addNode(l)
	b.link(l)

	if bodyFn != nil {
		bb := b.child()
		bodyFn(bb)
		if bb.hasFirst {
			l.BodyEntry = bb.first
			b.graph.addEdge(Edge{ID: b.graph.Allocator.NextEdge(), Kind: EdgeSequential, From: l.ID, To: bb.first})
		}
		if bb.hasLast {
			// LoopBack edge exists for validation/structural parity only; the
			// executor re-enters the body via BodyEntry directly each iteration.
			b.graph.addEdge(Edge{ID: b.graph.Allocator.NextEdge(), Kind: EdgeLoopBack, From: bb.last, To: l.ID})
		}
	}

	b.last = l.ID
	b.hasLast = true
	return b
}

// AddParallel appends a Parallel node fanning out into one lane per branchFn
// and a Join node collecting them, wiring Parallel.JoinTarget to the join.
// After this call, last is the join node, so chained calls attach after the
// merge point.
func (b *Builder) AddParallel(name string, branchFns ...func(*Builder)) *Builder {
	p := &Node{ID: b.graph.Allocator.NextNode(), Kind: NodeParallel, Name: name}
	b.graph.addNode(p)
	b.link(p)

	var tails []NodeID
	for _, fn := range branchFns {
		cb := b.child()
		fn(cb)
		if cb.hasFirst {
			p.Branches = append(p.Branches, cb.first)
			b.graph.addEdge(Edge{ID: b.graph.Allocator.NextEdge(), Kind: EdgeParallel, From: p.ID, To: cb.first})
		}
		if cb.hasLast {
			tails = append(tails, cb.last)
		}
	}

	j := &Node{ID: b.graph.Allocator.NextNode(), Kind: NodeJoin, Name: name + ".join", Sources: tails}
	b.graph.addNode(j)
	p.JoinTarget = j.ID
	for _, tail := range tails {
		b.graph.addEdge(Edge{ID: b.graph.Allocator.NextEdge(), Kind: EdgeSequential, From: tail, To: j.ID})
	}

	b.last = j.ID
	b.hasLast = true
	return b
}

// AddErrorHandler attaches handlerFn's subgraph to target via an Error edge.
// Per the original implementation's behavior, attaching a handler does not
// change this builder's last node: a handler is a side-attachment, not part
// of the main chain.
func (b *Builder) AddErrorHandler(target NodeID, handlerFn func(*Builder)) *Builder {
	hb := b.child()
	handlerFn(hb)
	if hb.hasFirst {
		b.graph.addEdge(Edge{ID: b.graph.Allocator.NextEdge(), Kind: EdgeError, From: target, To: hb.first})
	}
	return b
}

// SetTimeout sets target's own per-node timeout to d, independent of whether
// a handler is attached: the node's Run races against this duration whether
// or not a Timeout edge exists. target must be a System node; any other kind
// returns ErrTimeoutTargetNotSystem instead of panicking (a deliberate
// redesign from the original's panic-on-misuse behavior). handlerFn may be
// nil, meaning a timeout fails the run outright instead of routing to a
// handler subgraph. Like AddErrorHandler, this does not change the
// builder's last node.
func (b *Builder) SetTimeout(target NodeID, d time.Duration, handlerFn func(*Builder)) (*Builder, error) {
	n, ok := b.graph.Nodes[target]
	if !ok || n.Kind != NodeSystem {
		return b, ErrTimeoutTargetNotSystem
	}
	n.HasTimeout = true
	n.TimeoutDuration = d

	if handlerFn == nil {
		return b, nil
	}
	hb := b.child()
	handlerFn(hb)
	if hb.hasFirst {
		b.graph.addEdge(Edge{ID: b.graph.Allocator.NextEdge(), Kind: EdgeTimeout, From: target, To: hb.first, Duration: d})
	}
	return b, nil
}

// Build finalizes the graph: the root builder's first node becomes the
// graph's entry point.
func (b *Builder) Build() *Graph {
	if b.hasFirst {
		b.graph.EntryPoint = b.first
		b.graph.HasEntry = true
	}
	return b.graph
}
