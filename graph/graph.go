// Package graph implements the control-flow graph model: nodes (systems,
// decisions, switches, loops, parallel fan-outs, joins), the edges
// connecting them, and a builder that assembles a graph without ever
// merging nodes across separate builder calls.
package graph

import (
	"sync/atomic"
	"time"

	"github.com/TeamRadiantAI/polaris-sub000/predicate"
	"github.com/TeamRadiantAI/polaris-sub000/system"
)

// NodeID and EdgeID are process-unique identifiers, allocated from a shared
// counter so IDs stay globally unique even across nested subgraphs built by
// separate Builder instances (e.g. a loop body built on its own Builder).
type NodeID uint64
type EdgeID uint64

// IDAllocator hands out globally unique NodeID/EdgeID values. A single
// allocator is shared by a graph and every subgraph nested inside it (loop
// bodies, parallel branches) so IDs never collide.
type IDAllocator struct {
	nextNode uint64
	nextEdge uint64
}

// NewIDAllocator constructs an allocator starting from zero.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

func (a *IDAllocator) NextNode() NodeID {
	return NodeID(atomic.AddUint64(&a.nextNode, 1))
}

func (a *IDAllocator) NextEdge() EdgeID {
	return EdgeID(atomic.AddUint64(&a.nextEdge, 1))
}

// NodeKind discriminates the Node union.
type NodeKind uint8

const (
	NodeSystem NodeKind = iota
	NodeDecision
	NodeSwitch
	NodeLoop
	NodeParallel
	NodeJoin
)

// Node is the tagged union of every node kind. Only the fields relevant to
// Kind are populated; this mirrors the teacher's preference for explicit,
// inspectable structs over deep type hierarchies.
type Node struct {
	ID   NodeID
	Kind NodeKind
	Name string

	// NodeSystem
	System          system.System
	HasTimeout      bool
	TimeoutDuration time.Duration

	// NodeDecision
	Predicate    predicate.ErasedPredicate
	TrueTarget   NodeID
	FalseTarget  NodeID

	// NodeSwitch
	Discriminator predicate.ErasedDiscriminator
	Cases         map[string]NodeID
	CaseOrder     []string // declaration order of Cases' keys, preserved for diagnostics/visualization
	DefaultTarget NodeID
	HasDefault    bool

	// NodeLoop
	BodyEntry     NodeID
	MaxIterations int
	Terminate     predicate.ErasedPredicate // optional; nil means "run MaxIterations times"

	// NodeParallel
	Branches   []NodeID
	JoinTarget NodeID

	// NodeJoin
	Sources []NodeID
	Next    NodeID
	HasNext bool
}

// EdgeKind discriminates the Edge union.
type EdgeKind uint8

const (
	EdgeSequential EdgeKind = iota
	EdgeConditional
	EdgeParallel
	EdgeLoopBack
	EdgeError
	EdgeTimeout
)

// Edge connects two nodes. Conditional/LoopBack edges exist primarily for
// structural validation parity with the branch/loop targets already
// recorded on the node itself; the executor walks node fields directly.
type Edge struct {
	ID       EdgeID
	Kind     EdgeKind
	From     NodeID
	To       NodeID
	Label    string        // "true"/"false" for Conditional, case key for Switch-adjacent edges
	Duration time.Duration // Timeout edges only
}

// Graph is the assembled, buildable-but-immutable-once-built control-flow
// graph: a node set, an edge set, and a designated entry point.
type Graph struct {
	Nodes      map[NodeID]*Node
	Edges      []Edge
	EntryPoint NodeID
	HasEntry   bool
	Allocator  *IDAllocator
}

// NewGraph constructs an empty graph with its own ID allocator.
func NewGraph() *Graph {
	return &Graph{
		Nodes:     make(map[NodeID]*Node),
		Allocator: NewIDAllocator(),
	}
}

func (g *Graph) addNode(n *Node) {
	g.Nodes[n.ID] = n
}

func (g *Graph) addEdge(e Edge) {
	g.Edges = append(g.Edges, e)
}
