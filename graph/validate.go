package graph

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ValidationError is one structural defect found in a graph. Validate
// collects every defect it finds rather than stopping at the first, via
// go-multierror, so a caller sees the whole picture in one pass.
type ValidationError struct {
	Kind string
	Node NodeID
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("graph: %s (node %d): %s", e.Kind, e.Node, e.Detail)
	}
	return fmt.Sprintf("graph: %s (node %d)", e.Kind, e.Node)
}

const (
	KindNoEntryPoint       = "no_entry_point"
	KindInvalidEntryPoint  = "invalid_entry_point"
	KindInvalidEdgeSource  = "invalid_edge_source"
	KindInvalidEdgeTarget  = "invalid_edge_target"
	KindMissingPredicate   = "missing_predicate"
	KindMissingBranch      = "missing_branch"
	KindInvalidBranchTarget = "invalid_branch_target"
	KindMissingDiscriminator = "missing_discriminator"
	KindEmptySwitch        = "empty_switch"
	KindInvalidCaseTarget  = "invalid_case_target"
	KindInvalidDefaultTarget = "invalid_default_target"
	KindEmptyParallel      = "empty_parallel"
	KindMissingJoin        = "missing_join"
	KindInvalidJoinTarget  = "invalid_join_target"
	KindEmptyJoinSources   = "empty_join_sources"
	KindInvalidJoinSource  = "invalid_join_source"
	KindNoTerminationCondition = "no_termination_condition"
	KindEmptyLoopBody      = "empty_loop_body"
	KindInvalidLoopBody    = "invalid_loop_body"
)

// Validate checks the graph's structural integrity: entry point presence,
// edge endpoint validity, branch/case/default target validity, and
// loop/parallel/switch completeness. It does not check resource
// availability — that is graphexec's eager ResourceValidation pass, which
// runs only once a graph already passes this check.
func Validate(g *Graph) error {
	var result *multierror.Error

	if !g.HasEntry {
		result = multierror.Append(result, &ValidationError{Kind: KindNoEntryPoint})
	} else if _, ok := g.Nodes[g.EntryPoint]; !ok {
		result = multierror.Append(result, &ValidationError{Kind: KindInvalidEntryPoint, Node: g.EntryPoint})
	}

	for _, e := range g.Edges {
		if _, ok := g.Nodes[e.From]; !ok {
			result = multierror.Append(result, &ValidationError{Kind: KindInvalidEdgeSource, Node: e.From})
		}
		if _, ok := g.Nodes[e.To]; !ok {
			result = multierror.Append(result, &ValidationError{Kind: KindInvalidEdgeTarget, Node: e.To})
		}
	}

	for id, n := range g.Nodes {
		switch n.Kind {
		case NodeDecision:
			if n.Predicate == nil {
				result = multierror.Append(result, &ValidationError{Kind: KindMissingPredicate, Node: id})
			}
			if n.TrueTarget == 0 {
				result = multierror.Append(result, &ValidationError{Kind: KindMissingBranch, Node: id, Detail: "true"})
			} else if _, ok := g.Nodes[n.TrueTarget]; !ok {
				result = multierror.Append(result, &ValidationError{Kind: KindInvalidBranchTarget, Node: id, Detail: "true"})
			}
			if n.FalseTarget == 0 {
				result = multierror.Append(result, &ValidationError{Kind: KindMissingBranch, Node: id, Detail: "false"})
			} else if _, ok := g.Nodes[n.FalseTarget]; !ok {
				result = multierror.Append(result, &ValidationError{Kind: KindInvalidBranchTarget, Node: id, Detail: "false"})
			}

		case NodeSwitch:
			if n.Discriminator == nil {
				result = multierror.Append(result, &ValidationError{Kind: KindMissingDiscriminator, Node: id})
			}
			if len(n.Cases) == 0 {
				result = multierror.Append(result, &ValidationError{Kind: KindEmptySwitch, Node: id})
			}
			for _, key := range n.CaseOrder {
				if _, ok := g.Nodes[n.Cases[key]]; !ok {
					result = multierror.Append(result, &ValidationError{Kind: KindInvalidCaseTarget, Node: id, Detail: key})
				}
			}
			if n.HasDefault {
				if _, ok := g.Nodes[n.DefaultTarget]; !ok {
					result = multierror.Append(result, &ValidationError{Kind: KindInvalidDefaultTarget, Node: id})
				}
			}

		case NodeLoop:
			if n.BodyEntry == 0 {
				result = multierror.Append(result, &ValidationError{Kind: KindEmptyLoopBody, Node: id})
			} else if _, ok := g.Nodes[n.BodyEntry]; !ok {
				result = multierror.Append(result, &ValidationError{Kind: KindInvalidLoopBody, Node: id})
			}
			if n.MaxIterations <= 0 && n.Terminate == nil {
				result = multierror.Append(result, &ValidationError{Kind: KindNoTerminationCondition, Node: id})
			}

		case NodeParallel:
			if len(n.Branches) == 0 {
				result = multierror.Append(result, &ValidationError{Kind: KindEmptyParallel, Node: id})
			}
			for _, branch := range n.Branches {
				if _, ok := g.Nodes[branch]; !ok {
					result = multierror.Append(result, &ValidationError{Kind: KindInvalidBranchTarget, Node: id})
				}
			}
			if n.JoinTarget == 0 {
				result = multierror.Append(result, &ValidationError{Kind: KindMissingJoin, Node: id})
			} else if _, ok := g.Nodes[n.JoinTarget]; !ok {
				result = multierror.Append(result, &ValidationError{Kind: KindInvalidJoinTarget, Node: id})
			}

		case NodeJoin:
			if len(n.Sources) == 0 {
				result = multierror.Append(result, &ValidationError{Kind: KindEmptyJoinSources, Node: id})
			}
			for _, src := range n.Sources {
				if _, ok := g.Nodes[src]; !ok {
					result = multierror.Append(result, &ValidationError{Kind: KindInvalidJoinSource, Node: id})
				}
			}
		}
	}

	return result.ErrorOrNil()
}
