package graphexec

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/TeamRadiantAI/polaris-sub000/graph"
)

// ExecutionErrorKind discriminates the ways a run can fail once the graph
// has already passed structural and resource validation.
type ExecutionErrorKind string

const (
	KindEmptyGraph            ExecutionErrorKind = "empty_graph"
	KindNodeNotFound           ExecutionErrorKind = "node_not_found"
	KindNoNextNode             ExecutionErrorKind = "no_next_node"
	KindMissingPredicate       ExecutionErrorKind = "missing_predicate"
	KindMissingBranch          ExecutionErrorKind = "missing_branch"
	KindMissingJoin            ExecutionErrorKind = "missing_join"
	KindMissingDiscriminator   ExecutionErrorKind = "missing_discriminator"
	KindNoMatchingCase         ExecutionErrorKind = "no_matching_case"
	KindMaxIterationsExceeded  ExecutionErrorKind = "max_iterations_exceeded"
	KindNoTerminationCondition ExecutionErrorKind = "no_termination_condition"
	KindTimeout                ExecutionErrorKind = "timeout"
	KindRecursionLimitExceeded ExecutionErrorKind = "recursion_limit_exceeded"
	KindSystemError            ExecutionErrorKind = "system_error"
	KindPredicateError         ExecutionErrorKind = "predicate_error"
	KindUnimplemented          ExecutionErrorKind = "unimplemented"
)

// ExecutionError is returned by Executor.Run when a run fails at or after
// the point execution actually began (as opposed to ValidationError or
// ResourceValidationError, which are raised before a single node runs).
type ExecutionError struct {
	Kind ExecutionErrorKind
	Node graph.NodeID
	Tag  string // Unimplemented's tag, or a short human label for other kinds
	Err  error  // wrapped cause for SystemError/PredicateError
}

func (e *ExecutionError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("graphexec: %s (node %d): %v", e.Kind, e.Node, e.Err)
	case e.Tag != "":
		return fmt.Sprintf("graphexec: %s (node %d): %s", e.Kind, e.Node, e.Tag)
	default:
		return fmt.Sprintf("graphexec: %s (node %d)", e.Kind, e.Node)
	}
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// ResourceValidationErrorKind discriminates the two eager resource-presence
// failure modes.
type ResourceValidationErrorKind string

const (
	KindMissingResource ResourceValidationErrorKind = "missing_resource"
	KindMissingOutput   ResourceValidationErrorKind = "missing_output"
)

// ResourceValidationError is one unmet resource/output access (read or
// write) declared by a system, found before execution begins.
type ResourceValidationError struct {
	Kind       ResourceValidationErrorKind
	SystemName string
	Node       graph.NodeID
	TypeName   string
}

func (e *ResourceValidationError) Error() string {
	return fmt.Sprintf("graphexec: %s: system %q (node %d) requires %s which is never provided",
		e.Kind, e.SystemName, e.Node, e.TypeName)
}

// aggregate is a small helper around go-multierror so validation call sites
// read as plain appends.
type aggregate struct {
	err *multierror.Error
}

func (a *aggregate) add(err error) {
	a.err = multierror.Append(a.err, err)
}

func (a *aggregate) result() error {
	return a.err.ErrorOrNil()
}
