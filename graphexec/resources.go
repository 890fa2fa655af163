package graphexec

import (
	"github.com/TeamRadiantAI/polaris-sub000/access"
	"github.com/TeamRadiantAI/polaris-sub000/graph"
	"github.com/TeamRadiantAI/polaris-sub000/hooks"
	"github.com/TeamRadiantAI/polaris-sub000/resource"
	"github.com/TeamRadiantAI/polaris-sub000/schedule"
	"github.com/TeamRadiantAI/polaris-sub000/sysctx"
)

// ValidateResources performs the eager, pre-execution check that every
// resource a system declares reading or writing is actually reachable, and
// that every output a system declares reading is produced by some system
// somewhere in the graph. It runs only after graph.Validate has already
// confirmed the graph is structurally sound.
//
// A read access counts as satisfied if its type is reachable anywhere in
// ctx's hierarchy (local, parent chain, globals), or if some hook registered
// on OnGraphStart or OnSystemStart declares it as a provided resource (the
// hook has not necessarily run yet, but it is guaranteed to run before any
// system observes the gap). A write access counts as satisfied only if its
// type is already present in ctx's own local scope, or hook-provided — write
// access never walks the hierarchy, mirroring sysctx.GetResourceMut.
//
// ctx is the root context the graph will run against; a System node nested
// inside a loop body or parallel branch runs against a descendant scope
// created at execution time, so this pass necessarily checks against the
// root's view rather than each node's eventual runtime scope — the same
// coarse-but-useful approximation already applied to output reachability
// below.
//
// An output's availability is checked coarsely: this pass confirms some
// system in the graph declares producing that type, not that a producer is
// topologically reachable before the consumer. Proving reachability would
// require walking every conditional/loop/parallel path the executor itself
// walks at runtime; the cheaper static check here catches the common
// authoring mistake (no system anywhere produces the type) without
// duplicating the executor's control-flow logic.
func ValidateResources(g *graph.Graph, ctx *sysctx.Context, hookAPI *hooks.API) error {
	agg := &aggregate{}

	producedOutputs := make(map[resource.Key]bool)
	for _, n := range g.Nodes {
		if n.Kind != graph.NodeSystem || n.System == nil {
			continue
		}
		// Every System node structurally produces its OutputKey() type,
		// regardless of whether it also declares that production via
		// access.WithOutputWrite — the executor boxes the returned value
		// under OutputKey() unconditionally, so this is the accurate
		// source of truth. Declared WithOutputWrite records are unioned in
		// too, for access.Conflict/FindConflicts-based diagnostics that
		// only have an Access descriptor to work from.
		producedOutputs[n.System.OutputKey()] = true
		for _, rec := range n.System.Descriptor().Access.Records() {
			if rec.Kind == access.KindOutput && rec.Mode == access.ModeWrite {
				producedOutputs[rec.Key] = true
			}
		}
	}

	providedResources := make(map[resource.Key]bool)
	if hookAPI != nil {
		for _, key := range hookAPI.ProvidedResourcesFor(schedule.Of[schedule.OnGraphStart]()) {
			providedResources[key] = true
		}
		for _, key := range hookAPI.ProvidedResourcesFor(schedule.Of[schedule.OnSystemStart]()) {
			providedResources[key] = true
		}
	}

	for id, n := range g.Nodes {
		if n.Kind != graph.NodeSystem || n.System == nil {
			continue
		}
		desc := n.System.Descriptor()
		for _, rec := range desc.Access.Records() {
			switch {
			case rec.Kind == access.KindOutput && rec.Mode == access.ModeRead:
				if producedOutputs[rec.Key] {
					continue
				}
				agg.add(&ResourceValidationError{Kind: KindMissingOutput, SystemName: desc.Name, Node: id, TypeName: rec.Key.String()})
			case rec.Kind == access.KindResource && rec.Mode == access.ModeRead:
				if providedResources[rec.Key] {
					continue
				}
				if ctx != nil && ctx.ContainsResourceKey(rec.Key) {
					continue
				}
				agg.add(&ResourceValidationError{Kind: KindMissingResource, SystemName: desc.Name, Node: id, TypeName: rec.Key.String()})
			case rec.Kind == access.KindResource && rec.Mode == access.ModeWrite:
				if providedResources[rec.Key] {
					continue
				}
				if ctx != nil && ctx.ContainsLocalResourceKey(rec.Key) {
					continue
				}
				agg.add(&ResourceValidationError{Kind: KindMissingResource, SystemName: desc.Name, Node: id, TypeName: rec.Key.String()})
			}
		}
	}

	return agg.result()
}
