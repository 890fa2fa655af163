package plugin

import (
	"fmt"
	"sort"
	"time"

	"github.com/TeamRadiantAI/polaris-sub000/obslog"
	"github.com/TeamRadiantAI/polaris-sub000/obsmetrics"
	"github.com/TeamRadiantAI/polaris-sub000/resource"
	"github.com/TeamRadiantAI/polaris-sub000/schedule"
	"github.com/TeamRadiantAI/polaris-sub000/sysctx"
)

// runtimeState tracks where a Runtime is in its lifecycle so a second
// Finish call fails with ErrAlreadyFinished instead of re-running Build.
// AddPlugin does not consult it.
type runtimeState uint8

const (
	stateRegistering runtimeState = iota
	stateReady
	stateCleanedUp
)

// Runtime is the shared host a set of plugins build capabilities into and
// later run against. It owns the capability registry (a type-keyed store
// plugins write to during Build and read from during Ready/Update — systems
// never reach it directly), the distinct globals store systems read through
// a root sysctx.Context, and the registered local-resource factories that
// pre-populate each fresh root context's local scope.
type Runtime struct {
	state          runtimeState
	capabilities   *resource.Store
	globals        *resource.Store
	localFactories []localFactory
	log            obslog.Logger
	metrics        *obsmetrics.Collector
	registered     []boxed
	seen           map[ID]bool
	order          []boxed
	bySchedule     map[schedule.ID][]boxed
}

// localFactory is a registered constructor for a resource every graph run
// should start with in its root context's local scope, keyed by the
// concrete type it produces.
type localFactory struct {
	key resource.Key
	fn  func() any
}

// Option configures a Runtime at construction time, the same functional-
// options idiom the teacher uses for World/Scheduler construction.
type Option func(*Runtime)

// WithLogger attaches a structured logger the runtime uses for lifecycle
// diagnostics (Build/Ready/Tick/Cleanup failures). The default
// is a no-op logger.
func WithLogger(log obslog.Logger) Option {
	return func(rt *Runtime) { rt.log = log }
}

// WithMetrics attaches a Prometheus-backed collector that records Tick
// dispatch duration per schedule. A nil collector (the default) is a no-op.
func WithMetrics(m *obsmetrics.Collector) Option {
	return func(rt *Runtime) { rt.metrics = m }
}

// NewRuntime constructs an empty runtime.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		capabilities: resource.NewStore(),
		globals:      resource.NewStore(),
		seen:         make(map[ID]bool),
		log:          obslog.NewNop(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Capabilities exposes the registry plugins use to publish and consume
// shared capabilities (clients, pools, caches — anything one plugin builds
// and another depends on). It is a plugin-to-plugin registry, distinct from
// Globals below: capabilities are read by other plugins during Build/Ready,
// globals are read by systems running inside a graph.
func (rt *Runtime) Capabilities() *resource.Store {
	return rt.capabilities
}

// Globals exposes the store systems reach through the globals tier of a
// sysctx.Context's read hierarchy (local, then parent chain, then globals).
// A plugin inserts into it with InsertGlobal; CreateContext wires it into
// every root context it hands back.
func (rt *Runtime) Globals() *resource.Store {
	return rt.globals
}

// InsertGlobal publishes value into the runtime's globals store, making it
// readable (but never writable — writes never walk to globals) by every
// system in every graph CreateContext builds a root for.
func InsertGlobal[T any](rt *Runtime, value T) {
	resource.Insert(rt.globals, value)
}

// RegisterLocal registers a factory that pre-populates T into the local
// scope of every fresh root context CreateContext builds, the Go analogue
// of the spec's local-resource-factory pre-population mechanism: unlike a
// global, the value is private to each run (and, since it's constructed via
// factory rather than shared, safe for a system to mutate via
// GetResourceMut without racing a sibling run).
func RegisterLocal[T any](rt *Runtime, factory func() T) {
	rt.localFactories = append(rt.localFactories, localFactory{
		key: resource.KeyOf[T](),
		fn:  func() any { return factory() },
	})
}

// CreateContext builds a fresh root sysctx.Context wired to this runtime's
// globals store and pre-populated with every registered local factory. This
// is the one correct way to obtain a root context for a graph run; it
// replaces the earlier workaround of handing a graph the capability
// registry itself as if it were the globals store.
func (rt *Runtime) CreateContext() *sysctx.Context {
	ctx := sysctx.WithGlobals(rt.globals)
	for _, lf := range rt.localFactories {
		ctx.InsertBoxedResource(lf.key, lf.fn())
	}
	return ctx
}

// AddPlugin registers a single plugin. Order of registration is preserved as
// the fallback order when Finish's dependency sort leaves ties.
func (rt *Runtime) AddPlugin(p Plugin) *Runtime {
	rt.registered = append(rt.registered, boxed{id: Of(p), p: p})
	return rt
}

// AddPlugins registers a plugin or an entire plugin group.
func (rt *Runtime) AddPlugins(items ...any) *Runtime {
	for _, item := range items {
		switch v := item.(type) {
		case Plugin:
			rt.AddPlugin(v)
		case Group:
			for _, p := range v.Build().plain() {
				rt.AddPlugin(p)
			}
		case *GroupBuilder:
			for _, p := range v.plain() {
				rt.AddPlugin(p)
			}
		}
	}
	return rt
}

// Finish runs the full lifecycle sequence:
//  1. reject duplicate unique plugins
//  2. validate every declared dependency is registered
//  3. topologically sort plugins (Kahn's algorithm) so a plugin's
//     dependencies build before it
//  4. run Build on each plugin in that order
//  5. run Ready on each plugin (if it implements Readier) in the same order
//  6. index plugins by the schedules they asked to tick on
//  7. mark the runtime ready for Tick/Update dispatch
func (rt *Runtime) Finish() error {
	if rt.state != stateRegistering {
		return &ErrAlreadyFinished{}
	}
	if err := rt.rejectDuplicateUnique(); err != nil {
		return err
	}
	if err := rt.validateDependencies(); err != nil {
		return err
	}
	order, err := rt.topoSort()
	if err != nil {
		return err
	}
	rt.order = nil

	for _, entry := range order {
		if err := rt.buildOne(entry); err != nil {
			return err
		}
	}
	for _, entry := range rt.order {
		if readier, ok := entry.p.(Readier); ok {
			if err := readier.Ready(rt); err != nil {
				rt.log.Error("plugin ready failed", "plugin", entry.p.Name(), "error", err)
				return fmt.Errorf("plugin: %q Ready failed: %w", entry.p.Name(), err)
			}
		}
	}

	rt.bySchedule = make(map[schedule.ID][]boxed)
	for _, entry := range rt.order {
		for _, sc := range entry.p.TickSchedules() {
			rt.bySchedule[sc] = append(rt.bySchedule[sc], entry)
		}
	}

	rt.state = stateReady
	rt.log.Info("runtime ready", "plugin_count", len(rt.order))
	return nil
}

// Tick runs Update on every plugin registered for sched, in build order.
func (rt *Runtime) Tick(sched schedule.ID) error {
	start := time.Now()
	for _, entry := range rt.bySchedule[sched] {
		updater, ok := entry.p.(Updater)
		if !ok {
			continue
		}
		if err := updater.Update(rt, sched); err != nil {
			rt.metrics.ObserveTick(schedule.Name(sched), time.Since(start))
			rt.log.Error("plugin update failed", "plugin", entry.p.Name(), "schedule", schedule.Name(sched), "error", err)
			return fmt.Errorf("plugin: %q Update(%s) failed: %w", entry.p.Name(), schedule.Name(sched), err)
		}
	}
	rt.metrics.ObserveTick(schedule.Name(sched), time.Since(start))
	return nil
}

// Cleanup tears down every plugin implementing Cleaner, in reverse
// dependency order so a plugin's dependencies are still alive while it
// cleans up.
func (rt *Runtime) Cleanup() error {
	for i := len(rt.order) - 1; i >= 0; i-- {
		entry := rt.order[i]
		if cleaner, ok := entry.p.(Cleaner); ok {
			if err := cleaner.Cleanup(rt); err != nil {
				rt.log.Error("plugin cleanup failed", "plugin", entry.p.Name(), "error", err)
				return fmt.Errorf("plugin: %q Cleanup failed: %w", entry.p.Name(), err)
			}
		}
	}
	rt.state = stateCleanedUp
	rt.log.Info("runtime cleaned up")
	return nil
}

// buildOne runs Build on entry and appends it to rt.order, then recursively
// builds any plugin entry's Build call itself registered via AddPlugin(s) —
// per spec, a plugin added during Building has its Build invoked immediately
// and is appended to the built list right after the parent whose dependencies
// it relies on are already satisfied.
func (rt *Runtime) buildOne(entry boxed) error {
	preLen := len(rt.registered)
	if err := entry.p.Build(rt); err != nil {
		rt.log.Error("plugin build failed", "plugin", entry.p.Name(), "error", err)
		return fmt.Errorf("plugin: %q Build failed: %w", entry.p.Name(), err)
	}
	rt.log.Info("plugin built", "plugin", entry.p.Name())
	rt.order = append(rt.order, entry)

	for i := preLen; i < len(rt.registered); i++ {
		if err := rt.buildOne(rt.registered[i]); err != nil {
			return err
		}
	}
	return nil
}

func (rt *Runtime) rejectDuplicateUnique() error {
	countByID := make(map[ID]int)
	for _, entry := range rt.registered {
		countByID[entry.id]++
	}
	for _, entry := range rt.registered {
		if entry.p.IsUnique() && countByID[entry.id] > 1 {
			return &ErrDuplicateUniquePlugin{Name: entry.p.Name()}
		}
	}
	return nil
}

func (rt *Runtime) validateDependencies() error {
	present := make(map[ID]bool, len(rt.registered))
	for _, entry := range rt.registered {
		present[entry.id] = true
	}
	for _, entry := range rt.registered {
		for _, dep := range entry.p.Dependencies() {
			if !present[dep] {
				return &ErrMissingDependency{Plugin: entry.p.Name(), Dependency: dep.TypeName()}
			}
		}
	}
	return nil
}

// topoSort orders rt.registered so dependencies precede dependents, using
// Kahn's algorithm. Ties (plugins with no relative ordering constraint)
// resolve in registration order, keeping the sort stable and predictable.
func (rt *Runtime) topoSort() ([]boxed, error) {
	indegree := make(map[ID]int, len(rt.registered))
	dependents := make(map[ID][]ID)
	byID := make(map[ID]boxed, len(rt.registered))
	regIndex := make(map[ID]int, len(rt.registered))

	for i, entry := range rt.registered {
		byID[entry.id] = entry
		regIndex[entry.id] = i
		if _, ok := indegree[entry.id]; !ok {
			indegree[entry.id] = 0
		}
	}
	for _, entry := range rt.registered {
		for _, dep := range entry.p.Dependencies() {
			indegree[entry.id]++
			dependents[dep] = append(dependents[dep], entry.id)
		}
	}

	var ready []ID
	for _, entry := range rt.registered {
		if indegree[entry.id] == 0 {
			ready = append(ready, entry.id)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return regIndex[ready[i]] < regIndex[ready[j]] })

	var order []boxed
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		order = append(order, byID[next])

		var freed []ID
		for _, dependent := range dependents[next] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				freed = append(freed, dependent)
			}
		}
		sort.Slice(freed, func(i, j int) bool { return regIndex[freed[i]] < regIndex[freed[j]] })
		ready = append(ready, freed...)
		sort.Slice(ready, func(i, j int) bool { return regIndex[ready[i]] < regIndex[ready[j]] })
	}

	if len(order) != len(rt.registered) {
		var remaining []string
		for _, entry := range rt.registered {
			if indegree[entry.id] > 0 {
				remaining = append(remaining, entry.p.Name())
			}
		}
		sort.Strings(remaining)
		return nil, &ErrDependencyCycle{Remaining: remaining}
	}
	return order, nil
}
