package hooks

import (
	"fmt"
	"sync"

	"github.com/TeamRadiantAI/polaris-sub000/resource"
	"github.com/TeamRadiantAI/polaris-sub000/schedule"
	"github.com/TeamRadiantAI/polaris-sub000/sysctx"
)

// Hook is the handler shape every registered hook reduces to: given the
// context the triggering node ran in and the event itself, do something
// (log it, export a metric, mutate the context for the next node to see).
type Hook struct {
	handler           func(sc *sysctx.Context, event Event)
	providedResources []resource.Key
}

func (h Hook) invoke(sc *sysctx.Context, event Event) {
	if h.handler != nil {
		h.handler(sc, event)
	}
}

// ErrDuplicateName is returned by RegisterBoxed when a hook with the same
// name is already registered for the same schedule.
type ErrDuplicateName struct {
	Schedule string
	Name     string
}

func (e *ErrDuplicateName) Error() string {
	return fmt.Sprintf("hooks: hook %q already registered for schedule %q", e.Name, e.Schedule)
}

type entry struct {
	name string
	hook Hook
}

// API is the registry systems and plugins use to observe or augment graph
// execution. Plugins register hooks at Build time; the executor invokes
// them at each lifecycle point.
type API struct {
	mu    sync.RWMutex
	byKey map[schedule.ID][]entry
}

// NewAPI constructs an empty hook registry.
func NewAPI() *API {
	return &API{byKey: make(map[schedule.ID][]entry)}
}

// RegisterObserver registers a side-effect-only hook (logging, metrics,
// tracing) under one or more schedules. A name used across more than one
// schedule is stored per-schedule as "name@scheduleName" so it never
// collides with a same-named hook on a different schedule.
func (a *API) RegisterObserver(name string, fn func(event Event), schedules ...schedule.ID) error {
	hook := Hook{handler: func(sc *sysctx.Context, event Event) { fn(event) }}
	return a.registerMany(name, hook, schedules)
}

// RegisterProvider registers a hook that may produce a resource of type T
// for the triggering node's context to see. Multiple providers of the same
// type on the same schedule are allowed; whichever runs last in
// registration order determines the surviving value.
func RegisterProvider[T any](a *API, name string, fn func(event Event) (T, bool), schedules ...schedule.ID) error {
	key := resource.KeyOf[T]()
	hook := Hook{
		providedResources: []resource.Key{key},
		handler: func(sc *sysctx.Context, event Event) {
			if v, ok := fn(event); ok {
				sc.InsertBoxedResource(key, v)
			}
		},
	}
	return a.registerMany(name, hook, schedules)
}

func (a *API) registerMany(name string, hook Hook, schedules []schedule.ID) error {
	if len(schedules) == 0 {
		return fmt.Errorf("hooks: at least one schedule is required")
	}
	multi := len(schedules) > 1
	for _, sched := range schedules {
		hookName := name
		if multi {
			hookName = fmt.Sprintf("%s@%s", name, schedule.Name(sched))
		}
		if err := a.RegisterBoxed(sched, hookName, hook); err != nil {
			return err
		}
	}
	return nil
}

// RegisterBoxed registers an already-constructed Hook directly, rejecting a
// duplicate name on the same schedule.
func (a *API) RegisterBoxed(sched schedule.ID, name string, hook Hook) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, e := range a.byKey[sched] {
		if e.name == name {
			return &ErrDuplicateName{Schedule: schedule.Name(sched), Name: name}
		}
	}
	a.byKey[sched] = append(a.byKey[sched], entry{name: name, hook: hook})
	return nil
}

// Invoke calls every hook registered for event's schedule, in registration
// order, against sc.
func (a *API) Invoke(sc *sysctx.Context, event Event) {
	a.mu.RLock()
	entries := append([]entry(nil), a.byKey[event.ScheduleID()]...)
	a.mu.RUnlock()

	for _, e := range entries {
		e.hook.invoke(sc, event)
	}
}

// HookCount reports how many hooks are registered for sched.
func (a *API) HookCount(sched schedule.ID) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.byKey[sched])
}

// ContainsHook reports whether a hook named name is registered for sched.
func (a *API) ContainsHook(sched schedule.ID, name string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, e := range a.byKey[sched] {
		if e.name == name {
			return true
		}
	}
	return false
}

// ProvidedResourcesFor returns the flattened set of resource keys any hook
// on sched may provide — used by the executor's eager resource validation
// to treat a hook-provided resource as present even before the hook runs.
func (a *API) ProvidedResourcesFor(sched schedule.ID) []resource.Key {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var keys []resource.Key
	for _, e := range a.byKey[sched] {
		keys = append(keys, e.hook.providedResources...)
	}
	return keys
}
