// Package plugin implements the plugin lifecycle: registration, dependency
// ordering, and the Build -> Ready -> Update -> Cleanup phases that
// orchestrate a set of plugins sharing a Runtime.
package plugin

import (
	"fmt"
	"reflect"

	"github.com/TeamRadiantAI/polaris-sub000/schedule"
)

// ID is the process-unique identity of a plugin type.
type ID struct {
	typ  reflect.Type
	name string
}

// Of derives the ID for plugin type P from a live value (Go has no
// type-level "of::<P>()" without an instance to reflect on).
func Of(p Plugin) ID {
	t := reflect.TypeOf(p)
	return ID{typ: t, name: t.String()}
}

func (id ID) TypeName() string { return id.name }

func (id ID) String() string { return id.name }

// Plugin is a unit of composable setup: it registers capabilities during
// Build, may react once every other plugin has built during Ready, runs on
// whichever schedules it asks for during Update, and tears down in Cleanup.
type Plugin interface {
	Build(rt *Runtime) error
	Name() string
	Dependencies() []ID
	TickSchedules() []schedule.ID
	IsUnique() bool
}

// BasePlugin supplies the default no-op behaviors so concrete plugins only
// need to implement Build and Name.
type BasePlugin struct{}

func (BasePlugin) Dependencies() []ID           { return nil }
func (BasePlugin) TickSchedules() []schedule.ID { return nil }
func (BasePlugin) IsUnique() bool               { return true }

// Readier is implemented by plugins that need a callback once every plugin
// in the group has finished Build.
type Readier interface {
	Ready(rt *Runtime) error
}

// Updater is implemented by plugins that act on schedule ticks.
type Updater interface {
	Update(rt *Runtime, sched schedule.ID) error
}

// Cleaner is implemented by plugins with explicit teardown. Cleanup runs in
// reverse dependency order so a plugin's dependencies are still alive while
// it tears down.
type Cleaner interface {
	Cleanup(rt *Runtime) error
}

// Group bundles several plugins for single-call registration, mirroring a
// PluginGroupBuilder.
type Group interface {
	Build() *GroupBuilder
}

// boxed pairs a plugin with its derived ID so builder bookkeeping doesn't
// need to re-derive identity repeatedly.
type boxed struct {
	id ID
	p  Plugin
}

// GroupBuilder accumulates plugins with ordering and disable controls before
// handing the final ordered slice to a Runtime.
type GroupBuilder struct {
	plugins []boxed
}

// NewGroupBuilder constructs an empty builder.
func NewGroupBuilder() *GroupBuilder {
	return &GroupBuilder{}
}

// Add appends a plugin to the end of the group.
func (b *GroupBuilder) Add(p Plugin) *GroupBuilder {
	b.plugins = append(b.plugins, boxed{id: Of(p), p: p})
	return b
}

// AddBefore inserts p immediately before the first plugin whose ID equals
// target, or at the start of the group if target is not present.
func (b *GroupBuilder) AddBefore(target ID, p Plugin) *GroupBuilder {
	idx := b.indexOf(target)
	entry := boxed{id: Of(p), p: p}
	if idx < 0 {
		b.plugins = append([]boxed{entry}, b.plugins...)
		return b
	}
	b.insertAt(idx, entry)
	return b
}

// AddAfter inserts p immediately after the first plugin whose ID equals
// target, or at the end of the group if target is not present.
func (b *GroupBuilder) AddAfter(target ID, p Plugin) *GroupBuilder {
	idx := b.indexOf(target)
	entry := boxed{id: Of(p), p: p}
	if idx < 0 {
		b.plugins = append(b.plugins, entry)
		return b
	}
	b.insertAt(idx+1, entry)
	return b
}

// Disable removes every plugin in the group matching id.
func (b *GroupBuilder) Disable(id ID) *GroupBuilder {
	filtered := b.plugins[:0]
	for _, entry := range b.plugins {
		if entry.id != id {
			filtered = append(filtered, entry)
		}
	}
	b.plugins = filtered
	return b
}

// Len reports how many plugins remain in the group.
func (b *GroupBuilder) Len() int { return len(b.plugins) }

// IsEmpty reports whether the group has no plugins.
func (b *GroupBuilder) IsEmpty() bool { return len(b.plugins) == 0 }

func (b *GroupBuilder) indexOf(id ID) int {
	for i, entry := range b.plugins {
		if entry.id == id {
			return i
		}
	}
	return -1
}

func (b *GroupBuilder) insertAt(idx int, entry boxed) {
	b.plugins = append(b.plugins, boxed{})
	copy(b.plugins[idx+1:], b.plugins[idx:])
	b.plugins[idx] = entry
}

func (b *GroupBuilder) plain() []Plugin {
	out := make([]Plugin, 0, len(b.plugins))
	for _, entry := range b.plugins {
		out = append(out, entry.p)
	}
	return out
}

// ErrDuplicateUniquePlugin is returned by Finish when a plugin declaring
// IsUnique()==true is registered more than once.
type ErrDuplicateUniquePlugin struct {
	Name string
}

func (e *ErrDuplicateUniquePlugin) Error() string {
	return fmt.Sprintf("plugin: duplicate unique plugin %q", e.Name)
}

// ErrMissingDependency is returned by Finish when a plugin depends on an ID
// that was never registered.
type ErrMissingDependency struct {
	Plugin     string
	Dependency string
}

func (e *ErrMissingDependency) Error() string {
	return fmt.Sprintf("plugin: %q depends on unregistered plugin %q", e.Plugin, e.Dependency)
}

// ErrDependencyCycle is returned by Finish when the dependency graph is not
// a DAG.
type ErrDependencyCycle struct {
	Remaining []string
}

func (e *ErrDependencyCycle) Error() string {
	return fmt.Sprintf("plugin: dependency cycle among %v", e.Remaining)
}

// ErrAlreadyFinished is returned by Finish when the runtime has already
// completed a Build/Ready pass. Finish performs a one-shot, ordered
// Build-then-Ready sequence; calling it again would re-run plugins' Build
// against capabilities their own (or sibling) Build calls already installed,
// so a second call is rejected outright rather than silently re-building.
type ErrAlreadyFinished struct{}

func (e *ErrAlreadyFinished) Error() string {
	return "plugin: Finish called twice on the same runtime"
}
