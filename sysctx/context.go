// Package sysctx implements the hierarchical execution context systems run
// against: a chain of scopes where resource reads walk up to the parent and
// eventually to a shared globals store, resource writes stay local, and
// outputs are scoped to a single execution step.
package sysctx

import (
	"errors"

	"github.com/TeamRadiantAI/polaris-sub000/resource"
)

// Context is one scope in the hierarchy. The root context of a graph run has
// no parent; child contexts (e.g. a loop body, a parallel branch) are
// created via Child and inherit the same globals reference.
type Context struct {
	parent    *Context
	globals   *resource.Store
	resources *resource.Store
	outputs   *resource.Outputs
}

// New constructs a root context with no parent and no globals.
func New() *Context {
	return &Context{resources: resource.NewStore(), outputs: resource.NewOutputs()}
}

// WithGlobals constructs a root context sharing the given globals store.
func WithGlobals(globals *resource.Store) *Context {
	c := New()
	c.globals = globals
	return c
}

// Child creates a new scope beneath c: fresh local resources and outputs,
// the same parent chain (c itself) for read lookups, and the same globals
// reference as c.
func (c *Context) Child() *Context {
	return &Context{
		parent:    c,
		globals:   c.globals,
		resources: resource.NewStore(),
		outputs:   resource.NewOutputs(),
	}
}

// With inserts a resource into c's local scope and returns c, for
// constructor-style chaining.
func With[T any](c *Context, value T) *Context {
	resource.Insert(c.resources, value)
	return c
}

// InsertResource inserts (or overwrites) a resource in c's local scope.
func InsertResource[T any](c *Context, value T) {
	resource.Insert(c.resources, value)
}

// InsertBoxedResource inserts an already type-erased resource value, used by
// hooks that only have an any and a resource.Key.
func (c *Context) InsertBoxedResource(key resource.Key, value any) {
	c.resources.InsertBoxed(key, value)
}

// ContainsLocalResource reports whether T is present in c's own scope only.
func ContainsLocalResource[T any](c *Context) bool {
	return resource.Contains[T](c.resources)
}

// ContainsResource reports whether T is reachable by walking local, then
// parents, then globals.
func ContainsResource[T any](c *Context) bool {
	if resource.Contains[T](c.resources) {
		return true
	}
	if c.parent != nil && ContainsResource[T](c.parent) {
		return true
	}
	if c.globals != nil && resource.Contains[T](c.globals) {
		return true
	}
	return false
}

// ContainsResourceKey is ContainsResource for callers that only have a
// resource.Key (e.g. eager validation walking a system's type-erased access
// descriptor, with no static T to instantiate the generic form against).
func (c *Context) ContainsResourceKey(key resource.Key) bool {
	if c.resources.ContainsKey(key) {
		return true
	}
	if c.parent != nil && c.parent.ContainsResourceKey(key) {
		return true
	}
	if c.globals != nil && c.globals.ContainsKey(key) {
		return true
	}
	return false
}

// ContainsLocalResourceKey is ContainsLocalResource for callers that only
// have a resource.Key.
func (c *Context) ContainsLocalResourceKey(key resource.Key) bool {
	return c.resources.ContainsKey(key)
}

// GetResource looks up T: local scope first, then each parent in turn,
// finally globals. This is the lookup order Res[T] uses.
func GetResource[T any](c *Context) (T, error) {
	if v, err := resource.Get[T](c.resources); err == nil {
		return v, nil
	}
	if c.parent != nil {
		if v, err := GetResource[T](c.parent); err == nil {
			return v, nil
		}
	}
	if c.globals != nil {
		if v, err := resource.Get[T](c.globals); err == nil {
			return v, nil
		}
	}
	var zero T
	return zero, &resource.ErrNotFound{TypeName: resource.KeyOf[T]().String()}
}

// GetResourceMut looks up T in c's local scope only: mutation never reaches
// into a parent or the globals store, since those may be shared with
// siblings. A type absent from the local scope is NotFound, matching the
// write-resource parameter's declared failure mode, even though it may well
// be present higher up the hierarchy — write access never walks the chain.
func GetResourceMut[T any](c *Context) (T, error) {
	return resource.Get[T](c.resources)
}

// InsertOutput records a value produced in this step.
func InsertOutput[T any](c *Context, value T) {
	resource.InsertOutput(c.outputs, value)
}

// InsertBoxedOutput records an already type-erased value produced in this
// step, keyed explicitly. This is how the executor stores a system's
// RunErased result: the system itself returns a value, never calling
// InsertOutput directly, so write-once-per-execution and "declared output
// type matches stored type" are both the executor's responsibility, not
// something every system body has to get right on its own.
func (c *Context) InsertBoxedOutput(key resource.Key, value any) {
	c.outputs.InsertBoxed(key, value)
}

// GetOutput reads a value produced earlier in this step.
func GetOutput[T any](c *Context) (T, error) {
	return resource.GetOutput[T](c.outputs)
}

// TryOutput reads a value produced earlier in this step, returning ok=false
// instead of an error when absent — the Go analogue of Option<Out<T>>.
func TryOutput[T any](c *Context) (T, bool) {
	v, err := resource.GetOutput[T](c.outputs)
	if err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// ContainsOutput reports whether T has been produced in this step.
func ContainsOutput[T any](c *Context) bool {
	return resource.ContainsOutput[T](c.outputs)
}

// ClearOutputs discards this scope's produced values.
func (c *Context) ClearOutputs() {
	c.outputs.Clear()
}

// Outputs exposes the backing output store directly, for callers (the
// executor's branch join, primarily) that need Take/MergeFrom.
func (c *Context) Outputs() *resource.Outputs {
	return c.outputs
}

// TakeOutputs empties c's outputs and returns what they held.
func (c *Context) TakeOutputs() map[resource.Key]any {
	return c.outputs.Take()
}

// ErrNilContext reports a nil context; no function in this package returns it.
var ErrNilContext = errors.New("sysctx: nil context")
