// Package system defines the System contract executed by graph nodes. A
// system is authored against Typed[T] — it declares its access footprint
// and produces a concrete output value of type T — and is erased into the
// non-generic System interface via Erase so the executor, the graph, and
// everything else that stores systems in a slice or a map never needs to
// know T. Boxing the produced value and writing it into the execution
// context is the executor's job, not the system's: a system returns its
// output, it never reaches into sysctx to store it.
package system

import (
	"context"

	"github.com/TeamRadiantAI/polaris-sub000/access"
	"github.com/TeamRadiantAI/polaris-sub000/resource"
	"github.com/TeamRadiantAI/polaris-sub000/sysctx"
)

// Typed is the contract a concrete system implements: Name and Access
// describe it statically for conflict detection and eager resource
// validation, Run executes it and returns the value it produced.
type Typed[T any] interface {
	Name() string
	Access() access.Access
	Run(ctx context.Context, sc *sysctx.Context) (T, error)
}

// Descriptor is a system's erased identity and access footprint.
type Descriptor struct {
	Name   string
	Access access.Access
}

// System is the type-erased form of Typed[T] placed on a graph's System
// node. It is never implemented directly; construct one with Erase.
type System interface {
	Descriptor() Descriptor
	// OutputKey identifies the concrete type RunErased produces, the
	// erased analogue of the original's output_type_id(), so the executor
	// and eager validation can reason about a system's output type without
	// a static T in scope.
	OutputKey() resource.Key
	// RunErased runs the wrapped system and returns its output boxed as
	// an any. Storing that value into sc is the caller's responsibility.
	RunErased(ctx context.Context, sc *sysctx.Context) (any, error)
}

// erased adapts a Typed[T] into the non-generic System interface, the Go
// analogue of the original's blanket ErasedSystem impl over every
// System<Output = T>.
type erased[T any] struct {
	inner Typed[T]
}

// Erase boxes a Typed[T] system as a System, ready to place on a graph
// node.
func Erase[T any](s Typed[T]) System {
	return erased[T]{inner: s}
}

func (e erased[T]) Descriptor() Descriptor {
	return Descriptor{Name: e.inner.Name(), Access: e.inner.Access()}
}

func (e erased[T]) OutputKey() resource.Key {
	return resource.KeyOf[T]()
}

func (e erased[T]) RunErased(ctx context.Context, sc *sysctx.Context) (any, error) {
	return e.inner.Run(ctx, sc)
}

// Void is the output type for systems that produce no meaningful value —
// the Go analogue of the original's unit-output systems. The executor
// still boxes and stores a Void{} like any other output, so a Void system
// behaves identically to one whose only purpose is its side effects.
type Void struct{}

// Func adapts a plain function into a Typed[T] system without requiring a
// dedicated named type — useful for lightweight systems whose identity is
// just a name and a function body (e.g. leaf systems in an example graph).
type Func[T any] struct {
	FuncName string
	Acc      access.Access
	Fn       func(ctx context.Context, sc *sysctx.Context) (T, error)
}

func (f Func[T]) Name() string { return f.FuncName }

func (f Func[T]) Access() access.Access { return f.Acc }

func (f Func[T]) Run(ctx context.Context, sc *sysctx.Context) (T, error) {
	return f.Fn(ctx, sc)
}

var _ Typed[int] = Func[int]{}
var _ System = erased[int]{}
