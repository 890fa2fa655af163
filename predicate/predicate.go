// Package predicate implements typed readers over a step's outputs that
// yield a boolean (for Decision nodes) or a case key (for Switch nodes),
// plus the type-erased forms graph nodes actually store.
package predicate

import (
	"fmt"

	"github.com/TeamRadiantAI/polaris-sub000/resource"
	"github.com/TeamRadiantAI/polaris-sub000/sysctx"
)

// Error wraps the two ways evaluating a predicate/discriminator can fail.
type Error struct {
	OutputTypeName string
	ContextErr     error
}

func (e *Error) Error() string {
	if e.ContextErr != nil {
		return fmt.Sprintf("predicate: context error: %v", e.ContextErr)
	}
	return fmt.Sprintf("predicate: output not found: %s", e.OutputTypeName)
}

func (e *Error) Unwrap() error { return e.ContextErr }

// ErasedPredicate is the type-erased form a Decision node stores.
type ErasedPredicate interface {
	Evaluate(c *sysctx.Context) (bool, error)
}

// ErasedDiscriminator is the type-erased form a Switch node stores.
type ErasedDiscriminator interface {
	Evaluate(c *sysctx.Context) (string, error)
}

// Predicate reads an output of type T and reduces it to a bool.
type Predicate[T any] struct {
	Func func(T) bool
}

// NewPredicate constructs a Predicate from a reducer function.
func NewPredicate[T any](fn func(T) bool) Predicate[T] {
	return Predicate[T]{Func: fn}
}

func (p Predicate[T]) Evaluate(c *sysctx.Context) (bool, error) {
	v, err := sysctx.GetOutput[T](c)
	if err != nil {
		var notFound *resource.ErrOutputNotFound
		if ok := asOutputNotFound(err, &notFound); ok {
			return false, &Error{OutputTypeName: notFound.TypeName}
		}
		return false, &Error{ContextErr: err}
	}
	return p.Func(v), nil
}

// Discriminator reads an output of type T and reduces it to a case key.
type Discriminator[T any] struct {
	Func func(T) string
}

// NewDiscriminator constructs a Discriminator from a reducer function.
func NewDiscriminator[T any](fn func(T) string) Discriminator[T] {
	return Discriminator[T]{Func: fn}
}

func (d Discriminator[T]) Evaluate(c *sysctx.Context) (string, error) {
	v, err := sysctx.GetOutput[T](c)
	if err != nil {
		var notFound *resource.ErrOutputNotFound
		if ok := asOutputNotFound(err, &notFound); ok {
			return "", &Error{OutputTypeName: notFound.TypeName}
		}
		return "", &Error{ContextErr: err}
	}
	return d.Func(v), nil
}

func asOutputNotFound(err error, target **resource.ErrOutputNotFound) bool {
	if nf, ok := err.(*resource.ErrOutputNotFound); ok {
		*target = nf
		return true
	}
	return false
}

var (
	_ ErasedPredicate     = Predicate[int]{}
	_ ErasedDiscriminator = Discriminator[int]{}
)
