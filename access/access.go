// Package access implements the read/write access descriptors that systems
// declare for the resources and outputs they touch, and the conflict rule
// used to detect incompatible access when composing systems.
package access

import "github.com/TeamRadiantAI/polaris-sub000/resource"

// Kind distinguishes the two namespaces access can be declared against.
// A resource and an output of the same concrete type never conflict: they
// live in separate stores.
type Kind uint8

const (
	KindResource Kind = iota
	KindOutput
)

// Mode is the intent behind an access record.
type Mode uint8

const (
	ModeRead Mode = iota
	ModeWrite
)

// Record is a single declared access: "this system reads/writes resource/
// output of type T".
type Record struct {
	Key  resource.Key
	Kind Kind
	Mode Mode
}

// Access is the merged set of access records a system (or a composed tuple
// of parameters) declares.
type Access struct {
	records []Record
}

// New returns an empty access set.
func New() Access {
	return Access{}
}

// WithRead declares a read of a resource or output of type T.
func WithRead[T any](a Access, kind Kind) Access {
	a.records = append(a.records, Record{Key: resource.KeyOf[T](), Kind: kind, Mode: ModeRead})
	return a
}

// WithWrite declares a write of a resource of type T. Output writes are
// declared with WithOutputWrite instead.
func WithWrite[T any](a Access) Access {
	a.records = append(a.records, Record{Key: resource.KeyOf[T](), Kind: KindResource, Mode: ModeWrite})
	return a
}

// WithOutputWrite declares that a system produces an output of type T.
// Eager resource validation (MissingOutput) already knows each system's
// returned type through its OutputKey; Go has no compile-time trace of an
// InsertOutput[T] call inside Run, so any further output a system stores
// itself is known statically only if it is declared here.
func WithOutputWrite[T any](a Access) Access {
	a.records = append(a.records, Record{Key: resource.KeyOf[T](), Kind: KindOutput, Mode: ModeWrite})
	return a
}

// Records exposes the declared records in declaration order.
func (a Access) Records() []Record {
	return a.records
}

// Merge concatenates two access sets in order, mirroring the tuple
// composition behavior of stacking several system parameters: access is a
// simple order-preserving union, with no deduplication performed at this
// layer (duplicate declarations are a system-authoring smell, not an access
// error — Conflict below is what actually matters operationally).
func Merge(sets ...Access) Access {
	merged := New()
	for _, s := range sets {
		merged.records = append(merged.records, s.records...)
	}
	return merged
}

// Conflict reports whether two access sets cannot be safely composed:
// Read/Read is fine, but Read/Write and Write/Write on the same (Kind, Key)
// pair conflict. Resource and output access for the same type never
// conflict because they are different namespaces.
func Conflict(a, b Access) bool {
	for _, ra := range a.records {
		for _, rb := range b.records {
			if ra.Kind != rb.Kind || ra.Key != rb.Key {
				continue
			}
			if ra.Mode == ModeWrite || rb.Mode == ModeWrite {
				return true
			}
		}
	}
	return false
}

// FindConflicts is Conflict's diagnostic counterpart: instead of a bare
// bool, it names every type that conflicts between a and b, for error
// messages that tell a caller exactly what to fix instead of just that
// something is wrong. Names are deduplicated and returned in the order
// they are first encountered.
func FindConflicts(a, b Access) []string {
	var names []string
	seen := make(map[string]bool)
	for _, ra := range a.records {
		for _, rb := range b.records {
			if ra.Kind != rb.Kind || ra.Key != rb.Key {
				continue
			}
			if ra.Mode != ModeWrite && rb.Mode != ModeWrite {
				continue
			}
			name := ra.Key.String()
			if seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
