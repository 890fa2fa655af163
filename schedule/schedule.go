// Package schedule defines the marker types that key plugin tick dispatch
// and hook registration. A schedule is a compile-time tag, not a runtime
// value — the same vocabulary a plugin uses to ask "run me on this tick
// group" is what a hook uses to ask "call me at this lifecycle point".
package schedule

import "reflect"

// ID is the process-unique token for a schedule marker type.
type ID = reflect.Type

// Of returns the schedule ID for marker type S.
func Of[S any]() ID {
	var zero S
	return reflect.TypeOf(&zero).Elem()
}

// Graph lifecycle markers, one per GraphEvent family. Host code may also
// define its own marker types for plugin-private tick groups (e.g. a
// "RunEveryMinute" marker consumed only by a cron-driven plugin).
type (
	OnGraphStart      struct{}
	OnGraphComplete   struct{}
	OnGraphFailure    struct{}
	OnSystemStart     struct{}
	OnSystemComplete  struct{}
	OnSystemError     struct{}
	OnDecisionStart   struct{}
	OnDecisionComplete struct{}
	OnSwitchStart     struct{}
	OnSwitchComplete  struct{}
	OnLoopStart       struct{}
	OnLoopIteration   struct{}
	OnLoopEnd         struct{}
	OnParallelStart   struct{}
	OnParallelComplete struct{}
)

var names = map[ID]string{
	Of[OnGraphStart]():       "OnGraphStart",
	Of[OnGraphComplete]():    "OnGraphComplete",
	Of[OnGraphFailure]():     "OnGraphFailure",
	Of[OnSystemStart]():      "OnSystemStart",
	Of[OnSystemComplete]():   "OnSystemComplete",
	Of[OnSystemError]():      "OnSystemError",
	Of[OnDecisionStart]():    "OnDecisionStart",
	Of[OnDecisionComplete](): "OnDecisionComplete",
	Of[OnSwitchStart]():      "OnSwitchStart",
	Of[OnSwitchComplete]():   "OnSwitchComplete",
	Of[OnLoopStart]():        "OnLoopStart",
	Of[OnLoopIteration]():    "OnLoopIteration",
	Of[OnLoopEnd]():          "OnLoopEnd",
	Of[OnParallelStart]():    "OnParallelStart",
	Of[OnParallelComplete](): "OnParallelComplete",
}

// Name returns the human-readable name for a schedule ID, falling back to
// the type's own String() for host-defined markers outside this set.
func Name(id ID) string {
	if name, ok := names[id]; ok {
		return name
	}
	if id == nil {
		return "<nil>"
	}
	return id.String()
}
