package zruntime

import "sync/atomic"

// inferenceDepth tracks the nesting level of active inference scopes.
var inferenceDepth atomic.Int64

// InferenceMode runs fn inside an inference-only execution scope. While the
// scope is active the runtime does not accumulate differentiable graph state.
// The scope is exited on every path, including panics, so an invocation
// failure never leaks an open scope.
//
// Scopes nest; the runtime is in inference mode while the depth is nonzero.
func InferenceMode(fn func() error) error {
	inferenceDepth.Add(1)
	defer inferenceDepth.Add(-1)
	return fn()
}

// InferenceDepth returns the current inference scope nesting level.
// Zero means no scope is active.
func InferenceDepth() int64 {
	return inferenceDepth.Load()
}
