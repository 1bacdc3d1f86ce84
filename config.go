package fieldset

import "sync"

// FailureHook converts the aggregated error tree of a failed load/update
// into the error surfaced to the caller. The default hook returns the tree
// itself; replacing it lets callers substitute their own error aggregate.
type FailureHook func(*ErrorTree) error

var (
	failureMu   sync.RWMutex
	failureHook FailureHook = func(t *ErrorTree) error { return t }
)

// SetFailureHook replaces the global failure hook; nil restores the default.
func SetFailureHook(h FailureHook) {
	failureMu.Lock()
	if h == nil {
		failureHook = func(t *ErrorTree) error { return t }
	} else {
		failureHook = h
	}
	failureMu.Unlock()
}

func failValidation(t *ErrorTree) error {
	failureMu.RLock()
	h := failureHook
	failureMu.RUnlock()
	return h(t)
}
