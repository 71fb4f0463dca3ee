package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownRegistryKey is the sentinel error for guard/effect lookups that
	// hit an unregistered key. This is a configuration defect: transition tables
	// must only reference keys registered at startup, so this error is fatal and
	// never retried.
	ErrUnknownRegistryKey = errors.New("unknown registry key")

	// ErrDuplicateRegistryKey is returned when registering a guard or effect
	// under a key that is already taken. Deliberate overrides go through the
	// Replace methods instead.
	ErrDuplicateRegistryKey = errors.New("registry key already registered")

	// ErrUnknownTransition is the sentinel error for transition lookups by name
	// that match no definition in the table.
	ErrUnknownTransition = errors.New("unknown transition")

	// ErrEffectFailed is the sentinel error wrapping any effect execution
	// failure. An effect failure aborts the whole transition attempt: no status
	// change and no log row are persisted.
	ErrEffectFailed = errors.New("effect failed")

	// ErrLockContention is returned when the per-order exclusive lock cannot be
	// acquired because another transition on the same order is in flight.
	// The condition is transient; callers may retry the whole transition call.
	// The engine itself never retries.
	ErrLockContention = errors.New("order is locked by a concurrent transition")
)

// UnknownRegistryKeyError reports a guard or effect lookup for a key that was
// never registered.
type UnknownRegistryKeyError struct {
	Kind string // "guard" or "effect"
	Key  string
}

// Error formats the error message with the registry kind and key.
func (e *UnknownRegistryKeyError) Error() string {
	return fmt.Sprintf("%s: no %s registered under %q", ErrUnknownRegistryKey, e.Kind, e.Key)
}

// Unwrap returns the sentinel error, enabling errors.Is classification.
func (e *UnknownRegistryKeyError) Unwrap() error {
	return ErrUnknownRegistryKey
}

// EffectFailedError reports which effect aborted a transition and why.
// It carries the registry key of the failing effect and the underlying cause
// so callers can diagnose the failure.
type EffectFailedError struct {
	Key   string
	Cause error
}

// Error formats the error message with the effect key and underlying cause.
func (e *EffectFailedError) Error() string {
	return fmt.Sprintf("%s: %s (cause: %s)", ErrEffectFailed, e.Key, e.Cause)
}

// Unwrap returns both the sentinel error and the underlying cause, so
// errors.Is matches either.
func (e *EffectFailedError) Unwrap() []error {
	return []error{ErrEffectFailed, e.Cause}
}
