package workflow

import (
	"log/slog"
	"sync"
)

// Registry maps string keys to guard and effect implementations.
//
// The registry decouples the transition table from concrete guard/effect code:
// the table references keys, and the composition root decides at startup which
// implementation each key resolves to. This enables stub-first rollout with
// later swap-in of real integrations (payment capture, inventory, email,
// webhooks) without changing transition definitions.
//
// Registration is expected at startup/configuration time. Lookups are
// read-heavy and may run concurrently with a rare hot swap; a lookup observes
// either the old or the new registration, never a partial one.
type Registry struct {
	mu      sync.RWMutex
	guards  map[string]Guard
	effects map[string]Effect
	logger  *slog.Logger
}

// NewRegistry creates an empty registry. The logger is used to surface
// deliberate overrides of existing registrations.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		guards:  make(map[string]Guard),
		effects: make(map[string]Effect),
		logger:  logger.With("component", "workflow_registry"),
	}
}

// RegisterGuard inserts a guard under the given key.
// Returns ErrDuplicateRegistryKey if the key is already taken; deliberate
// overrides (test doubles, real-implementation swaps) must use ReplaceGuard,
// which makes the override explicit and logged.
func (r *Registry) RegisterGuard(key string, g Guard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.guards[key]; exists {
		return &duplicateKeyError{kind: "guard", key: key}
	}
	r.guards[key] = g
	return nil
}

// ReplaceGuard inserts a guard under the given key, overwriting any existing
// registration. An override of an existing key is logged at warn level so a
// silent behavior change never goes unnoticed.
func (r *Registry) ReplaceGuard(key string, g Guard) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.guards[key]; exists {
		r.logger.Warn("overriding registered guard", "key", key)
	}
	r.guards[key] = g
}

// LookupGuard resolves a guard by key.
// A missing key is a configuration defect: the returned error wraps
// ErrUnknownRegistryKey and is fatal to the operation that needed the guard.
func (r *Registry) LookupGuard(key string) (Guard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.guards[key]
	if !ok {
		return nil, &UnknownRegistryKeyError{Kind: "guard", Key: key}
	}
	return g, nil
}

// RegisterEffect inserts an effect under the given key.
// Returns ErrDuplicateRegistryKey if the key is already taken; deliberate
// overrides must use ReplaceEffect.
func (r *Registry) RegisterEffect(key string, e Effect) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.effects[key]; exists {
		return &duplicateKeyError{kind: "effect", key: key}
	}
	r.effects[key] = e
	return nil
}

// ReplaceEffect inserts an effect under the given key, overwriting any
// existing registration. Overrides are logged at warn level.
func (r *Registry) ReplaceEffect(key string, e Effect) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.effects[key]; exists {
		r.logger.Warn("overriding registered effect", "key", key)
	}
	r.effects[key] = e
}

// LookupEffect resolves an effect by key.
// A missing key is a configuration defect: the returned error wraps
// ErrUnknownRegistryKey and is fatal to the operation that needed the effect.
func (r *Registry) LookupEffect(key string) (Effect, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.effects[key]
	if !ok {
		return nil, &UnknownRegistryKeyError{Kind: "effect", Key: key}
	}
	return e, nil
}

// duplicateKeyError reports a Register call for a key that is already taken.
type duplicateKeyError struct {
	kind string
	key  string
}

func (e *duplicateKeyError) Error() string {
	return ErrDuplicateRegistryKey.Error() + ": " + e.kind + " " + e.key
}

func (e *duplicateKeyError) Unwrap() error {
	return ErrDuplicateRegistryKey
}
