package workflow

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// Guard is a read-only predicate gating the eligibility of a transition.
//
// A guard receives the transition context and returns whether the transition
// is allowed, plus a human-readable reason when it is not. Guards must be
// side-effect-free and cheap: the service runs every guard twice per committed
// transition, once before and once after taking the per-order lock.
type Guard func(ctx context.Context, tc TransitionContext) (allowed bool, reason string)

// Effect is a side-effecting action executed as part of a committed transition.
//
// Effects run sequentially in declared order inside the transition's atomic
// unit. An effect that fails must return the error rather than swallow it, so
// the enclosing transaction aborts. Effects must be safe to execute more than
// once: the engine deduplicates whole calls via idempotency keys, but true
// idempotence of the external side effect is each implementation's own
// responsibility.
type Effect func(ctx context.Context, tc TransitionContext) error

// Transition is a declarative, immutable definition of one workflow edge.
// The transition table compiles a fixed list of these; guards and effects are
// referenced by registry key so implementations can be swapped without
// touching the definitions.
type Transition struct {
	// Name is the unique key for the transition (e.g. "mark_paid", "ship").
	Name string

	// FromStates are the source states the transition may be taken from.
	FromStates []order.Status

	// ToState is the single target state.
	ToState order.Status

	// Guards are registry keys evaluated in order before the transition commits.
	Guards []string

	// Effects are registry keys executed in order when the transition commits.
	Effects []string

	// Description is free-form operator documentation.
	Description string
}

// AllowsFrom reports whether the transition may be taken from the given state.
func (t Transition) AllowsFrom(s order.Status) bool {
	for _, from := range t.FromStates {
		if from == s {
			return true
		}
	}
	return false
}

// TransitionContext is the execution context passed to guards and effects.
// It is computed per request and never persisted.
type TransitionContext struct {
	// Order is the order the transition targets. During the post-lock guard
	// re-check and during effects this is the freshly locked row.
	Order *order.Order

	// From is the order's status when the context was built.
	From order.Status

	// To is the requested target status.
	To order.Status

	// Actor is the user name or system label requesting the transition.
	Actor string

	// Note is an optional free-form note recorded in the audit log.
	Note string

	// Params is an arbitrary parameter bag interpreted by guards and effects.
	Params map[string]any

	// IdempotencyKey is the caller-supplied deduplication token, if any.
	IdempotencyKey string

	// DryRun marks a validation-only invocation.
	DryRun bool
}

// TransitionAttempt reports the eligibility of one candidate transition for an
// order's current state. Attempts are computed on demand and never persisted.
type TransitionAttempt struct {
	// Transition is the candidate definition. For a target state with no
	// matching definition this is a synthesized placeholder naming the request.
	Transition Transition

	// Allowed reports whether every guard passed (or, in advisory mode without
	// a context, whether the edge exists at all).
	Allowed bool

	// Reason carries the first failing guard's reason when Allowed is false.
	Reason string
}

// ResultCode discriminates transition outcomes so callers can branch on
// structured results instead of parsing error strings.
type ResultCode string

const (
	// CodeOK marks a successful transition, idempotent replay or passing dry-run.
	CodeOK ResultCode = "ok"

	// CodeNoSuchTransition marks a request for which no transition is defined
	// from the order's current status to the requested target.
	CodeNoSuchTransition ResultCode = "no_such_transition"

	// CodeGuardRejected marks a request blocked by a failing guard.
	CodeGuardRejected ResultCode = "guard_rejected"
)

// TransitionResult is the structured outcome of a transition call.
//
// Expected conditions (no such transition, guard rejection) are reported here
// with Success=false rather than as Go errors; effect and persistence failures
// surface as errors from the service instead.
type TransitionResult struct {
	// Success reports whether the transition committed (or, for dry runs,
	// whether guard validation passed).
	Success bool

	// Code discriminates the outcome.
	Code ResultCode

	// From is the order status the attempt started from.
	From order.Status

	// To is the target status; set whenever a matching transition was found.
	To order.Status

	// Transition is the name of the matched transition definition.
	Transition string

	// Effects lists the registry keys of effects executed, in order.
	// Empty for dry runs, failures and idempotent replays resolve it from the
	// stored log row.
	Effects []string

	// Idempotent reports that the call was satisfied from a previously stored
	// log row without re-running guards or effects.
	Idempotent bool

	// DryRun reports that the call validated guards only and changed nothing.
	DryRun bool

	// LogID identifies the audit log row written for a committed transition.
	// Zero for dry runs and failures.
	LogID kernel.UUID

	// Reason carries the failure detail when Success is false.
	Reason string
}

// TransitionRequest carries all inputs of a transition call as plain data, so
// any transport can invoke the engine without framework-specific types.
type TransitionRequest struct {
	// Order is the caller's snapshot of the order to transition.
	Order *order.Order

	// To is the requested target status.
	To order.Status

	// Actor is the user name or system label requesting the transition.
	Actor string

	// Note is an optional free-form note recorded in the audit log.
	Note string

	// Params is an arbitrary parameter bag passed through to guards and effects.
	Params map[string]any

	// IdempotencyKey deduplicates repeated submissions of the same logical
	// request. Empty disables the idempotency short-circuit.
	IdempotencyKey string

	// DryRun requests guard validation only: no lock, no effects, no log row.
	DryRun bool
}
