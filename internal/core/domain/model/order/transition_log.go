package order

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var (
	// ErrTransitionLogIsNotConstructed is returned when a TransitionLog instance was
	// not created through NewTransitionLog or RestoreTransitionLog.
	ErrTransitionLogIsNotConstructed = errors.New(
		"TransitionLog must be created via NewTransitionLog or RestoreTransitionLog constructor")
)

// TransitionLog is one append-only audit record of a committed workflow transition.
//
// Exactly one row is created per successfully executed (non-dry-run) transition.
// Rows are never updated or deleted after creation and are retained indefinitely
// for audit. At most one TransitionLog exists per (order, non-empty idempotency
// key) pair; the workflow service relies on this for idempotent replay.
//
// TransitionLog is immutable: all fields are set at construction and only
// exposed through getters.
type TransitionLog struct {
	id             kernel.UUID
	orderID        kernel.UUID
	fromState      Status
	toState        Status
	actor          string
	note           string
	transitionName string
	effects        []string
	idempotencyKey string
	createdAt      time.Time

	isConstructed bool
}

// NewTransitionLog creates an audit record for a transition committed now.
//
// Parameters:
//   - id: Unique identifier for the log row
//   - orderID: The order the transition was executed on
//   - from: Source state at execution time
//   - to: Target state the order moved to
//   - actor: User name or system label that requested the transition (may be empty)
//   - note: Optional free-form note supplied by the caller
//   - transitionName: Name of the transition definition that was executed
//   - effects: Registry keys of the effects that ran, in execution order
//   - idempotencyKey: Caller-supplied deduplication token (may be empty)
//
// The creation timestamp is taken from the wall clock in UTC.
func NewTransitionLog(
	id kernel.UUID,
	orderID kernel.UUID,
	from Status,
	to Status,
	actor string,
	note string,
	transitionName string,
	effects []string,
	idempotencyKey string,
) (*TransitionLog, error) {
	return RestoreTransitionLog(
		id, orderID, from, to, actor, note, transitionName, effects, idempotencyKey, time.Now().UTC())
}

// RestoreTransitionLog reconstructs a TransitionLog from persistence with an
// explicit creation timestamp. It must only be used by repository implementations.
func RestoreTransitionLog(
	id kernel.UUID,
	orderID kernel.UUID,
	from Status,
	to Status,
	actor string,
	note string,
	transitionName string,
	effects []string,
	idempotencyKey string,
	createdAt time.Time,
) (*TransitionLog, error) {
	if err := errors.Join(
		id.Validate(),
		orderID.Validate(),
		from.Validate(),
		to.Validate(),
	); err != nil {
		return nil, err
	}

	if transitionName == "" {
		return nil, errs.NewValueIsRequiredError("transitionName")
	}

	if createdAt.IsZero() {
		return nil, errs.NewValueIsRequiredError("createdAt")
	}

	return &TransitionLog{
		id:             id,
		orderID:        orderID,
		fromState:      from,
		toState:        to,
		actor:          actor,
		note:           note,
		transitionName: transitionName,
		effects:        append([]string(nil), effects...),
		idempotencyKey: idempotencyKey,
		createdAt:      createdAt,
		isConstructed:  true,
	}, nil
}

// Validate ensures the TransitionLog was created via a constructor.
func (l *TransitionLog) Validate() error {
	if l == nil || !l.isConstructed {
		return ErrTransitionLogIsNotConstructed
	}
	return nil
}

// ID returns the log row's unique identifier.
func (l *TransitionLog) ID() kernel.UUID {
	return l.id
}

// OrderID returns the identifier of the order the transition was executed on.
func (l *TransitionLog) OrderID() kernel.UUID {
	return l.orderID
}

// FromState returns the source state at execution time.
func (l *TransitionLog) FromState() Status {
	return l.fromState
}

// ToState returns the target state the order moved to.
func (l *TransitionLog) ToState() Status {
	return l.toState
}

// Actor returns the user name or system label that requested the transition.
func (l *TransitionLog) Actor() string {
	return l.actor
}

// Note returns the caller-supplied note, if any.
func (l *TransitionLog) Note() string {
	return l.note
}

// TransitionName returns the name of the transition definition that was executed.
func (l *TransitionLog) TransitionName() string {
	return l.transitionName
}

// Effects returns the registry keys of the effects that ran, in execution order.
// The returned slice is a copy; the log row itself stays immutable.
func (l *TransitionLog) Effects() []string {
	return append([]string(nil), l.effects...)
}

// IdempotencyKey returns the caller-supplied deduplication token, or "" if none.
func (l *TransitionLog) IdempotencyKey() string {
	return l.idempotencyKey
}

// CreatedAt returns the creation timestamp of the log row.
func (l *TransitionLog) CreatedAt() time.Time {
	return l.createdAt
}
