package commands

import (
	"errors"
	"maps"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrTransitionOrderCommandIsNotConstructed = errors.New(
	"TransitionOrderCommand must be created via NewTransitionOrderCommand constructor",
)

// TransitionOrderCommand represents a request to move an order to a target status.
//
// The command carries the workflow inputs: who is acting, an optional note for
// the audit trail, free-form parameters consumed by guards and effects, an
// optional idempotency key for safe retries, and a dry-run flag that validates
// without committing anything.
//
// Example:
//
//	cmd, err := NewTransitionOrderCommand(orderID, order.Paid, "ops@example.com", "payment confirmed",
//	    map[string]any{"amount": 12999}, "pay-42", false)
//	if err != nil {
//	    return fmt.Errorf("invalid transition request: %w", err)
//	}
//
//	result, err := handler.Handle(ctx, cmd)
type TransitionOrderCommand struct { //nolint:recvcheck //using for validation
	orderID        kernel.UUID
	target         order.Status
	actor          string
	note           string
	params         map[string]any
	idempotencyKey string
	dryRun         bool

	guard guard.ConstructorGuard
}

// NewTransitionOrderCommand creates a command to transition an order.
// Validates the order ID and the target status; actor, note, params and the
// idempotency key are optional.
func NewTransitionOrderCommand(
	orderID kernel.UUID,
	target order.Status,
	actor string,
	note string,
	params map[string]any,
	idempotencyKey string,
	dryRun bool,
) (TransitionOrderCommand, error) {
	cmd := TransitionOrderCommand{
		actor:          actor,
		note:           note,
		params:         maps.Clone(params),
		idempotencyKey: idempotencyKey,
		dryRun:         dryRun,
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTarget(target),
	); err != nil {
		return TransitionOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrTransitionOrderCommandIsNotConstructed if validation fails.
func (c TransitionOrderCommand) Validate() error {
	return c.guard.Validate(ErrTransitionOrderCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to transition.
func (c TransitionOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Target returns the requested target status.
func (c TransitionOrderCommand) Target() order.Status {
	return c.target
}

// Actor returns the identity requesting the transition.
func (c TransitionOrderCommand) Actor() string {
	return c.actor
}

// Note returns the free-form note for the audit trail.
func (c TransitionOrderCommand) Note() string {
	return c.note
}

// Params returns the guard/effect parameters.
func (c TransitionOrderCommand) Params() map[string]any {
	return maps.Clone(c.params)
}

// IdempotencyKey returns the caller-chosen retry deduplication token.
func (c TransitionOrderCommand) IdempotencyKey() string {
	return c.idempotencyKey
}

// DryRun reports whether the transition should only be validated.
func (c TransitionOrderCommand) DryRun() bool {
	return c.dryRun
}

func (c *TransitionOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *TransitionOrderCommand) setTarget(target order.Status) error {
	if err := target.Validate(); err != nil {
		return err
	}

	c.target = target
	return nil
}
