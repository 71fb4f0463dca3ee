package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrBulkTransitionCommandIsNotConstructed = errors.New(
	"BulkTransitionCommand must be created via NewBulkTransitionCommand constructor",
)

// BulkTransitionCommand represents a request to apply the same transition to a
// batch of orders, the admin "mark all selected as shipped" operation.
//
// Each order is processed independently: one rejection or failure never rolls
// back the others.
type BulkTransitionCommand struct { //nolint:recvcheck //using for validation
	orderIDs []kernel.UUID
	target   order.Status
	actor    string
	note     string
	dryRun   bool

	guard guard.ConstructorGuard
}

// NewBulkTransitionCommand creates a command to transition a batch of orders.
// Requires at least one order ID and validates the target status. With dryRun
// set, every order is validated only: guards run but nothing is changed.
func NewBulkTransitionCommand(
	orderIDs []kernel.UUID,
	target order.Status,
	actor string,
	note string,
	dryRun bool,
) (BulkTransitionCommand, error) {
	cmd := BulkTransitionCommand{
		actor:  actor,
		note:   note,
		dryRun: dryRun,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderIDs(orderIDs),
		cmd.setTarget(target),
	); err != nil {
		return BulkTransitionCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrBulkTransitionCommandIsNotConstructed if validation fails.
func (c BulkTransitionCommand) Validate() error {
	return c.guard.Validate(ErrBulkTransitionCommandIsNotConstructed)
}

// OrderIDs returns the identifiers of the orders to transition.
func (c BulkTransitionCommand) OrderIDs() []kernel.UUID {
	ids := make([]kernel.UUID, len(c.orderIDs))
	copy(ids, c.orderIDs)
	return ids
}

// Target returns the requested target status.
func (c BulkTransitionCommand) Target() order.Status {
	return c.target
}

// Actor returns the identity requesting the batch.
func (c BulkTransitionCommand) Actor() string {
	return c.actor
}

// Note returns the free-form note applied to every transition in the batch.
func (c BulkTransitionCommand) Note() string {
	return c.note
}

// DryRun reports whether the batch validates guards only, changing nothing.
func (c BulkTransitionCommand) DryRun() bool {
	return c.dryRun
}

func (c *BulkTransitionCommand) setOrderIDs(orderIDs []kernel.UUID) error {
	if len(orderIDs) == 0 {
		return errs.NewValueIsRequiredError("orderIDs")
	}
	for _, id := range orderIDs {
		if err := id.Validate(); err != nil {
			return err
		}
	}

	c.orderIDs = make([]kernel.UUID, len(orderIDs))
	copy(c.orderIDs, orderIDs)
	return nil
}

func (c *BulkTransitionCommand) setTarget(target order.Status) error {
	if err := target.Validate(); err != nil {
		return err
	}

	c.target = target
	return nil
}
