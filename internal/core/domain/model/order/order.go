package order

import (
	"errors"
	"fmt"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// the NewOrder or RestoreOrder factory methods. This ensures all orders are properly validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")
)

// Order represents a customer order in the storefront. It is the aggregate root
// the workflow engine operates on: the engine reads and writes its status and
// appends transition log rows, while everything else about the order is owned
// by the surrounding application.
//
// Order follows these invariants:
//   - Must have a valid unique identifier
//   - Must have a customer email
//   - Total is a valid monetary amount
//   - Status is always one of the seven workflow states
//   - Can only be created through NewOrder or RestoreOrder
//
// Status changes other than via RestoreOrder must go through the workflow
// transition service; the aggregate itself validates status values but not
// the edges between them.
type Order struct {
	// id is the unique identifier for the order
	id kernel.UUID

	// email is the customer contact for the order
	email string

	// total is the persisted order total
	total kernel.Money

	// status represents the current state in the order lifecycle
	status Status

	// isConstructed ensures the order was created via a constructor
	isConstructed bool
}

// NewOrder creates a new Order in the pending status. This is the entry point
// for order creation; an order never starts in any other state.
//
// Parameters:
//   - id: Unique identifier for the order (must be valid UUID)
//   - email: Customer contact email (must be non-empty and well-formed)
//   - total: Order total as a validated monetary amount
//
// Returns:
//   - *Order: The created order if all validations pass
//   - error: Validation error if any parameter is invalid
//
// Example:
//
//	orderID := kernel.NewUUID()
//	total, _ := kernel.NewMoney(12999, "EUR")
//	o, err := NewOrder(orderID, "customer@example.com", total)
//	if err != nil {
//	    // Handle validation error
//	}
func NewOrder(id kernel.UUID, email string, total kernel.Money) (*Order, error) {
	o := &Order{
		status:        Pending,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setEmail(email),
		o.setTotal(total),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder reconstructs an Order from persistence with an explicit status.
// Unlike NewOrder it accepts any valid status, since the persisted order may be
// anywhere in its lifecycle. It must only be used by repository implementations.
func RestoreOrder(id kernel.UUID, email string, total kernel.Money, status Status) (*Order, error) {
	o := &Order{
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setEmail(email),
		o.setTotal(total),
		o.setStatus(status),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed through a factory method.
// This prevents bypassing validation by directly instantiating the struct.
//
// Returns:
//   - nil if the order is valid
//   - ErrOrderIsNotConstructed if the order was not created via a constructor
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by their unique identifiers.
// Orders are considered equal if they have the same ID.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// Email returns the customer contact email.
func (o *Order) Email() string {
	return o.email
}

// Total returns the persisted order total.
func (o *Order) Total() kernel.Money {
	return o.total
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// ChangeStatus sets the order status to the given value.
//
// The method validates that the value is one of the seven workflow states but
// deliberately does not validate the edge being taken: which transitions are
// legal, which guards must pass and which effects must run is the workflow
// transition service's responsibility. The legacy direct-update path also uses
// this method, bypassing the engine entirely.
//
// Returns:
//   - nil on success
//   - error if the status value itself is invalid
func (o *Order) ChangeStatus(to Status) error {
	if err := to.Validate(); err != nil {
		return err
	}

	o.status = to
	return nil
}

// setID validates and sets the order's unique identifier.
// This is a private method used only during construction.
func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

// setEmail validates and sets the customer email.
// This is a private method used only during construction.
func (o *Order) setEmail(email string) error {
	if email == "" {
		return errs.NewValueIsRequiredError("email")
	}
	if !strings.Contains(email, "@") {
		return errs.NewValueIsInvalidErrorWithCause("email", fmt.Errorf("%q is not an email address", email))
	}
	o.email = email
	return nil
}

// setTotal validates and sets the order total.
// This is a private method used only during construction.
func (o *Order) setTotal(total kernel.Money) error {
	if err := total.Validate(); err != nil {
		return err
	}
	o.total = total
	return nil
}

// setStatus validates and sets the order status.
// This is a private method used only during restoration.
func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}
