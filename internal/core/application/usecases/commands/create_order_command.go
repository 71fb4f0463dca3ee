package commands

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrEmailIsInvalid = errors.New("email must contain a mailbox and a domain")
)

// CreateOrderCommand represents a request to create a new customer order.
// Encapsulates the customer contact and the order total; every new order
// starts in the pending status.
//
// Example:
//
//	orderID := kernel.NewUUID()
//	total, _ := kernel.NewMoney(12999, "EUR")
//	cmd, err := NewCreateOrderCommand(orderID, "customer@example.com", total)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	email   string
	total   kernel.Money

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to register a new order.
// Validates that the order ID is valid, the email looks like an address,
// and the total is a constructed Money value.
func NewCreateOrderCommand(orderID kernel.UUID, email string, total kernel.Money) (CreateOrderCommand, error) {
	orderCommand := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		orderCommand.setOrderID(orderID),
		orderCommand.setEmail(email),
		orderCommand.setTotal(total),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return orderCommand, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateOrderCommandIsNotConstructed if validation fails.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the unique identifier for the order.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Email returns the customer contact address.
func (c CreateOrderCommand) Email() string {
	return c.email
}

// Total returns the order total.
func (c CreateOrderCommand) Total() kernel.Money {
	return c.total
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setEmail(email string) error {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return ErrEmailIsInvalid
	}

	c.email = email
	return nil
}

func (c *CreateOrderCommand) setTotal(total kernel.Money) error {
	if err := total.Validate(); err != nil {
		return err
	}

	c.total = total
	return nil
}
