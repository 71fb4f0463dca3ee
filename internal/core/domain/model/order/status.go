package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It enumerates the fixed set of states the order workflow engine moves
// orders through; the edges between states are owned by the workflow
// transition table, not by Status itself.
//
// State transitions (canonical workflow):
//
//	pending ──> paid ──> shipped ──> fulfilled ──┬──> refunded
//	   │          │                              └──> returned
//	   └──────────┴──> cancelled
//
// cancelled, refunded and returned are terminal states with no outgoing
// transitions. pending is the sole initial state: orders are created in
// pending outside the engine's purview.
//
// Status is a value object that validates state values and provides
// string representations for persistence and display.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status when an order is first created.
	// Orders in this status await payment.
	Pending

	// Paid indicates payment has been captured for the order.
	Paid

	// Shipped indicates the order has left the warehouse.
	Shipped

	// Fulfilled indicates the order has been delivered and completed.
	// Refund and return branches remain available from this state.
	Fulfilled

	// Cancelled indicates the order was cancelled before shipment.
	// This is a terminal state.
	Cancelled

	// Refunded indicates the order was refunded after fulfillment.
	// This is a terminal state.
	Refunded

	// Returned indicates the goods were returned after fulfillment.
	// This is a terminal state.
	Returned
)

// getStatusStrings returns a map of Status values to their string representations.
// All statuses are included for string conversion.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Pending:   "pending",
		Paid:      "paid",
		Shipped:   "shipped",
		Fulfilled: "fulfilled",
		Cancelled: "cancelled",
		Refunded:  "refunded",
		Returned:  "returned",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
// Only valid statuses are included to support validation.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:   "pending",
		Paid:      "paid",
		Shipped:   "shipped",
		Fulfilled: "fulfilled",
		Cancelled: "cancelled",
		Refunded:  "refunded",
		Returned:  "returned",
	}
}

// StatusFromString parses a status from its persisted string representation.
// Returns an error for unrecognized values; "unknown" is not accepted.
//
// This function is used when reconstructing orders from persistence
// or when parsing target states supplied by external callers.
func StatusFromString(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid",
		fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is valid.
//
// Valid statuses are: pending, paid, shipped, fulfilled, cancelled, refunded, returned.
// Unknown (0) and any other values are invalid.
//
// Returns:
//   - nil if the status is valid
//   - error with details if the status is invalid
//
// This method is used to ensure Status values from external sources
// (e.g., database, API) are valid before use.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the lowercase name of the status as persisted and displayed.
//
// Returns:
//   - "pending", "paid", "shipped", "fulfilled", "cancelled", "refunded" or
//     "returned" for valid statuses
//   - "unknown" for invalid status values
//
// This method implements the fmt.Stringer interface and is safe
// to call on any Status value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the status has no outgoing transitions
// in the canonical workflow.
//
// Terminal statuses are cancelled, refunded and returned. The transition
// table enforces this by defining no edges out of them; IsTerminal exists
// for callers that want to short-circuit without consulting the table.
func (s Status) IsTerminal() bool {
	return s == Cancelled || s == Refunded || s == Returned
}
