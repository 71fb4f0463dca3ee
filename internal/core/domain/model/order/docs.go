// Package order provides domain entities and business logic for order management
// in the storefront. It implements the Order aggregate root together with the
// append-only transition audit log the workflow engine writes.
//
// The package includes:
//   - Order: The aggregate root holding order identity, contact, total and status
//   - Status: The fixed enumeration of workflow states
//   - TransitionLog: One immutable audit record per committed transition
//
// Key business rules:
//   - Orders must have a valid unique identifier, customer email and monetary total
//   - Order status is always one of: pending, paid, shipped, fulfilled,
//     cancelled, refunded, returned
//   - Orders are created in pending; all later status changes go through the
//     workflow transition service (or the explicitly-flagged legacy path)
//   - cancelled, refunded and returned are terminal states
//   - Transition log rows are created once and never mutated
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
