// Package workflow implements the registry-driven order workflow engine.
//
// The engine governs the order lifecycle (pending -> paid -> shipped ->
// fulfilled, plus cancel/refund/return branches) through a small set of
// collaborating pieces:
//
//   - Registry: maps string keys to guard and effect implementations,
//     decoupling transition definitions from concrete integrations
//   - Table: the fixed, in-code list of transition definitions
//   - TransitionService: orchestrates guard evaluation, per-order locking,
//     effect execution, status persistence, audit logging and idempotency
//
// Guards are read-only predicates; effects are side-effecting actions executed
// inside the transition's atomic unit. Both are looked up by key at execution
// time, so stub implementations registered at startup can later be replaced by
// real integrations (payment capture, inventory, email, webhooks) without
// changing any transition definition.
//
// The engine is embedded by a host application that supplies persistence
// through the ports package; it imposes no transport or framework of its own.
package workflow
