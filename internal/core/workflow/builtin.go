package workflow

import (
	"context"
	"errors"
	"log/slog"
)

// Registry keys for the built-in guards.
const (
	// GuardPaymentAuthorized verifies that payment for the order is authorized.
	GuardPaymentAuthorized = "payment_authorized"
	// GuardInventoryAvailable verifies that stock is available for the order.
	GuardInventoryAvailable = "inventory_available"
	// GuardRoleAllowed verifies that an identified actor requests the transition.
	GuardRoleAllowed = "role_allowed"
)

// Registry keys for the built-in effects.
const (
	// EffectCapturePayment captures the authorized payment for the order.
	EffectCapturePayment = "capture_payment"
	// EffectRefundPayment refunds part or all of a payment.
	EffectRefundPayment = "refund_payment"
	// EffectReserveInventory reserves stock for all items in the order.
	EffectReserveInventory = "reserve_inventory"
	// EffectReleaseInventory releases reserved stock (on cancel/return).
	EffectReleaseInventory = "release_inventory"
	// EffectSendEmail sends a transactional email for the transition.
	EffectSendEmail = "send_email"
	// EffectEmitWebhook emits an event for downstream systems.
	EffectEmitWebhook = "emit_webhook"
)

// RegisterBuiltins registers the default guard and effect implementations the
// canonical table references.
//
// The payment and inventory guards are permissive stubs and the effects are
// logging no-ops, safe to call multiple times; real integrations replace them
// at startup via ReplaceGuard/ReplaceEffect without touching the table. Only
// role_allowed enforces a rule out of the box: it rejects requests with no
// identified actor.
func RegisterBuiltins(r *Registry, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "workflow_builtins")

	guards := map[string]Guard{
		GuardPaymentAuthorized:  guardPaymentAuthorized,
		GuardInventoryAvailable: guardInventoryAvailable,
		GuardRoleAllowed:        guardRoleAllowed,
	}

	effects := map[string]Effect{
		EffectCapturePayment:   stubEffect(logger, EffectCapturePayment),
		EffectRefundPayment:    stubEffect(logger, EffectRefundPayment),
		EffectReserveInventory: stubEffect(logger, EffectReserveInventory),
		EffectReleaseInventory: stubEffect(logger, EffectReleaseInventory),
		EffectSendEmail:        stubEffect(logger, EffectSendEmail),
		EffectEmitWebhook:      stubEffect(logger, EffectEmitWebhook),
	}

	var errCollected []error
	for key, g := range guards {
		errCollected = append(errCollected, r.RegisterGuard(key, g))
	}
	for key, e := range effects {
		errCollected = append(errCollected, r.RegisterEffect(key, e))
	}
	return errors.Join(errCollected...)
}

// guardPaymentAuthorized allows the transition; a real implementation would
// verify the payment intent status with the payment provider.
func guardPaymentAuthorized(_ context.Context, _ TransitionContext) (bool, string) {
	return true, ""
}

// guardInventoryAvailable allows the transition; a real implementation would
// check or lock stock reservations with the inventory service.
func guardInventoryAvailable(_ context.Context, _ TransitionContext) (bool, string) {
	return true, ""
}

// guardRoleAllowed enforces that an identified actor executes sensitive
// transitions. Authorization beyond identification is the host application's
// concern and can be layered in via a ReplaceGuard override.
func guardRoleAllowed(_ context.Context, tc TransitionContext) (bool, string) {
	if tc.Actor == "" {
		return false, "authentication required"
	}
	return true, ""
}

// stubEffect returns a no-op effect that records its invocation at debug
// level. Stubs are trivially idempotent.
func stubEffect(logger *slog.Logger, key string) Effect {
	return func(ctx context.Context, tc TransitionContext) error {
		logger.DebugContext(ctx, "stub effect executed",
			"effect", key,
			"order_id", tc.Order.ID().String(),
			"from", tc.From.String(),
			"to", tc.To.String(),
		)
		return nil
	}
}
