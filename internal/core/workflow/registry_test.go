package workflow_test

import (
	"context"
	"log/slog"
	"testing"

	"orderflow/internal/core/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allowAll(_ context.Context, _ workflow.TransitionContext) (bool, string) {
	return true, ""
}

func denyAll(_ context.Context, _ workflow.TransitionContext) (bool, string) {
	return false, "denied"
}

func noopEffect(_ context.Context, _ workflow.TransitionContext) error {
	return nil
}

func TestRegistry_Guards(t *testing.T) {
	t.Run("register_and_lookup", func(t *testing.T) {
		r := workflow.NewRegistry(slog.Default())

		require.NoError(t, r.RegisterGuard("always_allow", allowAll))

		g, err := r.LookupGuard("always_allow")
		require.NoError(t, err)

		allowed, reason := g(t.Context(), workflow.TransitionContext{})
		assert.True(t, allowed)
		assert.Empty(t, reason)
	})

	t.Run("duplicate_registration_fails", func(t *testing.T) {
		r := workflow.NewRegistry(slog.Default())

		require.NoError(t, r.RegisterGuard("always_allow", allowAll))
		err := r.RegisterGuard("always_allow", denyAll)

		require.Error(t, err)
		require.ErrorIs(t, err, workflow.ErrDuplicateRegistryKey)

		// The original registration stays intact.
		g, lookupErr := r.LookupGuard("always_allow")
		require.NoError(t, lookupErr)
		allowed, _ := g(t.Context(), workflow.TransitionContext{})
		assert.True(t, allowed)
	})

	t.Run("replace_overrides_existing", func(t *testing.T) {
		r := workflow.NewRegistry(slog.Default())

		require.NoError(t, r.RegisterGuard("always_allow", allowAll))
		r.ReplaceGuard("always_allow", denyAll)

		g, err := r.LookupGuard("always_allow")
		require.NoError(t, err)
		allowed, reason := g(t.Context(), workflow.TransitionContext{})
		assert.False(t, allowed)
		assert.Equal(t, "denied", reason)
	})

	t.Run("unknown_key_is_configuration_error", func(t *testing.T) {
		r := workflow.NewRegistry(slog.Default())

		_, err := r.LookupGuard("missing")

		require.Error(t, err)
		require.ErrorIs(t, err, workflow.ErrUnknownRegistryKey)

		var unknownErr *workflow.UnknownRegistryKeyError
		require.ErrorAs(t, err, &unknownErr)
		assert.Equal(t, "guard", unknownErr.Kind)
		assert.Equal(t, "missing", unknownErr.Key)
	})
}

func TestRegistry_Effects(t *testing.T) {
	t.Run("register_and_lookup", func(t *testing.T) {
		r := workflow.NewRegistry(slog.Default())

		require.NoError(t, r.RegisterEffect("noop", noopEffect))

		e, err := r.LookupEffect("noop")
		require.NoError(t, err)
		require.NoError(t, e(t.Context(), workflow.TransitionContext{}))
	})

	t.Run("duplicate_registration_fails", func(t *testing.T) {
		r := workflow.NewRegistry(slog.Default())

		require.NoError(t, r.RegisterEffect("noop", noopEffect))
		err := r.RegisterEffect("noop", noopEffect)

		require.ErrorIs(t, err, workflow.ErrDuplicateRegistryKey)
	})

	t.Run("unknown_key_is_configuration_error", func(t *testing.T) {
		r := workflow.NewRegistry(slog.Default())

		_, err := r.LookupEffect("missing")

		require.ErrorIs(t, err, workflow.ErrUnknownRegistryKey)
	})
}

func TestRegisterBuiltins(t *testing.T) {
	t.Run("registers_all_canonical_keys", func(t *testing.T) {
		r := workflow.NewRegistry(slog.Default())

		require.NoError(t, workflow.RegisterBuiltins(r, slog.Default()))

		for _, key := range []string{
			workflow.GuardPaymentAuthorized,
			workflow.GuardInventoryAvailable,
			workflow.GuardRoleAllowed,
		} {
			_, err := r.LookupGuard(key)
			require.NoError(t, err, "guard %s should be registered", key)
		}

		for _, key := range []string{
			workflow.EffectCapturePayment,
			workflow.EffectRefundPayment,
			workflow.EffectReserveInventory,
			workflow.EffectReleaseInventory,
			workflow.EffectSendEmail,
			workflow.EffectEmitWebhook,
		} {
			_, err := r.LookupEffect(key)
			require.NoError(t, err, "effect %s should be registered", key)
		}
	})

	t.Run("second_registration_fails", func(t *testing.T) {
		r := workflow.NewRegistry(slog.Default())

		require.NoError(t, workflow.RegisterBuiltins(r, slog.Default()))
		require.Error(t, workflow.RegisterBuiltins(r, slog.Default()))
	})

	t.Run("role_allowed_rejects_missing_actor", func(t *testing.T) {
		r := workflow.NewRegistry(slog.Default())
		require.NoError(t, workflow.RegisterBuiltins(r, slog.Default()))

		g, err := r.LookupGuard(workflow.GuardRoleAllowed)
		require.NoError(t, err)

		allowed, reason := g(t.Context(), workflow.TransitionContext{Actor: ""})
		assert.False(t, allowed)
		assert.Equal(t, "authentication required", reason)

		allowed, _ = g(t.Context(), workflow.TransitionContext{Actor: "ops@example.com"})
		assert.True(t, allowed)
	})
}
