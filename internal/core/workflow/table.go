package workflow

import (
	"fmt"

	"orderflow/internal/core/domain/model/order"

	"orderflow/internal/pkg/errs"
)

// Table is the single source of truth for which transitions exist.
//
// It is a fixed, version-controlled list of Transition definitions compiled at
// startup. The domain is small and stable, so the table lives in code rather
// than in the database: flexibility comes from swappable guards and effects in
// the Registry, and the hot path (status lookup) stays free of extra storage
// round-trips. Extending the workflow means adding an entry here plus
// registering any new guard/effect keys; no schema migration.
type Table struct {
	transitions []Transition
	byName      map[string]Transition
}

// NewTable compiles a transition table from the given definitions.
//
// The definitions are validated once here so lookups never fail on malformed
// entries: names must be unique and non-empty, every source and target state
// must be a valid status, and each transition needs at least one source state.
func NewTable(transitions []Transition) (*Table, error) {
	byName := make(map[string]Transition, len(transitions))

	for _, t := range transitions {
		if t.Name == "" {
			return nil, errs.NewValueIsRequiredError("transition name")
		}
		if _, exists := byName[t.Name]; exists {
			return nil, errs.NewValueIsInvalidErrorWithCause("transition name",
				fmt.Errorf("%q is defined twice", t.Name))
		}
		if len(t.FromStates) == 0 {
			return nil, errs.NewValueIsInvalidErrorWithCause("transition from states",
				fmt.Errorf("transition %q has no source states", t.Name))
		}
		if err := t.ToState.Validate(); err != nil {
			return nil, err
		}
		for _, from := range t.FromStates {
			if err := from.Validate(); err != nil {
				return nil, err
			}
		}
		byName[t.Name] = t
	}

	return &Table{
		transitions: append([]Transition(nil), transitions...),
		byName:      byName,
	}, nil
}

// Transitions returns all definitions in declaration order.
// The returned slice is a copy; the table itself stays immutable.
func (t *Table) Transitions() []Transition {
	return append([]Transition(nil), t.transitions...)
}

// Find returns a transition definition by name.
// Fails with an error wrapping ErrUnknownTransition when absent.
func (t *Table) Find(name string) (Transition, error) {
	tr, ok := t.byName[name]
	if !ok {
		return Transition{}, fmt.Errorf("%w: %q", ErrUnknownTransition, name)
	}
	return tr, nil
}

// TransitionsFrom returns all transitions whose source-state set contains the
// given state, in declaration order. Terminal states yield an empty slice.
func (t *Table) TransitionsFrom(state order.Status) []Transition {
	var out []Transition
	for _, tr := range t.transitions {
		if tr.AllowsFrom(state) {
			out = append(out, tr)
		}
	}
	return out
}

// SelectTransition resolves the transition leading from one state to another.
// At most one definition matches a (from, to) pair in a well-formed table;
// the first match in declaration order wins.
func (t *Table) SelectTransition(from, to order.Status) (Transition, bool) {
	for _, tr := range t.transitions {
		if tr.ToState == to && tr.AllowsFrom(from) {
			return tr, true
		}
	}
	return Transition{}, false
}

// CanonicalTable returns the canonical order workflow:
//
//	mark_paid:  pending        -> paid
//	ship:       paid           -> shipped
//	fulfill:    shipped        -> fulfilled
//	cancel:     pending | paid -> cancelled
//	refund:     fulfilled      -> refunded
//	return:     fulfilled      -> returned
//
// cancelled, refunded and returned have no outgoing edges. The guard and
// effect keys reference the built-in registrations (see RegisterBuiltins);
// swapping an implementation never requires touching this table.
func CanonicalTable() *Table {
	table, err := NewTable([]Transition{
		{
			Name:        "mark_paid",
			FromStates:  []order.Status{order.Pending},
			ToState:     order.Paid,
			Guards:      []string{GuardRoleAllowed, GuardPaymentAuthorized},
			Effects:     []string{EffectCapturePayment, EffectReserveInventory, EffectSendEmail, EffectEmitWebhook},
			Description: "Mark order as paid (captures authorized payment, reserves inventory).",
		},
		{
			Name:        "ship",
			FromStates:  []order.Status{order.Paid},
			ToState:     order.Shipped,
			Guards:      []string{GuardRoleAllowed, GuardInventoryAvailable},
			Effects:     []string{EffectSendEmail, EffectEmitWebhook},
			Description: "Mark order as shipped (notify customer).",
		},
		{
			Name:        "fulfill",
			FromStates:  []order.Status{order.Shipped},
			ToState:     order.Fulfilled,
			Guards:      []string{GuardRoleAllowed},
			Effects:     []string{EffectSendEmail, EffectEmitWebhook},
			Description: "Mark order as fulfilled (delivered/complete).",
		},
		{
			Name:        "cancel",
			FromStates:  []order.Status{order.Pending, order.Paid},
			ToState:     order.Cancelled,
			Guards:      []string{GuardRoleAllowed},
			Effects:     []string{EffectReleaseInventory, EffectSendEmail, EffectEmitWebhook},
			Description: "Cancel order (release inventory; external refunds handled separately).",
		},
		{
			Name:        "refund",
			FromStates:  []order.Status{order.Fulfilled},
			ToState:     order.Refunded,
			Guards:      []string{GuardRoleAllowed},
			Effects:     []string{EffectRefundPayment, EffectReleaseInventory, EffectSendEmail, EffectEmitWebhook},
			Description: "Refund order after fulfillment (may be partial based on params).",
		},
		{
			Name:        "return",
			FromStates:  []order.Status{order.Fulfilled},
			ToState:     order.Returned,
			Guards:      []string{GuardRoleAllowed},
			Effects:     []string{EffectReleaseInventory, EffectSendEmail, EffectEmitWebhook},
			Description: "Mark order as returned (stock operations handled by effect).",
		},
	})
	if err != nil {
		// The canonical definitions are compiled into the binary; a validation
		// failure here is a programming error, not a runtime condition.
		panic(err)
	}
	return table
}
