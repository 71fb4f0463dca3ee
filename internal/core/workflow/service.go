package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// ErrTransitionServiceIsNotConstructed is returned when a TransitionService was
// not created through NewTransitionService.
var ErrTransitionServiceIsNotConstructed = errors.New(
	"TransitionService must be created via NewTransitionService constructor")

// TransitionService is the registry-driven workflow executor for orders.
//
// It determines which transitions exist for an order's current state,
// evaluates guards, executes effects transactionally, writes the append-only
// audit log, and enforces idempotency. It is invoked synchronously in the
// caller's goroutine: concurrency correctness comes entirely from the
// per-order exclusive lock taken inside a unit of work, not from message
// passing.
//
// Expected conditions (no matching transition, guard rejection) come back as
// structured TransitionResult values. Effect and persistence failures abort
// the whole attempt, roll back fully, and surface as errors.
type TransitionService struct {
	table      *Table
	registry   *Registry
	uowFactory ports.UnitOfWorkFactory
	logger     *slog.Logger

	isConstructed bool
}

// NewTransitionService creates the workflow executor.
//
// Parameters:
//   - table: The compiled transition table (single source of truth for edges)
//   - registry: Guard/effect registry the table's keys resolve against
//   - uowFactory: Factory for transactional persistence units
//   - logger: Structured logger; nil falls back to slog.Default()
func NewTransitionService(
	table *Table,
	registry *Registry,
	uowFactory ports.UnitOfWorkFactory,
	logger *slog.Logger,
) (*TransitionService, error) {
	if table == nil {
		return nil, errs.NewValueIsRequiredError("table")
	}
	if registry == nil {
		return nil, errs.NewValueIsRequiredError("registry")
	}
	if uowFactory == nil {
		return nil, errs.NewValueIsRequiredError("uowFactory")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TransitionService{
		table:         table,
		registry:      registry,
		uowFactory:    uowFactory,
		logger:        logger.With("component", "transition_service"),
		isConstructed: true,
	}, nil
}

// Validate ensures the service was created via its constructor.
func (s *TransitionService) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrTransitionServiceIsNotConstructed
	}
	return nil
}

// TransitionsForState returns all transitions defined from the given state.
// Pure delegation to the table; terminal states yield an empty slice.
func (s *TransitionService) TransitionsForState(state order.Status) []Transition {
	return s.table.TransitionsFrom(state)
}

// AllowedTransitions returns one TransitionAttempt per transition defined from
// the order's current status.
//
// With a non-nil context the guards of each transition run in advisory mode
// (no locking) and the attempt carries their verdict; with a nil context
// guards are not evaluated and every defined transition is reported as
// allowed. The call never mutates any state. A registry misconfiguration
// (unknown guard key) is returned as an error.
func (s *TransitionService) AllowedTransitions(
	ctx context.Context,
	o *order.Order,
	tc *TransitionContext,
) ([]TransitionAttempt, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	defined := s.table.TransitionsFrom(o.Status())
	attempts := make([]TransitionAttempt, 0, len(defined))
	for _, tr := range defined {
		if tc == nil {
			attempts = append(attempts, TransitionAttempt{Transition: tr, Allowed: true})
			continue
		}

		guardCtx := *tc
		guardCtx.Order = o
		guardCtx.From = o.Status()
		guardCtx.To = tr.ToState

		allowed, reason, err := s.evaluateGuards(ctx, tr, guardCtx)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, TransitionAttempt{Transition: tr, Allowed: allowed, Reason: reason})
	}
	return attempts, nil
}

// CanTransition resolves the transition from the order's current status to the
// requested target and evaluates its guards without locking or side effects.
//
// When no transition matches, whether the target is simply the wrong
// direction or not in the canonical map at all, the attempt reports a
// synthesized placeholder transition and Allowed=false, matching the
// "no target options" behavior callers see from the transition call itself.
// Guards run in declared order; the first failure short-circuits and its
// reason is carried on the attempt.
func (s *TransitionService) CanTransition(
	ctx context.Context,
	o *order.Order,
	to order.Status,
	tc TransitionContext,
) (TransitionAttempt, error) {
	if err := o.Validate(); err != nil {
		return TransitionAttempt{}, err
	}

	tr, ok := s.table.SelectTransition(o.Status(), to)
	if !ok {
		return TransitionAttempt{
			Transition: Transition{
				Name:       fmt.Sprintf("to:%s", to),
				FromStates: []order.Status{o.Status()},
				ToState:    to,
			},
			Allowed: false,
			Reason:  fmt.Sprintf("transition from %s to %s is not defined", o.Status(), to),
		}, nil
	}

	tc.Order = o
	tc.From = o.Status()
	tc.To = to

	allowed, reason, err := s.evaluateGuards(ctx, tr, tc)
	if err != nil {
		return TransitionAttempt{}, err
	}
	return TransitionAttempt{Transition: tr, Allowed: allowed, Reason: reason}, nil
}

// Transition executes a state change on an order.
//
// The algorithm, in order:
//  1. If an idempotency key is supplied and a log row already exists for
//     (order, key), return immediately with the stored result and
//     Idempotent=true - no guard re-evaluation, no effects, no locking.
//  2. Resolve the transition for (current status, target); report
//     CodeNoSuchTransition when none matches.
//  3. Run all guards once, pre-lock, to fail fast with a clear reason.
//  4. On dry run, stop here: the result reports guard validation only and
//     nothing is changed or written regardless of outcome.
//  5. Acquire the per-order exclusive lock and re-run resolution and guards
//     under it, closing the race window against concurrent transitions.
//  6. Execute the effects in declared order; any failure aborts with a full
//     rollback and surfaces as an error wrapping ErrEffectFailed.
//  7. Persist the new status and append one audit log row as a single atomic
//     unit, then commit and return success.
//
// Lock contention surfaces as an error wrapping ErrLockContention; the caller
// may retry the whole call.
func (s *TransitionService) Transition(ctx context.Context, req TransitionRequest) (TransitionResult, error) {
	if err := s.Validate(); err != nil {
		return TransitionResult{}, err
	}
	if err := req.Order.Validate(); err != nil {
		return TransitionResult{}, err
	}
	if err := req.To.Validate(); err != nil {
		return TransitionResult{}, err
	}

	o := req.Order

	// Step 1: idempotent replay, checked before any locking.
	if req.IdempotencyKey != "" {
		replay, found, err := s.findReplay(ctx, o.ID(), req.IdempotencyKey)
		if err != nil {
			return TransitionResult{}, err
		}
		if found {
			return replay, nil
		}
	}

	// Step 2: resolve the transition for the caller's snapshot of the status.
	tr, ok := s.table.SelectTransition(o.Status(), req.To)
	if !ok {
		return noSuchTransitionResult(o.Status(), req.To), nil
	}

	tc := TransitionContext{
		Order:          o,
		From:           o.Status(),
		To:             req.To,
		Actor:          req.Actor,
		Note:           req.Note,
		Params:         req.Params,
		IdempotencyKey: req.IdempotencyKey,
		DryRun:         req.DryRun,
	}

	// Step 3: pre-lock guard check, fail fast before taking any lock.
	allowed, reason, err := s.evaluateGuards(ctx, tr, tc)
	if err != nil {
		return TransitionResult{}, err
	}
	if !allowed {
		return guardRejectedResult(o.Status(), req.To, tr.Name, reason), nil
	}

	// Step 4: dry run stops here, successful or not, with nothing persisted.
	if req.DryRun {
		return TransitionResult{
			Success:    true,
			Code:       CodeOK,
			From:       o.Status(),
			To:         req.To,
			Transition: tr.Name,
			DryRun:     true,
		}, nil
	}

	return s.execute(ctx, req, tr)
}

// execute runs steps 5-7: lock, re-validate, effects, persist, commit.
func (s *TransitionService) execute(
	ctx context.Context,
	req TransitionRequest,
	tr Transition,
) (TransitionResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return TransitionResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	locked, err := uow.OrderRepository().GetForUpdate(ctx, req.Order.ID())
	if err != nil {
		return TransitionResult{}, err
	}

	// The locked row is authoritative; the caller's snapshot may be stale.
	lockedTr, ok := s.table.SelectTransition(locked.Status(), req.To)
	if !ok {
		result := noSuchTransitionResult(locked.Status(), req.To)
		result.Reason = fmt.Sprintf("state changed concurrently; %s to %s not allowed",
			locked.Status(), req.To)
		return result, nil
	}

	tc := TransitionContext{
		Order:          locked,
		From:           locked.Status(),
		To:             req.To,
		Actor:          req.Actor,
		Note:           req.Note,
		Params:         req.Params,
		IdempotencyKey: req.IdempotencyKey,
	}

	allowed, reason, err := s.evaluateGuards(ctx, lockedTr, tc)
	if err != nil {
		return TransitionResult{}, err
	}
	if !allowed {
		return guardRejectedResult(locked.Status(), req.To, lockedTr.Name, reason), nil
	}

	fromState := locked.Status()

	executed := make([]string, 0, len(lockedTr.Effects))
	for _, effectKey := range lockedTr.Effects {
		effect, lookupErr := s.registry.LookupEffect(effectKey)
		if lookupErr != nil {
			return TransitionResult{}, lookupErr
		}
		if effectErr := effect(ctx, tc); effectErr != nil {
			return TransitionResult{}, &EffectFailedError{Key: effectKey, Cause: effectErr}
		}
		executed = append(executed, effectKey)
	}

	if err = locked.ChangeStatus(req.To); err != nil {
		return TransitionResult{}, err
	}
	if err = uow.OrderRepository().Update(ctx, locked); err != nil {
		return TransitionResult{}, err
	}

	entry, err := order.NewTransitionLog(
		kernel.NewUUID(),
		locked.ID(),
		fromState,
		req.To,
		req.Actor,
		req.Note,
		lockedTr.Name,
		executed,
		req.IdempotencyKey,
	)
	if err != nil {
		return TransitionResult{}, err
	}
	if err = uow.TransitionLogRepository().Add(ctx, entry); err != nil {
		return TransitionResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return TransitionResult{}, err
	}

	s.logger.InfoContext(ctx, "order transition committed",
		"order_id", locked.ID().String(),
		"transition", lockedTr.Name,
		"from", fromState.String(),
		"to", req.To.String(),
		"actor", req.Actor,
		"effects", executed,
	)

	// Mirror the committed state onto the caller's snapshot.
	_ = req.Order.ChangeStatus(req.To)

	return TransitionResult{
		Success:    true,
		Code:       CodeOK,
		From:       fromState,
		To:         req.To,
		Transition: lockedTr.Name,
		Effects:    executed,
		LogID:      entry.ID(),
	}, nil
}

// findReplay looks up a prior execution by idempotency key.
// The lookup runs outside any transaction; the unique (order, key) index in
// the log store backs the at-most-once guarantee if two first-time calls race.
func (s *TransitionService) findReplay(
	ctx context.Context,
	orderID kernel.UUID,
	key string,
) (TransitionResult, bool, error) {
	uow := s.uowFactory.Create()

	entry, err := uow.TransitionLogRepository().FindByIdempotencyKey(ctx, orderID, key)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return TransitionResult{}, false, nil
		}
		return TransitionResult{}, false, err
	}

	return TransitionResult{
		Success:    true,
		Code:       CodeOK,
		From:       entry.FromState(),
		To:         entry.ToState(),
		Transition: entry.TransitionName(),
		Effects:    entry.Effects(),
		Idempotent: true,
		LogID:      entry.ID(),
	}, true, nil
}

// evaluateGuards runs the transition's guards in declared order, resolving
// each from the registry. The first failing guard short-circuits. A missing
// registry key is a configuration defect returned as an error.
func (s *TransitionService) evaluateGuards(
	ctx context.Context,
	tr Transition,
	tc TransitionContext,
) (bool, string, error) {
	for _, guardKey := range tr.Guards {
		g, err := s.registry.LookupGuard(guardKey)
		if err != nil {
			return false, "", err
		}
		allowed, reason := g(ctx, tc)
		if !allowed {
			if reason == "" {
				reason = fmt.Sprintf("guard failed: %s", guardKey)
			}
			return false, reason, nil
		}
	}
	return true, "", nil
}

func noSuchTransitionResult(from, to order.Status) TransitionResult {
	return TransitionResult{
		Success: false,
		Code:    CodeNoSuchTransition,
		From:    from,
		To:      to,
		Reason:  fmt.Sprintf("no transition defined from %s to %s", from, to),
	}
}

func guardRejectedResult(from, to order.Status, transition, reason string) TransitionResult {
	return TransitionResult{
		Success:    false,
		Code:       CodeGuardRejected,
		From:       from,
		To:         to,
		Transition: transition,
		Reason:     reason,
	}
}
