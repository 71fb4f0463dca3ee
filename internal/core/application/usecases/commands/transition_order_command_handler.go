package commands

import (
	"context"
	"log/slog"

	"orderflow/internal/core/workflow"
)

// TransitionOrderCommandHandler routes transition requests either through the
// workflow engine or, while the engine rollout flag is off, through the legacy
// direct status update.
//
// The legacy path exists only as a rollback lever: it changes the status with
// no guard evaluation, no effects and no audit record, exactly like the code
// the engine replaces. The flag is injected at construction so a single
// process serves one behavior consistently.
type TransitionOrderCommandHandler struct {
	service       *workflow.TransitionService
	uowFactory    OrderUoWFactory
	engineEnabled bool
	logger        *slog.Logger
}

// NewTransitionOrderCommandHandler creates a handler for order transitions.
// When engineEnabled is false, transitions bypass the workflow engine and
// update the status directly.
func NewTransitionOrderCommandHandler(
	service *workflow.TransitionService,
	uowFactory OrderUoWFactory,
	engineEnabled bool,
	logger *slog.Logger,
) TransitionOrderCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return TransitionOrderCommandHandler{
		service:       service,
		uowFactory:    uowFactory,
		engineEnabled: engineEnabled,
		logger:        logger.With("component", "transition_order_handler"),
	}
}

// Handle processes the transition command and reports the structured outcome.
//
// Expected misses (no matching transition, guard rejection) come back inside
// the result with Success=false; infrastructure problems, effect failures and
// lock contention come back as errors.
func (h *TransitionOrderCommandHandler) Handle(
	ctx context.Context,
	cmd TransitionOrderCommand,
) (workflow.TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return workflow.TransitionResult{}, err
	}

	if !h.engineEnabled {
		return h.handleDirect(ctx, cmd)
	}

	uow := h.uowFactory.Create()
	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return workflow.TransitionResult{}, err
	}

	return h.service.Transition(ctx, workflow.TransitionRequest{
		Order:          aggregate,
		To:             cmd.Target(),
		Actor:          cmd.Actor(),
		Note:           cmd.Note(),
		Params:         cmd.Params(),
		IdempotencyKey: cmd.IdempotencyKey(),
		DryRun:         cmd.DryRun(),
	})
}

// handleDirect performs the legacy status update: set the field, save the row.
func (h *TransitionOrderCommandHandler) handleDirect(
	ctx context.Context,
	cmd TransitionOrderCommand,
) (workflow.TransitionResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return workflow.TransitionResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return workflow.TransitionResult{}, err
	}

	from := aggregate.Status()

	if cmd.DryRun() {
		return workflow.TransitionResult{
			Success:    true,
			Code:       workflow.CodeOK,
			From:       from,
			To:         cmd.Target(),
			Transition: "direct_update",
			DryRun:     true,
		}, nil
	}

	if err = aggregate.ChangeStatus(cmd.Target()); err != nil {
		return workflow.TransitionResult{}, err
	}
	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return workflow.TransitionResult{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return workflow.TransitionResult{}, err
	}

	h.logger.WarnContext(ctx, "order status updated outside workflow engine",
		"order_id", cmd.OrderID().String(),
		"from", from.String(),
		"to", cmd.Target().String(),
		"actor", cmd.Actor(),
	)

	return workflow.TransitionResult{
		Success:    true,
		Code:       workflow.CodeOK,
		From:       from,
		To:         cmd.Target(),
		Transition: "direct_update",
	}, nil
}
