package commands

import (
	"context"
	"log/slog"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/workflow"

	"golang.org/x/sync/errgroup"
)

// bulkConcurrencyLimit caps the number of transitions in flight per batch so a
// large selection cannot exhaust the database connection pool.
const bulkConcurrencyLimit = 8

// BulkTransitionItem is the per-order outcome of a batch transition.
// Either Result holds the structured workflow outcome, or Error holds the
// message of the failure that prevented one.
type BulkTransitionItem struct {
	OrderID kernel.UUID
	Result  workflow.TransitionResult
	Error   string
}

// BulkTransitionResult aggregates the per-order outcomes of a batch.
// Items preserve the order of the requested IDs.
type BulkTransitionResult struct {
	Items     []BulkTransitionItem
	Succeeded int
	Failed    int
}

// BulkTransitionCommandHandler applies one transition to many orders
// concurrently, each through the regular single-order handler.
//
// Failures and guard rejections are recorded per item and never cancel the
// rest of the batch.
type BulkTransitionCommandHandler struct {
	transitionHandler TransitionOrderCommandHandler
	logger            *slog.Logger
}

// NewBulkTransitionCommandHandler creates a handler for batch transitions.
// Delegates each order to the given single-order transition handler.
func NewBulkTransitionCommandHandler(
	transitionHandler TransitionOrderCommandHandler,
	logger *slog.Logger,
) BulkTransitionCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return BulkTransitionCommandHandler{
		transitionHandler: transitionHandler,
		logger:            logger.With("component", "bulk_transition_handler"),
	}
}

// Handle processes the batch and reports one item per requested order.
// The returned error covers only command validation; per-order failures live
// in the items.
func (h *BulkTransitionCommandHandler) Handle(
	ctx context.Context,
	cmd BulkTransitionCommand,
) (BulkTransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return BulkTransitionResult{}, err
	}

	ids := cmd.OrderIDs()
	items := make([]BulkTransitionItem, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkConcurrencyLimit)

	for i, id := range ids {
		g.Go(func() error {
			items[i] = h.transitionOne(gctx, cmd, id)
			return nil
		})
	}

	// Workers never return errors; Wait only synchronizes completion.
	_ = g.Wait()

	result := BulkTransitionResult{Items: items}
	for _, item := range items {
		if item.Error == "" && item.Result.Success {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}

	h.logger.InfoContext(ctx, "bulk transition finished",
		"target", cmd.Target().String(),
		"dry_run", cmd.DryRun(),
		"total", len(items),
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)

	return result, nil
}

// transitionOne runs a single order through the transition handler and folds
// the outcome into a batch item.
func (h *BulkTransitionCommandHandler) transitionOne(
	ctx context.Context,
	cmd BulkTransitionCommand,
	id kernel.UUID,
) BulkTransitionItem {
	item := BulkTransitionItem{OrderID: id}

	single, err := NewTransitionOrderCommand(id, cmd.Target(), cmd.Actor(), cmd.Note(), nil, "", cmd.DryRun())
	if err != nil {
		item.Error = err.Error()
		return item
	}

	result, err := h.transitionHandler.Handle(ctx, single)
	if err != nil {
		item.Error = err.Error()
		return item
	}

	item.Result = result
	return item
}
