// Package http exposes the order workflow engine over a REST API.
// It translates transport concerns (JSON binding, status codes, CSV export)
// into application commands and queries; no business rules live here.
package http

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strings"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/workflow"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server wires the HTTP routes to application use cases.
type Server struct {
	// Command handlers
	createOrderHandler     commands.CreateOrderCommandHandler
	transitionOrderHandler commands.TransitionOrderCommandHandler
	bulkTransitionHandler  commands.BulkTransitionCommandHandler

	// Query handlers
	getTimelineHandler      queries.GetOrderTimelineQueryHandler
	getStatusSummaryHandler queries.GetStatusSummaryQueryHandler

	// Workflow read surface for the allowed-transition choice list.
	workflowService *workflow.TransitionService
	uowFactory      commands.OrderUoWFactory
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	transitionOrderHandler commands.TransitionOrderCommandHandler,
	bulkTransitionHandler commands.BulkTransitionCommandHandler,
	getTimelineHandler queries.GetOrderTimelineQueryHandler,
	getStatusSummaryHandler queries.GetStatusSummaryQueryHandler,
	workflowService *workflow.TransitionService,
	uowFactory commands.OrderUoWFactory,
) *Server {
	return &Server{
		createOrderHandler:      createOrderHandler,
		transitionOrderHandler:  transitionOrderHandler,
		bulkTransitionHandler:   bulkTransitionHandler,
		getTimelineHandler:      getTimelineHandler,
		getStatusSummaryHandler: getStatusSummaryHandler,
		workflowService:         workflowService,
		uowFactory:              uowFactory,
	}
}

// RegisterRoutes attaches all API routes to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/summary", s.GetStatusSummary)
	api.POST("/orders/transitions", s.BulkTransition)
	api.GET("/orders/:id/transitions", s.GetOrderTransitions)
	api.POST("/orders/:id/transition", s.TransitionOrder)
	api.GET("/orders/:id/timeline", s.GetOrderTimeline)
}

// CreateOrder handles POST /api/v1/orders - creates a new order.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var req CreateOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, "Invalid request body")
	}

	total, err := kernel.NewMoney(req.Amount, req.Currency)
	if err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, "Invalid order total: "+err.Error())
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(orderID, req.Email, total)
	if err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, "Invalid order data: "+err.Error())
	}

	if handleErr := s.createOrderHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return s.errorResponse(ctx, http.StatusInternalServerError, "Failed to create order")
	}

	return ctx.JSON(http.StatusCreated, CreateOrderResponse{ID: orderID.String()})
}

// GetOrderTransitions handles GET /api/v1/orders/:id/transitions - lists the
// transitions defined from the order's current state. With an actor query
// parameter guards are evaluated and each option carries its eligibility.
func (s *Server) GetOrderTransitions(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, "Invalid order ID")
	}

	aggregate, err := s.uowFactory.Create().OrderRepository().Get(ctx.Request().Context(), orderID)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return s.errorResponse(ctx, http.StatusNotFound, "Order not found")
		}
		return s.errorResponse(ctx, http.StatusInternalServerError, "Failed to load order")
	}

	var tc *workflow.TransitionContext
	if actor := ctx.QueryParam("actor"); actor != "" {
		tc = &workflow.TransitionContext{Actor: actor}
	}

	attempts, err := s.workflowService.AllowedTransitions(ctx.Request().Context(), aggregate, tc)
	if err != nil {
		return s.errorResponse(ctx, http.StatusInternalServerError, "Failed to evaluate transitions")
	}

	response := make([]TransitionOption, len(attempts))
	for i, attempt := range attempts {
		response[i] = TransitionOption{
			Name:    attempt.Transition.Name,
			To:      attempt.Transition.ToState.String(),
			Allowed: attempt.Allowed,
			Reason:  attempt.Reason,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// TransitionOrder handles POST /api/v1/orders/:id/transition - runs one
// transition through the engine and maps the structured outcome to a status
// code: 200 for success and passing dry-runs, 409 for undefined transitions
// and lock contention, 403 for guard rejections, 502 for effect failures.
func (s *Server) TransitionOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, "Invalid order ID")
	}

	var req TransitionRequest
	if err = ctx.Bind(&req); err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, "Invalid request body")
	}

	target, err := order.StatusFromString(req.To)
	if err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, "Unknown target status: "+req.To)
	}

	cmd, err := commands.NewTransitionOrderCommand(
		orderID, target, req.Actor, req.Note, req.Params, req.IdempotencyKey, req.DryRun)
	if err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, "Invalid transition data: "+err.Error())
	}

	result, err := s.transitionOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrObjectNotFound):
			return s.errorResponse(ctx, http.StatusNotFound, "Order not found")
		case errors.Is(err, workflow.ErrLockContention):
			return s.errorResponse(ctx, http.StatusConflict, "Order is locked by another transition")
		case errors.Is(err, workflow.ErrEffectFailed):
			return s.errorResponse(ctx, http.StatusBadGateway, "Transition effect failed: "+err.Error())
		default:
			return s.errorResponse(ctx, http.StatusInternalServerError, "Transition failed")
		}
	}

	status := http.StatusOK
	switch result.Code {
	case workflow.CodeNoSuchTransition:
		status = http.StatusConflict
	case workflow.CodeGuardRejected:
		status = http.StatusForbidden
	}

	return ctx.JSON(status, transitionResponseFrom(result))
}

// BulkTransition handles POST /api/v1/orders/transitions - applies one target
// status to a batch of orders. Per-order outcomes are reported individually;
// the call itself succeeds even when every item fails.
func (s *Server) BulkTransition(ctx echo.Context) error {
	var req BulkTransitionRequest
	if err := ctx.Bind(&req); err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, "Invalid request body")
	}

	target, err := order.StatusFromString(req.To)
	if err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, "Unknown target status: "+req.To)
	}

	orderIDs := make([]kernel.UUID, len(req.OrderIDs))
	for i, raw := range req.OrderIDs {
		orderIDs[i], err = kernel.UUIDFromString(raw)
		if err != nil {
			return s.errorResponse(ctx, http.StatusBadRequest, "Invalid order ID: "+raw)
		}
	}

	cmd, err := commands.NewBulkTransitionCommand(orderIDs, target, req.Actor, req.Note, req.DryRun)
	if err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, "Invalid bulk transition data: "+err.Error())
	}

	result, err := s.bulkTransitionHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.errorResponse(ctx, http.StatusInternalServerError, "Bulk transition failed")
	}

	items := make([]BulkTransitionItemResponse, len(result.Items))
	for i, item := range result.Items {
		items[i] = BulkTransitionItemResponse{
			OrderID:    item.OrderID.String(),
			Success:    item.Error == "" && item.Result.Success,
			Code:       string(item.Result.Code),
			Transition: item.Result.Transition,
			Reason:     item.Result.Reason,
			Error:      item.Error,
		}
	}

	return ctx.JSON(http.StatusOK, BulkTransitionResponse{
		Items:     items,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
	})
}

// GetOrderTimeline handles GET /api/v1/orders/:id/timeline - returns the
// order's audit trail, oldest first. With format=csv the trail is exported
// as a CSV attachment.
func (s *Server) GetOrderTimeline(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, "Invalid order ID")
	}

	query, err := queries.NewGetOrderTimelineQuery(orderID)
	if err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, "Invalid order ID")
	}

	entries, err := s.getTimelineHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.errorResponse(ctx, http.StatusInternalServerError, "Failed to retrieve timeline")
	}

	if ctx.QueryParam("format") == "csv" {
		return s.writeTimelineCSV(ctx, orderID, entries)
	}

	response := make([]TimelineEntry, len(entries))
	for i, entry := range entries {
		response[i] = TimelineEntry{
			ID:             entry.ID.String(),
			FromState:      entry.FromState,
			ToState:        entry.ToState,
			Actor:          entry.Actor,
			Note:           entry.Note,
			Transition:     entry.TransitionName,
			Effects:        entry.Effects,
			IdempotencyKey: entry.IdempotencyKey,
			CreatedAt:      entry.CreatedAt.UTC().Format(time.RFC3339),
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetStatusSummary handles GET /api/v1/orders/summary - returns order counts
// per status.
func (s *Server) GetStatusSummary(ctx echo.Context) error {
	rows, err := s.getStatusSummaryHandler.Handle(ctx.Request().Context(), queries.NewGetStatusSummaryQuery())
	if err != nil {
		return s.errorResponse(ctx, http.StatusInternalServerError, "Failed to retrieve summary")
	}

	response := make([]StatusSummaryEntry, len(rows))
	for i, row := range rows {
		response[i] = StatusSummaryEntry{Status: row.Status, Count: row.Count}
	}

	return ctx.JSON(http.StatusOK, response)
}

func (s *Server) writeTimelineCSV(
	ctx echo.Context,
	orderID kernel.UUID,
	entries []queries.GetOrderTimelineQueryResponse,
) error {
	ctx.Response().Header().Set(echo.HeaderContentType, "text/csv")
	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="timeline-`+orderID.String()+`.csv"`)
	ctx.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(ctx.Response())
	header := []string{"id", "from_state", "to_state", "actor", "note", "transition", "effects", "idempotency_key", "created_at"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, entry := range entries {
		record := []string{
			entry.ID.String(),
			entry.FromState,
			entry.ToState,
			entry.Actor,
			entry.Note,
			entry.TransitionName,
			strings.Join(entry.Effects, ";"),
			entry.IdempotencyKey,
			entry.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func (s *Server) errorResponse(ctx echo.Context, code int, message string) error {
	return ctx.JSON(code, Error{Code: code, Message: message})
}

func transitionResponseFrom(result workflow.TransitionResult) TransitionResponse {
	response := TransitionResponse{
		Success:    result.Success,
		Code:       string(result.Code),
		From:       result.From.String(),
		To:         result.To.String(),
		Transition: result.Transition,
		Effects:    result.Effects,
		Idempotent: result.Idempotent,
		DryRun:     result.DryRun,
		Reason:     result.Reason,
	}
	if result.LogID.Validate() == nil {
		response.LogID = result.LogID.String()
	}
	return response
}
