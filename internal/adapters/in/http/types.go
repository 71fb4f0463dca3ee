package http

// Request and response types for the order workflow API.
// Kept as plain structs so the HTTP contract is visible in one place.

// Error is the uniform error body returned by every handler.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CreateOrderRequest is the body of POST /api/v1/orders.
type CreateOrderRequest struct {
	Email    string `json:"email"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreateOrderResponse returns the identifier of the created order.
type CreateOrderResponse struct {
	ID string `json:"id"`
}

// TransitionRequest is the body of POST /api/v1/orders/:id/transition.
type TransitionRequest struct {
	To             string         `json:"to"`
	Actor          string         `json:"actor,omitempty"`
	Note           string         `json:"note,omitempty"`
	Params         map[string]any `json:"params,omitempty"`
	IdempotencyKey string         `json:"idempotency_key,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
}

// TransitionResponse reports the outcome of a single transition attempt.
type TransitionResponse struct {
	Success    bool     `json:"success"`
	Code       string   `json:"code"`
	From       string   `json:"from"`
	To         string   `json:"to"`
	Transition string   `json:"transition"`
	Effects    []string `json:"effects,omitempty"`
	Idempotent bool     `json:"idempotent,omitempty"`
	DryRun     bool     `json:"dry_run,omitempty"`
	LogID      string   `json:"log_id,omitempty"`
	Reason     string   `json:"reason,omitempty"`
}

// TransitionOption is one entry of the allowed-transition choice list for an
// order, GET /api/v1/orders/:id/transitions.
type TransitionOption struct {
	Name    string `json:"name"`
	To      string `json:"to"`
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// BulkTransitionRequest is the body of POST /api/v1/orders/transitions.
type BulkTransitionRequest struct {
	OrderIDs []string `json:"order_ids"`
	To       string   `json:"to"`
	Actor    string   `json:"actor,omitempty"`
	Note     string   `json:"note,omitempty"`
	DryRun   bool     `json:"dry_run,omitempty"`
}

// BulkTransitionItemResponse reports the per-order outcome of a bulk run.
type BulkTransitionItemResponse struct {
	OrderID    string `json:"order_id"`
	Success    bool   `json:"success"`
	Code       string `json:"code,omitempty"`
	Transition string `json:"transition,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Error      string `json:"error,omitempty"`
}

// BulkTransitionResponse aggregates a bulk transition run.
type BulkTransitionResponse struct {
	Items     []BulkTransitionItemResponse `json:"items"`
	Succeeded int                          `json:"succeeded"`
	Failed    int                          `json:"failed"`
}

// TimelineEntry is one audit log row of GET /api/v1/orders/:id/timeline.
type TimelineEntry struct {
	ID             string   `json:"id"`
	FromState      string   `json:"from_state"`
	ToState        string   `json:"to_state"`
	Actor          string   `json:"actor,omitempty"`
	Note           string   `json:"note,omitempty"`
	Transition     string   `json:"transition"`
	Effects        []string `json:"effects,omitempty"`
	IdempotencyKey string   `json:"idempotency_key,omitempty"`
	CreatedAt      string   `json:"created_at"`
}

// StatusSummaryEntry is one row of GET /api/v1/orders/summary.
type StatusSummaryEntry struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}
