package ports

import (
	"context"
	"encoding/json"
)

// StartRequest describes a Load All submission to the backend
type StartRequest struct {
	User      string                 `json:"user"`
	Scope     map[string]string      `json:"scope,omitempty"`
	Overrides map[string]interface{} `json:"overrides,omitempty"`
}

// Gateway is the backend service boundary that performs real data
// retrieval. All faults surface as *domain.GatewayError.
type Gateway interface {
	// StartExecution establishes one logical execution and returns its
	// backend-issued id. Not retried on failure.
	StartExecution(ctx context.Context, req StartRequest) (string, error)

	// FetchTab retrieves one tab's payload within an execution. A fault is
	// a per-tab failure, never fatal to the batch.
	FetchTab(ctx context.Context, executionID, endpoint string) (json.RawMessage, error)

	// Abort notifies the backend that an execution was abandoned.
	// Best-effort: local cancellation semantics do not depend on it.
	Abort(ctx context.Context, executionID string) error

	// PostAction submits a validated action parameter set to the backend.
	PostAction(ctx context.Context, endpoint string, params map[string]interface{}) (json.RawMessage, error)
}
