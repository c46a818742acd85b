package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrExecutionInProgress is returned when a Load All is requested while
// another execution is still running. The orchestrator rejects instead of
// superseding.
var ErrExecutionInProgress = errors.New("an execution is already in progress")

// GatewayError represents a transport or backend-level fault from the
// Backend Gateway. It is recovered at tab granularity: a failed tab fetch
// marks that tab Failed and the batch continues.
type GatewayError struct {
	Op       string
	Endpoint string
	Status   int
	Err      error
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gateway %s %s: unexpected status %d", e.Op, e.Endpoint, e.Status)
	}
	return fmt.Sprintf("gateway %s %s: %v", e.Op, e.Endpoint, e.Err)
}

// Unwrap returns the underlying transport error, if any
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// UnknownTabError indicates a tab name that is not part of the registry or
// the current outcome map. This is a configuration defect, not a runtime
// condition.
type UnknownTabError struct {
	Tab string
}

// Error implements the error interface
func (e *UnknownTabError) Error() string {
	return fmt.Sprintf("unknown tab: %s", e.Tab)
}

// InvalidTransitionError indicates a state-machine misuse, such as
// finishing an execution twice or overwriting a terminal tab outcome.
type InvalidTransitionError struct {
	From string
	To   string
}

// Error implements the error interface
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// ValidationError reports invalid action parameters. It is user-facing:
// the action handler is never invoked when validation fails.
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "invalid parameters: " + strings.Join(parts, "; ")
}
