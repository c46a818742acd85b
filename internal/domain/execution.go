package domain

import (
	"sync"
	"sync/atomic"
	"time"
)

// Status represents the lifecycle status of a Load All execution
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
)

// TabOutcome represents the status of one tab within one execution
type TabOutcome string

const (
	OutcomePending TabOutcome = "pending"
	OutcomeLoading TabOutcome = "loading"
	OutcomeLoaded  TabOutcome = "loaded"
	OutcomeFailed  TabOutcome = "failed"
	OutcomeSkipped TabOutcome = "skipped"
)

// Terminal reports whether the outcome is final for the current execution.
// Terminal outcomes are never revisited.
func (o TabOutcome) Terminal() bool {
	return o == OutcomeLoaded || o == OutcomeFailed || o == OutcomeSkipped
}

// ExecutionState is the authoritative record of the current execution.
//
// It has exactly one producer (the orchestrator loop) plus the abort
// control, which only sets the cancellation flag. All other components
// consume read-only snapshots.
type ExecutionState struct {
	mu          sync.RWMutex
	executionID string
	status      Status
	outcomes    map[string]TabOutcome
	startedAt   time.Time
	finishedAt  *time.Time
	startError  string

	cancelled atomic.Bool
}

// NewExecutionState creates an idle execution state
func NewExecutionState() *ExecutionState {
	return &ExecutionState{
		status:   StatusIdle,
		outcomes: make(map[string]TabOutcome),
	}
}

// Start begins a new execution, superseding any prior state. All tabs are
// reset to Pending and the cancellation flag is cleared. Always allowed.
func (s *ExecutionState) Start(executionID string, tabNames []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	outcomes := make(map[string]TabOutcome, len(tabNames))
	for _, name := range tabNames {
		outcomes[name] = OutcomePending
	}

	s.executionID = executionID
	s.status = StatusRunning
	s.outcomes = outcomes
	s.startedAt = time.Now()
	s.finishedAt = nil
	s.startError = ""
	s.cancelled.Store(false)
}

// RecordStartFailure marks the execution attempt as completed without any
// tab processed, after the gateway refused to mint an execution id.
func (s *ExecutionState) RecordStartFailure(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.executionID = ""
	s.status = StatusCompleted
	s.outcomes = make(map[string]TabOutcome)
	s.startedAt = now
	s.finishedAt = &now
	s.startError = reason
	s.cancelled.Store(false)
}

// RecordOutcome records the outcome for a tab of the current execution.
// Returns UnknownTabError if the tab is not part of the current outcome
// map, and InvalidTransitionError if the tab already reached a terminal
// outcome.
func (s *ExecutionState) RecordOutcome(tabName string, outcome TabOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.outcomes[tabName]
	if !ok {
		return &UnknownTabError{Tab: tabName}
	}
	if current.Terminal() {
		return &InvalidTransitionError{From: string(current), To: string(outcome)}
	}

	s.outcomes[tabName] = outcome
	return nil
}

// RequestAbort sets the cancellation flag. Idempotent; has no effect
// unless the execution is running. Safe to call from any goroutine.
func (s *ExecutionState) RequestAbort() {
	s.mu.RLock()
	running := s.status == StatusRunning
	s.mu.RUnlock()

	if running {
		s.cancelled.Store(true)
	}
}

// Cancelled reports whether an abort has been requested
func (s *ExecutionState) Cancelled() bool {
	return s.cancelled.Load()
}

// Finish terminates the current execution. Only legal from Running;
// a second call returns InvalidTransitionError.
func (s *ExecutionState) Finish(final Status) error {
	if final != StatusCompleted && final != StatusAborted {
		return &InvalidTransitionError{From: string(StatusRunning), To: string(final)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusRunning {
		return &InvalidTransitionError{From: string(s.status), To: string(final)}
	}

	now := time.Now()
	s.status = final
	s.finishedAt = &now
	return nil
}

// Status returns the current execution status
func (s *ExecutionState) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// ExecutionID returns the current execution id, empty when idle
func (s *ExecutionState) ExecutionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.executionID
}

// Snapshot returns a read-only copy of the current state
func (s *ExecutionState) Snapshot() ExecutionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	outcomes := make(map[string]TabOutcome, len(s.outcomes))
	for name, outcome := range s.outcomes {
		outcomes[name] = outcome
	}

	snap := ExecutionSnapshot{
		ExecutionID: s.executionID,
		Status:      s.status,
		Outcomes:    outcomes,
		StartedAt:   s.startedAt,
		StartError:  s.startError,
	}
	if s.finishedAt != nil {
		finished := *s.finishedAt
		snap.FinishedAt = &finished
	}
	return snap
}

// ExecutionSnapshot is a serializable copy of an execution state, used by
// the snapshot store and the status API
type ExecutionSnapshot struct {
	ExecutionID string                `json:"execution_id,omitempty"`
	Status      Status                `json:"status"`
	Outcomes    map[string]TabOutcome `json:"outcomes"`
	StartedAt   time.Time             `json:"started_at"`
	FinishedAt  *time.Time            `json:"finished_at,omitempty"`
	StartError  string                `json:"start_error,omitempty"`
}

// Summary aggregates the snapshot into the end-of-run report
func (s ExecutionSnapshot) Summary() ExecutionSummary {
	summary := ExecutionSummary{
		ExecutionID: s.ExecutionID,
		Status:      s.Status,
		StartError:  s.StartError,
	}
	for _, outcome := range s.Outcomes {
		switch outcome {
		case OutcomeLoaded:
			summary.Loaded++
		case OutcomeFailed:
			summary.Failed++
		case OutcomeSkipped:
			summary.Skipped++
		}
	}
	if s.FinishedAt != nil {
		summary.Duration = s.FinishedAt.Sub(s.StartedAt)
	}
	return summary
}

// ExecutionSummary is the aggregate result of one Load All run
type ExecutionSummary struct {
	ExecutionID string        `json:"execution_id,omitempty"`
	Status      Status        `json:"status"`
	Loaded      int           `json:"loaded"`
	Failed      int           `json:"failed"`
	Skipped     int           `json:"skipped"`
	Duration    time.Duration `json:"duration_ns,omitempty"`
	StartError  string        `json:"start_error,omitempty"`
}
