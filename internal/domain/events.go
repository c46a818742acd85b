package domain

import "time"

// EventType identifies an orchestration event
type EventType string

const (
	EventExecutionStarted  EventType = "execution.started"
	EventExecutionFinished EventType = "execution.finished"
	EventTabLoading        EventType = "tab.loading"
	EventTabLoaded         EventType = "tab.loaded"
	EventTabFailed         EventType = "tab.failed"
	EventTabSkipped        EventType = "tab.skipped"
)

// Event is published to the event bus as the orchestrator progresses
// through an execution. Dashboard clients consume events over WebSocket.
type Event struct {
	ID          string                 `json:"id"`
	Type        EventType              `json:"type"`
	ExecutionID string                 `json:"execution_id,omitempty"`
	Tab         string                 `json:"tab,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
	Data        map[string]interface{} `json:"data,omitempty"`
}
