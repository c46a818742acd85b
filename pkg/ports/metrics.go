package ports

import "time"

// MetricsCollector records orchestration metrics
type MetricsCollector interface {
	RecordExecutionStarted()
	RecordStartFailure()
	RecordExecutionFinished(status string, duration time.Duration)
	RecordTabOutcome(tab, outcome string)
	ObserveTabFetch(tab string, duration time.Duration)
	SetExecutionActive(active bool)
	RecordActionSubmitted(action, result string)
}
