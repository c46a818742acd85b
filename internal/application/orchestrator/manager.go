package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradedesk/deskd/internal/domain"
	"github.com/tradedesk/deskd/internal/registry"
	"github.com/tradedesk/deskd/pkg/ports"
)

// eventTopic is where orchestration progress is published
const eventTopic = "execution.events"

// abortNotifyTimeout bounds the best-effort backend abort notification
const abortNotifyTimeout = 5 * time.Second

// MapperFunc converts a raw tab payload into its display form. A mapper
// fault is treated exactly like a tab fetch failure: isolated to that tab.
type MapperFunc func(raw json.RawMessage) (interface{}, error)

// Manager owns the Load All control loop. It is the only writer of the
// execution state; at most one Load All runs at a time and a second
// request is rejected while one is in progress.
type Manager struct {
	registry *registry.Registry
	gateway  ports.Gateway
	views    map[string]ports.TabView
	mappers  map[string]MapperFunc
	bus      ports.EventBus
	store    ports.SnapshotStore
	metrics  ports.MetricsCollector
	logger   *zap.Logger

	state   *domain.ExecutionState
	running atomic.Bool
}

// NewManager creates a new orchestrator manager
func NewManager(
	reg *registry.Registry,
	gateway ports.Gateway,
	views map[string]ports.TabView,
	bus ports.EventBus,
	store ports.SnapshotStore,
	metrics ports.MetricsCollector,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		registry: reg,
		gateway:  gateway,
		views:    views,
		mappers:  make(map[string]MapperFunc),
		bus:      bus,
		store:    store,
		metrics:  metrics,
		logger:   logger,
		state:    domain.NewExecutionState(),
	}
}

// RegisterMapper installs the payload mapper for a tab. Tabs without a
// mapper pass the raw payload through unchanged.
func (m *Manager) RegisterMapper(tab string, fn MapperFunc) error {
	if _, err := m.registry.Lookup(tab); err != nil {
		return err
	}
	m.mappers[tab] = fn
	return nil
}

// RunLoadAll executes one Load All batch: it establishes an execution
// against the backend, fetches every registered tab in order, and
// finalizes the execution state. One tab's failure never aborts the
// batch; cancellation takes effect between tab fetches.
//
// Returns domain.ErrExecutionInProgress if a batch is already running.
func (m *Manager) RunLoadAll(ctx context.Context, req ports.StartRequest) (*domain.ExecutionSummary, error) {
	if !m.running.CompareAndSwap(false, true) {
		return nil, domain.ErrExecutionInProgress
	}
	defer m.running.Store(false)

	executionID, err := m.gateway.StartExecution(ctx, req)
	if err != nil {
		m.logger.Error("failed to start execution",
			zap.String("user", req.User),
			zap.Error(err))
		m.metrics.RecordStartFailure()

		m.state.RecordStartFailure(err.Error())
		summary := m.state.Snapshot().Summary()
		return &summary, fmt.Errorf("start execution: %w", err)
	}

	m.state.Start(executionID, m.registry.Names())
	m.metrics.RecordExecutionStarted()
	m.metrics.SetExecutionActive(true)
	defer m.metrics.SetExecutionActive(false)

	m.logger.Info("execution started",
		zap.String("execution_id", executionID),
		zap.String("user", req.User),
		zap.Int("tabs", m.registry.Len()))

	m.publishEvent(ctx, domain.EventExecutionStarted, "", map[string]interface{}{
		"user": req.User,
		"tabs": m.registry.Len(),
	})
	m.saveSnapshot(ctx)

	started := time.Now()
	tabs := m.registry.All()
	for i, tab := range tabs {
		if m.state.Cancelled() {
			m.skipRemaining(ctx, tabs[i:])
			break
		}
		m.loadTab(ctx, executionID, tab)
	}

	final := domain.StatusCompleted
	if m.state.Cancelled() {
		final = domain.StatusAborted
	}
	if err := m.state.Finish(final); err != nil {
		// One producer: a failed finish indicates a concurrency bug.
		m.logger.Error("failed to finish execution",
			zap.String("execution_id", executionID),
			zap.Error(err))
	}

	if final == domain.StatusAborted {
		m.notifyAbort(executionID)
	}

	duration := time.Since(started)
	m.metrics.RecordExecutionFinished(string(final), duration)
	m.saveSnapshot(ctx)

	summary := m.state.Snapshot().Summary()
	m.publishEvent(ctx, domain.EventExecutionFinished, "", map[string]interface{}{
		"status":  string(final),
		"loaded":  summary.Loaded,
		"failed":  summary.Failed,
		"skipped": summary.Skipped,
	})

	m.logger.Info("execution finished",
		zap.String("execution_id", executionID),
		zap.String("status", string(final)),
		zap.Int("loaded", summary.Loaded),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Duration("duration", duration))

	return &summary, nil
}

// loadTab fetches one tab and records its outcome. All faults, fetch or
// mapping, are converted into a Failed outcome plus a consumer-visible
// error message; nothing propagates to the batch.
func (m *Manager) loadTab(ctx context.Context, executionID string, tab registry.TabDescriptor) {
	if !tab.HasEndpoint() {
		m.recordOutcome(tab.Name, domain.OutcomeSkipped)
		m.publishEvent(ctx, domain.EventTabSkipped, tab.Name, nil)
		return
	}

	view := m.viewFor(tab.Name)

	m.recordOutcome(tab.Name, domain.OutcomeLoading)
	view.SetLoading(true)
	m.publishEvent(ctx, domain.EventTabLoading, tab.Name, nil)

	fetchStart := time.Now()
	raw, err := m.gateway.FetchTab(ctx, executionID, tab.Endpoint)
	m.metrics.ObserveTabFetch(tab.Name, time.Since(fetchStart))

	var data interface{}
	if err == nil {
		data, err = m.mapPayload(tab.Name, raw)
	}

	if err != nil {
		message := loadErrorMessage(tab, err)
		m.logger.Warn("tab load failed",
			zap.String("execution_id", executionID),
			zap.String("tab", tab.Name),
			zap.String("endpoint", tab.Endpoint),
			zap.Error(err))

		view.SetError(message)
		view.SetLoading(false)
		m.recordOutcome(tab.Name, domain.OutcomeFailed)
		m.publishEvent(ctx, domain.EventTabFailed, tab.Name, map[string]interface{}{
			"error": message,
		})
		m.saveSnapshot(ctx)
		return
	}

	view.Update(data)
	view.SetLoading(false)
	m.recordOutcome(tab.Name, domain.OutcomeLoaded)
	m.publishEvent(ctx, domain.EventTabLoaded, tab.Name, map[string]interface{}{
		"data": data,
	})
	m.saveSnapshot(ctx)
}

// skipRemaining marks every not-yet-visited tab Skipped after
// cancellation was observed
func (m *Manager) skipRemaining(ctx context.Context, tabs []registry.TabDescriptor) {
	for _, tab := range tabs {
		m.recordOutcome(tab.Name, domain.OutcomeSkipped)
		m.viewFor(tab.Name).SetDisabled(true)
		m.publishEvent(ctx, domain.EventTabSkipped, tab.Name, map[string]interface{}{
			"reason": "cancelled",
		})
	}
	m.saveSnapshot(ctx)
}

// mapPayload applies the tab's registered mapper, raw passthrough without one
func (m *Manager) mapPayload(tab string, raw json.RawMessage) (interface{}, error) {
	mapper, ok := m.mappers[tab]
	if !ok {
		return raw, nil
	}
	data, err := mapper(raw)
	if err != nil {
		return nil, fmt.Errorf("map response: %w", err)
	}
	return data, nil
}

// Abort requests cancellation of the current execution. Idempotent, and a
// harmless no-op once the execution has finished. The loop observes the
// flag at the next tab boundary; an in-flight fetch always completes or
// fails on its own first.
func (m *Manager) Abort() domain.ExecutionSnapshot {
	m.state.RequestAbort()

	snap := m.state.Snapshot()
	m.logger.Info("abort requested",
		zap.String("execution_id", snap.ExecutionID),
		zap.String("status", string(snap.Status)))
	return snap
}

// Current returns a snapshot of the current execution state
func (m *Manager) Current() domain.ExecutionSnapshot {
	return m.state.Snapshot()
}

// GetExecution retrieves an execution snapshot, current or persisted
func (m *Manager) GetExecution(ctx context.Context, executionID string) (*domain.ExecutionSnapshot, error) {
	current := m.state.Snapshot()
	if current.ExecutionID == executionID {
		return &current, nil
	}
	return m.store.Get(ctx, executionID)
}

// ListExecutions returns all persisted execution snapshots
func (m *Manager) ListExecutions(ctx context.Context) ([]*domain.ExecutionSnapshot, error) {
	return m.store.List(ctx)
}

// notifyAbort tells the backend the execution was abandoned. Best-effort:
// a failure here never changes the local outcome.
func (m *Manager) notifyAbort(executionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), abortNotifyTimeout)
	defer cancel()

	if err := m.gateway.Abort(ctx, executionID); err != nil {
		m.logger.Warn("failed to notify backend of abort",
			zap.String("execution_id", executionID),
			zap.Error(err))
	}
}

// recordOutcome records a tab outcome and reports it to metrics. An
// UnknownTabError here means the registry and the outcome map diverged,
// which cannot happen while the loop is the single producer.
func (m *Manager) recordOutcome(tab string, outcome domain.TabOutcome) {
	if err := m.state.RecordOutcome(tab, outcome); err != nil {
		m.logger.Error("failed to record outcome",
			zap.String("tab", tab),
			zap.String("outcome", string(outcome)),
			zap.Error(err))
		return
	}
	if outcome.Terminal() {
		m.metrics.RecordTabOutcome(tab, string(outcome))
	}
}

// viewFor returns the presentation consumer for a tab, a no-op when none
// is registered
func (m *Manager) viewFor(tab string) ports.TabView {
	if view, ok := m.views[tab]; ok && view != nil {
		return view
	}
	return nopView{}
}

// publishEvent publishes an orchestration event to the event bus
func (m *Manager) publishEvent(ctx context.Context, eventType domain.EventType, tab string, data map[string]interface{}) {
	event := domain.Event{
		ID:          uuid.New().String(),
		Type:        eventType,
		ExecutionID: m.state.ExecutionID(),
		Tab:         tab,
		Timestamp:   time.Now(),
		Data:        data,
	}

	if err := m.bus.Publish(ctx, eventTopic, event); err != nil {
		m.logger.Error("failed to publish event",
			zap.String("event_type", string(eventType)),
			zap.String("tab", tab),
			zap.Error(err))
	}
}

// saveSnapshot persists the current state. Snapshots without an execution
// id (failed start) are not persisted; the status API serves them from
// memory.
func (m *Manager) saveSnapshot(ctx context.Context) {
	snap := m.state.Snapshot()
	if snap.ExecutionID == "" {
		return
	}
	if err := m.store.Save(ctx, snap); err != nil {
		m.logger.Error("failed to save snapshot",
			zap.String("execution_id", snap.ExecutionID),
			zap.Error(err))
	}
}

// loadErrorMessage derives the short, tab-specific error text shown to
// the consumer
func loadErrorMessage(tab registry.TabDescriptor, err error) string {
	return fmt.Sprintf("failed to load %s: %v", tab.Title, err)
}

// nopView swallows notifications for tabs with no registered consumer
type nopView struct{}

func (nopView) SetLoading(bool)    {}
func (nopView) Update(interface{}) {}
func (nopView) SetError(string)    {}
func (nopView) SetDisabled(bool)   {}
