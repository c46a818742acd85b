// Package view provides the production presentation consumer: each tab's
// notifications are published to the event bus, where dashboard clients
// pick them up over WebSocket.
package view

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradedesk/deskd/internal/domain"
	"github.com/tradedesk/deskd/internal/registry"
	"github.com/tradedesk/deskd/pkg/ports"
)

// viewTopic carries per-tab view notifications. Kept separate from the
// orchestration topic so clients can subscribe to payloads independently
// of lifecycle events.
const viewTopic = "tab.events"

// View notification event types
const (
	EventViewLoading  domain.EventType = "view.loading"
	EventViewData     domain.EventType = "view.data"
	EventViewError    domain.EventType = "view.error"
	EventViewDisabled domain.EventType = "view.disabled"
)

// BusView implements ports.TabView for one tab by publishing notifications
// to the event bus
type BusView struct {
	tab    string
	bus    ports.EventBus
	logger *zap.Logger
}

// NewBusView creates a bus-backed view for one tab
func NewBusView(tab string, bus ports.EventBus, logger *zap.Logger) *BusView {
	return &BusView{
		tab:    tab,
		bus:    bus,
		logger: logger,
	}
}

// NewBusViews creates a bus-backed view per registered tab
func NewBusViews(reg *registry.Registry, bus ports.EventBus, logger *zap.Logger) map[string]ports.TabView {
	views := make(map[string]ports.TabView, reg.Len())
	for _, name := range reg.Names() {
		views[name] = NewBusView(name, bus, logger)
	}
	return views
}

// SetLoading publishes a loading notification
func (v *BusView) SetLoading(loading bool) {
	v.publish(EventViewLoading, map[string]interface{}{"loading": loading})
}

// Update publishes the tab's mapped payload
func (v *BusView) Update(data interface{}) {
	v.publish(EventViewData, map[string]interface{}{"data": data})
}

// SetError publishes a user-visible error message
func (v *BusView) SetError(message string) {
	v.publish(EventViewError, map[string]interface{}{"error": message})
}

// SetDisabled publishes a disabled notification
func (v *BusView) SetDisabled(disabled bool) {
	v.publish(EventViewDisabled, map[string]interface{}{"disabled": disabled})
}

// publish sends one notification. Publishing is fire-and-forget: a bus
// fault must not disturb the orchestration loop.
func (v *BusView) publish(eventType domain.EventType, data map[string]interface{}) {
	event := domain.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Tab:       v.tab,
		Timestamp: time.Now(),
		Data:      data,
	}

	if err := v.bus.Publish(context.Background(), viewTopic, event); err != nil {
		v.logger.Error("failed to publish view notification",
			zap.String("tab", v.tab),
			zap.String("event_type", string(eventType)),
			zap.Error(err))
	}
}
