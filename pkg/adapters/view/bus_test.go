package view

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/tradedesk/deskd/internal/domain"
	"github.com/tradedesk/deskd/internal/registry"
	eventsmem "github.com/tradedesk/deskd/pkg/adapters/events/memory"
)

func collectViewEvents(t *testing.T, bus *eventsmem.InMemoryEventBus, sink *[]domain.Event) {
	t.Helper()

	err := bus.Subscribe(context.Background(), "tab.events", func(ctx context.Context, event domain.Event) error {
		*sink = append(*sink, event)
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
}

func TestBusViewNotificationTypes(t *testing.T) {
	bus := eventsmem.NewInMemoryEventBus()
	var events []domain.Event
	collectViewEvents(t, bus, &events)

	view := NewBusView("positions", bus, zap.NewNop())
	view.SetLoading(true)
	view.Update(map[string]interface{}{"rows": 3})
	view.SetLoading(false)
	view.SetError("stale quote feed")
	view.SetDisabled(true)

	want := []domain.EventType{
		EventViewLoading,
		EventViewData,
		EventViewLoading,
		EventViewError,
		EventViewDisabled,
	}
	if len(events) != len(want) {
		t.Fatalf("events = %d, want %d", len(events), len(want))
	}
	for i, eventType := range want {
		if events[i].Type != eventType {
			t.Errorf("events[%d].Type = %s, want %s", i, events[i].Type, eventType)
		}
		if events[i].Tab != "positions" {
			t.Errorf("events[%d].Tab = %s, want positions", i, events[i].Tab)
		}
		if events[i].ID == "" {
			t.Errorf("events[%d] has no id", i)
		}
	}

	if events[3].Data["error"] != "stale quote feed" {
		t.Errorf("error payload = %v", events[3].Data)
	}
	if events[4].Data["disabled"] != true {
		t.Errorf("disabled payload = %v", events[4].Data)
	}
}

func TestNewBusViewsCoversRegistry(t *testing.T) {
	reg, err := registry.New([]registry.TabDescriptor{
		{Name: "positions", Endpoint: "/api/positions"},
		{Name: "settings"},
	})
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}

	views := NewBusViews(reg, eventsmem.NewInMemoryEventBus(), zap.NewNop())
	if len(views) != 2 {
		t.Fatalf("views = %d, want 2", len(views))
	}
	for _, name := range reg.Names() {
		if views[name] == nil {
			t.Errorf("no view for %s", name)
		}
	}
}
