package ports

import (
	"context"

	"github.com/tradedesk/deskd/internal/domain"
)

// EventHandler processes a single event from the bus
type EventHandler func(ctx context.Context, event domain.Event) error

// EventBus publishes and subscribes to orchestration events
type EventBus interface {
	Publish(ctx context.Context, topic string, event domain.Event) error
	Subscribe(ctx context.Context, topic string, handler EventHandler) error
	Close() error
}
