package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tradedesk/deskd/pkg/ports"
)

// Action binds a name and a gateway endpoint to a parameter schema
type Action struct {
	Name     string
	Endpoint string
	Schema   Schema
}

// Dispatcher validates submitted parameters and forwards accepted
// submissions to the Backend Gateway
type Dispatcher struct {
	actions map[string]Action
	gateway ports.Gateway
	metrics ports.MetricsCollector
	logger  *zap.Logger
}

// NewDispatcher creates a new action dispatcher
func NewDispatcher(gateway ports.Gateway, metrics ports.MetricsCollector, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		actions: make(map[string]Action),
		gateway: gateway,
		metrics: metrics,
		logger:  logger,
	}
}

// Register adds an action. Names must be unique.
func (d *Dispatcher) Register(action Action) error {
	if action.Name == "" {
		return fmt.Errorf("action name is required")
	}
	if action.Endpoint == "" {
		return fmt.Errorf("action %s has no endpoint", action.Name)
	}
	if _, exists := d.actions[action.Name]; exists {
		return fmt.Errorf("duplicate action: %s", action.Name)
	}
	d.actions[action.Name] = action
	return nil
}

// Lookup returns a registered action by name
func (d *Dispatcher) Lookup(name string) (Action, bool) {
	action, ok := d.actions[name]
	return action, ok
}

// Submit validates raw parameters against the action's schema and posts
// the typed set to the gateway. On *domain.ValidationError the gateway is
// never called; the error carries the user-visible message.
func (d *Dispatcher) Submit(ctx context.Context, name string, raw map[string]interface{}) (json.RawMessage, error) {
	action, ok := d.actions[name]
	if !ok {
		return nil, fmt.Errorf("unknown action: %s", name)
	}

	params, err := Validate(action.Schema, raw)
	if err != nil {
		d.metrics.RecordActionSubmitted(name, "rejected")
		d.logger.Info("action rejected",
			zap.String("action", name),
			zap.Error(err))
		return nil, err
	}

	started := time.Now()
	response, err := d.gateway.PostAction(ctx, action.Endpoint, params)
	if err != nil {
		d.metrics.RecordActionSubmitted(name, "failed")
		d.logger.Error("action submission failed",
			zap.String("action", name),
			zap.String("endpoint", action.Endpoint),
			zap.Error(err))
		return nil, err
	}

	d.metrics.RecordActionSubmitted(name, "accepted")
	d.logger.Info("action submitted",
		zap.String("action", name),
		zap.String("endpoint", action.Endpoint),
		zap.Duration("duration", time.Since(started)))

	return response, nil
}
