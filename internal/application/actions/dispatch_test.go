package actions

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tradedesk/deskd/internal/domain"
	"github.com/tradedesk/deskd/pkg/ports"
)

// fakeGateway records PostAction calls and returns a canned response
type fakeGateway struct {
	calls    int
	endpoint string
	params   map[string]interface{}
	response json.RawMessage
	err      error
}

func (g *fakeGateway) StartExecution(ctx context.Context, req ports.StartRequest) (string, error) {
	return "", errors.New("not used")
}

func (g *fakeGateway) FetchTab(ctx context.Context, executionID, endpoint string) (json.RawMessage, error) {
	return nil, errors.New("not used")
}

func (g *fakeGateway) Abort(ctx context.Context, executionID string) error {
	return errors.New("not used")
}

func (g *fakeGateway) PostAction(ctx context.Context, endpoint string, params map[string]interface{}) (json.RawMessage, error) {
	g.calls++
	g.endpoint = endpoint
	g.params = params
	return g.response, g.err
}

// fakeMetrics records action submission results
type fakeMetrics struct {
	submissions map[string][]string
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{submissions: make(map[string][]string)}
}

func (m *fakeMetrics) RecordExecutionStarted()                       {}
func (m *fakeMetrics) RecordStartFailure()                           {}
func (m *fakeMetrics) RecordExecutionFinished(string, time.Duration) {}
func (m *fakeMetrics) RecordTabOutcome(string, string)               {}
func (m *fakeMetrics) ObserveTabFetch(string, time.Duration)         {}
func (m *fakeMetrics) SetExecutionActive(bool)                       {}
func (m *fakeMetrics) RecordActionSubmitted(action, result string) {
	m.submissions[action] = append(m.submissions[action], result)
}

func newTestDispatcher(t *testing.T, gateway *fakeGateway, metrics *fakeMetrics) *Dispatcher {
	t.Helper()

	d := NewDispatcher(gateway, metrics, zap.NewNop())
	err := d.Register(Action{
		Name:     "cancel-order",
		Endpoint: "/api/orders/cancel",
		Schema: Schema{
			"order_id": {Kind: KindText, Required: true},
			"reason":   {Kind: KindEnum, Default: "user_request", Options: []string{"user_request", "risk_limit"}},
		},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return d
}

func TestRegisterValidation(t *testing.T) {
	d := NewDispatcher(&fakeGateway{}, newFakeMetrics(), zap.NewNop())

	if err := d.Register(Action{Endpoint: "/api/x"}); err == nil {
		t.Error("Register accepted a nameless action")
	}
	if err := d.Register(Action{Name: "x"}); err == nil {
		t.Error("Register accepted an action without endpoint")
	}

	if err := d.Register(Action{Name: "x", Endpoint: "/api/x"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := d.Register(Action{Name: "x", Endpoint: "/api/y"}); err == nil {
		t.Error("Register accepted a duplicate name")
	}
}

func TestSubmitAccepted(t *testing.T) {
	gateway := &fakeGateway{response: json.RawMessage(`{"status":"ok"}`)}
	metrics := newFakeMetrics()
	d := newTestDispatcher(t, gateway, metrics)

	response, err := d.Submit(context.Background(), "cancel-order", map[string]interface{}{
		"order_id": "ord-17",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if string(response) != `{"status":"ok"}` {
		t.Errorf("response = %s", response)
	}

	if gateway.endpoint != "/api/orders/cancel" {
		t.Errorf("endpoint = %s, want /api/orders/cancel", gateway.endpoint)
	}
	if gateway.params["order_id"] != "ord-17" {
		t.Errorf("order_id = %v", gateway.params["order_id"])
	}
	if gateway.params["reason"] != "user_request" {
		t.Errorf("reason default = %v, want user_request", gateway.params["reason"])
	}

	if got := metrics.submissions["cancel-order"]; len(got) != 1 || got[0] != "accepted" {
		t.Errorf("metrics = %v, want [accepted]", got)
	}
}

func TestSubmitRejectedNeverCallsGateway(t *testing.T) {
	gateway := &fakeGateway{}
	metrics := newFakeMetrics()
	d := newTestDispatcher(t, gateway, metrics)

	_, err := d.Submit(context.Background(), "cancel-order", map[string]interface{}{
		"reason": "fat_finger",
	})

	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Submit returned %v, want ValidationError", err)
	}
	if gateway.calls != 0 {
		t.Errorf("gateway called %d times for a rejected submission", gateway.calls)
	}
	if got := metrics.submissions["cancel-order"]; len(got) != 1 || got[0] != "rejected" {
		t.Errorf("metrics = %v, want [rejected]", got)
	}
}

func TestSubmitGatewayFailure(t *testing.T) {
	gateway := &fakeGateway{err: &domain.GatewayError{Op: "action", Endpoint: "/api/orders/cancel", Status: 503}}
	metrics := newFakeMetrics()
	d := newTestDispatcher(t, gateway, metrics)

	_, err := d.Submit(context.Background(), "cancel-order", map[string]interface{}{
		"order_id": "ord-17",
	})

	var gatewayErr *domain.GatewayError
	if !errors.As(err, &gatewayErr) {
		t.Fatalf("Submit returned %v, want GatewayError", err)
	}
	if got := metrics.submissions["cancel-order"]; len(got) != 1 || got[0] != "failed" {
		t.Errorf("metrics = %v, want [failed]", got)
	}
}

func TestSubmitUnknownAction(t *testing.T) {
	d := newTestDispatcher(t, &fakeGateway{}, newFakeMetrics())

	if _, err := d.Submit(context.Background(), "nope", nil); err == nil {
		t.Error("Submit accepted an unknown action")
	}
}
