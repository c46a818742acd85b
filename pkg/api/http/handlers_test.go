package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tradedesk/deskd/internal/application/actions"
	"github.com/tradedesk/deskd/internal/application/orchestrator"
	"github.com/tradedesk/deskd/internal/domain"
	"github.com/tradedesk/deskd/internal/registry"
	eventsmem "github.com/tradedesk/deskd/pkg/adapters/events/memory"
	storagemem "github.com/tradedesk/deskd/pkg/adapters/storage/memory"
	"github.com/tradedesk/deskd/pkg/ports"
)

// stubGateway serves canned tab payloads and accepts every action
type stubGateway struct {
	startErr error
}

func (g *stubGateway) StartExecution(ctx context.Context, req ports.StartRequest) (string, error) {
	if g.startErr != nil {
		return "", g.startErr
	}
	return "exec-1", nil
}

func (g *stubGateway) FetchTab(ctx context.Context, executionID, endpoint string) (json.RawMessage, error) {
	return json.RawMessage(`{"ok":true}`), nil
}

func (g *stubGateway) Abort(ctx context.Context, executionID string) error {
	return nil
}

func (g *stubGateway) PostAction(ctx context.Context, endpoint string, params map[string]interface{}) (json.RawMessage, error) {
	return json.RawMessage(`{"status":"accepted"}`), nil
}

// discardMetrics drops all measurements
type discardMetrics struct{}

func (discardMetrics) RecordExecutionStarted()                       {}
func (discardMetrics) RecordStartFailure()                           {}
func (discardMetrics) RecordExecutionFinished(string, time.Duration) {}
func (discardMetrics) RecordTabOutcome(string, string)               {}
func (discardMetrics) ObserveTabFetch(string, time.Duration)         {}
func (discardMetrics) SetExecutionActive(bool)                       {}
func (discardMetrics) RecordActionSubmitted(string, string)          {}

func newTestServer(t *testing.T, gateway ports.Gateway) *Server {
	t.Helper()

	reg, err := registry.New([]registry.TabDescriptor{
		{Name: "positions", Title: "Positions", Endpoint: "/api/positions"},
		{Name: "settings", Title: "Settings"},
	})
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}

	logger := zap.NewNop()
	bus := eventsmem.NewInMemoryEventBus()
	store := storagemem.NewInMemorySnapshotStore()
	metrics := discardMetrics{}

	manager := orchestrator.NewManager(reg, gateway, nil, bus, store, metrics, logger)

	dispatcher := actions.NewDispatcher(gateway, metrics, logger)
	err = dispatcher.Register(actions.Action{
		Name:     "cancel-order",
		Endpoint: "/api/orders/cancel",
		Schema: actions.Schema{
			"order_id": {Kind: actions.KindText, Label: "Order ID", Required: true},
		},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	return NewServer(&Config{
		Port:         8080,
		Orchestrator: manager,
		Dispatcher:   dispatcher,
		Registry:     reg,
		Logger:       logger,
	})
}

func doRequest(t *testing.T, server *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)
	return recorder
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, &stubGateway{})

	rec := doRequest(t, server, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", body["status"])
	}
}

func TestListTabs(t *testing.T) {
	server := newTestServer(t, &stubGateway{})

	rec := doRequest(t, server, http.MethodGet, "/api/v1/tabs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Tabs  []TabResponse `json:"tabs"`
		Total int           `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Total != 2 {
		t.Fatalf("total = %d, want 2", body.Total)
	}
	if body.Tabs[0].Name != "positions" || body.Tabs[1].Name != "settings" {
		t.Errorf("tabs out of order: %+v", body.Tabs)
	}
}

func TestGetTabNotFound(t *testing.T) {
	server := newTestServer(t, &stubGateway{})

	rec := doRequest(t, server, http.MethodGet, "/api/v1/tabs/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestLoadAllEndpoint(t *testing.T) {
	server := newTestServer(t, &stubGateway{})

	rec := doRequest(t, server, http.MethodPost, "/api/v1/executions", `{"user":"trader-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var summary domain.ExecutionSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if summary.Status != domain.StatusCompleted {
		t.Errorf("status = %s, want %s", summary.Status, domain.StatusCompleted)
	}
	if summary.Loaded != 1 || summary.Skipped != 1 {
		t.Errorf("summary = %d/%d loaded/skipped, want 1/1", summary.Loaded, summary.Skipped)
	}
}

func TestLoadAllStartFailure(t *testing.T) {
	gateway := &stubGateway{
		startErr: &domain.GatewayError{Op: "start", Endpoint: "/api/executions", Status: 502},
	}
	server := newTestServer(t, gateway)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/executions", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}

	var body struct {
		Error   ErrorDetail             `json:"error"`
		Summary domain.ExecutionSummary `json:"summary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Error.Code != "START_FAILED" {
		t.Errorf("code = %s, want START_FAILED", body.Error.Code)
	}
	if body.Summary.Status != domain.StatusCompleted {
		t.Errorf("summary status = %s, want %s", body.Summary.Status, domain.StatusCompleted)
	}
}

func TestGetCurrentExecution(t *testing.T) {
	server := newTestServer(t, &stubGateway{})

	rec := doRequest(t, server, http.MethodGet, "/api/v1/executions/current", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var snap domain.ExecutionSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if snap.Status != domain.StatusIdle {
		t.Errorf("status = %s, want %s", snap.Status, domain.StatusIdle)
	}
}

func TestGetExecutionNotFound(t *testing.T) {
	server := newTestServer(t, &stubGateway{})

	rec := doRequest(t, server, http.MethodGet, "/api/v1/executions/exec-unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAbortEndpoint(t *testing.T) {
	server := newTestServer(t, &stubGateway{})

	rec := doRequest(t, server, http.MethodPost, "/api/v1/executions/current/abort", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = doRequest(t, server, http.MethodPost, "/api/v1/executions/exec-other/abort", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status for stale id = %d, want 404", rec.Code)
	}
}

func TestActionForm(t *testing.T) {
	server := newTestServer(t, &stubGateway{})

	rec := doRequest(t, server, http.MethodGet, "/api/v1/actions/cancel-order/form", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Action  string           `json:"action"`
		Widgets []actions.Widget `json:"widgets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Action != "cancel-order" || len(body.Widgets) != 1 {
		t.Fatalf("form = %+v", body)
	}
	if body.Widgets[0].Control != actions.ControlTextInput {
		t.Errorf("control = %s, want %s", body.Widgets[0].Control, actions.ControlTextInput)
	}

	rec = doRequest(t, server, http.MethodGet, "/api/v1/actions/nope/form", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status for unknown action = %d, want 404", rec.Code)
	}
}

func TestSubmitAction(t *testing.T) {
	server := newTestServer(t, &stubGateway{})

	rec := doRequest(t, server, http.MethodPost, "/api/v1/actions/cancel-order", `{"order_id":"ord-17"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != `{"status":"accepted"}` {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSubmitActionValidationFailure(t *testing.T) {
	server := newTestServer(t, &stubGateway{})

	rec := doRequest(t, server, http.MethodPost, "/api/v1/actions/cancel-order", `{"venue":"dark"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Error.Code != "VALIDATION_FAILED" {
		t.Errorf("code = %s, want VALIDATION_FAILED", body.Error.Code)
	}

	details, ok := body.Error.Details.(map[string]interface{})
	if !ok {
		t.Fatalf("details = %T, want per-field map", body.Error.Details)
	}
	for _, field := range []string{"order_id", "venue"} {
		if _, ok := details[field]; !ok {
			t.Errorf("details missing %q: %v", field, details)
		}
	}
}
