package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-hubspace/internal/device"
	"github.com/nerrad567/gray-logic-hubspace/internal/event"
	"github.com/nerrad567/gray-logic-hubspace/internal/feature"
	"github.com/nerrad567/gray-logic-hubspace/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-hubspace/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-hubspace/internal/model"
)

// stubFetcher satisfies the stream's gateway dependency without any network.
type stubFetcher struct{}

func (stubFetcher) FetchSnapshots(context.Context) ([]*device.Snapshot, error) {
	return nil, nil
}

// fakeDevices implements DeviceReader over a fixed resource list.
type fakeDevices struct {
	mu        sync.Mutex
	resources []event.Resource
}

func (f *fakeDevices) add(res event.Resource) {
	f.mu.Lock()
	f.resources = append(f.resources, res)
	f.mu.Unlock()
}

func (f *fakeDevices) Resource(id string) (event.Resource, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, res := range f.resources {
		if res.GetID() == id {
			return res, true
		}
	}
	return nil, false
}

func (f *fakeDevices) Resources(category device.Category) []event.Resource {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []event.Resource
	for _, res := range f.resources {
		if category == "" || res.GetCategory() == category {
			out = append(out, res)
		}
	}
	return out
}

// fakeCommander implements Commander with canned responses.
type fakeCommander struct {
	mu       sync.Mutex
	calls    []commandCall
	response []device.State
	err      error
}

type commandCall struct {
	DeviceID string
	Values   []device.State
}

func (f *fakeCommander) SendCommand(_ context.Context, deviceID string, values []device.State) ([]device.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, commandCall{DeviceID: deviceID, Values: values})
	return f.response, nil
}

func (f *fakeCommander) getCalls() []commandCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// stubChecker implements HealthChecker with a fixed result.
type stubChecker struct {
	err error
}

func (c stubChecker) HealthCheck(context.Context) error { return c.err }

func testLight(id string) *model.Light {
	return &model.Light{
		ID:        id,
		Available: true,
		On:        &feature.On{On: true, FuncClass: "power"},
	}
}

func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
}

// testServer creates a Server over fakes, with the hub already running.
func testServer(t *testing.T) (*Server, *fakeDevices, *fakeCommander) {
	t.Helper()

	log := testLogger()
	devices := &fakeDevices{}
	commander := &fakeCommander{}

	srv, err := New(Deps{
		Config: config.APIConfig{
			Listen: "127.0.0.1:0",
			Timeouts: config.APITimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  5,
			},
		},
		Logger:    log,
		Stream:    event.NewStream(stubFetcher{}, nil),
		Devices:   devices,
		Commander: commander,
		Version:   "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	srv.hub = NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go srv.hub.Run(ctx)

	return srv, devices, commander
}

// =============================================================================
// Construction Tests
// =============================================================================

func TestNew_MissingDependencies(t *testing.T) {
	log := testLogger()
	stream := event.NewStream(stubFetcher{}, nil)
	devices := &fakeDevices{}
	commander := &fakeCommander{}

	tests := []struct {
		name string
		deps Deps
	}{
		{"no logger", Deps{Stream: stream, Devices: devices, Commander: commander}},
		{"no stream", Deps{Logger: log, Devices: devices, Commander: commander}},
		{"no device reader", Deps{Logger: log, Stream: stream, Commander: commander}},
		{"no commander", Deps{Logger: log, Stream: stream, Devices: devices}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.deps); err == nil {
				t.Error("New() expected error, got nil")
			}
		})
	}
}

// =============================================================================
// Health and Status Tests
// =============================================================================

func TestHealth(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if resp["version"] != "test" {
		t.Errorf("version = %v, want test", resp["version"])
	}
	if resp["upstream"] != "disconnected" {
		t.Errorf("upstream = %v, want disconnected", resp["upstream"])
	}
}

func TestHealth_ContentType(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}
}

func TestHealth_DegradedComponent(t *testing.T) {
	srv, _, _ := testServer(t)
	srv.mqttHealth = stubChecker{err: errors.New("not connected")}
	srv.influxHealth = stubChecker{}
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.Status != "degraded" {
		t.Errorf("status = %q, want degraded", resp.Status)
	}
	if resp.Components["mqtt"] != "not connected" {
		t.Errorf("mqtt component = %q, want %q", resp.Components["mqtt"], "not connected")
	}
	if resp.Components["influxdb"] != "ok" {
		t.Errorf("influxdb component = %q, want ok", resp.Components["influxdb"])
	}
}

func TestStatus(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Status              string `json:"status"`
		PollIntervalSeconds int    `json:"poll_interval_seconds"`
		QueueDepth          int    `json:"queue_depth"`
		TrackedDevices      int    `json:"tracked_devices"`
		Events              struct {
			Emitted uint64 `json:"emitted"`
			Dropped uint64 `json:"dropped"`
		} `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.Status != "disconnected" {
		t.Errorf("status = %q, want disconnected", resp.Status)
	}
	if resp.PollIntervalSeconds != 30 {
		t.Errorf("poll_interval_seconds = %d, want 30", resp.PollIntervalSeconds)
	}
	if resp.TrackedDevices != 0 {
		t.Errorf("tracked_devices = %d, want 0", resp.TrackedDevices)
	}
}

// =============================================================================
// Middleware Tests
// =============================================================================

func TestRequestID_Generated(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header to be set")
	}
}

func TestRequestID_PreservesClient(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "client-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "client-123" {
		t.Errorf("X-Request-ID = %q, want %q", got, "client-123")
	}
}

func TestAuth(t *testing.T) {
	srv, _, _ := testServer(t)
	srv.cfg.AuthToken = "secret-token"
	router := srv.buildRouter()

	tests := []struct {
		name       string
		target     string
		header     string
		wantStatus int
	}{
		{"missing token", "/api/v1/status", "", http.StatusUnauthorized},
		{"wrong token", "/api/v1/status", "Bearer wrong", http.StatusUnauthorized},
		{"malformed header", "/api/v1/status", "secret-token", http.StatusUnauthorized},
		{"valid header", "/api/v1/status", "Bearer secret-token", http.StatusOK},
		{"valid query param", "/api/v1/status?token=secret-token", "", http.StatusOK},
		{"health bypasses auth", "/health", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestAuth_DisabledWhenNoToken(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestNotFound(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nonexistent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// =============================================================================
// Device Endpoint Tests
// =============================================================================

func TestListDevices(t *testing.T) {
	srv, devices, _ := testServer(t)
	devices.add(testLight("light-1"))
	devices.add(testLight("light-2"))
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Devices []json.RawMessage `json:"devices"`
		Count   int               `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}
	if len(resp.Devices) != 2 {
		t.Errorf("devices = %d entries, want 2", len(resp.Devices))
	}
}

func TestListDevices_Empty(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	body := strings.TrimSpace(w.Body.String())
	if strings.Contains(body, `"devices":null`) {
		t.Errorf("empty listing should be an array, got %s", body)
	}

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("count = %d, want 0", resp.Count)
	}
}

func TestListDevices_CategoryFilter(t *testing.T) {
	srv, devices, _ := testServer(t)
	devices.add(testLight("light-1"))
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices?category=fan", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("count = %d, want 0 for non-matching category", resp.Count)
	}
}

func TestGetDevice(t *testing.T) {
	srv, devices, _ := testServer(t)
	devices.add(testLight("light-1"))
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices/light-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["id"] != "light-1" {
		t.Errorf("id = %v, want light-1", resp["id"])
	}
}

func TestGetDevice_NotFound(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices/ghost", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}

	var resp Error
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Code != ErrCodeNotFound {
		t.Errorf("code = %q, want %q", resp.Code, ErrCodeNotFound)
	}
}

func TestSetDeviceState(t *testing.T) {
	srv, devices, commander := testServer(t)
	devices.add(testLight("light-1"))
	commander.response = []device.State{{FunctionClass: "power", Value: "on"}}
	router := srv.buildRouter()

	body := strings.NewReader(`{"values":[{"functionClass":"power","value":"on"}]}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/devices/light-1/state", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	calls := commander.getCalls()
	if len(calls) != 1 {
		t.Fatalf("commands = %d, want 1", len(calls))
	}
	if calls[0].DeviceID != "light-1" {
		t.Errorf("device = %q, want light-1", calls[0].DeviceID)
	}
	if len(calls[0].Values) != 1 {
		t.Fatalf("values = %d, want 1", len(calls[0].Values))
	}
	if calls[0].Values[0].FunctionClass != "power" {
		t.Errorf("functionClass = %q, want power", calls[0].Values[0].FunctionClass)
	}
	if calls[0].Values[0].LastUpdateTime == 0 {
		t.Error("pushed value missing timestamp")
	}

	var resp struct {
		DeviceID string         `json:"device_id"`
		Accepted []device.State `json:"accepted"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.DeviceID != "light-1" {
		t.Errorf("device_id = %q, want light-1", resp.DeviceID)
	}
	if len(resp.Accepted) != 1 {
		t.Errorf("accepted = %d values, want 1", len(resp.Accepted))
	}
}

func TestSetDeviceState_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		body       string
		wantStatus int
	}{
		{"unknown device", "/api/v1/devices/ghost/state", `{"values":[{"functionClass":"power","value":"on"}]}`, http.StatusNotFound},
		{"malformed json", "/api/v1/devices/light-1/state", `{not json`, http.StatusBadRequest},
		{"empty values", "/api/v1/devices/light-1/state", `{"values":[]}`, http.StatusBadRequest},
		{"missing functionClass", "/api/v1/devices/light-1/state", `{"values":[{"value":"on"}]}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, devices, commander := testServer(t)
			devices.add(testLight("light-1"))
			router := srv.buildRouter()

			req := httptest.NewRequest(http.MethodPut, tt.target, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := len(commander.getCalls()); got != 0 {
				t.Errorf("commands = %d, want 0", got)
			}
		})
	}
}

func TestSetDeviceState_UpstreamFailure(t *testing.T) {
	srv, devices, commander := testServer(t)
	devices.add(testLight("light-1"))
	commander.err = errors.New("service down")
	router := srv.buildRouter()

	body := strings.NewReader(`{"values":[{"functionClass":"power","value":"on"}]}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/devices/light-1/state", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}

	var resp Error
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Code != ErrCodeUpstream {
		t.Errorf("code = %q, want %q", resp.Code, ErrCodeUpstream)
	}
}

// =============================================================================
// WebSocket Tests
// =============================================================================

func newTestClient(hub *Hub, channels ...string) *WSClient {
	client := &WSClient{
		hub:           hub,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: make(map[string]struct{}),
	}
	for _, ch := range channels {
		client.subscriptions[ch] = struct{}{}
	}
	return client
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(testLogger())

	subscribed := newTestClient(hub, "update")
	other := newTestClient(hub, "delete")
	hub.Register(subscribed)
	hub.Register(other)

	hub.Broadcast("update", map[string]any{"device_id": "light-1"})

	select {
	case data := <-subscribed.send:
		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.Type != WSTypeEvent {
			t.Errorf("type = %q, want %q", msg.Type, WSTypeEvent)
		}
		if msg.EventType != "update" {
			t.Errorf("event_type = %q, want update", msg.EventType)
		}
	default:
		t.Fatal("subscribed client received nothing")
	}

	select {
	case <-other.send:
		t.Error("client subscribed to a different channel received the broadcast")
	default:
	}
}

func TestHubBroadcast_Wildcard(t *testing.T) {
	hub := NewHub(testLogger())

	client := newTestClient(hub, "*")
	hub.Register(client)

	hub.Broadcast("connected", nil)

	select {
	case <-client.send:
	default:
		t.Fatal("wildcard subscriber received nothing")
	}
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub(testLogger())

	client := newTestClient(hub)
	hub.Register(client)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("clients = %d, want 1", got)
	}

	hub.Unregister(client)
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("clients = %d, want 0", got)
	}

	// The send channel is closed exactly once; a second unregister is safe.
	if _, open := <-client.send; open {
		t.Error("send channel should be closed after unregister")
	}
	hub.Unregister(client)
}

func TestRelayEvent(t *testing.T) {
	srv, _, _ := testServer(t)

	client := newTestClient(srv.hub, "add")
	srv.hub.Register(client)

	srv.relayEvent(event.Event{
		Type:     event.ResourceAdded,
		DeviceID: "light-1",
		Category: device.CategoryLight,
		Resource: testLight("light-1"),
	})

	select {
	case data := <-client.send:
		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		payload, ok := msg.Payload.(map[string]any)
		if !ok {
			t.Fatalf("payload = %T, want object", msg.Payload)
		}
		if payload["device_id"] != "light-1" {
			t.Errorf("device_id = %v, want light-1", payload["device_id"])
		}
		if payload["category"] != "light" {
			t.Errorf("category = %v, want light", payload["category"])
		}
		if payload["resource"] == nil {
			t.Error("payload missing resource")
		}
	default:
		t.Fatal("subscriber received nothing")
	}
}

func TestRelayEvent_ConnectionEvent(t *testing.T) {
	srv, _, _ := testServer(t)

	client := newTestClient(srv.hub, "disconnected")
	srv.hub.Register(client)

	srv.relayEvent(event.Event{Type: event.Disconnected})

	select {
	case data := <-client.send:
		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.EventType != "disconnected" {
			t.Errorf("event_type = %q, want disconnected", msg.EventType)
		}
	default:
		t.Fatal("subscriber received nothing")
	}
}

func TestWebSocket_SubscribeAndReceive(t *testing.T) {
	srv, _, _ := testServer(t)
	ts := httptest.NewServer(srv.buildRouter())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/events/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	sub := WSMessage{
		Type:    WSTypeSubscribe,
		ID:      "1",
		Payload: WSSubscribePayload{Channels: []string{"update"}},
	}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("write subscribe: %v", err)
	}

	// The ack round-trip guarantees the client is registered before the
	// event fires.
	var ack WSMessage
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if ack.Type != WSTypeResponse {
		t.Fatalf("ack type = %q, want %q", ack.Type, WSTypeResponse)
	}

	srv.relayEvent(event.Event{
		Type:     event.ResourceUpdated,
		DeviceID: "light-1",
		Category: device.CategoryLight,
		Resource: testLight("light-1"),
	})

	//nolint:errcheck // Deadline keeps the test from hanging on failure
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var evt WSMessage
	if err := conn.ReadJSON(&evt); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if evt.Type != WSTypeEvent {
		t.Errorf("type = %q, want %q", evt.Type, WSTypeEvent)
	}
	if evt.EventType != "update" {
		t.Errorf("event_type = %q, want update", evt.EventType)
	}
}

func TestWebSocket_PingMessage(t *testing.T) {
	srv, _, _ := testServer(t)
	ts := httptest.NewServer(srv.buildRouter())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/events/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	if err := conn.WriteJSON(WSMessage{Type: WSTypePing, ID: "7"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}

	//nolint:errcheck // Deadline keeps the test from hanging on failure
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var pong WSMessage
	if err := conn.ReadJSON(&pong); err != nil {
		t.Fatalf("read pong: %v", err)
	}
	if pong.Type != WSTypePong {
		t.Errorf("type = %q, want %q", pong.Type, WSTypePong)
	}
	if pong.ID != "7" {
		t.Errorf("id = %q, want 7", pong.ID)
	}
}
