package control

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/teltonika-gw/gateway/command"
	"github.com/teltonika-gw/gateway/metrics"
	"github.com/teltonika-gw/gateway/registry"
)

type fakeHandle struct{ addr string }

func (f *fakeHandle) RemoteAddr() string { return f.addr }
func (f *fakeHandle) Close(string)       {}

func newTestServer() *Server {
	reg := registry.New()
	reg.Insert("IMEI1", &fakeHandle{addr: "10.0.0.5:1"}, "10.0.0.5:1")
	orch := command.New(reg, metrics.New(), 15*time.Second, 3)
	return New(orch, reg, metrics.New(), zap.NewNop())
}

func TestSendCommandRejectsMissingFields(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/send_command", bytes.NewReader([]byte(`{"imei":"IMEI1"}`)))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
}

func TestSendCommandEnqueuesAndReplies200(t *testing.T) {
	s := newTestServer()
	body, _ := json.Marshal(sendCommandRequest{IMEI: "IMEI1", Command: "getver"})
	req := httptest.NewRequest(http.MethodPost, "/send_command", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp sendCommandResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.CommandID == "" {
		t.Error("expected a non-empty command id")
	}
}

func TestDeviceStatusListsRegisteredDevices(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/device_status", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var entries []deviceStatusEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].IMEI != "IMEI1" {
		t.Fatalf("got %v", entries)
	}
}

func TestHealthReportsCounts(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var health healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" || health.ConnectedDevices != 1 {
		t.Fatalf("got %+v", health)
	}
}

func TestMetricsEndpointServesPrometheusExposition(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
}
