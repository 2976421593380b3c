// Package control implements the gateway's loopback HTTP surface: command
// enqueueing, device-presence reporting, health, and Prometheus exposition.
package control

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/teltonika-gw/gateway/command"
	"github.com/teltonika-gw/gateway/metrics"
	"github.com/teltonika-gw/gateway/registry"
)

// Server is the HTTP control plane (C8): it never talks to a device
// socket directly, only through the orchestrator and registry it is
// handed at construction.
type Server struct {
	router *chi.Mux
	orch   *command.Orchestrator
	reg    *registry.Registry
	log    *zap.Logger
}

// New builds the control plane's router against orch and reg, and
// mounts promhttp.HandlerFor(m.Registry()) at /metrics.
func New(orch *command.Orchestrator, reg *registry.Registry, m *metrics.Metrics, log *zap.Logger) *Server {
	s := &Server{orch: orch, reg: reg, log: log}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/send_command", s.handleSendCommand)
	r.Get("/device_status", s.handleDeviceStatus)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
	s.router = r
	return s
}

// ServeHTTP lets Server be used directly as an http.Handler, e.g. with
// http.Server{Handler: s}.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type sendCommandRequest struct {
	IMEI      string `json:"imei"`
	Command   string `json:"command"`
	CommandID string `json:"command_id"`
}

type sendCommandResponse struct {
	CommandID string `json:"command_id"`
	Status    string `json:"status"`
}

func (s *Server) handleSendCommand(w http.ResponseWriter, r *http.Request) {
	var req sendCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if req.IMEI == "" || req.Command == "" {
		writeError(w, http.StatusBadRequest, "imei and command are required")
		return
	}

	cmd := s.orch.Enqueue(req.IMEI, req.Command, req.CommandID)
	writeJSON(w, http.StatusOK, sendCommandResponse{CommandID: cmd.ID, Status: cmd.Status.String()})
}

type deviceStatusEntry struct {
	IMEI        string    `json:"imei"`
	PeerAddr    string    `json:"peer_addr"`
	ConnectedAt time.Time `json:"connected_at"`
	LastSeen    time.Time `json:"last_seen"`
}

func (s *Server) handleDeviceStatus(w http.ResponseWriter, r *http.Request) {
	entries := s.reg.Snapshot()
	out := make([]deviceStatusEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, deviceStatusEntry{
			IMEI:        e.IMEI,
			PeerAddr:    e.PeerAddr,
			ConnectedAt: e.ConnectedAt,
			LastSeen:    e.LastSeen(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type healthResponse struct {
	Status           string `json:"status"`
	ConnectedDevices int    `json:"connected_devices"`
	PendingCommands  int    `json:"pending_commands"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:           "ok",
		ConnectedDevices: s.reg.Len(),
		PendingCommands:  s.orch.PendingCount(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
