// Package server exposes the latest printer snapshot over HTTP.
//
//	GET /api/status   current snapshot as JSON (503 until the first poll)
//	GET /health       liveness probe
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/five82/duetmon/internal/duet"
	"github.com/five82/duetmon/internal/state"
)

// Options configures the server.
type Options struct {
	Printer string // display name reported in responses
	Version string
	Logger  *slog.Logger
}

// Server serves snapshots from a state.Store.
type Server struct {
	store   *state.Store
	printer string
	version string
	logger  *slog.Logger
	router  *mux.Router
}

// StatusResponse is the JSON body of GET /api/status.
type StatusResponse struct {
	Printer             string             `json:"printer"`
	Type                string             `json:"type"`
	State               string             `json:"state"`
	Status              string             `json:"status"`
	Printing            bool               `json:"printing"`
	Completion          string             `json:"completion"`
	TimeLeft            string             `json:"timeLeft"`
	ToolTemp            string             `json:"toolTemp"`
	BedTemp             string             `json:"bedTemp"`
	Record              duet.PrinterStatus `json:"record"`
	LastUpdated         *time.Time         `json:"lastUpdated,omitempty"`
	LastSuccess         *time.Time         `json:"lastSuccess,omitempty"`
	ConsecutiveFailures int                `json:"consecutiveFailures"`
	Offline             bool               `json:"offline"`
	LastError           string             `json:"lastError,omitempty"`
}

// NewStatusResponse renders a snapshot with its derived views.
func NewStatusResponse(printer string, snap state.Snapshot) StatusResponse {
	p := snap.Printer
	resp := StatusResponse{
		Printer:             printer,
		Type:                duet.PrinterType,
		State:               p.StateLabel(),
		Status:              p.Code().String(),
		Printing:            p.IsPrinting(),
		Completion:          p.Completion(),
		TimeLeft:            p.TimeLeft(),
		ToolTemp:            duet.ValueRounded(p.ToolTemp),
		BedTemp:             duet.ValueRounded(p.BedTemp),
		Record:              p,
		ConsecutiveFailures: snap.ConsecutiveFailures,
		Offline:             snap.IsOffline(),
	}
	if p.PrinterName != "" {
		resp.Printer = p.PrinterName
	}
	if !snap.LastUpdated.IsZero() {
		t := snap.LastUpdated
		resp.LastUpdated = &t
	}
	if !snap.LastSuccess.IsZero() {
		t := snap.LastSuccess
		resp.LastSuccess = &t
	}
	if snap.LastError != nil {
		resp.LastError = snap.LastError.Error()
	}
	return resp
}

// New builds a server reading from store.
func New(store *state.Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		store:   store,
		printer: opts.Printer,
		version: opts.Version,
		logger:  logger,
		router:  mux.NewRouter(),
	}
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	return s
}

// Handler returns the traced root handler.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "duetmon.http")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	if !snap.HasStatus {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no status polled yet"})
		return
	}
	s.logger.Debug("serving status", slog.String("remote", r.RemoteAddr))
	writeJSON(w, http.StatusOK, NewStatusResponse(s.printer, snap))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
