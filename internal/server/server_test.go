package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/five82/duetmon/internal/duet"
	"github.com/five82/duetmon/internal/state"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	srv := New(&state.Store{}, Options{Version: "1.2.3"})
	rec := get(t, srv.Handler(), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["version"] != "1.2.3" {
		t.Fatalf("body = %v", body)
	}
}

func TestStatus_UnavailableBeforeFirstPoll(t *testing.T) {
	srv := New(&state.Store{}, Options{})
	rec := get(t, srv.Handler(), "/api/status")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestStatus_ReportsSnapshot(t *testing.T) {
	store := &state.Store{}
	store.Update(&duet.PrinterStatus{
		State:                 "P",
		ProgressCompletion:    "0.42",
		ProgressPrintTimeLeft: "120",
		ToolTemp:              "209.6",
		BedTemp:               "60.2",
		FileName:              "benchy.gcode",
		PrinterName:           "Workshop",
	}, nil)

	srv := New(store, Options{Printer: "fallback"})
	rec := get(t, srv.Handler(), "/api/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q", ct)
	}

	var resp StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Printer != "Workshop" || resp.Type != "Duet" {
		t.Fatalf("printer/type = %q/%q", resp.Printer, resp.Type)
	}
	if resp.State != "Operational" || resp.Status != "printing" || !resp.Printing {
		t.Fatalf("state = %q status = %q printing = %v", resp.State, resp.Status, resp.Printing)
	}
	if resp.Completion != "42" || resp.TimeLeft != "120" {
		t.Fatalf("completion/timeLeft = %q/%q", resp.Completion, resp.TimeLeft)
	}
	if resp.ToolTemp != "210" || resp.BedTemp != "60" {
		t.Fatalf("temps = %q/%q", resp.ToolTemp, resp.BedTemp)
	}
	if resp.Record.FileName != "benchy.gcode" || resp.LastUpdated == nil || resp.Offline {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestStatus_ReportsFailures(t *testing.T) {
	store := &state.Store{}
	failed := &duet.PrinterStatus{Error: "Connection to Duet failed: 10.0.0.5:80"}
	store.Update(failed, errors.New(failed.Error))
	store.Update(failed, errors.New(failed.Error))

	resp := NewStatusResponse("bench", store.Snapshot())
	if resp.Printer != "bench" || resp.State != "Offline" || !resp.Offline {
		t.Fatalf("resp = %+v, want offline", resp)
	}
	if resp.ConsecutiveFailures != 2 || resp.LastError != failed.Error || resp.Record.Error != failed.Error {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.LastSuccess != nil {
		t.Fatalf("LastSuccess = %v, want nil", resp.LastSuccess)
	}
}

func TestStatus_RejectsOtherMethods(t *testing.T) {
	srv := New(&state.Store{}, Options{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/status", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
