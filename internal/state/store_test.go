package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/duetmon/internal/duet"
)

func TestStore_UpdateAndSnapshot(t *testing.T) {
	var s Store

	before := time.Now()
	s.Update(&duet.PrinterStatus{State: "P", ProgressCompletion: "0.42"}, nil)

	snap := s.Snapshot()
	if !snap.HasStatus || snap.Printer.State != "P" {
		t.Fatalf("snapshot printer = %#v, want state P HasStatus=true", snap.Printer)
	}
	if snap.LastUpdated.Before(before) || snap.LastSuccess.Before(before) {
		t.Fatalf("timestamps = %v/%v, want >= %v", snap.LastUpdated, snap.LastSuccess, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Printer.State = "I"
	if s.Snapshot().Printer.State != "P" {
		t.Fatalf("Snapshot should copy the printer record")
	}
}

func TestStore_FailedCycleReplacesRecord(t *testing.T) {
	var s Store

	s.Update(&duet.PrinterStatus{State: "P", ToolTemp: "210"}, nil)
	success := s.Snapshot().LastSuccess

	origErr := errors.New("Connection to Duet failed: 10.0.0.2:80")
	s.Update(&duet.PrinterStatus{Error: origErr.Error()}, origErr)

	snap := s.Snapshot()
	if snap.Printer.State != "" || snap.Printer.ToolTemp != "" {
		t.Fatalf("printer = %#v, want reset record from failed cycle", snap.Printer)
	}
	if snap.Printer.Error != origErr.Error() {
		t.Fatalf("Printer.Error = %q, want %q", snap.Printer.Error, origErr.Error())
	}
	if !snap.LastSuccess.Equal(success) {
		t.Fatalf("LastSuccess moved on failure: %v -> %v", success, snap.LastSuccess)
	}
	if snap.LastError == nil || snap.LastError.Error() != origErr.Error() {
		t.Fatalf("LastError = %v, want %v", snap.LastError, origErr)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_NilStatusKeepsPreviousRecord(t *testing.T) {
	var s Store

	s.Update(&duet.PrinterStatus{State: "I"}, nil)
	s.Update(nil, errors.New("boom"))

	snap := s.Snapshot()
	if snap.Printer.State != "I" || !snap.HasStatus {
		t.Fatalf("printer = %#v, want previous record kept", snap.Printer)
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	// Initially zero failures
	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 {
		t.Fatalf("ConsecutiveFailures = %d, want 0", snap.ConsecutiveFailures)
	}
	if snap.IsOffline() {
		t.Fatal("IsOffline() = true, want false with 0 failures")
	}

	// First failure
	s.Update(nil, errors.New("fail 1"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 1 {
		t.Fatalf("ConsecutiveFailures = %d, want 1", snap.ConsecutiveFailures)
	}
	if snap.IsOffline() {
		t.Fatal("IsOffline() = true, want false with 1 failure")
	}

	// Second failure - now offline
	s.Update(nil, errors.New("fail 2"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 2 {
		t.Fatalf("ConsecutiveFailures = %d, want 2", snap.ConsecutiveFailures)
	}
	if !snap.IsOffline() {
		t.Fatal("IsOffline() = false, want true with 2 failures")
	}

	// Success resets counter
	s.Update(&duet.PrinterStatus{State: "I"}, nil)
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 {
		t.Fatalf("ConsecutiveFailures = %d, want 0 after success", snap.ConsecutiveFailures)
	}
	if snap.IsOffline() {
		t.Fatal("IsOffline() = true, want false after success")
	}
}
