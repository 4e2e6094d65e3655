package app

import (
	"context"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/five82/duetmon/internal/duet"
	"github.com/five82/duetmon/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 10 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 10 * time.Second},
		{"negative failures", -1, 10 * time.Second},
		{"one failure", 1, 20 * time.Second},
		{"two failures", 2, 40 * time.Second},
		{"three failures capped", 3, 60 * time.Second}, // Would be 80s, capped to 60s
		{"many failures capped", 40, 60 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	// Verify that backoff never exceeds maxBackoff regardless of input
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 70; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

// startPrinter serves a fixed idle status and counts requests.
func startPrinter(t *testing.T) (port int, hits *atomic.Int32) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	hits = &atomic.Int32{}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				buf := make([]byte, 1024)
				n, _ := c.Read(buf)
				body := `{"err":1}`
				if strings.HasPrefix(string(buf[:n]), "GET /rr_status") {
					hits.Add(1)
					body = `{"status":"I","temps":{"bed":{"current":60.2,"active":60},"current":[60.2,24.9]},"tools":{"active":0}}`
				}
				_, _ = c.Write([]byte("HTTP/1.1 200 OK\r\nContent-Type: application/json\r\n\r\n" + body))
			}(conn)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return addr.Port, hits
}

func TestPoller_PollOnceUpdatesStore(t *testing.T) {
	port, _ := startPrinter(t)
	client := duet.NewClient(duet.Settings{Host: "127.0.0.1", Port: port}, duet.WithTimeout(time.Second))
	client.SetPrinterName("bench")
	store := &state.Store{}

	p := NewPoller(client, store, time.Hour, nil)
	if err := p.PollOnce(context.Background()); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}

	snap := store.Snapshot()
	if !snap.HasStatus || snap.Printer.State != "I" || snap.Printer.StateLabel() != "Operational" {
		t.Fatalf("snapshot = %#v, want idle operational printer", snap.Printer)
	}
	if snap.Printer.ToolTemp != "24.9" || snap.Printer.PrinterName != "bench" {
		t.Fatalf("snapshot = %#v", snap.Printer)
	}
}

func TestPoller_FailureRecordsResetRecord(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()

	client := duet.NewClient(duet.Settings{Host: "127.0.0.1", Port: port}, duet.WithTimeout(time.Second))
	store := &state.Store{}
	p := NewPoller(client, store, time.Hour, nil)

	if err := p.PollOnce(context.Background()); err == nil {
		t.Fatal("PollOnce against closed port should fail")
	}
	snap := store.Snapshot()
	want := "Connection to Duet failed: 127.0.0.1:" + strconv.Itoa(port)
	if snap.Printer.Error != want {
		t.Fatalf("Printer.Error = %q, want %q", snap.Printer.Error, want)
	}
	if snap.ConsecutiveFailures != 1 || snap.LastError == nil {
		t.Fatalf("failures = %d, LastError = %v", snap.ConsecutiveFailures, snap.LastError)
	}
}

func TestPoller_RunPollsImmediatelyAndOnRefresh(t *testing.T) {
	port, hits := startPrinter(t)
	client := duet.NewClient(duet.Settings{Host: "127.0.0.1", Port: port}, duet.WithTimeout(time.Second))
	store := &state.Store{}
	p := NewPoller(client, store, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	waitFor(t, func() bool { return hits.Load() == 1 })

	p.Refresh()
	waitFor(t, func() bool { return hits.Load() == 2 })

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
