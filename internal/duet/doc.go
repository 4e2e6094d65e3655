// Package duet polls a Duet (RepRapFirmware) printer over its legacy HTTP
// status API.
//
// # Overview
//
// A poll cycle issues two plain HTTP/1.1 GET requests over a fresh TCP
// connection each:
//
//   - GET /rr_status?type=3: machine status, progress, temperatures
//   - GET /rr_fileinfo: name, size and filament use of the file being printed
//
// The requests are written by hand rather than through net/http: the client
// sends a fixed header set (Host, optional Basic Authorization, User-Agent,
// Connection: close) and accepts exactly two status lines, "HTTP/1.1 200 OK"
// and "HTTP/1.1 409 CONFLICT". Every read is bounded by a 5 second timeout.
//
// # Usage
//
//	client := duet.NewClient(duet.Settings{
//		Host:     "192.168.1.50",
//		Port:     80,
//		Username: "",
//	}, duet.WithLogger(logger))
//
//	status, err := client.GetPrinterJobResults(ctx)
//	if err != nil {
//		// status.Error holds the same message for display
//	}
//	fmt.Println(status.StateLabel(), status.Completion()+"%")
//
// # Status record
//
// Values are stored as the text the firmware sent. Derived views:
//
//   - Completion: fractionPrinted × 100, truncated ("0.42" → "42")
//   - TimeLeft: the filament-based estimate, forced to "0" at 100%
//   - StateLabel: "Operational" or "Offline" from the first status letter
//   - ValueRounded: add 0.5 and truncate, for temperatures on small displays
//
// # Errors
//
// Each failure ends the poll cycle without retry. The client stores a
// human-readable message in the record's Error field and returns a *Error
// whose Kind is one of ErrMissingHost, ErrConnect, ErrUnexpectedStatus,
// ErrInvalidResponse or ErrParse. Connection and parse failures reset the
// record so stale values are never shown as current; an unexpected status
// line or a missing header terminator only clears the state.
//
// # Concurrency
//
// A Client keeps one mutable record and has no locking. Own it from a single
// goroutine and hand the returned PrinterStatus copies to readers.
package duet
