package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/duetmon/internal/duet"
)

// Snapshot represents the latest printer data available to consumers.
type Snapshot struct {
	Printer             duet.PrinterStatus
	HasStatus           bool
	LastUpdated         time.Time
	LastSuccess         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the printer has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update records the outcome of a poll cycle. A non-nil status always
// replaces the stored record, even on failure: the client resets its record
// when a cycle fails, and that reset must reach readers. A nil status keeps
// the previous record.
func (s *Store) Update(status *duet.PrinterStatus, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if status != nil {
		s.snapshot.Printer = *status
		s.snapshot.HasStatus = true
	}
	s.snapshot.LastUpdated = now

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.LastError = nil
	s.snapshot.LastSuccess = now
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
