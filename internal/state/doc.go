// Package state shares the latest printer snapshot between the poller and
// its readers (status panel, JSON endpoint).
//
// # Overview
//
// The poller is the only writer. It owns the duet.Client and pushes a copy
// of the client's record after every poll cycle:
//
//	Producer (poller):              Consumers:
//	┌──────────────────────────┐   ┌──────────────────┐
//	│ GetPrinterJobResults()   │   │ ui, server       │
//	│      ↓                   │   │                  │
//	│ store.Update(&status, e) │──→│ store.Snapshot() │
//	└──────────────────────────┘   └──────────────────┘
//
// Snapshot returns a value copy, so readers never observe a half-written
// record and never share the client's mutable state.
//
// # Update Semantics
//
//	store.Update(&status, nil)   record replaced, failures reset to 0
//	store.Update(&status, err)   record replaced (it is the reset record),
//	                             error recorded, failures incremented
//	store.Update(nil, err)       record kept, error recorded
//
// IsOffline reports two or more consecutive failures; the panel uses it to
// switch from "retrying" to an offline banner.
package state
