// Package app is the composition root of duetmon.
//
// It turns a loaded config.Config into a duet.Client (password resolved
// through package auth), a shared state.Store and a Poller, then hands the
// store to one of the front ends:
//
//	Run     status panel (package ui), blocks until the user quits
//	Status  a single poll cycle, for the one-shot status command
//	Serve   background poller plus the JSON endpoint (package server)
//
// # Poller
//
// The Poller is the only goroutine that touches the duet.Client. Each cycle
// calls GetPrinterJobResults and stores the returned record, which is the
// reset record when the cycle failed. The wait before the next cycle is
// calculateBackoff(failures, interval):
//
//	failures  0     1      2      3+
//	wait      10s   20s    40s    60s (cap)   with the default 10s interval
//
// A failed request is never retried within its cycle. Refresh requests an
// immediate cycle; the panel binds it to "r".
package app
