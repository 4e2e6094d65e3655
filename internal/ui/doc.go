// Package ui renders the printer status panel with Bubble Tea.
//
// The model never talks to the printer. A tick every PollTick copies the
// latest state.Snapshot out of the store; the poller in package app keeps
// the store current. Pressing "r" calls Options.Refresh, which asks the
// poller for an immediate cycle.
//
// # Layout
//
//	Workshop  Operational · printing
//
//	██████████████░░░░░░░░░░░░░░░░ 42%
//	Time left   25m12s
//	Elapsed     18m3s
//	File        benchy.gcode
//	Size        2.1 MiB
//	Filament    4.87 m
//
//	Tool        210° / 215°
//	Bed         60° / 60°
//
//	192.168.1.50:80  updated 3s ago  theme Nightfox
//	r refresh now • ? toggle help • q quit
//
// Temperatures are rounded with duet.ValueRounded. After a failed cycle the
// panel shows the reset record (dashes) with the error line beneath it; two
// consecutive failures add an offline banner.
//
// When Options.LogFile is set, each tick also reads the last WARN and ERROR
// records from that file (package logtail) and lists up to three of them
// under "Recent warnings". The panel owns the terminal, so this is the only
// place those warnings show up while it runs.
//
// # Keys
//
//	q, ctrl+c  quit
//	r          refresh now
//	T          cycle theme (saved to prefs)
//	?          toggle full help (saved to prefs)
package ui
