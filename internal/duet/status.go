package duet

import (
	"math"
	"strconv"
	"strings"
)

// StatusCode is the single-letter machine status reported by RepRapFirmware.
type StatusCode byte

// RepRapFirmware status letters.
const (
	StatusUnknown     StatusCode = 0
	StatusConfiguring StatusCode = 'C'
	StatusIdle        StatusCode = 'I'
	StatusBusy        StatusCode = 'B'
	StatusPrinting    StatusCode = 'P'
	StatusPausing     StatusCode = 'D'
	StatusStopped     StatusCode = 'S'
	StatusResuming    StatusCode = 'R'
	StatusHalted      StatusCode = 'H'
	StatusFlashing    StatusCode = 'F'
	StatusToolChange  StatusCode = 'T'
	StatusPaused      StatusCode = 'A'
	StatusSimulating  StatusCode = 'M'
	StatusOff         StatusCode = 'O'
)

var statusNames = map[StatusCode]string{
	StatusConfiguring: "configuring",
	StatusIdle:        "idle",
	StatusBusy:        "busy",
	StatusPrinting:    "printing",
	StatusPausing:     "pausing",
	StatusStopped:     "stopped",
	StatusResuming:    "resuming",
	StatusHalted:      "halted",
	StatusFlashing:    "flashing firmware",
	StatusToolChange:  "changing tool",
	StatusPaused:      "paused",
	StatusSimulating:  "simulating",
	StatusOff:         "off",
}

// CodeOf returns the status code for a raw state string. Only the first
// character is significant.
func CodeOf(state string) StatusCode {
	if state == "" {
		return StatusUnknown
	}
	return StatusCode(state[0])
}

func (s StatusCode) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	if s == StatusUnknown {
		return "unknown"
	}
	return "unknown (" + string(rune(s)) + ")"
}

// Classification groups status codes into what a display cares about.
type Classification int

const (
	Offline Classification = iota
	Operational
	Printing
)

func (c Classification) String() string {
	switch c {
	case Printing:
		return "Printing"
	case Operational:
		return "Operational"
	default:
		return "Offline"
	}
}

// Classify maps every status code to a classification. Codes outside the
// operational set, including A, M and O, are Offline.
func Classify(code StatusCode) Classification {
	switch code {
	case StatusPrinting, StatusPausing:
		return Printing
	case StatusConfiguring, StatusIdle, StatusBusy, StatusStopped,
		StatusResuming, StatusHalted, StatusFlashing, StatusToolChange:
		return Operational
	default:
		return Offline
	}
}

// Code returns the status code of the record.
func (s PrinterStatus) Code() StatusCode {
	return CodeOf(s.State)
}

// Classification returns the classification of the record's state.
func (s PrinterStatus) Classification() Classification {
	return Classify(s.Code())
}

// StateLabel is "Operational" for any operational or printing code and
// "Offline" otherwise, including an empty state.
func (s PrinterStatus) StateLabel() string {
	if s.Classification() == Offline {
		return Offline.String()
	}
	return Operational.String()
}

// IsPrinting reports whether the state is printing or pausing. Unlike
// Client.IsPrinting it does not modify the record.
func (s PrinterStatus) IsPrinting() bool {
	return s.Classification() == Printing
}

// IsOperational reports whether the state is in the operational set.
func (s PrinterStatus) IsOperational() bool {
	return s.Classification() != Offline || s.IsPrinting()
}

// Completion returns the printed fraction as a whole percentage, truncated.
func (s PrinterStatus) Completion() string {
	return completionPercent(s.ProgressCompletion)
}

// TimeLeft returns the stored time-left estimate, forced to "0" once the
// job reports 100%. Duet firmware leaves the filament estimate non-zero at
// completion.
func (s PrinterStatus) TimeLeft() string {
	if s.Completion() == "100" {
		return "0"
	}
	return s.ProgressPrintTimeLeft
}

// completionEpsilon absorbs binary float error so that 0.29 reads as 29.
const completionEpsilon = 1e-9

func completionPercent(raw string) string {
	if raw == "" {
		return ""
	}
	f, ok := parseNumber(raw)
	if !ok {
		return "0"
	}
	v := f * 100
	if v >= 0 {
		v += completionEpsilon
	} else {
		v -= completionEpsilon
	}
	return strconv.FormatInt(int64(v), 10)
}

// ValueRounded parses value as a float, adds 0.5 and truncates toward zero.
// This is nearest-integer rounding for non-negative values only: "-3.5"
// yields "-3". Unparseable input counts as zero.
func ValueRounded(value string) string {
	f, _ := parseNumber(value)
	return strconv.FormatInt(int64(f+0.5), 10)
}

func parseNumber(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
