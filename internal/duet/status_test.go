package duet

import (
	"encoding/json"
	"testing"
)

func TestValueRounded(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"3.4", "3"},
		{"3.5", "4"},
		{"0", "0"},
		{"209.96", "210"},
		{" 60.5 ", "61"},
		{"-3.5", "-3"},
		{"-3.6", "-3"},
		{"-0.4", "0"},
		{"", "0"},
		{"abc", "0"},
	}
	for _, tt := range tests {
		if got := ValueRounded(tt.in); got != tt.want {
			t.Errorf("ValueRounded(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCompletion(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"0.42", "42"},
		{"0.29", "29"},
		{"0.999", "99"},
		{"1.0", "100"},
		{"1", "100"},
		{"junk", "0"},
	}
	for _, tt := range tests {
		s := PrinterStatus{ProgressCompletion: tt.raw}
		if got := s.Completion(); got != tt.want {
			t.Errorf("Completion(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestTimeLeft_ZeroAtCompletion(t *testing.T) {
	s := PrinterStatus{ProgressCompletion: "1.0", ProgressPrintTimeLeft: "87.3"}
	if got := s.TimeLeft(); got != "0" {
		t.Fatalf("TimeLeft() = %q, want 0 at 100%%", got)
	}
	s.ProgressCompletion = "0.5"
	if got := s.TimeLeft(); got != "87.3" {
		t.Fatalf("TimeLeft() = %q, want stored value", got)
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		state       string
		label       string
		printing    bool
		operational bool
	}{
		{"", "Offline", false, false},
		{"P", "Operational", true, true},
		{"D", "Operational", true, true},
		{"I", "Operational", false, true},
		{"C", "Operational", false, true},
		{"B", "Operational", false, true},
		{"S", "Operational", false, true},
		{"R", "Operational", false, true},
		{"H", "Operational", false, true},
		{"F", "Operational", false, true},
		{"T", "Operational", false, true},
		{"A", "Offline", false, false},
		{"O", "Offline", false, false},
		{"M", "Offline", false, false},
		{"x", "Offline", false, false},
		{"Printing", "Operational", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			c := NewClient(Settings{Host: "h", Port: 80})
			c.status.State = tt.state

			if got := c.State(); got != tt.label {
				t.Errorf("State() = %q, want %q", got, tt.label)
			}
			if got := c.IsPrinting(); got != tt.printing {
				t.Errorf("IsPrinting() = %v, want %v", got, tt.printing)
			}
			if c.status.Printing != tt.printing {
				t.Errorf("record printing flag = %v, want %v", c.status.Printing, tt.printing)
			}
			if got := c.IsOperational(); got != tt.operational {
				t.Errorf("IsOperational() = %v, want %v", got, tt.operational)
			}

			snap := c.Status()
			if snap.StateLabel() != tt.label || snap.IsPrinting() != tt.printing || snap.IsOperational() != tt.operational {
				t.Errorf("snapshot classification disagrees with client for %q", tt.state)
			}
		})
	}
}

func TestStatusCodeString(t *testing.T) {
	if StatusPrinting.String() != "printing" {
		t.Fatalf("StatusPrinting.String() = %q", StatusPrinting.String())
	}
	if StatusUnknown.String() != "unknown" {
		t.Fatalf("StatusUnknown.String() = %q", StatusUnknown.String())
	}
	if got := StatusCode('Z').String(); got != "unknown (Z)" {
		t.Fatalf("StatusCode('Z').String() = %q", got)
	}
	if Classify(StatusToolChange).String() != "Operational" || Classify(StatusPausing).String() != "Printing" {
		t.Fatalf("Classify labels mismatch")
	}
}

func TestResetPrintData_ClearsEverything(t *testing.T) {
	c := NewClient(Settings{Host: "h", Port: 80})
	c.status = PrinterStatus{
		State:                 "P",
		ProgressCompletion:    "0.5",
		ProgressFilepos:       "1",
		ProgressPrintTime:     "2",
		ProgressPrintTimeLeft: "3",
		ToolTemp:              "4",
		ToolTargetTemp:        "5",
		BedTemp:               "6",
		BedTargetTemp:         "7",
		FileName:              "f",
		FileSize:              "8",
		FilamentLength:        "9",
		AveragePrintTime:      "a",
		EstimatedPrintTime:    "b",
		LastPrintTime:         "c",
		Printing:              true,
		PSUOff:                true,
		Error:                 "boom",
	}

	c.ResetPrintData()

	strs := map[string]string{
		"AveragePrintTime":      c.AveragePrintTime(),
		"EstimatedPrintTime":    c.EstimatedPrintTime(),
		"LastPrintTime":         c.LastPrintTime(),
		"FileName":              c.FileName(),
		"FileSize":              c.FileSize(),
		"FilamentLength":        c.FilamentLength(),
		"ProgressCompletion":    c.ProgressCompletion(),
		"ProgressFilepos":       c.ProgressFilepos(),
		"ProgressPrintTime":     c.ProgressPrintTime(),
		"ProgressPrintTimeLeft": c.ProgressPrintTimeLeft(),
		"TempBedActual":         c.TempBedActual(),
		"TempBedTarget":         c.TempBedTarget(),
		"TempToolActual":        c.TempToolActual(),
		"TempToolTarget":        c.TempToolTarget(),
		"Error":                 c.Error(),
		"raw state":             c.Status().State,
	}
	for name, got := range strs {
		if got != "" {
			t.Errorf("%s = %q after reset, want empty", name, got)
		}
	}
	if c.IsPSUOff() || c.Status().Printing || c.IsPrinting() {
		t.Errorf("flags not cleared after reset")
	}
}

func TestJSONText(t *testing.T) {
	var p statusPayload
	body := `{"status":"S","fractionPrinted":0.25,"filePosition":"77","printDuration":true,` +
		`"timesLeft":[1,2],"temps":{"current":{"0":1},"bed":"hot"},"tools":{"active":null}}`
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p.Status.String() != "S" || p.FractionPrinted != "0.25" || p.FilePosition != "77" || p.PrintDuration != "true" {
		t.Fatalf("scalars decoded as %q/%q/%q/%q", p.Status.String(), p.FractionPrinted, p.FilePosition, p.PrintDuration)
	}
	if p.TimesLeft.Value.Filament != "" || p.Temps.Value.Current.at(1) != "" || p.Temps.Value.Bed.Value.Current != "" || p.Tools.Value.Active != "" {
		t.Fatalf("shape mismatches should decode to empty values: %#v", p)
	}
}
