package duet

// Status returns a copy of the current status record.
func (c *Client) Status() PrinterStatus {
	return c.status
}

func (c *Client) AveragePrintTime() string   { return c.status.AveragePrintTime }
func (c *Client) EstimatedPrintTime() string { return c.status.EstimatedPrintTime }
func (c *Client) LastPrintTime() string      { return c.status.LastPrintTime }
func (c *Client) FileName() string           { return c.status.FileName }
func (c *Client) FileSize() string           { return c.status.FileSize }
func (c *Client) FilamentLength() string     { return c.status.FilamentLength }
func (c *Client) ProgressFilepos() string    { return c.status.ProgressFilepos }
func (c *Client) ProgressPrintTime() string  { return c.status.ProgressPrintTime }
func (c *Client) TempBedActual() string      { return c.status.BedTemp }
func (c *Client) TempBedTarget() string      { return c.status.BedTargetTemp }
func (c *Client) TempToolActual() string     { return c.status.ToolTemp }
func (c *Client) TempToolTarget() string     { return c.status.ToolTargetTemp }
func (c *Client) IsPSUOff() bool             { return c.status.PSUOff }

// Error returns the last error message; empty means no error.
func (c *Client) Error() string { return c.status.Error }

// ProgressCompletion returns the completion as a whole percentage.
func (c *Client) ProgressCompletion() string {
	return c.status.Completion()
}

// ProgressPrintTimeLeft returns the time-left estimate, or "0" once the
// completion reaches 100.
func (c *Client) ProgressPrintTimeLeft() string {
	return c.status.TimeLeft()
}

// StatusCode returns the raw RepRapFirmware status code.
func (c *Client) StatusCode() StatusCode {
	return c.status.Code()
}

// State returns "Operational" or "Offline".
func (c *Client) State() string {
	return c.status.StateLabel()
}

// IsPrinting reports whether the printer is printing or pausing, and records
// the answer in the status record.
func (c *Client) IsPrinting() bool {
	c.status.Printing = c.status.IsPrinting()
	return c.status.Printing
}

// IsOperational reports whether the state is operational. The printing
// check is kept even though printing codes are already operational, because
// it refreshes the record's printing flag.
func (c *Client) IsOperational() bool {
	operational := Classify(c.status.Code()) != Offline
	if c.IsPrinting() {
		operational = true
	}
	return operational
}

// PrinterType returns the printer family label.
func (c *Client) PrinterType() string { return PrinterType }

// PrinterPort returns the configured port.
func (c *Client) PrinterPort() int { return c.port }

// PrinterHost returns the configured server address.
func (c *Client) PrinterHost() string { return c.host }

// PollsPSU reports whether PSU polling was requested.
func (c *Client) PollsPSU() bool { return c.pollPSU }

// PrinterName returns the caller-assigned label.
func (c *Client) PrinterName() string { return c.status.PrinterName }

// SetPrinterName sets the caller-assigned label. It is kept in memory only.
func (c *Client) SetPrinterName(name string) {
	c.status.PrinterName = name
}

// APIKey returns the configured API key. Duet does not use it.
func (c *Client) APIKey() string { return c.apiKey }
