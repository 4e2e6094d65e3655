// Package errors provides structured CLI error types for duetmon.
//
// CLIError wraps errors with a user-facing message, a hint and an exit code.
package errors

import (
	"errors"
	"fmt"

	"github.com/five82/duetmon/internal/duet"
)

// Exit codes for CLI errors.
const (
	ExitSuccess = 0  // Successful execution
	ExitGeneral = 1  // General error
	ExitAuth    = 2  // Credential storage error
	ExitNetwork = 3  // Printer unreachable or misbehaving
	ExitConfig  = 4  // Configuration error
	ExitUsage   = 64 // Command line usage error (BSD convention)
)

// CLIError represents a user-facing CLI error with actionable guidance.
type CLIError struct {
	Message string
	Hint    string
	Cause   error
	Code    int
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// Wrap wraps an existing error with a CLIError.
func Wrap(code int, message string, cause error) *CLIError {
	return &CLIError{
		Message: message,
		Cause:   cause,
		Code:    code,
	}
}

// WithHint adds a hint to the error.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// As is a convenience function for errors.As with CLIError.
func As(err error, target **CLIError) bool {
	return errors.As(err, target)
}

// --- Common error constructors ---

// ConfigInvalid returns an error for a config that cannot be used.
func ConfigInvalid(cause error) *CLIError {
	return &CLIError{
		Message: "Invalid configuration",
		Hint:    "Set printer.host in ~/.config/duetmon/config.toml or DUETMON_PRINTER_HOST",
		Cause:   cause,
		Code:    ExitConfig,
	}
}

// CannotPrompt returns an error when interactive prompts are unavailable.
func CannotPrompt(envVar string) *CLIError {
	return &CLIError{
		Message: "Cannot prompt in non-interactive mode",
		Hint:    fmt.Sprintf("Set %s environment variable instead", envVar),
		Code:    ExitUsage,
	}
}

// CredentialStore returns an error for keyring failures.
func CredentialStore(action string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Failed to %s", action),
		Hint:    "Check that a keyring service is available, or set DUETMON_PASSWORD",
		Cause:   cause,
		Code:    ExitAuth,
	}
}

// FromPoll maps a poll failure to a CLI error. The message is the text the
// client stored for display.
func FromPoll(err error) *CLIError {
	var pollErr *duet.Error
	if !errors.As(err, &pollErr) {
		return Wrap(ExitGeneral, "Poll failed", err)
	}

	cliErr := &CLIError{Message: pollErr.Message, Code: ExitNetwork}
	switch {
	case errors.Is(err, duet.ErrMissingHost):
		cliErr.Code = ExitConfig
		cliErr.Hint = "Set printer.host in the config file or DUETMON_PRINTER_HOST"
	case errors.Is(err, duet.ErrConnect):
		cliErr.Hint = "Check that the board is powered and reachable on the network"
	case errors.Is(err, duet.ErrUnexpectedStatus), errors.Is(err, duet.ErrInvalidResponse):
		cliErr.Hint = "Check printer.port and that the address points at a Duet board"
	case errors.Is(err, duet.ErrParse):
		cliErr.Hint = "The board answered with data that is not a status document"
	}
	return cliErr
}
