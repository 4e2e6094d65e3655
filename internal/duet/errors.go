package duet

import "errors"

var (
	// ErrMissingHost indicates the client has no server address configured.
	ErrMissingHost = errors.New("server address is required")

	// ErrConnect indicates the TCP connection or request write failed.
	ErrConnect = errors.New("connection failed")

	// ErrUnexpectedStatus indicates the printer answered with a status line
	// other than 200 OK or 409 CONFLICT.
	ErrUnexpectedStatus = errors.New("unexpected response status")

	// ErrInvalidResponse indicates the header/body separator was never seen.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrParse indicates the response body was not a usable JSON object.
	ErrParse = errors.New("parse failed")
)

// Error is returned by poll operations. Message is the same text stored in
// the status record's Error field; Kind is one of the sentinel errors above.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func newError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// IsConnectionError reports whether err came from the network layer rather
// than from a malformed reply.
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnect)
}
