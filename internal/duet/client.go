package duet

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// PrinterType identifies the printer family this client talks to.
	PrinterType = "Duet"

	defaultUserAgent = "duetmon/0.1"
	requestTimeout   = 5 * time.Second
	tracerName       = "github.com/five82/duetmon/internal/duet"

	jobStatusPath = "/rr_status?type=3"
	fileInfoPath  = "/rr_fileinfo"

	statusLineOK       = "HTTP/1.1 200 OK"
	statusLineConflict = "HTTP/1.1 409 CONFLICT"
	headerTerminator   = "\r\n\r\n"
)

// Settings is the connection configuration of a Client.
type Settings struct {
	APIKey   string // accepted for parity with other printer clients; unused
	Host     string
	Port     int
	Username string
	Password string
	PollPSU  bool
}

// Client polls a Duet printer. A Client is not safe for concurrent use: it
// is meant to be owned by a single poller, and Configure must not race with
// an in-flight poll.
type Client struct {
	apiKey      string
	host        string
	port        int
	encodedAuth string
	pollPSU     bool

	userAgent string
	timeout   time.Duration
	logger    *slog.Logger
	tracer    trace.Tracer

	status PrinterStatus
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTimeout overrides the connect and per-read timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if strings.TrimSpace(userAgent) != "" {
			c.userAgent = userAgent
		}
	}
}

// NewClient builds a Client for the given settings.
func NewClient(settings Settings, opts ...Option) *Client {
	c := &Client{
		userAgent: defaultUserAgent,
		timeout:   requestTimeout,
		logger:    slog.New(slog.DiscardHandler),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Configure(settings)
	return c
}

// Configure replaces the connection settings. The password is only kept in
// encoded form, and only when a username is given.
func (c *Client) Configure(settings Settings) {
	c.apiKey = settings.APIKey
	c.host = settings.Host
	c.port = settings.Port
	c.encodedAuth = ""
	if settings.Username != "" {
		userpass := settings.Username + ":" + settings.Password
		c.encodedAuth = base64.StdEncoding.EncodeToString([]byte(userpass))
	}
	c.pollPSU = settings.PollPSU
}

// Validate clears the last error and checks that a server address is set.
func (c *Client) Validate() bool {
	return c.validate() == nil
}

func (c *Client) validate() error {
	c.status.Error = ""
	if c.host == "" {
		c.status.Error = "Server address is required; "
		return newError(ErrMissingHost, c.status.Error, nil)
	}
	return nil
}

// GetPrinterJobResults runs one poll cycle: job status first, then file
// info. Any failure ends the cycle; the returned record carries the error
// text and the error is also returned.
func (c *Client) GetPrinterJobResults(ctx context.Context) (PrinterStatus, error) {
	ctx, span := c.tracer.Start(ctx, "duet.poll", trace.WithAttributes(
		attribute.String("duet.host", c.host),
		attribute.Int("duet.port", c.port),
	))
	defer span.End()

	err := c.poll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, c.status.Error)
	} else {
		span.SetAttributes(attribute.String("duet.status", c.status.State))
	}
	return c.status, err
}

func (c *Client) poll(ctx context.Context) error {
	if err := c.validate(); err != nil {
		return err
	}

	var job statusPayload
	if err := c.fetch(ctx, jobStatusPath, &job); err != nil {
		return err
	}

	c.status.ProgressCompletion = string(job.FractionPrinted)
	c.status.ProgressFilepos = string(job.FilePosition)
	c.status.ProgressPrintTime = string(job.PrintDuration)
	c.status.ProgressPrintTimeLeft = string(job.TimesLeft.Value.Filament)
	c.status.State = job.Status.String()
	c.status.ToolTemp = string(job.Temps.Value.Current.at(1))
	c.status.ToolTargetTemp = string(job.Tools.Value.Active)
	c.status.BedTemp = string(job.Temps.Value.Bed.Value.Current)
	c.status.BedTargetTemp = string(job.Temps.Value.Bed.Value.Active)

	if c.IsOperational() {
		c.logger.Info("printer status", slog.String("status", c.status.State))
	} else {
		c.logger.Info("printer not operational")
	}

	var file fileInfoPayload
	if err := c.fetch(ctx, fileInfoPath, &file); err != nil {
		return err
	}

	c.status.FileName = string(file.FileName)
	c.status.FileSize = string(file.Size)
	c.status.FilamentLength = string(file.Filament.at(0))
	return nil
}

// GetPrinterPsuState is a placeholder: Duet exposes no PSU state through
// the endpoints this client uses, so PSUOff is never set.
func (c *Client) GetPrinterPsuState(ctx context.Context) {}

// ResetPrintData clears every polled field, both flags and the error.
func (c *Client) ResetPrintData() {
	name := c.status.PrinterName
	c.status = PrinterStatus{PrinterName: name}
}

type payload interface {
	missingFields() []string
}

func (c *Client) fetch(ctx context.Context, path string, dest payload) error {
	ctx, span := c.tracer.Start(ctx, "duet.request", trace.WithAttributes(
		attribute.String("http.request.method", "GET"),
		attribute.String("url.path", path),
	))
	defer span.End()

	resp, err := c.submitRequest(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, c.status.Error)
		return err
	}
	defer resp.Close()

	if err := decodeObject(resp.body, dest); err != nil {
		c.ResetPrintData()
		c.status.Error = "Duet Data Parsing failed: " + c.addr()
		cause := err
		var missing *missingFieldError
		if errors.As(err, &missing) {
			c.status.Error += " (" + missing.Error() + ")"
			cause = nil
		}
		c.logger.Warn("duet data parsing failed",
			slog.String("addr", c.addr()),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, c.status.Error)
		return newError(ErrParse, c.status.Error, cause)
	}
	return nil
}

type response struct {
	conn net.Conn
	body *bufio.Reader
	stop func() bool
}

func (r *response) Close() {
	if r == nil || r.conn == nil {
		return
	}
	if r.stop != nil {
		r.stop()
	}
	_ = r.conn.Close()
}

// submitRequest sends a GET for path and returns the response positioned at
// the start of the body. The caller must Close the returned response.
func (c *Client) submitRequest(ctx context.Context, path string) (*response, error) {
	addr := c.addr()
	c.logger.Debug("getting duet data", slog.String("addr", addr), slog.String("path", path))

	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		c.ResetPrintData()
		c.status.Error = "Connection to Duet failed: " + addr
		c.logger.Warn("connection to duet failed", slog.String("addr", addr), slog.String("error", err.Error()))
		return nil, newError(ErrConnect, c.status.Error, err)
	}

	// Closing the socket unblocks a pending read when the caller gives up.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	tc := &timeoutConn{Conn: conn, timeout: c.timeout}
	resp := &response{conn: conn, stop: stop}

	if _, err := io.WriteString(tc, c.buildRequest(path)); err != nil {
		resp.Close()
		c.ResetPrintData()
		c.status.Error = fmt.Sprintf("Connection to %s failed.", addr)
		c.logger.Warn("request write failed", slog.String("addr", addr), slog.String("error", err.Error()))
		return nil, newError(ErrConnect, c.status.Error, err)
	}

	reader := bufio.NewReader(tc)
	line, ending, readErr := readStatusLine(reader)
	if line != statusLineOK && line != statusLineConflict {
		resp.Close()
		c.status.State = ""
		c.status.Error = "Response: " + line
		c.logger.Warn("unexpected response", slog.String("status_line", line))
		return nil, newError(ErrUnexpectedStatus, c.status.Error, readErr)
	}

	if err := skipHeaders(reader, ending); err != nil {
		resp.Close()
		c.status.State = ""
		c.status.Error = "Invalid response from " + addr
		c.logger.Warn("invalid response", slog.String("addr", addr), slog.String("error", err.Error()))
		return nil, newError(ErrInvalidResponse, c.status.Error, err)
	}

	resp.body = reader
	return resp, nil
}

func (c *Client) buildRequest(path string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "GET %s HTTP/1.1\r\n", path)
	fmt.Fprintf(&b, "Host: %s\r\n", c.addr())
	if c.encodedAuth != "" {
		fmt.Fprintf(&b, "Authorization: Basic %s\r\n", c.encodedAuth)
	}
	fmt.Fprintf(&b, "User-Agent: %s\r\n", c.userAgent)
	b.WriteString("Connection: close\r\n")
	b.WriteString("\r\n")
	return b.String()
}

func (c *Client) addr() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

// readStatusLine returns the first line without its terminator, plus the
// terminator bytes that were consumed.
func readStatusLine(r *bufio.Reader) (line, ending string, err error) {
	raw, err := r.ReadSlice('\n')
	text := string(raw)
	switch {
	case strings.HasSuffix(text, "\r\n"):
		return strings.TrimSuffix(text, "\r\n"), "\r\n", err
	case strings.HasSuffix(text, "\n"):
		return strings.TrimSuffix(text, "\n"), "\n", err
	default:
		return strings.TrimSuffix(text, "\r"), "", err
	}
}

// skipHeaders consumes bytes up to and including the first CRLFCRLF. The
// status line's own terminator counts toward the match, so a reply without
// any headers is accepted.
func skipHeaders(r *bufio.Reader, primed string) error {
	window := make([]byte, 0, len(headerTerminator))
	window = append(window, primed...)
	for string(window) != headerTerminator {
		b, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("header terminator not found: %w", err)
		}
		if len(window) == len(headerTerminator) {
			copy(window, window[1:])
			window = window[:len(window)-1]
		}
		window = append(window, b)
	}
	return nil
}

type missingFieldError struct {
	fields []string
}

func (e *missingFieldError) Error() string {
	quoted := make([]string, len(e.fields))
	for i, f := range e.fields {
		quoted[i] = strconv.Quote(f)
	}
	return "missing field " + strings.Join(quoted, ", ")
}

// decodeObject reads one JSON value from r and requires it to be an object
// carrying every field dest declares as required.
func decodeObject(r io.Reader, dest payload) error {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if firstByte(raw) != '{' {
		return fmt.Errorf("decode response: body is not a JSON object")
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if missing := dest.missingFields(); len(missing) > 0 {
		return &missingFieldError{fields: missing}
	}
	return nil
}

// timeoutConn applies the timeout to every read and write individually.
type timeoutConn struct {
	net.Conn
	timeout time.Duration
}

func (t *timeoutConn) Read(p []byte) (int, error) {
	if err := t.Conn.SetReadDeadline(time.Now().Add(t.timeout)); err != nil {
		return 0, err
	}
	return t.Conn.Read(p)
}

func (t *timeoutConn) Write(p []byte) (int, error) {
	if err := t.Conn.SetWriteDeadline(time.Now().Add(t.timeout)); err != nil {
		return 0, err
	}
	return t.Conn.Write(p)
}
