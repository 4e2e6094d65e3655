// Package output writes CLI messages with optional color and spinners.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

type contextKey struct{}

const fieldWidth = 12

// Writer handles CLI output.
type Writer struct {
	Out   io.Writer
	Err   io.Writer
	Quiet bool

	tty   bool
	color bool

	successColor *color.Color
	errorColor   *color.Color
	warningColor *color.Color
	infoColor    *color.Color
	mutedColor   *color.Color
}

// Default returns a Writer for stdout/stderr with TTY detection.
func Default() *Writer {
	tty := term.IsTerminal(int(os.Stdout.Fd()))
	return New(os.Stdout, os.Stderr, tty)
}

// New creates a Writer. Color and spinners are enabled only when tty is true
// and NO_COLOR is unset.
func New(out, errOut io.Writer, tty bool) *Writer {
	w := &Writer{
		Out:          out,
		Err:          errOut,
		tty:          tty,
		color:        tty && os.Getenv("NO_COLOR") == "",
		successColor: color.New(color.FgGreen),
		errorColor:   color.New(color.FgRed),
		warningColor: color.New(color.FgYellow),
		infoColor:    color.New(color.FgCyan),
		mutedColor:   color.New(color.FgHiBlack),
	}
	if !w.color {
		for _, c := range []*color.Color{w.successColor, w.errorColor, w.warningColor, w.infoColor, w.mutedColor} {
			c.DisableColor()
		}
	} else {
		for _, c := range []*color.Color{w.successColor, w.errorColor, w.warningColor, w.infoColor, w.mutedColor} {
			c.EnableColor()
		}
	}
	return w
}

// WithContext stores the Writer in the context.
func (w *Writer) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, w)
}

// FromContext retrieves the Writer from context, or returns Default().
func FromContext(ctx context.Context) *Writer {
	if w, ok := ctx.Value(contextKey{}).(*Writer); ok {
		return w
	}
	return Default()
}

// IsTTY reports whether stdout is a terminal.
func (w *Writer) IsTTY() bool { return w.tty }

// SetNoColor disables colored output.
func (w *Writer) SetNoColor() {
	w.color = false
	for _, c := range []*color.Color{w.successColor, w.errorColor, w.warningColor, w.infoColor, w.mutedColor} {
		c.DisableColor()
	}
}

// Println writes a line to stdout (respects quiet mode).
func (w *Writer) Println(args ...any) {
	if !w.Quiet {
		fmt.Fprintln(w.Out, args...)
	}
}

// PrintJSON outputs structured data as indented JSON.
func (w *Writer) PrintJSON(v any) error {
	enc := json.NewEncoder(w.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintYAML outputs structured data as YAML. Keys and their order follow
// the value's JSON encoding.
func (w *Writer) PrintYAML(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	blockStyle(&doc)

	enc := yaml.NewEncoder(w.Out)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// blockStyle drops the flow and quoting styles JSON input carries; the
// encoder re-quotes scalars that need it.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// Field writes an aligned "label  value" line, value in the given tone.
func (w *Writer) Field(label, value string, tone Tone) {
	if w.Quiet {
		return
	}
	fmt.Fprint(w.Out, runewidth.FillRight(label, fieldWidth))
	w.toneColor(tone).Fprintln(w.Out, value)
}

// Tone selects a message color.
type Tone int

const (
	ToneNone Tone = iota
	ToneSuccess
	ToneWarning
	ToneError
	ToneInfo
	ToneMuted
)

func (w *Writer) toneColor(t Tone) *color.Color {
	switch t {
	case ToneSuccess:
		return w.successColor
	case ToneWarning:
		return w.warningColor
	case ToneError:
		return w.errorColor
	case ToneInfo:
		return w.infoColor
	case ToneMuted:
		return w.mutedColor
	default:
		c := color.New()
		c.DisableColor()
		return c
	}
}

func (w *Writer) writeStatus(writer io.Writer, tone *color.Color, prefix, message string) {
	tone.Fprint(writer, prefix+" ")
	fmt.Fprintln(writer, message)
}

// Success writes a success message with a checkmark.
func (w *Writer) Success(format string, args ...any) {
	if w.Quiet {
		return
	}
	w.writeStatus(w.Out, w.successColor, CheckMark, fmt.Sprintf(format, args...))
}

// Failure writes an error message with an X mark to stderr.
func (w *Writer) Failure(format string, args ...any) {
	w.writeStatus(w.Err, w.errorColor, XMark, fmt.Sprintf(format, args...))
}

// Warning writes a warning message.
func (w *Writer) Warning(format string, args ...any) {
	if w.Quiet {
		return
	}
	w.writeStatus(w.Out, w.warningColor, WarningMark, fmt.Sprintf(format, args...))
}

// Info writes an info message.
func (w *Writer) Info(format string, args ...any) {
	if w.Quiet {
		return
	}
	w.writeStatus(w.Out, w.infoColor, InfoMark, fmt.Sprintf(format, args...))
}

// Status symbols
const (
	CheckMark   = "\u2713" // ✓
	XMark       = "\u2717" // ✗
	WarningMark = "\u26A0" // ⚠
	InfoMark    = "\u2139" // ℹ
)

// Spinner creates a spinner for long operations. It is inert when stdout is
// not a terminal or in quiet mode.
func (w *Writer) Spinner(message string) *Spinner {
	if w.Quiet || !w.tty {
		return &Spinner{disabled: true}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Writer = w.Err
	s.Suffix = " " + message

	return &Spinner{spinner: s}
}

// Spinner wraps briandowns/spinner.
type Spinner struct {
	spinner  *spinner.Spinner
	disabled bool
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	if !s.disabled {
		s.spinner.Start()
	}
}

// Stop stops the spinner animation.
func (s *Spinner) Stop() {
	if !s.disabled {
		s.spinner.Stop()
	}
}
