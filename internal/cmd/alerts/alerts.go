// Package alerts prints short status notices, such as a review gate
// decision, to the diagnostic stream. Machine formats keep stdout clean,
// so alerts never go to the command output.
package alerts

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/agentstation/tablemerge/pkg/review"
)

// Alert represents a status notice.
type Alert struct {
	Level   Level
	Message string
	Details []string
}

// New creates a new alert with the given level and message.
func New(level Level, message string) *Alert {
	return &Alert{Level: level, Message: message}
}

// WithDetails adds context lines to the alert.
func (a *Alert) WithDetails(details ...string) *Alert {
	a.Details = append(a.Details, details...)
	return a
}

// String returns the one-line form of the alert.
func (a *Alert) String() string {
	return a.Level.Icon() + " " + a.Message
}

// ForReview turns a review decision into an alert. A decision that needs
// no review yields a success alert.
func ForReview(d review.Decision) *Alert {
	if !d.RequiresReview {
		return New(LevelSuccess, fmt.Sprintf("No review required (%d conflicts)", d.Summary.Total))
	}
	a := New(LevelWarning, "Review required")
	a.Details = append(a.Details, d.Reasons...)
	for _, m := range d.LowConfidence {
		a.Details = append(a.Details, fmt.Sprintf("%s <-> %s at %d", m.LeftColumn, m.RightColumn, m.Confidence))
	}
	return a
}

// Writer prints alerts to a stream.
type Writer struct {
	w       io.Writer
	color   bool
	details bool
	quiet   bool
}

// NewWriter creates a Writer. Colors are used when w is a terminal and
// noColor is false.
func NewWriter(w io.Writer, noColor bool) *Writer {
	return &Writer{w: w, color: !noColor && isTerminal(w), details: true}
}

// Quiet suppresses everything below warnings.
func (w *Writer) Quiet(q bool) *Writer {
	w.quiet = q
	return w
}

// Write prints one alert and its details.
func (w *Writer) Write(a *Alert) error {
	if w.quiet && a.Level > LevelWarning {
		return nil
	}
	var b strings.Builder
	if w.color {
		b.WriteString(a.Level.Color() + a.String() + resetColor + "\n")
	} else {
		b.WriteString(a.String() + "\n")
	}
	if w.details {
		for _, d := range a.Details {
			b.WriteString("   " + d + "\n")
		}
	}
	_, err := io.WriteString(w.w, b.String())
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
