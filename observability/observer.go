// Package observability carries the structured events emitted while fixtures
// are registered and built. Observers decide where events go: a slog logger,
// an in-memory Recorder for assertions, or nowhere at all.
//
// Level values follow OpenTelemetry SeverityNumber ranges so events can be
// forwarded to an OTel pipeline without translation.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// Level is event severity on the OTel SeverityNumber scale. The factory
// only emits the two levels below; any other SeverityNumber is accepted
// from callers and mapped by range.
type Level int

const (
	LevelVerbose Level = 5  // registrations and builds
	LevelWarning Level = 13 // rejected registrations and failed builds
)

// severities lists the upper bound of each OTel range with its text and
// nearest slog level. Anything above the last bound is FATAL.
var severities = [...]struct {
	upper Level
	text  string
	slog  slog.Level
}{
	{4, "TRACE", slog.LevelDebug},
	{8, "DEBUG", slog.LevelDebug},
	{12, "INFO", slog.LevelInfo},
	{16, "WARN", slog.LevelWarn},
	{20, "ERROR", slog.LevelError},
}

func (l Level) severity() (string, slog.Level) {
	for _, s := range severities {
		if l <= s.upper {
			return s.text, s.slog
		}
	}
	return "FATAL", slog.LevelError
}

// String returns the OTel severity text for l.
func (l Level) String() string {
	text, _ := l.severity()
	return text
}

// SlogLevel converts l to the nearest slog.Level.
func (l Level) SlogLevel() slog.Level {
	_, level := l.severity()
	return level
}

// EventType names an event. Emitting packages declare their own constants,
// e.g. "factory.register".
type EventType string

// Event is a single observation. Source identifies the emitting operation
// and Data carries its attributes.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// NewEvent stamps an event with the current time.
func NewEvent(typ EventType, level Level, source string, data map[string]any) Event {
	return Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		Data:      data,
	}
}

// Observer receives events.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// Emit sends event to o, tolerating a nil observer.
func Emit(ctx context.Context, o Observer, event Event) {
	if o == nil {
		return
	}
	o.OnEvent(ctx, event)
}
