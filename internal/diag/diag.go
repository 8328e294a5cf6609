// Package diag is the write-only diagnostic side channel. Components report
// trace/warning/error lines tagged with a subsystem; nothing ever reads the
// channel back into control flow.
package diag

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Severity of a diagnostic line.
type Severity int

const (
	SeverityTrace Severity = iota
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "trace"
	}
}

// Sink accepts structured diagnostic lines. Key-value pairs follow the
// message in alternating order.
type Sink interface {
	Trace(subsystem, msg string, kv ...any)
	Warn(subsystem, msg string, kv ...any)
	Error(subsystem, msg string, kv ...any)
}

// LoggerSink routes diagnostics to a charmbracelet logger. Trace maps to
// debug level so it stays quiet unless --verbose is set.
type LoggerSink struct {
	Logger *log.Logger
}

// NewLoggerSink wraps an existing logger.
func NewLoggerSink(l *log.Logger) *LoggerSink {
	return &LoggerSink{Logger: l}
}

func (s *LoggerSink) Trace(subsystem, msg string, kv ...any) {
	s.Logger.Debug(msg, append([]any{"subsystem", subsystem}, kv...)...)
}

func (s *LoggerSink) Warn(subsystem, msg string, kv ...any) {
	s.Logger.Warn(msg, append([]any{"subsystem", subsystem}, kv...)...)
}

func (s *LoggerSink) Error(subsystem, msg string, kv ...any) {
	s.Logger.Error(msg, append([]any{"subsystem", subsystem}, kv...)...)
}

// Line is one recorded diagnostic, kept by the Recorder for assertions.
type Line struct {
	Severity  Severity
	Subsystem string
	Message   string
	KV        []any
}

// Recorder is an in-memory sink for tests.
type Recorder struct {
	mu    sync.Mutex
	lines []Line
}

func (r *Recorder) Trace(subsystem, msg string, kv ...any) {
	r.append(SeverityTrace, subsystem, msg, kv)
}

func (r *Recorder) Warn(subsystem, msg string, kv ...any) {
	r.append(SeverityWarn, subsystem, msg, kv)
}

func (r *Recorder) Error(subsystem, msg string, kv ...any) {
	r.append(SeverityError, subsystem, msg, kv)
}

func (r *Recorder) append(sev Severity, subsystem, msg string, kv []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, Line{Severity: sev, Subsystem: subsystem, Message: msg, KV: kv})
}

// Lines returns a copy of everything recorded so far.
func (r *Recorder) Lines() []Line {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Line, len(r.lines))
	copy(out, r.lines)
	return out
}

// BySeverity returns recorded lines matching sev.
func (r *Recorder) BySeverity(sev Severity) []Line {
	var out []Line
	for _, l := range r.Lines() {
		if l.Severity == sev {
			out = append(out, l)
		}
	}
	return out
}

// Nop discards everything.
type Nop struct{}

func (Nop) Trace(string, string, ...any) {}
func (Nop) Warn(string, string, ...any)  {}
func (Nop) Error(string, string, ...any) {}
