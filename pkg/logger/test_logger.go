package logger

import (
	"context"
	"maps"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// LogMessage is one entry recorded by a TestLogger.
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
	Error   error
}

type entries struct {
	mu   sync.Mutex
	list []LogMessage
}

// TestLogger records entries in memory instead of writing them. Loggers
// derived with WithField, WithFields or WithError share the parent's
// record, so assertions can be made on the root after passing children
// down into the code under test.
type TestLogger struct {
	record *entries
	fields map[string]interface{}
	err    error
}

// NewTestLogger returns an empty recording logger.
func NewTestLogger() *TestLogger {
	return &TestLogger{record: &entries{}}
}

func (l *TestLogger) add(level, msg string, extra map[string]interface{}) {
	var fields map[string]interface{}
	if len(l.fields) > 0 || len(extra) > 0 {
		fields = make(map[string]interface{}, len(l.fields)+len(extra))
		maps.Copy(fields, l.fields)
		maps.Copy(fields, extra)
	}

	l.record.mu.Lock()
	l.record.list = append(l.record.list, LogMessage{Level: level, Message: msg, Fields: fields, Error: l.err})
	l.record.mu.Unlock()
}

func (l *TestLogger) derive(fields map[string]interface{}, err error) *TestLogger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	maps.Copy(merged, l.fields)
	maps.Copy(merged, fields)
	if err == nil {
		err = l.err
	}
	return &TestLogger{record: l.record, fields: merged, err: err}
}

func (l *TestLogger) Debug(msg string) { l.add("DEBUG", msg, nil) }
func (l *TestLogger) Info(msg string)  { l.add("INFO", msg, nil) }
func (l *TestLogger) Warn(msg string)  { l.add("WARN", msg, nil) }
func (l *TestLogger) Error(msg string) { l.add("ERROR", msg, nil) }

// Fatal is recorded like any other level; it never exits.
func (l *TestLogger) Fatal(msg string) { l.add("FATAL", msg, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.add("DEBUG", msg, fields)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.add("INFO", msg, fields)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.add("WARN", msg, fields)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.add("ERROR", msg, fields)
}

func (l *TestLogger) FatalWithFields(msg string, fields map[string]interface{}) {
	l.add("FATAL", msg, fields)
}

func (l *TestLogger) WithError(err error) Logger { return l.derive(nil, err) }

func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.derive(map[string]interface{}{key: value}, nil)
}

func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	return l.derive(fields, nil)
}

func (l *TestLogger) WithContext(context.Context) Logger { return l }

// GetZerolog returns a disabled zerolog logger.
func (l *TestLogger) GetZerolog() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}

// GetMessages returns a copy of everything recorded so far.
func (l *TestLogger) GetMessages() []LogMessage {
	l.record.mu.Lock()
	defer l.record.mu.Unlock()
	return append([]LogMessage(nil), l.record.list...)
}

// GetMessagesByLevel filters recorded entries by upper-case level name.
func (l *TestLogger) GetMessagesByLevel(level string) []LogMessage {
	var out []LogMessage
	for _, m := range l.GetMessages() {
		if m.Level == level {
			out = append(out, m)
		}
	}
	return out
}

// HasMessage reports whether an entry with exactly this message exists.
func (l *TestLogger) HasMessage(text string) bool {
	for _, m := range l.GetMessages() {
		if m.Message == text {
			return true
		}
	}
	return false
}

// Clear drops all recorded entries.
func (l *TestLogger) Clear() {
	l.record.mu.Lock()
	l.record.list = nil
	l.record.mu.Unlock()
}

// String renders the record one entry per line, for failure output.
func (l *TestLogger) String() string {
	var b strings.Builder
	for _, m := range l.GetMessages() {
		b.WriteString(m.Level)
		b.WriteString(" ")
		b.WriteString(m.Message)
		b.WriteString("\n")
	}
	return b.String()
}
