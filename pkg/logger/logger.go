package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"igcrawler/pkg/config"
)

// Logger is the structured logging surface the crawler packages depend on.
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Fatal(msg string)

	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger
	WithContext(ctx context.Context) Logger

	DebugWithFields(msg string, fields map[string]interface{})
	InfoWithFields(msg string, fields map[string]interface{})
	WarnWithFields(msg string, fields map[string]interface{})
	ErrorWithFields(msg string, fields map[string]interface{})
	FatalWithFields(msg string, fields map[string]interface{})

	GetZerolog() *zerolog.Logger
}

// zl is a Logger backed by a zerolog context. Children carry their fields in
// the zerolog context itself.
type zl struct {
	z zerolog.Logger
}

// New builds a Logger from cfg. Output goes to stderr unless cfg.File is set,
// keeping stdout free for command results.
func New(cfg *config.LoggingConfig) (Logger, error) {
	if cfg.File == "" {
		return NewWithWriter(cfg.Level, consoleWriter(os.Stderr))
	}
	f, err := openLogFile(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("failed to setup file output: %w", err)
	}
	return NewWithWriter(cfg.Level, f)
}

// NewWithWriter builds a JSON Logger at levelName writing to w.
func NewWithWriter(levelName string, w io.Writer) (Logger, error) {
	level, err := parseLogLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.TimeFieldFormat = time.RFC3339
	return &zl{
		z: zerolog.New(w).Level(level).With().Timestamp().Str("app", "igcrawler").Logger(),
	}, nil
}

var shortLevels = map[string]string{
	"DEBUG": "DEBG",
	"ERROR": "ERRO",
	"FATAL": "FATL",
}

func consoleWriter(f *os.File) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        f,
		NoColor:    !term.IsTerminal(int(f.Fd())),
		TimeFormat: "15:04:05",
		FormatLevel: func(i interface{}) string {
			s, _ := i.(string)
			s = strings.ToUpper(s)
			if short, ok := shortLevels[s]; ok {
				return short
			}
			return s
		},
		FormatMessage: func(i interface{}) string {
			if i == nil {
				return ""
			}
			return fmt.Sprint("| ", i)
		},
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// parseLogLevel accepts zerolog level names in any case plus "warning".
// An empty name is rejected rather than mapped to zerolog.NoLevel.
func parseLogLevel(name string) (zerolog.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		name = "warn"
	}
	if name == "" {
		return zerolog.InfoLevel, fmt.Errorf("unknown log level: %q", name)
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("unknown log level: %q", name)
	}
	return level, nil
}

func (l *zl) emit(e *zerolog.Event, msg string, fields map[string]interface{}) {
	if len(fields) > 0 {
		e = e.Fields(fields)
	}
	e.Msg(msg)
}

func (l *zl) Debug(msg string) { l.emit(l.z.Debug(), msg, nil) }
func (l *zl) Info(msg string)  { l.emit(l.z.Info(), msg, nil) }
func (l *zl) Warn(msg string)  { l.emit(l.z.Warn(), msg, nil) }
func (l *zl) Error(msg string) { l.emit(l.z.Error(), msg, nil) }
func (l *zl) Fatal(msg string) { l.emit(l.z.Fatal(), msg, nil) }

func (l *zl) DebugWithFields(msg string, fields map[string]interface{}) {
	l.emit(l.z.Debug(), msg, fields)
}

func (l *zl) InfoWithFields(msg string, fields map[string]interface{}) {
	l.emit(l.z.Info(), msg, fields)
}

func (l *zl) WarnWithFields(msg string, fields map[string]interface{}) {
	l.emit(l.z.Warn(), msg, fields)
}

func (l *zl) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.emit(l.z.Error(), msg, fields)
}

// FatalWithFields logs and exits the process.
func (l *zl) FatalWithFields(msg string, fields map[string]interface{}) {
	l.emit(l.z.Fatal(), msg, fields)
}

func (l *zl) WithField(key string, value interface{}) Logger {
	return &zl{z: l.z.With().Interface(key, value).Logger()}
}

func (l *zl) WithFields(fields map[string]interface{}) Logger {
	return &zl{z: l.z.With().Fields(fields).Logger()}
}

// WithError returns l itself for a nil error.
func (l *zl) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return &zl{z: l.z.With().Err(err).Logger()}
}

func (l *zl) WithContext(ctx context.Context) Logger {
	return &zl{z: l.z.With().Ctx(ctx).Logger()}
}

func (l *zl) GetZerolog() *zerolog.Logger {
	return &l.z
}

var (
	globalMu sync.Mutex
	global   Logger
)

// Initialize replaces the process-wide logger and zerolog's global logger.
func Initialize(cfg *config.LoggingConfig) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	globalMu.Lock()
	global = l
	globalMu.Unlock()
	log.Logger = *l.GetZerolog()
	return nil
}

// GetLogger returns the process-wide logger, creating an info level console
// logger on first use when Initialize was never called.
func GetLogger() Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global, _ = NewWithWriter("info", consoleWriter(os.Stderr))
	}
	return global
}
