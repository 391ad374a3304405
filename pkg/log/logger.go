package log

import (
	stdlog "log"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the logging interface passed between IES components.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	// With returns a child logger carrying additional base fields.
	With(fields ...Field) Logger

	// SetLevel sets the minimum level; messages below it are dropped.
	SetLevel(level Level)
	GetLevel() Level
}

// BaseLogger is the default Logger implementation.
type BaseLogger struct {
	level     atomic.Int32
	fields    []Field
	formatter Formatter
	outputs   []Output
}

// LoggerOption configures a BaseLogger at construction time.
type LoggerOption func(*BaseLogger)

// WithLevel sets the minimum log level.
func WithLevel(level Level) LoggerOption {
	return func(l *BaseLogger) { l.level.Store(int32(level)) }
}

// WithFormatter sets the entry formatter.
func WithFormatter(f Formatter) LoggerOption {
	return func(l *BaseLogger) { l.formatter = f }
}

// WithOutput appends an output.
func WithOutput(o Output) LoggerOption {
	return func(l *BaseLogger) { l.outputs = append(l.outputs, o) }
}

// NewLogger builds a logger. Defaults: info level, text format, console output.
func NewLogger(options ...LoggerOption) Logger {
	l := &BaseLogger{formatter: &TextFormatter{}}
	l.level.Store(int32(InfoLevel))
	for _, opt := range options {
		opt(l)
	}
	if len(l.outputs) == 0 {
		l.outputs = append(l.outputs, NewConsoleOutput())
	}
	return l
}

func (l *BaseLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }
func (l *BaseLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields) }
func (l *BaseLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields) }
func (l *BaseLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

// Fatal logs at fatal level and exits the process.
func (l *BaseLogger) Fatal(msg string, fields ...Field) {
	l.log(FatalLevel, msg, fields)
	osExit(1)
}

// osExit is swapped in tests.
var osExit = os.Exit

func (l *BaseLogger) With(fields ...Field) Logger {
	child := &BaseLogger{
		fields:    append(append([]Field{}, l.fields...), fields...),
		formatter: l.formatter,
		outputs:   l.outputs,
	}
	child.level.Store(l.level.Load())
	return child
}

func (l *BaseLogger) SetLevel(level Level) { l.level.Store(int32(level)) }
func (l *BaseLogger) GetLevel() Level      { return Level(l.level.Load()) }

func (l *BaseLogger) log(level Level, msg string, fields []Field) {
	if level < l.GetLevel() {
		return
	}
	merged := make(Fields, len(l.fields)+len(fields))
	for _, f := range l.fields {
		merged[f.Key] = f.Value
	}
	for _, f := range fields {
		merged[f.Key] = f.Value
	}
	entry := &Entry{
		Level:     level,
		Message:   msg,
		Fields:    merged,
		Timestamp: now(),
	}
	formatted, err := l.formatter.Format(entry)
	if err != nil {
		return
	}
	for _, out := range l.outputs {
		_ = out.Write(entry, formatted)
	}
}

// Config carries the externally-tunable logger settings.
type Config struct {
	Level  string
	Format string // "text" or "json"
}

// ApplyConfig builds a Logger from a Config. Unknown levels are an error;
// unknown formats fall back to text.
func ApplyConfig(cfg *Config) (Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	var f Formatter
	switch strings.ToLower(cfg.Format) {
	case "json":
		f = &JSONFormatter{}
	default:
		f = &TextFormatter{}
	}
	return NewLogger(WithLevel(lvl), WithFormatter(f)), nil
}

// RedirectStdLog routes standard library log output through the provided
// logger at info level. Pebble logs through the stdlib logger.
func RedirectStdLog(logger Logger) {
	stdlog.SetFlags(0)
	stdlog.SetOutput(stdLogWriter{logger: logger})
}

type stdLogWriter struct{ logger Logger }

func (w stdLogWriter) Write(p []byte) (int, error) {
	w.logger.Info(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
