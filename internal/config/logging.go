package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mrz1836/ledgerbox/internal/fileutil"
)

// LogLevel represents logging verbosity levels.
type LogLevel int

// Log level constants.
const (
	LogLevelOff LogLevel = iota
	LogLevelError
	LogLevelInfo
	LogLevelDebug
)

// ParseLogLevel parses a log level string.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return LogLevelOff
	case "error":
		return LogLevelError
	case "info":
		return LogLevelInfo
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelError
	}
}

// String returns the string representation of a log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelOff:
		return "off"
	case LogLevelError:
		return "error"
	case LogLevelInfo:
		return "info"
	case LogLevelDebug:
		return "debug"
	default:
		return "error"
	}
}

func (l LogLevel) logrus() logrus.Level {
	switch l {
	case LogLevelDebug:
		return logrus.DebugLevel
	case LogLevelInfo:
		return logrus.InfoLevel
	case LogLevelOff:
		return logrus.PanicLevel
	default:
		return logrus.ErrorLevel
	}
}

// Logger writes JSON log lines to a file.
type Logger struct {
	mu       sync.Mutex
	level    LogLevel
	entry    *logrus.Logger
	file     *os.File
	filePath string
}

// NewLogger creates a new logger. Nothing is written when level is off or
// filePath is empty.
func NewLogger(level LogLevel, filePath string) (*Logger, error) {
	logger := &Logger{
		level:    level,
		filePath: filePath,
	}

	if level == LogLevelOff || filePath == "" {
		logger.entry = newLogrus(io.Discard, level)
		return logger, nil
	}

	filePath, err := fileutil.ExpandHome(filePath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
		return nil, err
	}

	// #nosec G304 -- log file path is from validated config
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	logger.file = f
	logger.filePath = filePath
	logger.entry = newLogrus(f, level)

	return logger, nil
}

// NewWriterLogger creates a logger writing to w.
func NewWriterLogger(level LogLevel, w io.Writer) *Logger {
	return &Logger{level: level, entry: newLogrus(w, level)}
}

func newLogrus(w io.Writer, level LogLevel) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	l.SetLevel(level.logrus())
	return l
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// SetLevel changes the log level.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	if l.entry != nil {
		l.entry.SetLevel(level.logrus())
	}
}

// Level returns the current log level.
func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Path returns the log file path, with the home directory expanded.
func (l *Logger) Path() string {
	return l.filePath
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.log(LogLevelDebug, format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...any) {
	l.log(LogLevelInfo, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.log(LogLevelError, format, args...)
}

// DebugFields logs msg at debug level with structured fields.
func (l *Logger) DebugFields(msg string, fields map[string]any) {
	l.logFields(LogLevelDebug, msg, fields)
}

// InfoFields logs msg at info level with structured fields.
func (l *Logger) InfoFields(msg string, fields map[string]any) {
	l.logFields(LogLevelInfo, msg, fields)
}

// ErrorFields logs msg at error level with structured fields.
func (l *Logger) ErrorFields(msg string, fields map[string]any) {
	l.logFields(LogLevelError, msg, fields)
}

// Writer returns an io.Writer that writes to the logger at the specified level.
func (l *Logger) Writer(level LogLevel) io.Writer {
	return &logWriter{logger: l, level: level}
}

func (l *Logger) log(level LogLevel, format string, args ...any) {
	l.logFields(level, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) logFields(level LogLevel, msg string, fields map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.level == LogLevelOff || level > l.level || l.entry == nil {
		return
	}

	entry := logrus.NewEntry(l.entry)
	if len(fields) > 0 {
		entry = entry.WithFields(logrus.Fields(fields))
	}
	switch level {
	case LogLevelDebug:
		entry.Debug(msg)
	case LogLevelInfo:
		entry.Info(msg)
	default:
		entry.Error(msg)
	}
}

// logWriter implements io.Writer for the logger.
type logWriter struct {
	logger *Logger
	level  LogLevel
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.logger.log(w.level, "%s", strings.TrimSpace(string(p)))
	return len(p), nil
}

// NullLogger returns a logger that discards all output.
func NullLogger() *Logger {
	return &Logger{level: LogLevelOff}
}
