// Package log is the application logging facade. It keeps a small
// printf-style API for call sites and delegates formatting, levels and
// structured fields to logrus.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var (
	isDebug atomic.Bool
	logger  = NewLogger()
)

// Logging is the interface handed to components that log with context
type Logging interface {
	Debug(msg string)
	Debugf(format string, args ...interface{})
	Info(msg string)
	Infof(format string, args ...interface{})
	Warn(msg string)
	Warnf(format string, args ...interface{})
	Error(msg string)
	Errorf(format string, args ...interface{})
	With(fields ...Field) Logging
	WithContext(ctx context.Context) Logging
}

// Field is a single structured key/value pair
type Field struct {
	Key   string
	Value interface{}
}

// F creates a field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger writes leveled, structured entries through logrus
type Logger struct {
	entry *logrus.Entry
	file  *os.File
}

type options struct {
	out  io.Writer
	json bool
	file string
}

// Option configures a Logger
type Option func(*options)

// WithOutput sends log output to w
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithJSON switches to one JSON object per line
func WithJSON() Option {
	return func(o *options) { o.json = true }
}

// WithFile additionally appends log output to the file at path
func WithFile(path string) Option {
	return func(o *options) { o.file = path }
}

// NewLogger creates a logger; without options it writes text to stdout
func NewLogger(opts ...Option) *Logger {
	o := options{out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	base := logrus.New()
	base.SetLevel(logrus.DebugLevel)
	if o.json {
		base.SetFormatter(&jsonFormatter{})
	} else {
		base.SetFormatter(&textFormatter{})
	}

	l := &Logger{}
	out := o.out
	if o.file != "" {
		f, err := os.OpenFile(o.file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file %s: %v\n", o.file, err)
		} else {
			l.file = f
			out = io.MultiWriter(o.out, f)
		}
	}
	base.SetOutput(out)
	l.entry = logrus.NewEntry(base)
	return l
}

// Configure replaces the package-level logger
func Configure(opts ...Option) {
	logger = NewLogger(opts...)
}

// SetDebug enables or disables debug output for every logger
func SetDebug(debug bool) {
	isDebug.Store(debug)
}

// DebugEnabled reports whether debug output is on
func DebugEnabled() bool {
	return isDebug.Load()
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// log emits one entry; skip is the number of frames between the caller of
// the public function and runtime.Caller
func (l *Logger) log(level logrus.Level, skip int, msg string) {
	if level == logrus.DebugLevel && !isDebug.Load() {
		return
	}
	e := l.entry
	if _, file, line, ok := runtime.Caller(skip); ok {
		e = e.WithField("caller", fmt.Sprintf("%s:%d", filepath.Base(file), line))
	}
	e.Log(level, msg)
}

func (l *Logger) Debug(msg string) { l.log(logrus.DebugLevel, 2, msg) }
func (l *Logger) Info(msg string)  { l.log(logrus.InfoLevel, 2, msg) }
func (l *Logger) Warn(msg string)  { l.log(logrus.WarnLevel, 2, msg) }
func (l *Logger) Error(msg string) { l.log(logrus.ErrorLevel, 2, msg) }

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(logrus.DebugLevel, 2, fmt.Sprintf(format, args...))
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(logrus.InfoLevel, 2, fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(logrus.WarnLevel, 2, fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(logrus.ErrorLevel, 2, fmt.Sprintf(format, args...))
}

// With returns a logger that adds fields to every entry
func (l *Logger) With(fields ...Field) Logging {
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return &Logger{entry: l.entry.WithFields(data), file: l.file}
}

// WithContext attaches ctx to subsequent entries
func (l *Logger) WithContext(ctx context.Context) Logging {
	if ctx == nil {
		return l
	}
	return &Logger{entry: l.entry.WithContext(ctx), file: l.file}
}

// Default returns the package-level logger
func Default() Logging {
	return logger
}

// LogWithFields returns the package-level logger with fields attached
func LogWithFields(fields ...Field) Logging {
	return logger.With(fields...)
}

// LogWithError returns the package-level logger with err and its typed
// details attached as fields
func LogWithError(err error) Logging {
	return logger.With(errorFields(err)...)
}

// LogError logs err at error level with a message
func LogError(err error, msg string) {
	LogWithError(err).Error(msg)
}

func sprintf(format string, args []interface{}) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// Info logs a formatted message at info level
func Info(format string, args ...interface{}) {
	logger.log(logrus.InfoLevel, 2, sprintf(format, args))
}

// Infof is an alias of Info
func Infof(format string, args ...interface{}) {
	logger.log(logrus.InfoLevel, 2, sprintf(format, args))
}

// Debug logs a formatted message when debug output is enabled
func Debug(format string, args ...interface{}) {
	logger.log(logrus.DebugLevel, 2, sprintf(format, args))
}

// Debugf is an alias of Debug
func Debugf(format string, args ...interface{}) {
	logger.log(logrus.DebugLevel, 2, sprintf(format, args))
}

// Warn logs a formatted warning
func Warn(format string, args ...interface{}) {
	logger.log(logrus.WarnLevel, 2, sprintf(format, args))
}

// Warnf is an alias of Warn
func Warnf(format string, args ...interface{}) {
	logger.log(logrus.WarnLevel, 2, sprintf(format, args))
}

// Error logs a formatted error message
func Error(format string, args ...interface{}) {
	logger.log(logrus.ErrorLevel, 2, sprintf(format, args))
}

// Errorf is an alias of Error
func Errorf(format string, args ...interface{}) {
	logger.log(logrus.ErrorLevel, 2, sprintf(format, args))
}
