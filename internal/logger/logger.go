// Package logger provides levelled logging for ledgerbridge.
// It keeps a small package-level API so call sites stay terse, and is
// backed by a single logrus logger that Init configures at startup.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed as well.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	mu      sync.RWMutex
	verbose bool
	base    = logrus.WarnLevel
	std     = newLogger()
	logFile *os.File
)

// Options configures the logger.
type Options struct {
	Level  string // trace|debug|info|warn|error
	Format string // text|json
	File   string // log file prefix; empty logs to stderr only
}

// Fields is a set of structured log fields.
type Fields = logrus.Fields

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return l
}

// Init configures level, format and output.
// A log file is opened as <File>_<timestamp>.log and written alongside stderr.
// Calling Init again closes the file opened by the previous call.
func Init(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	base = parseLevel(opts.Level)
	applyLevel()

	if strings.EqualFold(opts.Format, "json") {
		std.SetFormatter(&logrus.JSONFormatter{})
	} else {
		std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if opts.File == "" {
		if logFile != nil {
			std.SetOutput(os.Stderr)
		}
		return closeFile()
	}

	name := fmt.Sprintf("%s_%s.log", opts.File, time.Now().Format("2006-01-02_15-04-05"))
	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", name, err)
	}
	std.SetOutput(io.MultiWriter(file, os.Stderr))
	if err := closeFile(); err != nil {
		Warn("close previous log file: %v", err)
	}
	logFile = file
	return nil
}

// Close closes the log file, if any, and logs to stderr only.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		std.SetOutput(os.Stderr)
	}
	return closeFile()
}

// closeFile must be called with mu held.
func closeFile() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.WarnLevel
	}
}

// applyLevel must be called with mu held.
func applyLevel() {
	if verbose && base < logrus.DebugLevel {
		std.SetLevel(logrus.DebugLevel)
		return
	}
	std.SetLevel(base)
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	applyLevel()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	std.SetOutput(w)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	std.Debugf(format, args...)
}

// Info prints an informational message.
func Info(format string, args ...any) {
	std.Infof(format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	std.Warnf(format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	std.Errorf(format, args...)
}

// WithFields returns an entry carrying structured fields.
func WithFields(fields Fields) *logrus.Entry {
	return std.WithFields(fields)
}
