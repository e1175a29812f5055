// Package logger provides console and log-file logging for the proctok CLI.
// Info, warnings and errors always reach stderr. Debug messages and section
// headers are printed only when verbose mode is enabled via --verbose.
// When a log file is set, every emitted line is also appended to it with a
// timestamp and level.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

const fileTimeFormat = "2006-01-02 15:04:05"

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	file    io.Writer
	now     = time.Now
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the console writer.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetFileOutput sets the log-file writer. Nil disables the file sink.
func SetFileOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	file = w
}

// SetLogFile opens path for appending and uses it as the file sink.
// The caller closes the returned file when done.
func SetLogFile(path string) (io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	SetFileOutput(f)
	return f, nil
}

func emit(level, format string, args []any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(output, "[%s] %s\n", level, msg)
	if file != nil {
		fmt.Fprintf(file, "%s - %s - %s\n", now().Format(fileTimeFormat), level, msg)
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		emit("DEBUG", format, args)
	}
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message.
func Info(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	emit("INFO", format, args)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	emit("WARN", format, args)
}

// Error prints an error message.
func Error(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	emit("ERROR", format, args)
}
