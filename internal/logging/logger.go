// Package logging is the dashboard's single logging sink. Output goes to
// stdout, and to a file as well once Initialize has attached one. The
// stdlib log package is imported only here; log_guard_test.go enforces
// that every other package goes through these helpers.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const logFileName = "luciadash.log"

var (
	mu      sync.Mutex
	logger  = log.New(os.Stdout, "", log.LstdFlags|log.Lshortfile)
	logFile *os.File
)

// Initialize attaches a file sink under logDir. Called once at startup in
// dev mode; until then every helper writes to stdout only.
func Initialize(logDir string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		return nil
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(logDir, logFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	logFile = f
	logger.SetOutput(io.MultiWriter(os.Stdout, f))
	Printf("Logging to %s", path)
	return nil
}

// Close detaches and closes the file sink. Stdout logging keeps working.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if logFile == nil {
		return nil
	}
	logger.SetOutput(os.Stdout)
	err := logFile.Close()
	logFile = nil
	return err
}

// emit writes one line, attributing it to the caller of the exported
// helper rather than to this file.
func emit(prefix, format string, v ...interface{}) {
	logger.Output(3, prefix+fmt.Sprintf(format, v...))
}

// Printf logs a line with no level prefix.
func Printf(format string, v ...interface{}) {
	emit("", format, v...)
}

// Info logs an informational message.
func Info(format string, v ...interface{}) {
	emit("[INFO] ", format, v...)
}

// Warning logs a recoverable problem.
func Warning(format string, v ...interface{}) {
	emit("[WARN] ", format, v...)
}

// Error logs a failure.
func Error(format string, v ...interface{}) {
	emit("[ERROR] ", format, v...)
}

// Errorf is Error under the fmt-style name used across the handlers.
func Errorf(format string, v ...interface{}) {
	emit("[ERROR] ", format, v...)
}

// Debug logs only when debug output is switched on via environment.
func Debug(format string, v ...interface{}) {
	if os.Getenv("DEBUG") != "true" && os.Getenv("LUCIADASH_DEV") != "true" {
		return
	}
	emit("[DEBUG] ", format, v...)
}
