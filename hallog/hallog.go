// Package hallog is the logging backend for the fingerprint bridge: a
// small leveled logger on stderr with caller attribution, plus a
// never-suppressed anomaly channel for driver behavior that fits no
// known code.
package hallog

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"time"
)

// Log levels, lowest to highest.
const (
	LevelDebug = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var (
	currentLevel = LevelInfo
	logger       = log.New(os.Stderr, "", 0)
)

// SetLevel sets the minimum level that reaches the log.
func SetLevel(level int) {
	currentLevel = level
}

// Anomaly records unexpected hardware behavior, such as vendor codes
// outside every known range or events arriving with no client
// registered. Anomalies ignore the level gate; never suppress these.
func Anomaly(format string, args ...interface{}) {
	logger.Printf("%s ANOMALY - %s", stamp(), fmt.Sprintf(format, args...))
}

// Debug logs sensor traffic detail, off by default.
func Debug(format string, args ...interface{}) {
	emit(LevelDebug, "DEBUG", format, args...)
}

// Info logs normal operation milestones.
func Info(format string, args ...interface{}) {
	emit(LevelInfo, "INFO", format, args...)
}

// Warn logs degraded but recoverable conditions.
func Warn(format string, args ...interface{}) {
	emit(LevelWarn, "WARN", format, args...)
}

// Error logs failed operations.
func Error(format string, args ...interface{}) {
	emit(LevelError, "ERROR", format, args...)
}

// Fatal logs a startup-breaking condition and exits the process. It
// ignores the level gate.
func Fatal(format string, args ...interface{}) {
	logger.Printf("%s [FATAL] %s - %s", stamp(), caller(2), fmt.Sprintf(format, args...))
	os.Exit(1)
}

func emit(level int, tag string, format string, args ...interface{}) {
	if currentLevel > level {
		return
	}
	logger.Printf("%s [%s] %s - %s", stamp(), tag, caller(3), fmt.Sprintf(format, args...))
}

func stamp() string {
	return time.Now().Format("2006-01-02 15:04:05.000")
}

// caller names the logging call site as pkg/file.go:line. skip counts
// the frames between the call site and here.
func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown:0"
	}
	if i := strings.LastIndex(file, "/"); i >= 0 {
		if j := strings.LastIndex(file[:i], "/"); j >= 0 {
			file = file[j+1:]
		}
	}
	return fmt.Sprintf("%s:%d", file, line)
}
