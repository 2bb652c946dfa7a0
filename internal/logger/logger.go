// Package logger provides leveled logging on top of the standard log package.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level represents a logging level
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel maps a level name to a Level. Unknown names map to InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	}
	return InfoLevel
}

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	}
	return "INFO"
}

type leveled struct {
	level  Level
	logger *log.Logger
}

var (
	mu            sync.RWMutex
	defaultLogger = newLeveled(InfoLevel, "text", os.Stderr)
)

func newLeveled(level Level, format string, w io.Writer) *leveled {
	flags := log.LstdFlags | log.Lmicroseconds
	if strings.ToLower(format) == "text" {
		flags |= log.Lshortfile
	}
	return &leveled{level: level, logger: log.New(w, "", flags)}
}

// Init sets the level and format of the default logger. Format "text" adds
// the calling file and line.
func Init(level string, format string) {
	InitWithWriter(level, format, os.Stderr)
}

// InitWithWriter is Init writing to w.
func InitWithWriter(level string, format string, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = newLeveled(ParseLevel(level), format, w)
}

func output(l Level, format string, args ...any) {
	mu.RLock()
	d := defaultLogger
	mu.RUnlock()

	if d.level > l {
		return
	}
	_ = d.logger.Output(3, fmt.Sprintf("["+l.String()+"] "+format, args...))
}

// Debug logs a message at DebugLevel
func Debug(format string, args ...any) { output(DebugLevel, format, args...) }

// Info logs a message at InfoLevel
func Info(format string, args ...any) { output(InfoLevel, format, args...) }

// Warn logs a message at WarnLevel
func Warn(format string, args ...any) { output(WarnLevel, format, args...) }

// Error logs a message at ErrorLevel
func Error(format string, args ...any) { output(ErrorLevel, format, args...) }

// Fatal logs a message regardless of level and exits
func Fatal(format string, args ...any) {
	mu.RLock()
	d := defaultLogger
	mu.RUnlock()

	_ = d.logger.Output(2, fmt.Sprintf("[FATAL] "+format, args...))
	os.Exit(1)
}
