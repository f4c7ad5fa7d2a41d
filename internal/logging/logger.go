package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level orders log messages by severity.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel accepts debug, info, warn(ing) and error in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG, nil
	case "", "info":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

// Logger writes levelled lines through a standard library logger.
type Logger struct {
	out   *log.Logger
	level Level
}

// New returns a logger writing to w. Messages below level are dropped.
func New(w io.Writer, prefix string, level Level) *Logger {
	return &Logger{
		out:   log.New(w, prefix, log.LstdFlags|log.Lmicroseconds),
		level: level,
	}
}

// Default logs INFO and above to stderr.
func Default() *Logger {
	return New(os.Stderr, "", INFO)
}

// Discard drops everything.
func Discard() *Logger {
	return New(io.Discard, "", ERROR+1)
}

// With returns a logger sharing the level but with an extra prefix.
func (l *Logger) With(prefix string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{
		out:   log.New(l.out.Writer(), l.out.Prefix()+prefix, l.out.Flags()),
		level: l.level,
	}
}

func (l *Logger) Debugf(format string, args ...any) { l.logf(DEBUG, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(INFO, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(WARN, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.logf(ERROR, format, args...) }

func (l *Logger) logf(level Level, format string, args ...any) {
	if l == nil || level < l.level {
		return
	}
	l.out.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}
