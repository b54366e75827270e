// Package logger provides the levelled logger shared by the CLI, the
// gateway server and the directory.  Components receive a *Logger by
// injection; the CLI configures the process default.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorGray   = "\033[90m"
)

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

// Logger writes one line per message: timestamp, level, message.  DEBUG
// lines are dropped unless verbose is set.
type Logger struct {
	mu      sync.RWMutex
	verbose bool
	color   bool
	prefix  string
	out     *log.Logger
	now     func() time.Time
}

// New returns a logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{out: log.New(w, "", 0), now: time.Now}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard)
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = New(os.Stderr)
)

// Default returns the process-wide logger.
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

func (l *Logger) SetVerbose(verbose bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = verbose
}

func (l *Logger) IsVerbose() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.verbose
}

// SetColor toggles ANSI colouring of the level column.
func (l *Logger) SetColor(color bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = color
}

// With returns a logger that shares the output and settings of l and
// prepends "component: " to every message.
func (l *Logger) With(component string) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	prefix := component + ": "
	if l.prefix != "" {
		prefix = l.prefix + prefix
	}
	return &Logger{verbose: l.verbose, color: l.color, prefix: prefix, out: l.out, now: l.now}
}

func levelColor(level Level) string {
	switch level {
	case DEBUG:
		return ColorGray
	case INFO:
		return ColorBlue
	case WARN:
		return ColorYellow
	case ERROR:
		return ColorRed
	default:
		return ColorReset
	}
}

func (l *Logger) format(level Level, message string) string {
	timestamp := l.now().Format("06-01-02 15:04:05")
	if !l.color {
		return fmt.Sprintf("[%s] %-5s %s%s", timestamp, level.String(), l.prefix, message)
	}
	return fmt.Sprintf(
		"%s[%s]%s %s%-5s%s %s%s",
		ColorGray, timestamp, ColorReset,
		levelColor(level), level.String(), ColorReset,
		l.prefix, message,
	)
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.mu.RLock()
	if level == DEBUG && !l.verbose {
		l.mu.RUnlock()
		return
	}
	line := l.format(level, fmt.Sprintf(format, args...))
	out := l.out
	l.mu.RUnlock()

	out.Println(line)
}

func (l *Logger) Debug(format string, args ...interface{}) { l.log(DEBUG, format, args...) }

func (l *Logger) Info(format string, args ...interface{}) { l.log(INFO, format, args...) }

func (l *Logger) Warn(format string, args ...interface{}) { l.log(WARN, format, args...) }

func (l *Logger) Error(format string, args ...interface{}) { l.log(ERROR, format, args...) }
