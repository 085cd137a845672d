package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

var (
	logger     *slog.Logger
	loggerOnce sync.Once
	mu         sync.Mutex
	level      = new(slog.LevelVar)
	out        io.Writer = os.Stderr
)

// initLogger initializes the global logger to write to stderr through a tint handler.
func initLogger() {
	loggerOnce.Do(func() {
		level.Set(slog.LevelInfo)
		logger = newLogger(out)
	})
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal(w),
	}))
}

// SetLevel changes the minimum level. Unknown levels fall back to INFO.
func SetLevel(l Level) {
	initLogger()
	switch l {
	case LevelDebug:
		level.Set(slog.LevelDebug)
	case LevelError:
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
}

// ParseLevel maps a case-insensitive level name to a Level.
func ParseLevel(s string) (Level, bool) {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug, true
	case LevelInfo:
		return LevelInfo, true
	case LevelError:
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// SetOutput redirects log output, mostly for tests. Colors are disabled
// unless w is a terminal.
func SetOutput(w io.Writer) {
	initLogger()
	mu.Lock()
	defer mu.Unlock()
	out = w
	logger = newLogger(w)
}

func Debug(msg string, kv ...any) {
	current().Debug(msg, kv...)
}

func Info(msg string, kv ...any) {
	current().Info(msg, kv...)
}

func Error(msg string, err error, kv ...any) {
	// Prepend error into key-value list.
	extended := append([]any{tint.Err(err)}, kv...)
	current().Error(msg, extended...)
}

func current() *slog.Logger {
	initLogger()
	mu.Lock()
	defer mu.Unlock()
	return logger
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
