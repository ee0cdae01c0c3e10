package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Leveled logger shared by the CMS API and its tools.
// Output is one line per entry: RFC3339 timestamp, level, message.

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[Level]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
	LevelFatal: "fatal",
}

var (
	mu     sync.RWMutex
	logger = log.New(os.Stdout, "", 0)
	level  = LevelInfo
	exit   = os.Exit
)

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Unknown values select info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	level = ParseLevel(l)
}

// ParseLevel maps a level name to a Level, defaulting to LevelInfo.
func ParseLevel(l string) Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// SetOutput redirects log output and returns a func restoring the previous writer.
func SetOutput(w io.Writer) (restore func()) {
	mu.Lock()
	defer mu.Unlock()
	prev := logger
	logger = log.New(w, "", 0)
	return func() {
		mu.Lock()
		logger = prev
		mu.Unlock()
	}
}

func write(l Level, format string, v ...interface{}) {
	mu.RLock()
	enabled := l >= level
	out := logger
	mu.RUnlock()
	if !enabled {
		return
	}
	head := fmt.Sprintf("%s [%s] ", time.Now().Format(time.RFC3339), strings.ToUpper(levelNames[l]))
	out.Print(head + fmt.Sprintf(format, v...))
}

func Debugf(format string, v ...interface{}) { write(LevelDebug, format, v...) }
func Infof(format string, v ...interface{})  { write(LevelInfo, format, v...) }
func Warnf(format string, v ...interface{})  { write(LevelWarn, format, v...) }
func Errorf(format string, v ...interface{}) { write(LevelError, format, v...) }

// Fatalf logs regardless of level and exits the process.
func Fatalf(format string, v ...interface{}) {
	mu.RLock()
	out := logger
	mu.RUnlock()
	out.Print(fmt.Sprintf("%s [FATAL] ", time.Now().Format(time.RFC3339)) + fmt.Sprintf(format, v...))
	exit(1)
}


// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	return levelNames[level]
}
