package debug

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	file    *os.File
	mu      sync.Mutex
	enabled bool
	logger  = log.NewWithOptions(io.Discard, log.Options{})
)

// Enable starts logging to path (default ~/.config/go-mixsurface/debug.log)
func Enable(path, level string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	if path == "" {
		homeDir, _ := os.UserHomeDir()
		path = filepath.Join(homeDir, ".config", "go-mixsurface", "debug.log")
	}

	// Ensure directory exists
	os.MkdirAll(filepath.Dir(path), 0755)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.DebugLevel
	}

	file = f
	enabled = true
	logger = log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
		Level:           lvl,
	})
	logger.Info("=== Debug logging started ===")

	return nil
}

// EnableWriter logs to w instead of a file (tests, stderr)
func EnableWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = log.NewWithOptions(w, log.Options{Level: log.DebugLevel})
	enabled = true
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	enabled = false
	logger = log.NewWithOptions(io.Discard, log.Options{})
}

// Log writes a debug message under category
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled {
		return
	}
	logger.With("cat", category).Debugf(format, args...)
}

// Warn logs a recoverable problem
func Warn(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled {
		return
	}
	logger.With("cat", category).Warnf(format, args...)
}

// Error logs err and carries on
func Error(category string, err error) {
	if err == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()

	if !enabled {
		return
	}
	logger.With("cat", category).Error(err.Error())
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
