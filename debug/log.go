package debug

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
)

var (
	file    *os.File
	mu      sync.Mutex
	enabled bool
	logger  = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// DefaultPath is $XDG_STATE_HOME/go-chordbox/debug.log
func DefaultPath() (string, error) {
	return xdg.StateFile(filepath.Join("go-chordbox", "debug.log"))
}

// Enable starts debug logging to path, or DefaultPath when path is empty
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	file = f
	enabled = true
	logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("debug logging started", "cat", "debug")

	return nil
}

// EnableWriter sends debug logs to w (stderr for headless commands, a buffer in tests)
func EnableWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	enabled = true
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
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
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	clear(sampled)
}

// Enabled reports whether Log writes anywhere
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Logger returns the current debug logger. It discards everything until Enable.
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	l, on := logger, enabled
	mu.Unlock()

	if !on {
		return
	}
	l.Debug(fmt.Sprintf(format, args...), "cat", category)
}

var sampled = make(map[string]int)

// LogEvery samples a message logged from a polling loop: the first call and
// then every nth call with the same category and format are written.
func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	l, on := logger, enabled
	if !on {
		mu.Unlock()
		return
	}
	key := category + "\x00" + format
	count := sampled[key]
	sampled[key]++
	mu.Unlock()

	if count%max(n, 1) == 0 {
		l.Debug(fmt.Sprintf(format, args...), "cat", category, "seen", count+1)
	}
}
