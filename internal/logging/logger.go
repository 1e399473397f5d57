package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/voltlab/patchmind/internal/config"
)

// maxReplyRunes bounds turn log lines; engine replies can carry a full
// clarification prompt and we only need the head of it for review.
const maxReplyRunes = 160

// Logger appends timestamped lines to .patchmind/logs/patchmind.log so
// refinement decisions can be inspected after the TUI has closed.
type Logger struct {
	mu   sync.Mutex
	file *os.File
	now  func() time.Time
}

// Option adjusts logger construction.
type Option func(*Logger)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		l.now = now
	}
}

// New creates (or reuses) the log file for the current project directory.
func New(projectDir string, opts ...Option) (*Logger, error) {
	logDir := filepath.Join(projectDir, config.PatchmindDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(logDir, "patchmind.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	l := &Logger{file: f, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Turn logs the outcome of one conversation turn in a fixed shape so log
// greps stay simple.
func (l *Logger) Turn(kind, userText, reply string) {
	if runes := []rune(reply); len(runes) > maxReplyRunes {
		reply = string(runes[:maxReplyRunes])
	}
	l.Printf("turn kind=%s user=%q reply=%q", kind, userText, reply)
}

// Printf writes a single timestamped line to the log file.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.file == nil {
		return
	}
	line := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.file, "[%s] %s\n", l.now().Format(time.RFC3339), line)
}
