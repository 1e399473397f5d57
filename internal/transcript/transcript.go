// Package transcript persists the conversation as a plain text file so a
// refinement session can be reviewed after the terminal closes.
package transcript

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Speaker labels one side of the conversation.
type Speaker string

const (
	SpeakerUser   Speaker = "USER"
	SpeakerEngine Speaker = "ENGINE"
)

// Transcript appends conversation lines to a file.
type Transcript struct {
	path string
	mu   sync.Mutex
}

// New creates a transcript that writes to the provided path.
func New(path string) (*Transcript, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &Transcript{path: path}, nil
}

// Path returns the file backing this transcript.
func (t *Transcript) Path() string {
	if t == nil {
		return ""
	}
	return t.path
}

// Append writes a single conversation line. Write failures are swallowed:
// a transcript must never break a turn.
func (t *Transcript) Append(speaker Speaker, message string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	line := fmt.Sprintf("%s %-6s %s\n",
		time.Now().UTC().Format(time.RFC3339),
		string(speaker),
		strings.TrimSpace(message),
	)
	file, err := os.OpenFile(t.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer file.Close()
	_, _ = file.WriteString(line)
}

// Tail returns up to maxLines of the most recent transcript lines.
func (t *Transcript) Tail(maxLines int) []string {
	if t == nil || maxLines <= 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	file, err := os.Open(t.path)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) == 0 {
		return nil
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return lines
}
