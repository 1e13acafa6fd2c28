package ui

import (
	"strings"
	"sync"
)

// DefaultMaxLines bounds the on-screen log. Oldest lines are dropped first.
const DefaultMaxLines = 5000

// LogBuffer holds the text of the on-screen log.
type LogBuffer struct {
	mu       sync.Mutex
	lines    []string
	maxLines int
}

func NewLogBuffer(maxLines int) *LogBuffer {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	return &LogBuffer{maxLines: maxLines}
}

// Append adds a line and returns the full log text.
func (b *LogBuffer) Append(line string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
	if over := len(b.lines) - b.maxLines; over > 0 {
		b.lines = append(b.lines[:0], b.lines[over:]...)
	}
	return strings.Join(b.lines, "\n")
}

func (b *LogBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
}

func (b *LogBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.lines, "\n")
}
