// Package runlog keeps the human-readable run log that the UI polls.
package runlog

import (
	"fmt"
	"sync"
	"time"
)

const defaultMax = 400

// Buffer is a bounded append-only log. The run's worker appends, any number
// of HTTP handlers read; the oldest line is evicted once the bound is hit.
type Buffer struct {
	mu    sync.Mutex
	lines []string
	max   int
}

// New returns a Buffer keeping at most max lines (400 when max <= 0).
func New(max int) *Buffer {
	if max <= 0 {
		max = defaultMax
	}
	return &Buffer{max: max}
}

// Appendf formats and appends a timestamped line.
func (b *Buffer) Appendf(format string, args ...any) {
	line := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))

	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
	if len(b.lines) > b.max {
		b.lines = b.lines[len(b.lines)-b.max:]
	}
}

// Lines returns a copy of the current contents, oldest first.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Reset clears the buffer at the start of a new run.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
}
