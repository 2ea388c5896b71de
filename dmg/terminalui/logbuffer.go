// Package terminalui renders a running Machine to a tcell terminal screen:
// the game framebuffer, CPU registers, a disassembly window starting at the
// program counter, and a scrolling log panel.
package terminalui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// LogEntry is one captured log record with enough metadata to render a line.
type LogEntry struct {
	Time    time.Time
	Level   slog.Level
	Message string
}

// LogBuffer is a thread-safe circular buffer of recent log entries, read by
// the renderer and written by the slog handler below.
type LogBuffer struct {
	entries []LogEntry
	size    int
	index   int
	count   int
	mutex   sync.RWMutex
}

// NewLogBuffer returns a LogBuffer holding at most size entries.
func NewLogBuffer(size int) *LogBuffer {
	return &LogBuffer{entries: make([]LogEntry, size), size: size}
}

func (lb *LogBuffer) add(entry LogEntry) {
	lb.mutex.Lock()
	defer lb.mutex.Unlock()

	lb.entries[lb.index] = entry
	lb.index = (lb.index + 1) % lb.size
	if lb.count < lb.size {
		lb.count++
	}
}

// Recent returns up to maxCount entries, most recent first.
func (lb *LogBuffer) Recent(maxCount int) []LogEntry {
	lb.mutex.RLock()
	defer lb.mutex.RUnlock()

	count := lb.count
	if maxCount > 0 && maxCount < count {
		count = maxCount
	}

	result := make([]LogEntry, count)
	for i := 0; i < count; i++ {
		entryIndex := (lb.index - 1 - i + lb.size) % lb.size
		result[i] = lb.entries[entryIndex]
	}
	return result
}

// logBufferHandler is an slog.Handler that mirrors every record into a
// LogBuffer instead of writing it to a stream; the
// terminal renderer owns the only screen, so logs can't go to stderr.
type logBufferHandler struct {
	buffer *LogBuffer
	level  slog.Level
}

// NewLogBufferHandler returns an slog.Handler that captures records at or
// above level into buffer.
func NewLogBufferHandler(buffer *LogBuffer, level slog.Level) slog.Handler {
	return &logBufferHandler{buffer: buffer, level: level}
}

func (h *logBufferHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *logBufferHandler) Handle(_ context.Context, record slog.Record) error {
	message := record.Message
	record.Attrs(func(a slog.Attr) bool {
		message += fmt.Sprintf(" %s=%v", a.Key, a.Value)
		return true
	})

	h.buffer.add(LogEntry{Time: record.Time, Level: record.Level, Message: message})
	return nil
}

func (h *logBufferHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *logBufferHandler) WithGroup(_ string) slog.Handler      { return h }

// FormatLogEntry renders one entry as a single display line.
func FormatLogEntry(entry LogEntry) string {
	level := "???"
	switch entry.Level {
	case slog.LevelDebug:
		level = "DBG"
	case slog.LevelInfo:
		level = "INF"
	case slog.LevelWarn:
		level = "WRN"
	case slog.LevelError:
		level = "ERR"
	}
	return fmt.Sprintf("%s [%s] %s", entry.Time.Format("15:04:05"), level, entry.Message)
}
