package testutil

import (
	"strings"
	"sync"
)

// LogEntry is one captured log call.
type LogEntry struct {
	Level string
	Msg   string
	Args  []any
}

// LogSpy captures log calls for assertions. It satisfies the Logger
// interfaces of the store and lending packages.
type LogSpy struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewLogSpy creates an empty log spy.
func NewLogSpy() *LogSpy {
	return &LogSpy{}
}

// Debug captures a debug-level log call.
func (s *LogSpy) Debug(msg string, args ...any) { s.record("debug", msg, args) }

// Info captures an info-level log call.
func (s *LogSpy) Info(msg string, args ...any) { s.record("info", msg, args) }

// Warn captures a warn-level log call.
func (s *LogSpy) Warn(msg string, args ...any) { s.record("warn", msg, args) }

// Error captures an error-level log call.
func (s *LogSpy) Error(msg string, args ...any) { s.record("error", msg, args) }

// Entries returns a snapshot of all captured log calls.
func (s *LogSpy) Entries() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]LogEntry, len(s.entries))
	copy(snapshot, s.entries)
	return snapshot
}

// HasMessageContaining reports whether any captured message contains substr.
func (s *LogSpy) HasMessageContaining(substr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.entries {
		if strings.Contains(entry.Msg, substr) {
			return true
		}
	}

	return false
}

func (s *LogSpy) record(level string, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, LogEntry{Level: level, Msg: msg, Args: args})
}
