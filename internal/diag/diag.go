// Package diag is the bridge's side-channel event log. Events are one-line,
// human-readable strings recorded best-effort: a sink that cannot write must
// swallow the failure rather than disturb the detection path.
package diag

import (
	"fmt"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Sink records lifecycle and error events.
type Sink interface {
	Record(event string)
}

// Nop discards all events. It is the default when no sink is configured.
type Nop struct{}

// Record implements Sink.
func (Nop) Record(string) {}

// Recordf formats an event and records it on sink. A nil sink is allowed.
func Recordf(sink Sink, format string, args ...interface{}) {
	if sink == nil {
		return
	}
	sink.Record(fmt.Sprintf(format, args...))
}

// FileSink appends events to a size-capped file. Write errors are dropped.
type FileSink struct {
	mu sync.Mutex
	w  *lumberjack.Logger
}

// NewFileSink creates a file sink at path. The file is created lazily on the
// first Record, so a path without write permission degrades to a no-op.
func NewFileSink(path string) *FileSink {
	return &FileSink{
		w: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 1,
		},
	}
}

// Record implements Sink.
func (s *FileSink) Record(event string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintln(s.w, event)
}

// Close closes the underlying file, if one was opened.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Close()
}
