package llm

import (
	"sync"
	"time"
)

// TraceEntry records one provider attempt. Entries are immutable once
// appended and have no effect on control flow.
type TraceEntry struct {
	Provider         string    `json:"provider"`
	Model            string    `json:"model"`
	Category         string    `json:"category"`
	Timestamp        time.Time `json:"timestamp"`
	DurationMS       int64     `json:"duration_ms"`
	PromptTokens     int       `json:"prompt_tokens,omitempty"`
	CompletionTokens int       `json:"completion_tokens,omitempty"`
	Error            string    `json:"error,omitempty"`
}

// Trace collects attempt entries for a single request. It is safe for
// concurrent use; the engine creates one per incoming request and exposes
// it to the caller only when the request's debug flag is set.
type Trace struct {
	mu      sync.Mutex
	started time.Time
	entries []TraceEntry
}

// NewTrace returns an empty trace anchored at the current time.
func NewTrace() *Trace {
	return &Trace{started: time.Now()}
}

// Record appends one attempt entry. Nil-safe so callers can record without
// checking whether tracing is active.
func (t *Trace) Record(e TraceEntry) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.entries = append(t.entries, e)
	t.mu.Unlock()
}

// Entries returns a copy of the recorded attempts in append order.
func (t *Trace) Entries() []TraceEntry {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TraceEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// TotalDurationMS reports elapsed time since the trace was created.
func (t *Trace) TotalDurationMS() int64 {
	if t == nil {
		return 0
	}
	return time.Since(t.started).Milliseconds()
}
