// Package logstore provides a bounded in-memory sink for structured
// events. Components log through slog as usual; the store is installed
// as a secondary handler so the HTTP log endpoint and the dashboard
// stream can replay recent activity without scraping stdout.
package logstore

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultCapacity is how many entries the store keeps before the oldest
// are discarded.
const DefaultCapacity = 500

// Entry is one captured event.
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	LogType   string         `json:"log_type"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Store holds the most recent entries, oldest first.
type Store struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int

	// Called after every append. Used by the dashboard hub.
	onAppend func(Entry)
}

// New creates a store that retains up to capacity entries.
// A capacity of zero or less means DefaultCapacity.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
	}
}

// OnAppend sets a callback that fires for every appended entry.
func (s *Store) OnAppend(fn func(Entry)) {
	s.mu.Lock()
	s.onAppend = fn
	s.mu.Unlock()
}

// Append adds an entry, evicting the oldest if the store is full.
func (s *Store) Append(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	s.entries = append(s.entries, e)
	if len(s.entries) > s.capacity {
		s.entries = s.entries[1:]
	}
	notify := s.onAppend
	s.mu.Unlock()

	if notify != nil {
		notify(e)
	}
}

// Event records a structured event with the given type and fields.
func (s *Store) Event(logType, message string, fields map[string]any) {
	s.Append(Entry{
		Timestamp: time.Now().UTC(),
		LogType:   logType,
		Message:   message,
		Fields:    fields,
	})
}

// Entries returns a copy of the retained entries, oldest first.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of retained entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear discards all retained entries.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = s.entries[:0]
	s.mu.Unlock()
}

// Handler adapts the store to slog.Handler so it can be installed
// alongside the primary stdout handler.
type Handler struct {
	store *Store
	level slog.Leveler
	attrs []slog.Attr
}

// NewHandler returns a slog handler that captures records at or above
// level into the store.
func NewHandler(store *Store, level slog.Leveler) *Handler {
	return &Handler{store: store, level: level}
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.level != nil {
		min = h.level.Level()
	}
	return level >= min
}

// Handle implements slog.Handler.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]any, r.NumAttrs()+len(h.attrs)+1)
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.Any()
		return true
	})
	fields["level"] = r.Level.String()

	h.store.Append(Entry{
		Timestamp: r.Time.UTC(),
		LogType:   "LOG",
		Message:   r.Message,
		Fields:    fields,
	})
	return nil
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &Handler{store: h.store, level: h.level, attrs: merged}
}

// WithGroup implements slog.Handler. Groups are flattened; the store is
// a diagnostic ring, not a faithful slog encoder.
func (h *Handler) WithGroup(string) slog.Handler {
	return h
}
