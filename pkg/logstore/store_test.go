package logstore

import (
	"context"
	"log/slog"
	"testing"
)

func TestAppendEvictsOldest(t *testing.T) {
	s := New(3)

	for i := 0; i < 5; i++ {
		s.Event("TEST", string(rune('a'+i)), nil)
	}

	entries := s.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	// Oldest two ("a", "b") should be gone.
	if entries[0].Message != "c" || entries[2].Message != "e" {
		t.Errorf("unexpected retained entries: %q .. %q", entries[0].Message, entries[2].Message)
	}
}

func TestAppendSetsTimestamp(t *testing.T) {
	s := New(10)
	s.Append(Entry{LogType: "TEST", Message: "no timestamp"})

	entries := s.Entries()
	if entries[0].Timestamp.IsZero() {
		t.Error("expected timestamp to be filled in")
	}
}

func TestOnAppendCallback(t *testing.T) {
	s := New(10)

	var got []string
	s.OnAppend(func(e Entry) {
		got = append(got, e.Message)
	})

	s.Event("TEST", "one", nil)
	s.Event("TEST", "two", nil)

	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Errorf("callback saw %v", got)
	}
}

func TestHandlerCapturesRecords(t *testing.T) {
	s := New(10)
	logger := slog.New(NewHandler(s, slog.LevelInfo))

	logger.Debug("too quiet")
	logger.Info("session started", "session_id", "abc")
	logger.With("component", "relay").Warn("buffer pressure", "level", "high")

	entries := s.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries (debug filtered), got %d", len(entries))
	}

	if entries[0].Message != "session started" {
		t.Errorf("unexpected message %q", entries[0].Message)
	}
	if entries[0].Fields["session_id"] != "abc" {
		t.Errorf("expected session_id field, got %v", entries[0].Fields)
	}
	if entries[1].Fields["component"] != "relay" {
		t.Errorf("expected WithAttrs field carried, got %v", entries[1].Fields)
	}
}

func TestHandlerEnabled(t *testing.T) {
	h := NewHandler(New(1), slog.LevelWarn)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestClear(t *testing.T) {
	s := New(10)
	s.Event("TEST", "x", nil)
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("expected empty store after Clear, got %d", s.Len())
	}
}
