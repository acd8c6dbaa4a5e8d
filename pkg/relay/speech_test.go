package relay

import (
	"testing"
	"time"
)

func TestSilenceGateThreshold(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	s := newSpeechState(clk.Now)

	const gap = 1500 * time.Millisecond

	if s.SilenceGateOpen(gap) {
		t.Error("gate must stay closed before any audio")
	}

	s.NoteAudio()
	if s.SilenceGateOpen(gap) {
		t.Error("gate must stay closed right after audio")
	}

	clk.Advance(1 * time.Second)
	if s.SilenceGateOpen(gap) {
		t.Error("1.0s of silence must not open the gate")
	}

	clk.Advance(1 * time.Second) // 2.0s total
	if !s.SilenceGateOpen(gap) {
		t.Error("2.0s of silence must open the gate")
	}

	s.ClearSpeaking()
	if s.SilenceGateOpen(gap) {
		t.Error("gate must close once the speech span is cleared")
	}
}

func TestSpeechSpanTracking(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	s := newSpeechState(clk.Now)

	s.NoteAudio()
	start := s.speechStart
	clk.Advance(200 * time.Millisecond)
	s.NoteAudio()

	if !s.speechStart.Equal(start) {
		t.Error("speech start must not move while the span is open")
	}
	if !s.lastAudio.Equal(clk.Now()) {
		t.Error("last audio timestamp must track the newest chunk")
	}

	s.ClearSpeaking()
	clk.Advance(time.Second)
	s.NoteAudio()
	if s.speechStart.Equal(start) {
		t.Error("a new span must restamp its start time")
	}
}

func TestPendingFloor(t *testing.T) {
	s := newSpeechState(nil)
	s.AddPending(2)
	s.DropPending(5)
	if got := s.Pending(); got != 0 {
		t.Errorf("pending = %d, want floor at 0", got)
	}
}
