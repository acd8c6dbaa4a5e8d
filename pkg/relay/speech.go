package relay

import (
	"sync"
	"time"
)

// speechState tracks whether the assistant is currently producing
// audio. The relay has no explicit "done talking" signal mid-turn, so
// the absence of audio for a configured gap is used as the proxy that
// makes it safe to feed queued tool results back into the stream.
type speechState struct {
	mu          sync.Mutex
	isSpeaking  bool
	lastAudio   time.Time
	speechStart time.Time
	pending     int

	now func() time.Time
}

func newSpeechState(now func() time.Time) *speechState {
	if now == nil {
		now = time.Now
	}
	return &speechState{now: now}
}

// NoteAudio records one audio chunk: starts a speech span if none is
// open and stamps the last-audio time.
func (s *speechState) NoteAudio() {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.now()
	if !s.isSpeaking {
		s.isSpeaking = true
		s.speechStart = t
	}
	s.lastAudio = t
}

// ClearSpeaking ends the current speech span. Called when queued tool
// responses are delivered, so the gate does not re-fire for the same
// silence.
func (s *speechState) ClearSpeaking() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isSpeaking = false
}

func (s *speechState) IsSpeaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isSpeaking
}

// AddPending records newly launched tool calls.
func (s *speechState) AddPending(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending += n
}

// DropPending subtracts delivered responses, floored at zero.
func (s *speechState) DropPending(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending -= n
	if s.pending < 0 {
		s.pending = 0
	}
}

func (s *speechState) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// SilenceGateOpen reports whether the speech-gap delivery trigger
// should fire: a speech span is open, at least one chunk was heard, and
// the last chunk is older than the gap.
func (s *speechState) SilenceGateOpen(gap time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isSpeaking || s.lastAudio.IsZero() {
		return false
	}
	return s.now().Sub(s.lastAudio) > gap
}
