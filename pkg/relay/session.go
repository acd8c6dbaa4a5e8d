package relay

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/tripvoice/go-tripvoice/pkg/audio"
)

// Session is the mutable per-connection state shared by the two relay
// loops. The audio mutex serializes sequence assignment with the
// buffer-or-send decision so concurrent audio handling cannot produce
// gaps or duplicates; the boolean flags are atomics read directly by
// both loops.
type Session struct {
	ConnectionStart time.Time

	// clientReady starts false and flips true exactly once, on the
	// client ready signal or the buffer-timeout auto-flush.
	clientReady atomic.Bool

	// active is the sole cancellation signal. Either loop setting it
	// false stops both within one polling interval.
	active atomic.Bool

	// audioMu guards the sequence counters and orders buffer mutation
	// against sequence assignment on both directions. Each direction
	// numbers its own chunks so neither can leave gaps in the other.
	audioMu sync.Mutex
	micSeq  uint64
	outSeq  uint64

	micBuffer       *audio.Buffer
	assistantBuffer *audio.Buffer

	// resumptionHandle is touched only by the outbound loop.
	resumptionHandle string
}

func newSession(bufferSize int, now time.Time) *Session {
	s := &Session{
		ConnectionStart: now,
		micBuffer:       audio.NewBuffer(bufferSize),
		assistantBuffer: audio.NewBuffer(bufferSize),
	}
	s.active.Store(true)
	return s
}

// Active reports whether the session is still processing.
func (s *Session) Active() bool { return s.active.Load() }

// Deactivate signals both loops to stop. Idempotent.
func (s *Session) Deactivate() { s.active.Store(false) }

// ClientReady reports whether audio may be sent to the client live.
func (s *Session) ClientReady() bool { return s.clientReady.Load() }

// MarkClientReady flips the readiness flag. It never reverts.
func (s *Session) MarkClientReady() { s.clientReady.Store(true) }

// nextMicSeq must be called with audioMu held.
func (s *Session) nextMicSeq() uint64 {
	s.micSeq++
	return s.micSeq
}

// nextOutSeq must be called with audioMu held.
func (s *Session) nextOutSeq() uint64 {
	s.outSeq++
	return s.outSeq
}
