package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tripvoice/go-tripvoice/internal/log"
	"github.com/tripvoice/go-tripvoice/internal/metrics"
)

// Config carries the tunables for one relay instance. Zero values fall
// back to the defaults below.
type Config struct {
	InputSampleRate  int
	OutputSampleRate int

	// MaxBufferSize caps each readiness buffer, in chunks.
	MaxBufferSize int

	// BufferTimeout is how long after connect the assistant-side buffer
	// waits for the client ready signal before auto-flushing.
	BufferTimeout time.Duration

	// SpeechGapThreshold is the silence span after which queued tool
	// responses may be delivered mid-turn.
	SpeechGapThreshold time.Duration

	DisableVAD bool

	// PollInterval bounds how long the inbound loop blocks on the
	// client so it can observe deactivation promptly.
	PollInterval time.Duration

	// IdleSleep is the outbound loop's pause after an empty polling
	// pass.
	IdleSleep time.Duration
}

func (c Config) withDefaults() Config {
	if c.InputSampleRate <= 0 {
		c.InputSampleRate = 16000
	}
	if c.OutputSampleRate <= 0 {
		c.OutputSampleRate = 24000
	}
	if c.BufferTimeout <= 0 {
		c.BufferTimeout = 3 * time.Second
	}
	if c.SpeechGapThreshold <= 0 {
		c.SpeechGapThreshold = 1500 * time.Millisecond
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 200 * time.Millisecond
	}
	if c.IdleSleep <= 0 {
		c.IdleSleep = 100 * time.Millisecond
	}
	return c
}

// Relay drives one client connection against one assistant stream.
type Relay struct {
	cfg      Config
	client   ClientConn
	upstream Upstream

	session    *Session
	speech     *speechState
	utterances *utteranceAggregator
	tools      *toolCoordinator

	now func() time.Time
}

// New wires a relay for an established client connection and upstream
// session.
func New(client ClientConn, upstream Upstream, invoker ToolInvoker, cfg Config) *Relay {
	cfg = cfg.withDefaults()
	now := time.Now

	session := newSession(cfg.MaxBufferSize, now())
	speech := newSpeechState(now)
	return &Relay{
		cfg:        cfg,
		client:     client,
		upstream:   upstream,
		session:    session,
		speech:     speech,
		utterances: newUtteranceAggregator(client.SendJSON, session.Deactivate),
		tools:      newToolCoordinator(invoker, upstream, speech),
		now:        now,
	}
}

// ResumptionHandle returns the last handle reported by the stream, for
// logging after teardown.
func (r *Relay) ResumptionHandle() string {
	return r.session.resumptionHandle
}

// Run announces readiness to the client, then drives the inbound and
// outbound loops until either terminates the session. It returns after
// both loops have exited and the upstream session is closed.
func (r *Relay) Run(ctx context.Context) error {
	metrics.SessionsStarted.Inc()
	metrics.ActiveSessions.Inc()
	defer metrics.ActiveSessions.Dec()

	defer func() {
		if err := r.upstream.Close(); err != nil {
			log.Warn("upstream close failed", "error", err)
		}
	}()

	if err := r.client.SendJSON(serverReady()); err != nil {
		r.session.Deactivate()
		return fmt.Errorf("relay: server_ready send failed: %w", err)
	}

	// ctx cancellation folds into the same deactivation path the loops
	// already poll.
	watchDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			r.session.Deactivate()
		case <-watchDone:
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer r.session.Deactivate()
		r.inboundLoop()
	}()
	go func() {
		defer wg.Done()
		defer r.session.Deactivate()
		r.outboundLoop()
	}()
	wg.Wait()
	close(watchDone)

	if h := r.session.resumptionHandle; h != "" {
		log.Info("session ended with resumption handle", "handle", h)
	}
	return nil
}

func newCorrelationID(now time.Time) string {
	return fmt.Sprintf("gemini_response_%d_%s", now.UnixMilli(), uuid.NewString()[:8])
}
