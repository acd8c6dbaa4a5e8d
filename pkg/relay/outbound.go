package relay

import (
	"time"

	"github.com/tripvoice/go-tripvoice/internal/log"
	"github.com/tripvoice/go-tripvoice/internal/metrics"
	"github.com/tripvoice/go-tripvoice/pkg/audio"
	"github.com/tripvoice/go-tripvoice/pkg/gemini"
)

// outboundLoop routes assistant events to the client. Idle passes still
// run the silence gate, since a lull in events is exactly when queued
// tool responses become deliverable.
func (r *Relay) outboundLoop() {
	for r.session.Active() {
		select {
		case ev, ok := <-r.upstream.Events():
			if !ok {
				log.Info("assistant stream ended")
				return
			}
			r.handleEvent(ev)
		case <-time.After(r.cfg.IdleSleep):
			r.checkSilenceGate()
		}
	}
}

func (r *Relay) handleEvent(ev gemini.Event) {
	turnComplete := false

	switch {
	case ev.SessionUpdate != nil:
		if h := ev.SessionUpdate.NewHandle; h != "" && h != r.session.resumptionHandle {
			r.session.resumptionHandle = h
			log.Info("session resumption handle updated", "resumable", ev.SessionUpdate.Resumable)
		}

	case ev.Audio != nil:
		r.processAudio(ev.Audio)

	case ev.ServerContent != nil:
		turnComplete = r.processServerContent(ev.ServerContent)

	case ev.ToolCall != nil:
		r.tools.Process(ev.ToolCall)

	case ev.Error != nil:
		log.Error("assistant stream error", "message", ev.Error.Message)
		if err := r.client.SendText(upstreamErrorPrefix + ev.Error.Message); err != nil {
			log.Error("error relay to client failed", "error", err)
			r.session.Deactivate()
			return
		}

	case ev.SetupComplete != nil:
		log.Debug("late setup acknowledgement")

	default:
		log.Debug("unrecognized assistant event")
	}

	if turnComplete {
		r.tools.ClearInFlight()
		r.tools.DeliverQueued("turn_complete")
	}
	r.checkSilenceGate()
}

// processAudio handles one assistant audio chunk under the audio lock:
// sequence assignment and the buffer-or-send decision must not
// interleave across events.
func (r *Relay) processAudio(data []byte) {
	r.speech.NoteAudio()

	r.session.audioMu.Lock()
	defer r.session.audioMu.Unlock()

	now := r.now()
	if !r.session.ClientReady() && now.Sub(r.session.ConnectionStart) > r.cfg.BufferTimeout {
		log.Info("client readiness timeout, auto-flushing",
			"buffered", r.session.assistantBuffer.Size())
		r.session.MarkClientReady()
		r.flushAssistantLocked()
	}

	if r.session.ClientReady() {
		r.sendLiveLocked(data, now)
	} else {
		r.bufferAssistantLocked(data, now)
	}
}

// sendLiveLocked delivers one chunk immediately: playback state, then
// metadata, then bytes. The client needs the metadata before the binary
// frame to pre-size its playback buffers.
func (r *Relay) sendLiveLocked(data []byte, now time.Time) {
	seq := r.session.nextOutSeq()
	cid := newCorrelationID(now)
	meta := audio.NewMetadata(seq, len(data), r.cfg.OutputSampleRate, now)
	meta.CorrelationID = cid

	state := playbackState{
		Type:              "gemini_playback_state",
		Playing:           true,
		Sequence:          seq,
		CorrelationID:     cid,
		VADShouldActivate: !r.cfg.DisableVAD,
	}
	if err := r.client.SendJSON(state); err != nil {
		log.Error("playback state send failed", "sequence", seq, "error", err)
		r.session.Deactivate()
		return
	}
	if err := r.client.SendJSON(meta); err != nil {
		log.Error("audio metadata send failed", "sequence", seq, "error", err)
		r.session.Deactivate()
		return
	}
	if err := r.client.SendBinary(data); err != nil {
		log.Error("audio send failed", "sequence", seq, "error", err)
		r.session.Deactivate()
		return
	}
	metrics.AudioChunksRelayed.WithLabelValues("assistant").Inc()
}

// bufferAssistantLocked holds a chunk until the client is ready and
// reports pressure and overflow to the client. Warning sends are
// advisory and never fatal.
func (r *Relay) bufferAssistantLocked(data []byte, now time.Time) {
	seq := r.session.nextOutSeq()
	meta := audio.NewMetadata(seq, len(data), r.cfg.OutputSampleRate, now)

	buf := r.session.assistantBuffer
	_, evicted := buf.Add(data, meta)
	metrics.AudioChunksBuffered.WithLabelValues("assistant").Inc()

	if level := buf.PressureLevel(); level != audio.PressureLow {
		if err := r.client.SendJSON(audio.NewPressureWarning(buf)); err != nil {
			log.Warn("pressure warning send failed", "error", err)
		}
	}
	if len(evicted) > 0 {
		metrics.AudioChunksEvicted.WithLabelValues("assistant").Add(float64(len(evicted)))
		log.Warn("assistant buffer overflow", "evicted", len(evicted))
		if err := r.client.SendJSON(audio.NewTruncationWarning(len(evicted), buf.Size())); err != nil {
			log.Warn("truncation warning send failed", "error", err)
		}
	}
}

// flushAssistantLocked drains the readiness buffer to the client in
// arrival order, stamping each chunk as timeout-flushed.
func (r *Relay) flushAssistantLocked() {
	chunks := r.session.assistantBuffer.FlushAll()
	flushed := 0
	for _, chunk := range chunks {
		meta := chunk.Meta
		meta.FlushedByTimeout = true
		if err := r.client.SendJSON(meta); err != nil {
			log.Error("flush metadata send failed", "sequence", meta.Sequence, "error", err)
			r.session.Deactivate()
			return
		}
		if err := r.client.SendBinary(chunk.Data); err != nil {
			log.Error("flush audio send failed", "sequence", meta.Sequence, "error", err)
			r.session.Deactivate()
			return
		}
		flushed++
	}
	if flushed > 0 {
		metrics.AudioChunksFlushed.WithLabelValues("assistant").Add(float64(flushed))
		log.Info("auto-flushed buffered audio", "chunks", flushed)
	}
}

// processServerContent routes control flags, transcription fragments,
// and stray text. Returns whether the event completed a turn.
func (r *Relay) processServerContent(sc *gemini.ServerContent) bool {
	if sc.Interrupted {
		if r.tools.ResponseInFlight() {
			log.Debug("interrupt suppressed while tool response in flight")
		} else {
			if err := r.client.SendJSON(interruptMessage()); err != nil {
				log.Error("interrupt forward failed", "error", err)
				r.session.Deactivate()
				return false
			}
			metrics.InterruptsForwarded.Inc()
		}
	}

	if sc.InputTranscription != "" {
		r.utterances.AddUserFragment(sc.InputTranscription)
	}
	if sc.OutputTranscription != "" {
		r.utterances.AddModelFragment(sc.OutputTranscription)
	}

	if sc.GenerationComplete {
		r.utterances.GenerationComplete()
	}
	if sc.TurnComplete {
		r.utterances.TurnComplete()
	}

	if !sc.IsControl() && !sc.IsTranscription() && sc.Text != "" {
		log.Debug("unhandled model text", "text", sc.Text)
	}
	return sc.TurnComplete
}

func (r *Relay) checkSilenceGate() {
	if r.tools.HasQueued() && r.speech.SilenceGateOpen(r.cfg.SpeechGapThreshold) {
		r.tools.DeliverQueued("speech_gap_detected")
	}
}
