package relay

import (
	"errors"

	"github.com/tripvoice/go-tripvoice/internal/log"
	"github.com/tripvoice/go-tripvoice/internal/metrics"
	"github.com/tripvoice/go-tripvoice/pkg/audio"
)

// inboundLoop forwards client frames upstream. It polls with a short
// timeout so deactivation is observed within one interval.
func (r *Relay) inboundLoop() {
	for r.session.Active() {
		frame, err := r.client.Receive(r.cfg.PollInterval)
		switch {
		case errors.Is(err, ErrReceiveTimeout):
			continue
		case errors.Is(err, ErrClientClosed):
			log.Info("client closed the connection")
			return
		case err != nil:
			log.Error("client receive failed", "error", err)
			return
		}

		if frame.IsText {
			r.handleClientText(frame.Text)
		} else {
			r.handleClientAudio(frame.Binary)
		}
	}
}

func (r *Relay) handleClientText(text string) {
	if text == signalClientAudioReady {
		r.handleClientReady()
		return
	}

	prompt := text
	if text == signalSendTestAudio {
		prompt = testAudioPrompt
	}
	if err := r.upstream.SendUserText(prompt); err != nil {
		log.Error("user text forward failed", "error", err)
		r.session.Deactivate()
	}
}

// handleClientReady flips the readiness flag and drains any mic audio
// held back before the signal, oldest first. The upstream ingests raw
// bytes only, so the stamped metadata goes to the structured log.
func (r *Relay) handleClientReady() {
	r.session.MarkClientReady()

	chunks := r.session.micBuffer.FlushAll()
	log.Info("client audio ready", "flushing", len(chunks))

	flushed := 0
	for _, chunk := range chunks {
		meta := chunk.Meta
		meta.FlushedBySignal = true
		log.Debug("flushing buffered mic chunk",
			"sequence", meta.Sequence,
			"size_bytes", meta.SizeBytes,
			"flushed_by_signal", true)
		if err := r.upstream.SendRealtimeAudio(chunk.Data); err != nil {
			log.Error("mic flush forward failed", "sequence", meta.Sequence, "error", err)
			r.session.Deactivate()
			return
		}
		flushed++
	}
	if flushed > 0 {
		metrics.AudioChunksFlushed.WithLabelValues("mic").Add(float64(flushed))
	}
}

func (r *Relay) handleClientAudio(data []byte) {
	if len(data) == 0 {
		log.Warn("ignoring empty audio chunk from client")
		return
	}

	if r.session.ClientReady() {
		if err := r.upstream.SendRealtimeAudio(data); err != nil {
			log.Error("mic audio forward failed", "error", err)
			r.session.Deactivate()
			return
		}
		metrics.AudioChunksRelayed.WithLabelValues("mic").Inc()
		return
	}

	// Not ready yet: hold the chunk with full metadata so the flush can
	// be accounted for, mirroring the assistant-side buffer path.
	// Warning sends are advisory and never fatal.
	r.session.audioMu.Lock()
	seq := r.session.nextMicSeq()
	meta := audio.NewMetadata(seq, len(data), r.cfg.InputSampleRate, r.now())
	buf := r.session.micBuffer
	_, evicted := buf.Add(data, meta)
	r.session.audioMu.Unlock()
	metrics.AudioChunksBuffered.WithLabelValues("mic").Inc()

	if level := buf.PressureLevel(); level != audio.PressureLow {
		if err := r.client.SendJSON(audio.NewPressureWarning(buf)); err != nil {
			log.Warn("pressure warning send failed", "error", err)
		}
	}
	if len(evicted) > 0 {
		metrics.AudioChunksEvicted.WithLabelValues("mic").Add(float64(len(evicted)))
		log.Warn("mic buffer overflow", "evicted", len(evicted), "size", buf.Size())
		if err := r.client.SendJSON(audio.NewTruncationWarning(len(evicted), buf.Size())); err != nil {
			log.Warn("truncation warning send failed", "error", err)
		}
	}
}
