package gemini

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tripvoice/go-tripvoice/internal/log"
)

const eventBuffer = 64

// Session is one live bidirectional stream. Reads are pumped onto the
// Events channel by a background goroutine; writes are serialized with
// a mutex because gorilla connections allow one concurrent writer.
type Session struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	events chan Event
	done   chan struct{}
	closed atomic.Bool

	inputSampleRate int
}

func newSession(conn *websocket.Conn, inputSampleRate int) *Session {
	if inputSampleRate <= 0 {
		inputSampleRate = 16000
	}
	return &Session{
		conn:            conn,
		events:          make(chan Event, eventBuffer),
		done:            make(chan struct{}),
		inputSampleRate: inputSampleRate,
	}
}

// Events returns the stream of decoded server events. The channel is
// closed when the connection ends; the last event before close carries
// the terminal error if the stream did not end cleanly.
func (s *Session) Events() <-chan Event {
	return s.events
}

func (s *Session) start() {
	go s.readPump()
}

func (s *Session) readPump() {
	defer close(s.events)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				s.deliver(Event{Error: &StreamError{Message: err.Error()}})
			}
			return
		}
		events, err := decodeServerMessage(data)
		if err != nil {
			log.Warn("dropping undecodable gemini frame", "error", err)
			continue
		}
		if len(events) == 0 {
			log.Debug("unhandled gemini frame", "size", len(data))
			continue
		}
		for _, ev := range events {
			if !s.deliver(ev) {
				return
			}
		}
	}
}

// deliver hands an event to the consumer without ever blocking a closed
// session: once Close fires, the pump gives up instead of stalling on a
// full channel nobody drains.
func (s *Session) deliver(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

// sendSetup writes the session configuration frame.
func (s *Session) sendSetup(msg setupMessage) error {
	return s.writeJSON(msg)
}

// awaitSetupComplete blocks until the server acknowledges the setup.
// Must run before the read pump starts.
func (s *Session) awaitSetupComplete(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	if err := s.conn.SetReadDeadline(deadline); err != nil {
		return fmt.Errorf("gemini: set setup deadline: %w", err)
	}
	defer s.conn.SetReadDeadline(time.Time{})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("gemini: waiting for setup ack: %w", err)
		}
		events, err := decodeServerMessage(data)
		if err != nil {
			return err
		}
		for _, ev := range events {
			if ev.SetupComplete != nil {
				return nil
			}
			if ev.Error != nil {
				return fmt.Errorf("gemini: setup rejected: %s", ev.Error.Message)
			}
		}
	}
}

// SendRealtimeAudio streams one chunk of raw PCM16 microphone audio.
func (s *Session) SendRealtimeAudio(pcm []byte) error {
	if len(pcm) == 0 {
		return nil
	}
	msg := map[string]any{
		"realtimeInput": map[string]any{
			"mediaChunks": []map[string]string{{
				"mimeType": fmt.Sprintf("audio/pcm;rate=%d", s.inputSampleRate),
				"data":     base64.StdEncoding.EncodeToString(pcm),
			}},
		},
	}
	return s.writeJSON(msg)
}

// SendUserText submits a complete user text turn.
func (s *Session) SendUserText(text string) error {
	msg := map[string]any{
		"clientContent": map[string]any{
			"turns": []map[string]any{{
				"role":  "user",
				"parts": []map[string]string{{"text": text}},
			}},
			"turnComplete": true,
		},
	}
	return s.writeJSON(msg)
}

// SendToolResponse returns one or more function results to the model.
func (s *Session) SendToolResponse(responses ...FunctionResponse) error {
	if len(responses) == 0 {
		return nil
	}
	msg := map[string]any{
		"toolResponse": map[string]any{
			"functionResponses": responses,
		},
	}
	return s.writeJSON(msg)
}

func (s *Session) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("gemini: marshal: %w", err)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.closed.Load() {
		return fmt.Errorf("gemini: session closed")
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Close shuts the connection down. Safe to call more than once.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(s.done)
	s.writeMu.Lock()
	s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	s.writeMu.Unlock()
	return s.conn.Close()
}
