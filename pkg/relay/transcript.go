package relay

import (
	"github.com/google/uuid"

	"github.com/tripvoice/go-tripvoice/internal/log"
)

// utteranceAggregator accumulates streaming transcription fragments
// into running utterances, one accumulator per speaker. Every fragment
// produces an incremental client update; completion signals produce one
// final update and close the utterance.
type utteranceAggregator struct {
	send   func(v any) error
	onFail func()
	newID  func() string

	userID   string
	userText string

	modelID   string
	modelText string
}

// newUtteranceAggregator wires the client send path. onFail runs when a
// send fails; transcription loss ends the session.
func newUtteranceAggregator(send func(v any) error, onFail func()) *utteranceAggregator {
	return &utteranceAggregator{send: send, onFail: onFail, newID: uuid.NewString}
}

// AddUserFragment appends transcribed user speech and streams the
// running text to the client.
func (a *utteranceAggregator) AddUserFragment(text string) {
	if text == "" {
		return
	}
	if a.userID == "" {
		a.userID = a.newID()
		a.userText = ""
	}
	a.userText += text
	a.emit(a.userID, a.userText, senderUser, typeUserTranscription, false)
}

// AddModelFragment appends transcribed assistant speech and streams the
// running text to the client.
func (a *utteranceAggregator) AddModelFragment(text string) {
	if text == "" {
		return
	}
	if a.modelID == "" {
		a.modelID = a.newID()
		a.modelText = ""
	}
	a.modelText += text
	a.emit(a.modelID, a.modelText, senderModel, typeModelResponse, false)
}

// GenerationComplete finalizes the open model utterance, if any.
func (a *utteranceAggregator) GenerationComplete() {
	if a.modelID != "" && a.modelText != "" {
		a.emit(a.modelID, a.modelText, senderModel, typeModelResponse, true)
	}
	a.modelID = ""
	a.modelText = ""
}

// TurnComplete finalizes the open user utterance and clears both sides.
// A turn boundary ends any open utterance regardless of speaker.
func (a *utteranceAggregator) TurnComplete() {
	if a.userID != "" && a.userText != "" {
		a.emit(a.userID, a.userText, senderUser, typeUserTranscription, true)
	}
	a.userID = ""
	a.userText = ""
	a.modelID = ""
	a.modelText = ""
}

func (a *utteranceAggregator) emit(id, text, sender, kind string, final bool) {
	err := a.send(transcriptionUpdate{
		ID:      id,
		Text:    text,
		Sender:  sender,
		Type:    kind,
		IsFinal: final,
	})
	if err != nil {
		log.Error("transcription update send failed", "sender", sender, "error", err)
		a.onFail()
	}
}
