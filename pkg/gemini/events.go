package gemini

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Event is one message from the Live stream, decoded into exactly one
// of its variants. Consumers dispatch on whichever field is set instead
// of probing optional attributes.
type Event struct {
	SetupComplete *SetupComplete
	Audio         []byte // raw PCM16 from a model turn
	ServerContent *ServerContent
	ToolCall      *ToolCall
	SessionUpdate *SessionResumptionUpdate
	Error         *StreamError
}

// SetupComplete confirms the session configuration was accepted.
type SetupComplete struct{}

// ServerContent carries the non-audio parts of a model response:
// control flags, transcription fragments, and any free text.
type ServerContent struct {
	Interrupted         bool
	TurnComplete        bool
	GenerationComplete  bool
	InputTranscription  string
	OutputTranscription string
	Text                string
}

// IsControl reports whether the content carries a recognized control
// flag.
func (c *ServerContent) IsControl() bool {
	return c.Interrupted || c.TurnComplete || c.GenerationComplete
}

// IsTranscription reports whether the content carries a transcription
// fragment for either side.
func (c *ServerContent) IsTranscription() bool {
	return c.InputTranscription != "" || c.OutputTranscription != ""
}

// ToolCall is a batch of function calls issued by the model.
type ToolCall struct {
	FunctionCalls []FunctionCall
}

// FunctionCall is one named call within a batch.
type FunctionCall struct {
	ID   string
	Name string
	Args map[string]any
}

// FunctionResponse is the result of one function call, sent back on the
// stream. The scheduling hint tells the model how urgently to read the
// result into the conversation.
type FunctionResponse struct {
	ID         string         `json:"id,omitempty"`
	Name       string         `json:"name"`
	Response   map[string]any `json:"response"`
	Scheduling string         `json:"scheduling,omitempty"`
}

// Scheduling hints accepted by the Live API.
const (
	SchedulingInterrupt = "INTERRUPT"
	SchedulingWhenIdle  = "WHEN_IDLE"
	SchedulingSilent    = "SILENT"
)

// SessionResumptionUpdate carries a new resumption handle.
type SessionResumptionUpdate struct {
	Resumable bool
	NewHandle string
}

// StreamError is an error reported by the stream itself (an explicit
// error payload or a goAway notice).
type StreamError struct {
	Message string
}

func (e *StreamError) String() string { return e.Message }

// Wire-level shapes. The Live API uses camelCase JSON.

type serverMessage struct {
	SetupComplete           *struct{}           `json:"setupComplete"`
	ServerContent           *wireServerContent  `json:"serverContent"`
	ToolCall                *wireToolCall       `json:"toolCall"`
	ToolCallCancellation    *wireCancellation   `json:"toolCallCancellation"`
	SessionResumptionUpdate *wireResumption     `json:"sessionResumptionUpdate"`
	GoAway                  *wireGoAway         `json:"goAway"`
	UsageMetadata           json.RawMessage     `json:"usageMetadata"`
	Error                   *wireError          `json:"error"`
}

type wireServerContent struct {
	ModelTurn           *wireContent       `json:"modelTurn"`
	TurnComplete        bool               `json:"turnComplete"`
	GenerationComplete  bool               `json:"generationComplete"`
	Interrupted         bool               `json:"interrupted"`
	InputTranscription  *wireTranscription `json:"inputTranscription"`
	OutputTranscription *wireTranscription `json:"outputTranscription"`
}

type wireContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []wirePart `json:"parts,omitempty"`
}

type wirePart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *wireInlineData `json:"inlineData,omitempty"`
}

type wireInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type wireTranscription struct {
	Text string `json:"text"`
}

type wireToolCall struct {
	FunctionCalls []wireFunctionCall `json:"functionCalls"`
}

type wireFunctionCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type wireCancellation struct {
	IDs []string `json:"ids"`
}

type wireResumption struct {
	NewHandle string `json:"newHandle"`
	Resumable bool   `json:"resumable"`
}

type wireGoAway struct {
	TimeLeft string `json:"timeLeft"`
}

type wireError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// decodeServerMessage parses one websocket frame into zero or more
// events. Audio parts become individual Audio events; the remaining
// content flags and transcription fragments become a single
// ServerContent event, in wire order after the audio they accompany.
func decodeServerMessage(data []byte) ([]Event, error) {
	var msg serverMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("gemini: malformed server message: %w", err)
	}

	var events []Event

	switch {
	case msg.SetupComplete != nil:
		events = append(events, Event{SetupComplete: &SetupComplete{}})

	case msg.ServerContent != nil:
		events = append(events, decodeServerContent(msg.ServerContent)...)

	case msg.ToolCall != nil:
		tc := &ToolCall{}
		for _, fc := range msg.ToolCall.FunctionCalls {
			tc.FunctionCalls = append(tc.FunctionCalls, FunctionCall{
				ID:   fc.ID,
				Name: fc.Name,
				Args: fc.Args,
			})
		}
		events = append(events, Event{ToolCall: tc})

	case msg.SessionResumptionUpdate != nil:
		events = append(events, Event{SessionUpdate: &SessionResumptionUpdate{
			Resumable: msg.SessionResumptionUpdate.Resumable,
			NewHandle: msg.SessionResumptionUpdate.NewHandle,
		}})

	case msg.Error != nil:
		events = append(events, Event{Error: &StreamError{
			Message: fmt.Sprintf("code %d: %s", msg.Error.Code, msg.Error.Message),
		}})

	case msg.GoAway != nil:
		events = append(events, Event{Error: &StreamError{
			Message: fmt.Sprintf("server going away (time left: %s)", msg.GoAway.TimeLeft),
		}})

	case msg.ToolCallCancellation != nil, msg.UsageMetadata != nil:
		// Informational; nothing for the relay to act on.

	default:
		// Unknown shape: surface it as an empty event slice so the
		// caller can log the raw payload.
	}

	return events, nil
}

func decodeServerContent(sc *wireServerContent) []Event {
	var events []Event

	var freeText []string
	if sc.ModelTurn != nil {
		for _, part := range sc.ModelTurn.Parts {
			if part.InlineData != nil && isPCMMimeType(part.InlineData.MimeType) {
				pcm, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err == nil && len(pcm) > 0 {
					events = append(events, Event{Audio: pcm})
				}
				continue
			}
			if part.Text != "" {
				freeText = append(freeText, part.Text)
			}
		}
	}

	content := ServerContent{
		Interrupted:        sc.Interrupted,
		TurnComplete:       sc.TurnComplete,
		GenerationComplete: sc.GenerationComplete,
		Text:               strings.Join(freeText, " "),
	}
	if sc.InputTranscription != nil {
		content.InputTranscription = sc.InputTranscription.Text
	}
	if sc.OutputTranscription != nil {
		content.OutputTranscription = sc.OutputTranscription.Text
	}

	if content.IsControl() || content.IsTranscription() || content.Text != "" {
		events = append(events, Event{ServerContent: &content})
	}
	return events
}

func isPCMMimeType(mime string) bool {
	return mime == "audio/pcm" || strings.HasPrefix(mime, "audio/pcm;")
}
