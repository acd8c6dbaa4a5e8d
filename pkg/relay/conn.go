package relay

import (
	"context"
	"errors"
	"time"

	"github.com/tripvoice/go-tripvoice/pkg/gemini"
)

// ErrReceiveTimeout is returned by ClientConn.Receive when no frame
// arrived within the polling window. The loops treat it as "nothing to
// do", not as a failure.
var ErrReceiveTimeout = errors.New("relay: receive timed out")

// ErrClientClosed is returned by ClientConn.Receive when the browser
// closed the connection normally.
var ErrClientClosed = errors.New("relay: client connection closed")

// ClientFrame is one websocket message from the browser: either a text
// frame or a binary PCM16 frame.
type ClientFrame struct {
	IsText bool
	Text   string
	Binary []byte
}

// ClientConn abstracts the browser-facing websocket. Send methods must
// be safe for use from multiple goroutines.
type ClientConn interface {
	// Receive waits up to timeout for the next frame. It returns
	// ErrReceiveTimeout when the window elapses and ErrClientClosed on
	// a normal peer close; any other error is fatal to the session.
	Receive(timeout time.Duration) (ClientFrame, error)

	SendJSON(v any) error
	SendBinary(data []byte) error
	SendText(text string) error
}

// Upstream is the assistant-stream session the relay forwards into.
// Implemented by gemini.Session; faked in tests.
type Upstream interface {
	Events() <-chan gemini.Event
	SendRealtimeAudio(pcm []byte) error
	SendUserText(text string) error
	SendToolResponse(responses ...gemini.FunctionResponse) error
	Close() error
}

// ToolInvoker executes named tools. Implemented by tools.Registry.
type ToolInvoker interface {
	Invoke(ctx context.Context, name string, args map[string]any, notify func(string)) (map[string]any, error)
	Scheduling(name string) string
}
