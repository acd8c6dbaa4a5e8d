package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/tripvoice/go-tripvoice/pkg/relay"
)

const clientFrameBuffer = 64

// wsClient adapts a fiber websocket connection to the relay's client
// interface. A reader goroutine pumps frames onto a channel so Receive
// can time out without poisoning the connection's read deadline; writes
// are serialized with a mutex.
type wsClient struct {
	conn *websocket.Conn

	frames   chan relay.ClientFrame
	done     chan struct{}
	stopOnce sync.Once

	errMu   sync.Mutex
	readErr error

	writeMu sync.Mutex
}

func newWSClient(conn *websocket.Conn) *wsClient {
	c := &wsClient{
		conn:   conn,
		frames: make(chan relay.ClientFrame, clientFrameBuffer),
		done:   make(chan struct{}),
	}
	go c.readPump()
	return c
}

// stop releases the read pump. Called when the session ends, so a pump
// blocked on a full frame channel does not outlive its consumer.
func (c *wsClient) stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

func (c *wsClient) readPump() {
	defer close(c.frames)
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			c.errMu.Lock()
			c.readErr = err
			c.errMu.Unlock()
			return
		}
		var frame relay.ClientFrame
		switch msgType {
		case websocket.TextMessage:
			frame = relay.ClientFrame{IsText: true, Text: string(data)}
		case websocket.BinaryMessage:
			frame = relay.ClientFrame{Binary: data}
		default:
			continue
		}
		select {
		case c.frames <- frame:
		case <-c.done:
			return
		}
	}
}

func (c *wsClient) Receive(timeout time.Duration) (relay.ClientFrame, error) {
	select {
	case frame, ok := <-c.frames:
		if !ok {
			c.errMu.Lock()
			err := c.readErr
			c.errMu.Unlock()
			if err == nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return relay.ClientFrame{}, relay.ErrClientClosed
			}
			return relay.ClientFrame{}, err
		}
		return frame, nil
	case <-time.After(timeout):
		return relay.ClientFrame{}, relay.ErrReceiveTimeout
	}
}

func (c *wsClient) SendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.write(websocket.TextMessage, data)
}

func (c *wsClient) SendBinary(data []byte) error {
	return c.write(websocket.BinaryMessage, data)
}

func (c *wsClient) SendText(text string) error {
	return c.write(websocket.TextMessage, []byte(text))
}

func (c *wsClient) write(msgType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(msgType, data)
}
