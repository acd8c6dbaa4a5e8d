package hub

import (
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestBroadcastReachesClient(t *testing.T) {
	h := New("test")
	go h.Run()

	c := &Client{hub: h, send: make(chan []byte, 4)}
	h.register <- c
	waitFor(t, func() bool { return h.ClientCount() == 1 }, "client never registered")

	h.Broadcast([]byte("hello"))
	select {
	case data := <-c.send:
		if string(data) != "hello" {
			t.Errorf("got %q", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast never delivered")
	}
}

func TestSlowConsumerDroppedUnderConcurrentCount(t *testing.T) {
	h := New("test")
	go h.Run()

	// Zero-buffer send channel with no reader: the first broadcast
	// already finds it full.
	c := &Client{hub: h, send: make(chan []byte)}
	h.register <- c
	waitFor(t, func() bool { return h.ClientCount() == 1 }, "client never registered")

	// Hammer the count while the drop happens; run with -race to catch
	// unsynchronized client-set mutation.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			h.ClientCount()
		}
	}()

	h.Broadcast([]byte("x"))
	waitFor(t, func() bool { return h.ClientCount() == 0 }, "slow client never dropped")
	<-done

	if _, ok := <-c.send; ok {
		t.Error("dropped client's send channel must be closed")
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	h := New("test")
	go h.Run()

	c := &Client{hub: h, send: make(chan []byte, 1)}
	h.register <- c
	waitFor(t, func() bool { return h.ClientCount() == 1 }, "client never registered")

	h.unregister <- c
	h.unregister <- c
	waitFor(t, func() bool { return h.ClientCount() == 0 }, "client never unregistered")
}
