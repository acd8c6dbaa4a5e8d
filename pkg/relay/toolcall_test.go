package relay

import (
	"testing"
	"time"

	"github.com/tripvoice/go-tripvoice/pkg/gemini"
)

func testCoordinator(handlers map[string]func(map[string]any, func(string)) (map[string]any, error)) (*toolCoordinator, *fakeUpstream, *speechState) {
	upstream := newFakeUpstream()
	speech := newSpeechState(nil)
	c := newToolCoordinator(&fakeInvoker{handlers: handlers}, upstream, speech)
	return c, upstream, speech
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for " + what)
		case <-time.After(2 * time.Millisecond):
		}
	}
}

func TestBatchStartsConcurrently(t *testing.T) {
	fastDone := make(chan struct{})
	slowStarted := make(chan struct{})
	release := make(chan struct{})

	c, upstream, _ := testCoordinator(map[string]func(map[string]any, func(string)) (map[string]any, error){
		"fast": func(map[string]any, func(string)) (map[string]any, error) {
			// Waits for proof the slow call started, so completion order
			// alone cannot explain the queue order.
			<-slowStarted
			defer close(fastDone)
			return map[string]any{"status": "SUCCESS", "uuid": "fast-1"}, nil
		},
		"slow": func(map[string]any, func(string)) (map[string]any, error) {
			close(slowStarted)
			<-release
			return map[string]any{"status": "SUCCESS", "uuid": "slow-1"}, nil
		},
	})

	c.Process(&gemini.ToolCall{FunctionCalls: []gemini.FunctionCall{
		{ID: "1", Name: "fast"},
		{ID: "2", Name: "slow"},
	}})

	<-fastDone
	waitFor(t, "fast result queued", func() bool { return len(c.results) == 1 })

	// Queued but not delivered: delivery waits for a trigger.
	if got := len(upstream.sentToolResponses()); got != 0 {
		t.Fatalf("responses sent before any trigger: %d", got)
	}

	close(release)
	waitFor(t, "slow result queued", func() bool { return len(c.results) == 2 })

	if got := c.DeliverQueued("turn_complete"); got != 2 {
		t.Fatalf("delivered %d, want 2", got)
	}
	sent := upstream.sentToolResponses()
	if sent[0].Name != "fast" || sent[1].Name != "slow" {
		t.Errorf("delivery order = %s, %s; want fast, slow", sent[0].Name, sent[1].Name)
	}
}

func TestDeliverDeduplicates(t *testing.T) {
	c, upstream, _ := testCoordinator(nil)

	dup := &gemini.FunctionResponse{
		Name:     "Enquiry_Tool",
		Response: map[string]any{"status": "SUCCESS", "uuid": "abc"},
	}
	c.enqueue(toolResult{fn: dup})
	c.enqueue(toolResult{fn: dup})
	c.enqueue(toolResult{fn: &gemini.FunctionResponse{
		Name:     "Enquiry_Tool",
		Response: map[string]any{"status": "SUCCESS", "uuid": "def"},
	}})

	if got := c.DeliverQueued("turn_complete"); got != 2 {
		t.Fatalf("delivered %d, want 2", got)
	}
	if got := len(upstream.sentToolResponses()); got != 2 {
		t.Errorf("upstream saw %d responses, want 2", got)
	}
	if c.HasQueued() {
		t.Error("queue not fully drained")
	}
}

func TestDeliverRoutesFollowUpText(t *testing.T) {
	c, upstream, _ := testCoordinator(nil)

	c.enqueue(toolResult{text: "[SYSTEM]: The booking details are ready."})
	c.enqueue(toolResult{fn: &gemini.FunctionResponse{
		Name:     "Flight_Booking_Details_Agent",
		Response: map[string]any{"status": "PENDING", "uuid": "x"},
	}})

	if got := c.DeliverQueued("speech_gap_detected"); got != 1 {
		t.Fatalf("delivered %d function responses, want 1", got)
	}
	upstream.mu.Lock()
	texts := append([]string(nil), upstream.texts...)
	upstream.mu.Unlock()
	if len(texts) != 1 || texts[0] != "[SYSTEM]: The booking details are ready." {
		t.Errorf("follow-up text not forwarded: %v", texts)
	}
}

func TestUnknownToolBecomesErrorResponse(t *testing.T) {
	c, upstream, _ := testCoordinator(nil)

	c.Process(&gemini.ToolCall{FunctionCalls: []gemini.FunctionCall{
		{ID: "1", Name: "NoSuchTool"},
	}})
	waitFor(t, "error result queued", func() bool { return c.HasQueued() })

	if got := c.DeliverQueued("turn_complete"); got != 1 {
		t.Fatalf("delivered %d, want 1", got)
	}
	sent := upstream.sentToolResponses()
	if sent[0].Response["status"] != "ERROR" {
		t.Errorf("unknown tool response = %+v", sent[0].Response)
	}
}

func TestDeliveryClearsSpeechAndPending(t *testing.T) {
	done := make(chan struct{})
	c, _, speech := testCoordinator(map[string]func(map[string]any, func(string)) (map[string]any, error){
		"t": func(map[string]any, func(string)) (map[string]any, error) {
			defer close(done)
			return map[string]any{"status": "SUCCESS", "uuid": "1"}, nil
		},
	})

	speech.NoteAudio()
	c.Process(&gemini.ToolCall{FunctionCalls: []gemini.FunctionCall{{ID: "1", Name: "t"}}})
	<-done
	waitFor(t, "result queued", func() bool { return c.HasQueued() })

	if speech.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", speech.Pending())
	}
	c.DeliverQueued("turn_complete")
	if speech.IsSpeaking() {
		t.Error("speech span must be cleared after delivery")
	}
	if speech.Pending() != 0 {
		t.Errorf("pending = %d after delivery", speech.Pending())
	}
}

func TestEnqueueToleratesNoConsumer(t *testing.T) {
	c, _, _ := testCoordinator(nil)
	// Fill beyond capacity; enqueue must never block or panic even when
	// the session is gone and nothing drains.
	for i := 0; i < resultsQueueSize+10; i++ {
		c.enqueue(toolResult{fn: &gemini.FunctionResponse{
			Name:     "t",
			Response: map[string]any{"uuid": "x"},
		}})
	}
}
