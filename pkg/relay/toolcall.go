package relay

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/tripvoice/go-tripvoice/internal/log"
	"github.com/tripvoice/go-tripvoice/internal/metrics"
	"github.com/tripvoice/go-tripvoice/pkg/gemini"
)

const resultsQueueSize = 64

// toolResult is one item on the coordinator's results queue: either a
// function response for the model or a follow-up text turn pushed by a
// tool's background completion.
type toolResult struct {
	fn   *gemini.FunctionResponse
	text string
}

// toolCoordinator launches tool executions concurrently and centralizes
// result delivery so it can be timed against assistant speech. Tool
// goroutines only ever touch the results queue; the outbound loop is
// the single consumer.
type toolCoordinator struct {
	invoker  ToolInvoker
	upstream Upstream
	speech   *speechState

	// results is never closed: tool goroutines may outlive the session
	// and their late results are simply never drained.
	results chan toolResult

	// processed holds dedup keys of responses already sent. Only the
	// delivery path reads or writes it.
	processed map[string]struct{}

	// inFlight suppresses interrupt forwarding while a tool response is
	// being read into the conversation. Cleared on turn completion.
	inFlight atomic.Bool
}

func newToolCoordinator(invoker ToolInvoker, upstream Upstream, speech *speechState) *toolCoordinator {
	return &toolCoordinator{
		invoker:   invoker,
		upstream:  upstream,
		speech:    speech,
		results:   make(chan toolResult, resultsQueueSize),
		processed: make(map[string]struct{}),
	}
}

// Process schedules every call in the batch and returns immediately.
// All calls start together; each goroutine enqueues exactly one result,
// success or failure.
func (c *toolCoordinator) Process(batch *gemini.ToolCall) {
	if batch == nil || len(batch.FunctionCalls) == 0 {
		return
	}
	c.speech.AddPending(len(batch.FunctionCalls))
	for _, call := range batch.FunctionCalls {
		metrics.ToolCallsStarted.Inc()
		go c.run(call)
	}
}

func (c *toolCoordinator) run(call gemini.FunctionCall) {
	log.Info("tool call started", "tool", call.Name, "id", call.ID)

	notify := func(text string) {
		c.enqueue(toolResult{text: text})
	}

	body, err := c.invoker.Invoke(context.Background(), call.Name, call.Args, notify)
	if err != nil {
		metrics.ToolCallsFailed.Inc()
		log.Warn("tool call failed", "tool", call.Name, "id", call.ID, "error", err)
		body = map[string]any{
			"status":  "ERROR",
			"message": fmt.Sprintf("tool %s failed: %v", call.Name, err),
		}
	}

	c.enqueue(toolResult{fn: &gemini.FunctionResponse{
		ID:         call.ID,
		Name:       call.Name,
		Response:   body,
		Scheduling: c.invoker.Scheduling(call.Name),
	}})
}

// enqueue never blocks. A full queue drops the result; with the queue
// far larger than any realistic batch this only happens after teardown
// when nothing is draining.
func (c *toolCoordinator) enqueue(r toolResult) {
	select {
	case c.results <- r:
	default:
		name := "follow-up"
		if r.fn != nil {
			name = r.fn.Name
		}
		log.Warn("tool results queue full, dropping result", "tool", name)
	}
}

// HasQueued reports whether any results are waiting for delivery.
func (c *toolCoordinator) HasQueued() bool {
	return len(c.results) > 0
}

// ResponseInFlight reports whether a tool response was recently sent
// and is still being read into the conversation.
func (c *toolCoordinator) ResponseInFlight() bool {
	return c.inFlight.Load()
}

// ClearInFlight resets the in-flight flag at a turn boundary.
func (c *toolCoordinator) ClearInFlight() {
	c.inFlight.Store(false)
}

// DeliverQueued drains the results queue in FIFO order, skipping
// duplicates by dedup key and sending the rest upstream. It returns the
// number of responses actually sent. After a non-empty drain the speech
// span is cleared so the silence gate does not immediately re-fire.
func (c *toolCoordinator) DeliverQueued(trigger string) int {
	delivered := 0
	drained := 0
	for {
		var res toolResult
		select {
		case res = <-c.results:
		default:
			if drained > 0 {
				c.speech.ClearSpeaking()
				c.speech.DropPending(delivered)
			}
			return delivered
		}
		drained++

		if res.text != "" {
			if err := c.upstream.SendUserText(res.text); err != nil {
				log.Warn("tool follow-up send failed", "error", err)
			}
			continue
		}

		key := dedupKey(res.fn)
		if _, seen := c.processed[key]; seen {
			log.Debug("skipping duplicate tool response", "tool", res.fn.Name, "key", key)
			continue
		}

		c.inFlight.Store(true)
		if err := c.upstream.SendToolResponse(*res.fn); err != nil {
			log.Warn("tool response send failed", "tool", res.fn.Name, "error", err)
			continue
		}
		c.processed[key] = struct{}{}
		delivered++
		metrics.ToolResponsesDelivered.WithLabelValues(trigger).Inc()
		log.Info("tool response delivered", "tool", res.fn.Name, "trigger", trigger)
	}
}

// dedupKey identifies one logical tool result: the tool name plus the
// uniqueness token its implementation embeds in the response body.
func dedupKey(fn *gemini.FunctionResponse) string {
	token := ""
	if v, ok := fn.Response["uuid"].(string); ok {
		token = v
	}
	return fn.Name + "-" + token
}
