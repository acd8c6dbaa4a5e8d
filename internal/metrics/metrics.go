// Package metrics exposes Prometheus instrumentation for the relay.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Session metrics
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tripvoice_active_sessions",
		Help: "Current number of active relay sessions",
	})
	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripvoice_sessions_started_total",
		Help: "Total number of relay sessions started",
	})

	// Audio metrics, labelled by direction ("mic" or "assistant")
	AudioChunksRelayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripvoice_audio_chunks_relayed_total",
		Help: "Audio chunks forwarded live, by direction",
	}, []string{"direction"})
	AudioChunksBuffered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripvoice_audio_chunks_buffered_total",
		Help: "Audio chunks held in a readiness buffer, by direction",
	}, []string{"direction"})
	AudioChunksEvicted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripvoice_audio_chunks_evicted_total",
		Help: "Audio chunks dropped by buffer overflow, by direction",
	}, []string{"direction"})
	AudioChunksFlushed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripvoice_audio_chunks_flushed_total",
		Help: "Buffered audio chunks delivered on flush, by direction",
	}, []string{"direction"})

	// Tool metrics
	ToolCallsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripvoice_tool_calls_started_total",
		Help: "Tool executions launched",
	})
	ToolCallsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripvoice_tool_calls_failed_total",
		Help: "Tool executions that returned an error result",
	})
	ToolResponsesDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripvoice_tool_responses_delivered_total",
		Help: "Tool responses delivered to the assistant stream, by trigger",
	}, []string{"trigger"})

	// Interruption metrics
	InterruptsForwarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripvoice_interrupts_forwarded_total",
		Help: "Playback interrupt signals forwarded to the client",
	})
)
