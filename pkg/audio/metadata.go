package audio

import (
	"math"
	"time"
)

// Metadata describes one audio chunk as reported to the client. It is
// built once, at the moment a sequence number is assigned, and never
// mutated afterwards apart from the buffered/flushed stamps applied by
// the buffer and flush paths.
type Metadata struct {
	Type               string  `json:"type"`
	Sequence           uint64  `json:"sequence"`
	SizeBytes          int     `json:"size_bytes"`
	ExpectedDurationMS float64 `json:"expected_duration_ms"`
	SampleRate         int     `json:"sample_rate"`
	Timestamp          float64 `json:"timestamp"`
	CorrelationID      string  `json:"correlation_id,omitempty"`
	Buffered           bool    `json:"buffered,omitempty"`
	FlushedBySignal    bool    `json:"flushed_by_signal,omitempty"`
	FlushedByTimeout   bool    `json:"flushed_by_timeout,omitempty"`
}

// NewMetadata builds the metadata record for a PCM16 chunk. The
// expected duration follows from the 2-bytes-per-sample layout:
// (size/2)/rate seconds.
func NewMetadata(sequence uint64, sizeBytes, sampleRate int, ts time.Time) Metadata {
	samples := sizeBytes / 2
	durationMS := float64(samples) / float64(sampleRate) * 1000

	return Metadata{
		Type:               "audio_metadata",
		Sequence:           sequence,
		SizeBytes:          sizeBytes,
		ExpectedDurationMS: math.Round(durationMS*100) / 100,
		SampleRate:         sampleRate,
		Timestamp:          float64(ts.UnixNano()) / 1e9,
	}
}

// PressureWarning tells the client a readiness buffer is filling up.
type PressureWarning struct {
	Type              string   `json:"type"`
	Level             Pressure `json:"level"`
	BufferSize        int      `json:"buffer_size"`
	MaxSize           int      `json:"max_size"`
	RecommendedAction string   `json:"recommended_action"`
}

// NewPressureWarning builds the buffer_pressure payload for the given
// buffer state.
func NewPressureWarning(b *Buffer) PressureWarning {
	level := b.PressureLevel()
	action := "monitor"
	if level == PressureHigh {
		action = "increase_playback_speed"
	}
	return PressureWarning{
		Type:              "buffer_pressure",
		Level:             level,
		BufferSize:        b.Size(),
		MaxSize:           b.MaxSize(),
		RecommendedAction: action,
	}
}

// TruncationWarning tells the client buffered audio was dropped.
type TruncationWarning struct {
	Type          string `json:"type"`
	ChunksRemoved int    `json:"chunks_removed"`
	BufferSize    int    `json:"buffer_size"`
	Reason        string `json:"reason"`
}

// NewTruncationWarning builds the audio_truncation payload after an
// overflow eviction.
func NewTruncationWarning(chunksRemoved, bufferSize int) TruncationWarning {
	return TruncationWarning{
		Type:          "audio_truncation",
		ChunksRemoved: chunksRemoved,
		BufferSize:    bufferSize,
		Reason:        "buffer_overflow",
	}
}
