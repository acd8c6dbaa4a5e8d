// Package audio provides PCM16 chunk bookkeeping for the relay: a
// bounded FIFO buffer with overflow eviction, per-chunk metadata, and
// the pressure/truncation warning payloads sent to the client.
package audio

import (
	"sync"
)

// DefaultMaxSize is the default buffer capacity in chunks.
const DefaultMaxSize = 5000

// Pressure describes how full a buffer is.
type Pressure string

const (
	PressureLow    Pressure = "low"
	PressureMedium Pressure = "medium"
	PressureHigh   Pressure = "high"
)

// Chunk is one buffered audio payload with its metadata. Immutable once
// stored.
type Chunk struct {
	Data []byte
	Meta Metadata
}

// Buffer is a fixed-capacity FIFO of audio chunks. Adding to a full
// buffer evicts the oldest chunks rather than blocking or failing.
type Buffer struct {
	mu      sync.Mutex
	chunks  []Chunk
	maxSize int
}

// NewBuffer creates a buffer holding up to maxSize chunks.
// A maxSize of zero or less means DefaultMaxSize.
func NewBuffer(maxSize int) *Buffer {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Buffer{
		chunks:  make([]Chunk, 0, 64),
		maxSize: maxSize,
	}
}

// Add stores a chunk, marking its metadata as buffered. It returns the
// stored chunk and any chunks evicted to stay within capacity, oldest
// first. Add never blocks and never fails.
func (b *Buffer) Add(data []byte, meta Metadata) (Chunk, []Chunk) {
	meta.Buffered = true
	chunk := Chunk{Data: data, Meta: meta}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.chunks = append(b.chunks, chunk)

	var evicted []Chunk
	for len(b.chunks) > b.maxSize {
		evicted = append(evicted, b.chunks[0])
		b.chunks = b.chunks[1:]
	}
	return chunk, evicted
}

// FlushAll atomically empties the buffer and returns its contents in
// insertion order.
func (b *Buffer) FlushAll() []Chunk {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.chunks
	b.chunks = make([]Chunk, 0, 64)
	return out
}

// Size returns the current number of buffered chunks.
func (b *Buffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.chunks)
}

// MaxSize returns the buffer capacity.
func (b *Buffer) MaxSize() int {
	return b.maxSize
}

// IsEmpty reports whether the buffer holds no chunks.
func (b *Buffer) IsEmpty() bool {
	return b.Size() == 0
}

// PressureLevel returns the fill-ratio-derived severity: above 90% is
// high, above 80% is medium, anything else low.
func (b *Buffer) PressureLevel() Pressure {
	b.mu.Lock()
	ratio := float64(len(b.chunks)) / float64(b.maxSize)
	b.mu.Unlock()

	switch {
	case ratio > 0.9:
		return PressureHigh
	case ratio > 0.8:
		return PressureMedium
	default:
		return PressureLow
	}
}
