package audio

import (
	"fmt"
	"testing"
	"time"
)

func addN(b *Buffer, n int, startSeq uint64) {
	for i := 0; i < n; i++ {
		meta := NewMetadata(startSeq+uint64(i), 320, 24000, time.Now())
		b.Add([]byte{byte(i)}, meta)
	}
}

func TestAddStaysWithinCapacity(t *testing.T) {
	b := NewBuffer(10)
	addN(b, 25, 1)

	if b.Size() != 10 {
		t.Errorf("expected size 10 after overflow, got %d", b.Size())
	}
}

func TestOverflowEvictsOldestFIFO(t *testing.T) {
	b := NewBuffer(3)

	var allEvicted []Chunk
	for i := 0; i < 5; i++ {
		meta := NewMetadata(uint64(i+1), 320, 24000, time.Now())
		_, evicted := b.Add([]byte{byte(i)}, meta)
		allEvicted = append(allEvicted, evicted...)
	}

	// Chunks 1 and 2 are the oldest and must be the evicted ones, in order.
	if len(allEvicted) != 2 {
		t.Fatalf("expected 2 evictions, got %d", len(allEvicted))
	}
	if allEvicted[0].Meta.Sequence != 1 || allEvicted[1].Meta.Sequence != 2 {
		t.Errorf("evicted wrong chunks: %d, %d",
			allEvicted[0].Meta.Sequence, allEvicted[1].Meta.Sequence)
	}

	// The kept chunks are exactly the newest 3, in FIFO order.
	kept := b.FlushAll()
	for i, want := range []uint64{3, 4, 5} {
		if kept[i].Meta.Sequence != want {
			t.Errorf("kept[%d] sequence = %d, want %d", i, kept[i].Meta.Sequence, want)
		}
	}
}

func TestAddMarksBuffered(t *testing.T) {
	b := NewBuffer(5)
	stored, _ := b.Add([]byte{1}, NewMetadata(1, 320, 24000, time.Now()))
	if !stored.Meta.Buffered {
		t.Error("stored chunk should be marked buffered")
	}
}

func TestFlushAllReturnsInOrderAndEmpties(t *testing.T) {
	b := NewBuffer(100)
	addN(b, 5, 1)

	chunks := b.FlushAll()
	if len(chunks) != 5 {
		t.Fatalf("expected 5 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Meta.Sequence != uint64(i+1) {
			t.Errorf("chunk %d has sequence %d", i, c.Meta.Sequence)
		}
	}

	if !b.IsEmpty() {
		t.Error("buffer should be empty after flush")
	}
	if second := b.FlushAll(); len(second) != 0 {
		t.Errorf("second flush should be empty, got %d chunks", len(second))
	}
}

func TestPressureLevelBoundaries(t *testing.T) {
	tests := []struct {
		fill int
		max  int
		want Pressure
	}{
		{0, 5000, PressureLow},
		{4000, 5000, PressureLow},    // exactly 0.8 is still low
		{4001, 5000, PressureMedium}, // just above 0.8
		{4500, 5000, PressureMedium}, // exactly 0.9 is still medium
		{4501, 5000, PressureHigh},   // just above 0.9
		{5000, 5000, PressureHigh},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d", tt.fill, tt.max), func(t *testing.T) {
			b := NewBuffer(tt.max)
			addN(b, tt.fill, 1)
			if got := b.PressureLevel(); got != tt.want {
				t.Errorf("PressureLevel() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewMetadataDuration(t *testing.T) {
	// 9600 bytes of PCM16 at 24kHz = 4800 samples = 200ms.
	meta := NewMetadata(7, 9600, 24000, time.Now())

	if meta.ExpectedDurationMS != 200 {
		t.Errorf("expected 200ms, got %v", meta.ExpectedDurationMS)
	}
	if meta.Type != "audio_metadata" {
		t.Errorf("unexpected type %q", meta.Type)
	}
	if meta.Sequence != 7 || meta.SizeBytes != 9600 || meta.SampleRate != 24000 {
		t.Errorf("metadata fields not carried: %+v", meta)
	}
}

func TestPressureWarningPayload(t *testing.T) {
	b := NewBuffer(10)
	addN(b, 10, 1)

	w := NewPressureWarning(b)
	if w.Type != "buffer_pressure" || w.Level != PressureHigh {
		t.Errorf("unexpected warning %+v", w)
	}
	if w.RecommendedAction != "increase_playback_speed" {
		t.Errorf("high pressure should recommend faster playback, got %q", w.RecommendedAction)
	}

	b2 := NewBuffer(10)
	addN(b2, 9, 1)
	if w2 := NewPressureWarning(b2); w2.RecommendedAction != "monitor" {
		t.Errorf("medium pressure should recommend monitor, got %q", w2.RecommendedAction)
	}
}

func TestTruncationWarningPayload(t *testing.T) {
	w := NewTruncationWarning(3, 10)
	if w.Type != "audio_truncation" || w.ChunksRemoved != 3 || w.Reason != "buffer_overflow" {
		t.Errorf("unexpected warning %+v", w)
	}
}
