package engine

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/chroma-vj/chromad/internal/clock"
	"github.com/chroma-vj/chromad/internal/director"
	"github.com/chroma-vj/chromad/internal/morph"
)

const testSampleRate = 44100

func testPipeline(t *testing.T) (*Pipeline, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.Unix(1000, 0))
	p, err := New(testSampleRate, Options{
		Clock: clk,
		Rand:  rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p, clk
}

// beatChunks yields 100ms chunks carrying a short tone burst every
// fifth chunk, a 120 BPM pulse.
func beatChunk(i int) []float32 {
	chunk := make([]float32, testSampleRate/10)
	if i%5 != 0 {
		return chunk
	}
	const (
		burstOffset = 1000
		burstLen    = 2048
	)
	for j := 0; j < burstLen; j++ {
		chunk[burstOffset+j] = float32(math.Sin(2 * math.Pi * 1000 * float64(j) / testSampleRate))
	}
	return chunk
}

func TestNewInvalidRate(t *testing.T) {
	if _, err := New(0, Options{}); err == nil {
		t.Error("Expected error for zero sample rate, got nil")
	}
}

func TestTickSilence(t *testing.T) {
	p, _ := testPipeline(t)

	snap := p.Tick(make([]float32, testSampleRate/10), 0.1)

	if snap.Features.Overall != 0 {
		t.Errorf("Expected zero overall energy on silence, got %f", snap.Features.Overall)
	}
	if snap.Tempo.BPM != 120 {
		t.Errorf("Expected default BPM 120, got %f", snap.Tempo.BPM)
	}
	if snap.Transition != nil {
		t.Error("Expected no transition on the first tick")
	}

	clamped := snap.Display.Params
	clamped.Clamp()
	if clamped != snap.Display.Params {
		t.Errorf("Expected display params within legal ranges, got %+v", snap.Display.Params)
	}
}

func TestTickTracksBeatSignal(t *testing.T) {
	p, clk := testPipeline(t)

	var snap Snapshot
	for i := 0; i < 120; i++ {
		snap = p.Tick(beatChunk(i), 0.1)
		clk.Advance(100 * time.Millisecond)
	}

	if snap.Tempo.BPM < 115 || snap.Tempo.BPM > 125 {
		t.Errorf("Expected BPM near 120, got %f", snap.Tempo.BPM)
	}
	if !snap.Tempo.Stable {
		t.Errorf("Expected stable tempo, confidence %f", snap.Tempo.Confidence)
	}
	if len(p.History()) == 0 {
		t.Error("Expected at least one transition over 12s of signal")
	}
	if snap.Mood == "" {
		t.Error("Expected a mood classification")
	}
}

func TestSnapshotReturnsLastTick(t *testing.T) {
	p, clk := testPipeline(t)

	first := p.Tick(beatChunk(0), 0.1)
	if got := p.Snapshot(); got.Tempo != first.Tempo || got.Features != first.Features {
		t.Error("Expected Snapshot to match the last tick")
	}

	clk.Advance(100 * time.Millisecond)
	second := p.Tick(beatChunk(1), 0.1)
	if got := p.Snapshot(); got.Features != second.Features {
		t.Error("Expected Snapshot to refresh after the next tick")
	}
}

func TestResetClearsTempo(t *testing.T) {
	p, clk := testPipeline(t)

	for i := 0; i < 80; i++ {
		p.Tick(beatChunk(i), 0.1)
		clk.Advance(100 * time.Millisecond)
	}

	p.Reset()
	snap := p.Tick(make([]float32, testSampleRate/10), 0.1)
	if snap.Tempo.BPM != 120 || snap.Tempo.Confidence != 0 {
		t.Errorf("Expected default estimate after reset, got %f/%f",
			snap.Tempo.BPM, snap.Tempo.Confidence)
	}
}

func TestTransitionStartsMorph(t *testing.T) {
	p, clk := testPipeline(t)

	var rec *director.Record
	for i := 0; i < 600 && rec == nil; i++ {
		snap := p.Tick(beatChunk(i), 0.1)
		rec = snap.Transition
		clk.Advance(100 * time.Millisecond)
	}
	if rec == nil {
		t.Fatal("Expected a transition within 60s of signal")
	}

	// The committed target flips immediately; the displayed blend
	// catches up over the morph window
	target := p.director.State()
	if target.Pattern != rec.ToPattern {
		t.Errorf("Expected committed pattern %s, got %s", rec.ToPattern, target.Pattern)
	}

	for i := 0; i < 50; i++ {
		p.Tick(make([]float32, testSampleRate/10), 0.1)
		clk.Advance(100 * time.Millisecond)
	}
	if got := p.Snapshot().Display.Pattern; got != rec.ToPattern {
		t.Errorf("Expected displayed pattern %s after the morph, got %s", rec.ToPattern, got)
	}
}

func TestLawForMood(t *testing.T) {
	cases := []struct {
		mood director.Mood
		want morph.Law
	}{
		{director.MoodRhythmic, morph.BeatSync},
		{director.MoodChaotic, morph.EnergyDriven},
		{director.MoodEnergetic, morph.TempoSync},
		{director.MoodMelodic, morph.Smooth},
		{director.MoodAmbient, morph.Smooth},
	}
	for _, c := range cases {
		if got := lawForMood(c.mood); got != c.want {
			t.Errorf("Expected law %s for mood %s, got %s", c.want, c.mood, got)
		}
	}
}
