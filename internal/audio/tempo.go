package audio

import (
	"fmt"
	"math"
	"time"

	"github.com/chroma-vj/chromad/internal/clock"
)

const (
	// Onset detection
	fluxFrameSize  = 512
	fluxHopSize    = 256
	onsetThreshold = 0.3
	// Minimum spacing between accepted onsets; the sample window
	// overlaps successive calls, so the same hit would otherwise be
	// detected twice
	minOnsetGap = 100 * time.Millisecond

	// Tempo estimation
	onsetWindow = 8 * time.Second
	minBPM      = 60.0
	maxBPM      = 200.0
	defaultBPM  = 120.0

	stabilityThreshold = 0.7
)

// Estimate is the tracker's current tempo belief.
type Estimate struct {
	BPM          float64 `json:"bpm"`
	Confidence   float64 `json:"confidence"`
	BeatDetected bool    `json:"beatDetected"`
	Stable       bool    `json:"stable"`
}

// Tracker estimates tempo from onset timing. It buffers roughly 100ms
// of samples, detects onsets via spectral flux, and clusters
// inter-onset intervals into BPM candidates, folding half/double-tempo
// octave errors into [60, 200].
type Tracker struct {
	sampleRate float64
	clk        clock.Clock

	// Ring of the most recent ~100ms of samples
	buffer    []float64
	bufferCap int

	sp       *spectrum
	curMags  []float64
	prevMags []float64

	onsets    []time.Time
	lastOnset time.Time

	bpm        float64
	confidence float64
}

// NewTracker creates a tempo tracker for a fixed sample rate. A nil
// clock falls back to the system clock.
func NewTracker(sampleRate int, clk clock.Clock) (*Tracker, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	if clk == nil {
		clk = clock.System()
	}
	return &Tracker{
		sampleRate: float64(sampleRate),
		clk:        clk,
		bufferCap:  sampleRate / 10,
		sp:         newSpectrum(fluxFrameSize),
		bpm:        defaultBPM,
	}, nil
}

// ProcessAudio feeds one chunk of samples and returns the refreshed
// estimate. With too few onsets the previous BPM and confidence are
// retained, never reset.
func (t *Tracker) ProcessAudio(samples []float32) Estimate {
	for _, s := range samples {
		t.buffer = append(t.buffer, float64(s))
	}
	if overflow := len(t.buffer) - t.bufferCap; overflow > 0 {
		t.buffer = t.buffer[overflow:]
	}

	now := t.clk.Now()
	onsets := t.detectOnsets(now)

	beatDetected := false
	for _, ts := range onsets {
		if !t.lastOnset.IsZero() && ts.Sub(t.lastOnset) < minOnsetGap {
			continue
		}
		t.onsets = append(t.onsets, ts)
		t.lastOnset = ts
		beatDetected = true
	}

	// Expire onsets outside the analysis window
	cutoff := now.Add(-onsetWindow)
	for len(t.onsets) > 0 && t.onsets[0].Before(cutoff) {
		t.onsets = t.onsets[1:]
	}

	if len(t.onsets) >= 4 {
		t.estimateTempo()
	}

	return Estimate{
		BPM:          t.bpm,
		Confidence:   t.confidence,
		BeatDetected: beatDetected,
		Stable:       t.confidence > stabilityThreshold,
	}
}

// Reset clears all history and restores the default estimate.
func (t *Tracker) Reset() {
	t.buffer = t.buffer[:0]
	t.onsets = nil
	t.lastOnset = time.Time{}
	t.prevMags = nil
	t.bpm = defaultBPM
	t.confidence = 0
}

// detectOnsets scans the buffer for spectral-flux peaks and maps each
// peak's sample offset to an absolute timestamp.
func (t *Tracker) detectOnsets(now time.Time) []time.Time {
	if len(t.buffer) < fluxFrameSize+fluxHopSize {
		return nil
	}

	var flux []float64
	var offsets []int
	t.prevMags = t.prevMags[:0]

	for start := 0; start+fluxFrameSize <= len(t.buffer); start += fluxHopSize {
		t.curMags = t.sp.magnitudes(t.buffer[start:start+fluxFrameSize], t.curMags)

		if len(t.prevMags) == len(t.curMags) {
			var sum float64
			for i, m := range t.curMags {
				if d := m - t.prevMags[i]; d > 0 {
					sum += d
				}
			}
			flux = append(flux, sum/float64(len(t.curMags)))
			offsets = append(offsets, start)
		}

		t.prevMags = append(t.prevMags[:0], t.curMags...)
	}

	var onsets []time.Time
	for i := 1; i < len(flux)-1; i++ {
		if flux[i] > onsetThreshold && flux[i] > flux[i-1] && flux[i] > flux[i+1] {
			age := float64(len(t.buffer)-offsets[i]) / t.sampleRate
			onsets = append(onsets, now.Add(-time.Duration(age*float64(time.Second))))
		}
	}
	return onsets
}

// estimateTempo clusters inter-onset intervals and votes BPM
// candidates into a rounded histogram. Each supporting interval votes
// the cluster's folded BPM once; half/double siblings get one vote per
// cluster, so octave ambiguity registers without drowning the winner.
func (t *Tracker) estimateTempo() {
	intervals := make([]float64, 0, len(t.onsets)-1)
	for i := 1; i < len(t.onsets); i++ {
		intervals = append(intervals, t.onsets[i].Sub(t.onsets[i-1]).Seconds())
	}

	type cluster struct {
		mean  float64
		count int
	}
	var clusters []cluster
	for _, ivl := range intervals {
		if ivl <= 0 {
			continue
		}
		matched := false
		for i := range clusters {
			ratio := ivl / clusters[i].mean
			if ratio > 0.8 && ratio < 1.2 {
				clusters[i].mean = (clusters[i].mean*float64(clusters[i].count) + ivl) / float64(clusters[i].count+1)
				clusters[i].count++
				matched = true
				break
			}
		}
		if !matched {
			clusters = append(clusters, cluster{mean: ivl, count: 1})
		}
	}

	minSupport := len(intervals) / 4
	if minSupport < 1 {
		minSupport = 1
	}

	var candidates []float64
	for _, c := range clusters {
		if c.count < minSupport {
			continue
		}
		bpm := 60.0 / c.mean
		if bpm >= minBPM && bpm <= maxBPM {
			for i := 0; i < c.count; i++ {
				candidates = append(candidates, bpm)
			}
		}
		if half := bpm / 2; half >= minBPM && half <= maxBPM {
			candidates = append(candidates, half)
		}
		if double := bpm * 2; double >= minBPM && double <= maxBPM {
			candidates = append(candidates, double)
		}
	}
	if len(candidates) == 0 {
		return
	}

	histogram := make(map[int]int)
	for _, bpm := range candidates {
		histogram[int(math.Round(bpm))]++
	}
	best, bestCount := 0, 0
	for bpm, count := range histogram {
		if count > bestCount || (count == bestCount && bpm < best) {
			best, bestCount = bpm, count
		}
	}

	close := 0
	for _, bpm := range candidates {
		if math.Abs(bpm-float64(best)) <= 5 {
			close++
		}
	}

	t.bpm = float64(best)
	t.confidence = float64(close) / float64(len(candidates))
}
