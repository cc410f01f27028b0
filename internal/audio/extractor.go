package audio

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// Envelope follower rates
	attackRate  = 0.98
	releaseRate = 0.85

	// Rolling history lengths, in analysis ticks
	bassHistoryLen   = 30
	energyHistoryLen = 60

	dropCooldownSec = 1.0
)

// Features is the per-tick spectral summary of one sample chunk.
// All numeric fields are in [0,1].
type Features struct {
	Bass         float64 `json:"bass"`
	Mid          float64 `json:"mid"`
	Treble       float64 `json:"treble"`
	Overall      float64 `json:"overall"`
	BeatStrength float64 `json:"beatStrength"`
	IsDrop       bool    `json:"isDrop"`
}

// Extractor computes banded energy, beat strength, and drop detection
// from raw mono samples. It keeps smoothing state across calls, so a
// single instance must see the stream in order.
type Extractor struct {
	sampleRate float64

	// One spectrum per transform size, reused across calls
	spectra map[int]*spectrum
	mags    []float64
	mono    []float64

	// Envelope peaks per band
	bassPeak   float64
	midPeak    float64
	treblePeak float64

	// Beat state
	previousBass float64
	beatPulse    float64

	// Drop state
	bassHistory  []float64
	dropCooldown float64

	// Variance boost state
	energyHistory []float64
}

// NewExtractor creates an extractor for a fixed sample rate.
func NewExtractor(sampleRate int) (*Extractor, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	return &Extractor{
		sampleRate:    float64(sampleRate),
		spectra:       make(map[int]*spectrum),
		bassHistory:   make([]float64, 0, bassHistoryLen),
		energyHistory: make([]float64, 0, energyHistoryLen),
	}, nil
}

// Analyze computes the features for one chunk. deltaTime is the elapsed
// time since the previous chunk, in seconds. An empty chunk yields zero
// features and leaves smoothing state untouched.
func (e *Extractor) Analyze(samples []float32, deltaTime float64) Features {
	if len(samples) == 0 {
		return Features{}
	}

	size := fftSizeFor(len(samples))
	sp := e.spectra[size]
	if sp == nil {
		sp = newSpectrum(size)
		e.spectra[size] = sp
	}

	// Most-recent samples, converted to float64
	start := 0
	if len(samples) > size {
		start = len(samples) - size
	}
	if cap(e.mono) < size {
		e.mono = make([]float64, size)
	}
	e.mono = e.mono[:0]
	for _, s := range samples[start:] {
		e.mono = append(e.mono, float64(s))
	}

	e.mags = sp.magnitudes(e.mono, e.mags)
	freqRes := e.sampleRate / float64(size)

	bassRaw := bandEnergy(e.mags, 20, 250, freqRes)
	midRaw := bandEnergy(e.mags, 250, 2000, freqRes)
	trebleRaw := bandEnergy(e.mags, 2000, 8000, freqRes)

	e.bassPeak = envelope(e.bassPeak, bassRaw)
	e.midPeak = envelope(e.midPeak, midRaw)
	e.treblePeak = envelope(e.treblePeak, trebleRaw)

	bass := expand(bassRaw, e.bassPeak)
	mid := expand(midRaw, e.midPeak)
	treble := expand(trebleRaw, e.treblePeak)
	overall := (bass + mid + treble) / 3

	e.energyHistory = append(e.energyHistory, overall)
	if len(e.energyHistory) > energyHistoryLen {
		e.energyHistory = e.energyHistory[1:]
	}

	// Beat strength from the frame-to-frame bass rise, with a decaying
	// pulse so strong hits linger across a few ticks
	bassDiff := bassRaw - e.previousBass
	beatStrength := clamp01(bassDiff * 10)
	if beatStrength > 0.3 {
		e.beatPulse = 1.0
	}
	e.beatPulse *= 0.85
	beatStrength = clamp01(beatStrength + e.beatPulse*0.5)

	e.bassHistory = append(e.bassHistory, bassRaw)
	if len(e.bassHistory) > bassHistoryLen {
		e.bassHistory = e.bassHistory[1:]
	}

	isDrop := false
	if e.dropCooldown <= 0 {
		avgBass := stat.Mean(e.bassHistory, nil)
		if len(e.bassHistory) >= bassHistoryLen && bassRaw > avgBass*2 && bassDiff > 0.1 {
			isDrop = true
			e.dropCooldown = dropCooldownSec
		}
	} else {
		e.dropCooldown -= deltaTime
		if e.dropCooldown < 0 {
			e.dropCooldown = 0
		}
	}

	e.previousBass = bassRaw

	boost := 1 + e.energyVariance()*0.5

	return Features{
		Bass:         clamp01(bass * boost),
		Mid:          clamp01(mid * boost),
		Treble:       clamp01(treble * boost),
		Overall:      clamp01(overall * boost),
		BeatStrength: beatStrength,
		IsDrop:       isDrop,
	}
}

// bandEnergy sums magnitudes over [freqMin, freqMax) Hz and normalizes
// by the bin count.
func bandEnergy(mags []float64, freqMin, freqMax, freqRes float64) float64 {
	binMin := int(freqMin / freqRes)
	binMax := int(freqMax / freqRes)
	if binMax > len(mags) {
		binMax = len(mags)
	}
	if binMin >= binMax {
		return 0
	}

	var energy float64
	for _, m := range mags[binMin:binMax] {
		energy += m
	}
	return clamp01(energy / float64(binMax-binMin))
}

// envelope follows rising values quickly and decays slowly otherwise.
func envelope(peak, value float64) float64 {
	if value > peak {
		return peak*attackRate + value*(1-attackRate)
	}
	return peak * releaseRate
}

// expand applies dynamic-range expansion against the envelope peak so
// transients pop. With no meaningful peak the raw value passes through.
func expand(raw, peak float64) float64 {
	if peak < 0.01 {
		return raw
	}

	ratio := raw / peak
	expanded := math.Pow(ratio, 0.7)

	boost := 1.0
	if ratio > 0.85 {
		boost = 1 + (ratio-0.85)*2
	}

	return math.Min(expanded*peak*boost, 1)
}

// energyVariance measures how dynamic the recent stream has been.
// Returns 0 until enough history accumulates.
func (e *Extractor) energyVariance() float64 {
	if len(e.energyHistory) < 10 {
		return 0
	}
	v := stat.PopVariance(e.energyHistory, nil)
	return math.Min(math.Sqrt(v), 1)
}
