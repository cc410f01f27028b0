// Package morph blends two visual configurations over time so pattern
// changes never hard-cut. Progress can be warped by the beat, the
// energy level, or the tempo.
package morph

import (
	"time"

	"github.com/chroma-vj/chromad/internal/clock"
	"github.com/chroma-vj/chromad/internal/visual"
)

// Law selects how base time-progress is shaped during a morph.
type Law int

const (
	Linear Law = iota
	Smooth
	BeatSync
	EnergyDriven
	TempoSync
)

var lawNames = [...]string{"linear", "smooth", "beatSync", "energyDriven", "tempoSync"}

func (l Law) String() string {
	if l < 0 || int(l) >= len(lawNames) {
		return "unknown"
	}
	return lawNames[l]
}

const defaultDuration = 2 * time.Second

// Engine runs one morph at a time. Starting a new morph replaces any
// in-flight one.
type Engine struct {
	clk clock.Clock

	active   bool
	start    time.Time
	duration time.Duration
	progress float64
	law      Law

	source visual.Configuration
	target visual.Configuration
}

// New creates an idle engine. A nil clock falls back to the system
// clock.
func New(clk clock.Clock) *Engine {
	if clk == nil {
		clk = clock.System()
	}
	return &Engine{clk: clk, progress: 1}
}

// Start begins morphing from one configuration to another. A
// non-positive duration gets the 2s default.
func (e *Engine) Start(from, to visual.Configuration, law Law, duration time.Duration) {
	if duration <= 0 {
		duration = defaultDuration
	}
	e.active = true
	e.start = e.clk.Now()
	e.duration = duration
	e.progress = 0
	e.law = law
	e.source = from
	e.target = to
}

// Update advances the morph using the current audio state and returns
// the adjusted progress. Idle engines report 1.
func (e *Engine) Update(bpm, energy float64, beatDetected bool) float64 {
	if !e.active {
		return 1
	}

	base := float64(e.clk.Now().Sub(e.start)) / float64(e.duration)

	var adjusted float64
	switch e.law {
	case Linear:
		adjusted = base
	case Smooth:
		adjusted = easeInOutCubic(base)
	case BeatSync:
		if beatDetected {
			adjusted = base * 1.2
		} else {
			adjusted = base * 0.8
		}
	case EnergyDriven:
		adjusted = base * (0.5 + energy)
	case TempoSync:
		factor := bpm / 120
		if factor < 0.5 {
			factor = 0.5
		}
		if factor > 2 {
			factor = 2
		}
		adjusted = base * factor
	default:
		adjusted = base
	}

	if adjusted < 0 {
		adjusted = 0
	}
	if adjusted >= 1 {
		adjusted = 1
		e.active = false
	}
	e.progress = adjusted
	return e.progress
}

// Params returns the blended configuration. When idle it passes the
// target through unchanged, so it is safe to call every tick.
func (e *Engine) Params() visual.Configuration {
	if !e.active {
		return e.target
	}

	t := e.progress
	out := e.source
	if t >= 0.5 {
		out.Pattern = e.target.Pattern
		out.Palette = e.target.Palette
		out.ColorMode = e.target.ColorMode
	}

	s, d := &e.source.Params, &e.target.Params
	p := &out.Params
	p.Frequency = lerp(s.Frequency, d.Frequency, t)
	p.Amplitude = lerp(s.Amplitude, d.Amplitude, t)
	p.Speed = lerp(s.Speed, d.Speed, t)
	p.Scale = lerp(s.Scale, d.Scale, t)
	p.NoiseStrength = lerp(s.NoiseStrength, d.NoiseStrength, t)
	p.DistortAmplitude = lerp(s.DistortAmplitude, d.DistortAmplitude, t)
	p.NoiseScale = lerp(s.NoiseScale, d.NoiseScale, t)
	p.Brightness = lerp(s.Brightness, d.Brightness, t)
	p.Contrast = lerp(s.Contrast, d.Contrast, t)
	p.Hue = lerpHue(s.Hue, d.Hue, t)
	p.Saturation = lerp(s.Saturation, d.Saturation, t)
	p.Gamma = lerp(s.Gamma, d.Gamma, t)
	p.Vignette = lerp(s.Vignette, d.Vignette, t)
	p.VignetteSoftness = lerp(s.VignetteSoftness, d.VignetteSoftness, t)
	p.GlyphSharpness = lerp(s.GlyphSharpness, d.GlyphSharpness, t)
	return out
}

// Active reports whether a morph is in flight.
func (e *Engine) Active() bool { return e.active }

// Progress returns the most recent adjusted progress.
func (e *Engine) Progress() float64 { return e.progress }

// Stop ends the morph immediately; Params snaps to the target.
func (e *Engine) Stop() {
	e.active = false
	e.progress = 1
}

func lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}

// lerpHue interpolates along the shortest angular path, wrapping
// through the 0/360 boundary when that is closer.
func lerpHue(from, to, t float64) float64 {
	diff := to - from
	if diff > 180 {
		diff -= 360
	} else if diff < -180 {
		diff += 360
	}
	return visual.WrapHue(from + diff*t)
}

func easeInOutCubic(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	if t < 0.5 {
		return 4 * t * t * t
	}
	f := 2*t - 2
	return 1 + f*f*f/2
}
