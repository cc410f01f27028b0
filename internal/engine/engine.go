// Package engine wires the analysis and decision components into a
// single per-chunk tick and publishes the result as a snapshot for the
// renderer boundary.
package engine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/chroma-vj/chromad/internal/audio"
	"github.com/chroma-vj/chromad/internal/clock"
	"github.com/chroma-vj/chromad/internal/director"
	"github.com/chroma-vj/chromad/internal/morph"
	"github.com/chroma-vj/chromad/internal/visual"
)

// Options tunes the pipeline. Zero values get the director defaults.
type Options struct {
	Clock            clock.Clock
	Rand             *rand.Rand
	MinHold          time.Duration
	MaxHold          time.Duration
	BlacklistFor     time.Duration
	MorphDuration    time.Duration
	TransitionChance float64
}

// Snapshot is the full decision output of one tick.
type Snapshot struct {
	Features   audio.Features       `json:"features"`
	Tempo      audio.Estimate       `json:"tempo"`
	Mood       string               `json:"mood"`
	Display    visual.Configuration `json:"display"`
	Transition *director.Record     `json:"transition,omitempty"`
}

// Pipeline owns one of each component and runs them in order each tick.
// Tick is safe to call from one goroutine while snapshots are read from
// others.
type Pipeline struct {
	mu sync.Mutex

	extractor *audio.Extractor
	tracker   *audio.Tracker
	director  *director.Director
	morpher   *morph.Engine

	morphDuration time.Duration

	// Last fully-blended configuration, the morph source for the next
	// transition
	displayed visual.Configuration
	last      Snapshot
}

// New builds a pipeline for a fixed sample rate.
func New(sampleRate int, opts Options) (*Pipeline, error) {
	if opts.Clock == nil {
		opts.Clock = clock.System()
	}

	extractor, err := audio.NewExtractor(sampleRate)
	if err != nil {
		return nil, err
	}
	tracker, err := audio.NewTracker(sampleRate, opts.Clock)
	if err != nil {
		return nil, err
	}

	dir := director.New(director.Config{
		Clock:            opts.Clock,
		Rand:             opts.Rand,
		MinHold:          opts.MinHold,
		MaxHold:          opts.MaxHold,
		BlacklistFor:     opts.BlacklistFor,
		MorphDuration:    opts.MorphDuration,
		TransitionChance: opts.TransitionChance,
	})

	morphDuration := opts.MorphDuration
	if morphDuration <= 0 {
		morphDuration = 2 * time.Second
	}

	return &Pipeline{
		extractor:     extractor,
		tracker:       tracker,
		director:      dir,
		morpher:       morph.New(opts.Clock),
		morphDuration: morphDuration,
		displayed:     dir.State(),
	}, nil
}

// Tick consumes one sample chunk and returns the refreshed snapshot.
func (p *Pipeline) Tick(samples []float32, deltaTime float64) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	features := p.extractor.Analyze(samples, deltaTime)
	tempo := p.tracker.ProcessAudio(samples)

	rec := p.director.Update(tempo.BPM, features.Overall, tempo.BeatDetected, director.Bands{
		Bass:   features.Bass,
		Mid:    features.Mid,
		Treble: features.Treble,
	})
	if rec != nil {
		p.morpher.Start(p.displayed, p.director.State(), lawForMood(p.director.Mood()), p.morphDuration)
	}

	p.morpher.Update(tempo.BPM, features.Overall, tempo.BeatDetected)
	p.displayed = p.morpher.Params()

	display := p.displayed
	display.Params = p.director.RandomizedParams(display.Params)

	p.last = Snapshot{
		Features:   features,
		Tempo:      tempo,
		Mood:       p.director.Mood().String(),
		Display:    display,
		Transition: rec,
	}
	return p.last
}

// Snapshot returns the most recent tick's output.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// History returns the director's transition log.
func (p *Pipeline) History() []director.Record {
	return p.director.History()
}

// Reset clears tempo history, for stream discontinuities such as a new
// input source.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tracker.Reset()
}

// lawForMood maps the music's character onto a morph law: rhythmic
// music rides the beat, chaotic music rides the energy, fast music
// scales with tempo, and everything else eases smoothly.
func lawForMood(m director.Mood) morph.Law {
	switch m {
	case director.MoodRhythmic:
		return morph.BeatSync
	case director.MoodChaotic:
		return morph.EnergyDriven
	case director.MoodEnergetic:
		return morph.TempoSync
	default:
		return morph.Smooth
	}
}
