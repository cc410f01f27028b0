// Package director decides when the visual state should change and
// what it should change to. It classifies the music into a coarse mood,
// fires transitions off beat phrases, energy swings, mood shifts, and a
// random term, and keeps recently-used patterns and palettes under a
// cooldown so the display never loops through the same few looks.
package director

import (
	"math/rand"
	"sync"
	"time"

	"github.com/chroma-vj/chromad/internal/clock"
	"github.com/chroma-vj/chromad/internal/visual"
)

// Mood is a coarse classification of the music's character.
type Mood int

const (
	MoodAmbient Mood = iota
	MoodEnergetic
	MoodMelodic
	MoodRhythmic
	MoodChaotic

	numMoods
)

var moodNames = [...]string{"ambient", "energetic", "melodic", "rhythmic", "chaotic"}

func (m Mood) String() string {
	if m < 0 || m >= numMoods {
		return "unknown"
	}
	return moodNames[m]
}

// Trigger records what caused a transition.
type Trigger int

const (
	TriggerTimeout Trigger = iota
	TriggerPhrase
	TriggerEnergySpike
	TriggerEnergyTrough
	TriggerMood
	TriggerRandom
)

var triggerNames = [...]string{"timeout", "phrase", "energySpike", "energyTrough", "mood", "random"}

func (t Trigger) String() string {
	if t < 0 || int(t) >= len(triggerNames) {
		return "unknown"
	}
	return triggerNames[t]
}

// Bands carries the three band energies the mood classifier reads.
type Bands struct {
	Bass   float64
	Mid    float64
	Treble float64
}

// Record is one entry in the transition log.
type Record struct {
	FromPattern visual.Pattern
	ToPattern   visual.Pattern
	FromPalette visual.Palette
	ToPalette   visual.Palette
	Trigger     Trigger
	Timestamp   time.Time
}

// Config controls the director's timing and entropy sources. Zero
// values get defaults; tests inject a fake clock and a seeded Rand.
type Config struct {
	Clock            clock.Clock
	Rand             *rand.Rand
	MinHold          time.Duration // refuse transitions before this (default 8s)
	MaxHold          time.Duration // force a transition after this (default 45s)
	BlacklistFor     time.Duration // cooldown on vacated pattern/palette (default 30s)
	MorphDuration    time.Duration // transition length (default 2s)
	TransitionChance float64       // per-tick random transition probability (default 0.3)
}

const (
	defaultMinHold       = 8 * time.Second
	defaultMaxHold       = 45 * time.Second
	defaultBlacklist     = 30 * time.Second
	defaultMorphDuration = 2 * time.Second
	defaultChance        = 0.3

	moodTriggerGate = 10 * time.Second
	beatWindow      = 4 * time.Second
	maxBeatHistory  = 32
	maxHistory      = 64
)

// Director owns the committed visual state and the transition policy.
type Director struct {
	mu sync.Mutex

	clk   clock.Clock
	rng   *rand.Rand
	epoch time.Time

	minHold       time.Duration
	maxHold       time.Duration
	blacklistFor  time.Duration
	morphDuration time.Duration
	chance        float64

	current visual.Configuration

	bpm    float64
	energy float64
	mood   Mood

	lastBeat    time.Time
	beatHistory []time.Time

	stateSince     time.Time
	lastTransition time.Time

	patternBlacklist map[visual.Pattern]time.Time
	paletteBlacklist map[visual.Palette]time.Time

	history []Record
}

// New creates a director holding the default visual configuration.
func New(cfg Config) *Director {
	if cfg.Clock == nil {
		cfg.Clock = clock.System()
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.MinHold <= 0 {
		cfg.MinHold = defaultMinHold
	}
	if cfg.MaxHold <= 0 {
		cfg.MaxHold = defaultMaxHold
	}
	if cfg.BlacklistFor <= 0 {
		cfg.BlacklistFor = defaultBlacklist
	}
	if cfg.MorphDuration <= 0 {
		cfg.MorphDuration = defaultMorphDuration
	}
	if cfg.TransitionChance <= 0 {
		cfg.TransitionChance = defaultChance
	}

	now := cfg.Clock.Now()
	return &Director{
		clk:              cfg.Clock,
		rng:              cfg.Rand,
		epoch:            now,
		minHold:          cfg.MinHold,
		maxHold:          cfg.MaxHold,
		blacklistFor:     cfg.BlacklistFor,
		morphDuration:    cfg.MorphDuration,
		chance:           cfg.TransitionChance,
		current:          visual.DefaultConfiguration(),
		bpm:              120,
		energy:           0.5,
		mood:             MoodMelodic,
		stateSince:       now,
		patternBlacklist: make(map[visual.Pattern]time.Time),
		paletteBlacklist: make(map[visual.Palette]time.Time),
	}
}

// Update feeds one tick of analysis results. It returns a non-nil
// Record when this tick fired a transition, nil otherwise.
func (d *Director) Update(bpm, energy float64, beatDetected bool, bands Bands) *Record {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clk.Now()
	d.bpm = bpm
	d.energy = energy
	d.mood = classifyMood(bpm, energy, bands)

	if beatDetected {
		d.lastBeat = now
		d.beatHistory = append(d.beatHistory, now)
		if len(d.beatHistory) > maxBeatHistory {
			d.beatHistory = d.beatHistory[len(d.beatHistory)-maxBeatHistory:]
		}
	}

	trigger, ok := d.shouldTransition(now)
	if !ok {
		return nil
	}
	rec := d.transition(now, trigger)
	return &rec
}

// State returns the committed target configuration.
func (d *Director) State() visual.Configuration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Mood returns the most recent mood classification.
func (d *Director) Mood() Mood {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mood
}

// MorphFactor reports eased progress through the current transition
// window, 0 when holding.
func (d *Director) MorphFactor() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clk.Now()
	if !d.transitionActive(now) {
		return 0
	}
	t := float64(now.Sub(d.lastTransition)) / float64(d.morphDuration)
	return easeInOutCubic(t)
}

// History returns a copy of the transition log, oldest first.
func (d *Director) History() []Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Record, len(d.history))
	copy(out, d.history)
	return out
}

// classifyMood buckets the music by tempo, energy, and spectral tilt.
// First match wins.
func classifyMood(bpm, energy float64, bands Bands) Mood {
	switch {
	case bpm > 140 && energy > 0.7:
		return MoodEnergetic
	case bpm < 80 && energy < 0.3:
		return MoodAmbient
	case bands.Bass > 0.6 && bpm > 100 && bpm < 140:
		return MoodRhythmic
	case bands.Treble > 0.7 && energy > 0.5:
		return MoodChaotic
	default:
		return MoodMelodic
	}
}

func (d *Director) transitionActive(now time.Time) bool {
	return !d.lastTransition.IsZero() && now.Sub(d.lastTransition) < d.morphDuration
}

func (d *Director) shouldTransition(now time.Time) (Trigger, bool) {
	if d.transitionActive(now) {
		return 0, false
	}

	held := now.Sub(d.stateSince)
	if held > d.maxHold {
		return TriggerTimeout, true
	}
	if held < d.minHold {
		return 0, false
	}

	if d.phraseBoundary(now) {
		return TriggerPhrase, true
	}
	if d.energy > 0.8 {
		return TriggerEnergySpike, true
	}
	if d.energy < 0.2 && d.mood != MoodAmbient {
		return TriggerEnergyTrough, true
	}
	if d.moodTrigger(now) {
		return TriggerMood, true
	}
	if d.rng.Float64() < d.chance {
		return TriggerRandom, true
	}
	return 0, false
}

// phraseBoundary fires when a dense run of beats goes quiet for most of
// an 8-beat phrase, a natural musical seam.
func (d *Director) phraseBoundary(now time.Time) bool {
	if len(d.beatHistory) < 8 || d.bpm <= 0 {
		return false
	}

	recent := 0
	for _, b := range d.beatHistory {
		if now.Sub(b) < beatWindow {
			recent++
		}
	}
	if recent < 8 {
		return false
	}

	phrase := 8 * 60 / d.bpm // seconds
	return now.Sub(d.lastBeat).Seconds() > phrase*0.8
}

func (d *Director) moodTrigger(now time.Time) bool {
	if !d.lastTransition.IsZero() && now.Sub(d.lastTransition) < moodTriggerGate {
		return false
	}
	switch d.mood {
	case MoodChaotic:
		return true
	case MoodEnergetic:
		return d.energy > 0.7
	case MoodAmbient:
		return d.energy < 0.3
	default:
		return false
	}
}

func (d *Director) transition(now time.Time, trigger Trigger) Record {
	d.pruneBlacklists(now)

	next := d.current
	next.Pattern = d.nextPattern()
	next.Palette = d.nextPalette()
	next.ColorMode = moodColorModes[d.mood]

	rec := Record{
		FromPattern: d.current.Pattern,
		ToPattern:   next.Pattern,
		FromPalette: d.current.Palette,
		ToPalette:   next.Palette,
		Trigger:     trigger,
		Timestamp:   now,
	}
	d.history = append(d.history, rec)
	if len(d.history) > maxHistory {
		d.history = d.history[len(d.history)-maxHistory:]
	}

	expiry := now.Add(d.blacklistFor)
	d.patternBlacklist[d.current.Pattern] = expiry
	d.paletteBlacklist[d.current.Palette] = expiry

	d.current = next
	d.stateSince = now
	d.lastTransition = now
	return rec
}

func (d *Director) pruneBlacklists(now time.Time) {
	for p, expiry := range d.patternBlacklist {
		if !now.Before(expiry) {
			delete(d.patternBlacklist, p)
		}
	}
	for p, expiry := range d.paletteBlacklist {
		if !now.Before(expiry) {
			delete(d.paletteBlacklist, p)
		}
	}
}

// nextPattern picks from the mood's preferred set minus the blacklist,
// widening to the full set when filtering empties the pool.
func (d *Director) nextPattern() visual.Pattern {
	candidates := make([]visual.Pattern, 0, visual.NumPatterns)
	for _, p := range moodPatterns[d.mood] {
		if _, ok := d.patternBlacklist[p]; !ok && p != d.current.Pattern {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		for _, p := range visual.AllPatterns() {
			if _, ok := d.patternBlacklist[p]; !ok && p != d.current.Pattern {
				candidates = append(candidates, p)
			}
		}
	}
	if len(candidates) == 0 {
		return d.current.Pattern
	}
	return candidates[d.rng.Intn(len(candidates))]
}

func (d *Director) nextPalette() visual.Palette {
	candidates := make([]visual.Palette, 0, visual.NumPalettes)
	for _, p := range moodPalettes[d.mood] {
		if _, ok := d.paletteBlacklist[p]; !ok {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		for _, p := range visual.AllPalettes() {
			if _, ok := d.paletteBlacklist[p]; !ok {
				candidates = append(candidates, p)
			}
		}
	}
	if len(candidates) == 0 {
		return d.current.Palette
	}
	return candidates[d.rng.Intn(len(candidates))]
}

// easeInOutCubic is the shared transition easing curve.
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

// Mood preference tables, indexed directly by Mood.
var moodPatterns = [numMoods][]visual.Pattern{
	MoodAmbient:   {visual.PatternWaves, visual.PatternRipples, visual.PatternVortex, visual.PatternNoise},
	MoodEnergetic: {visual.PatternPlasma, visual.PatternGlitch, visual.PatternSpiral, visual.PatternRings},
	MoodMelodic:   {visual.PatternPlasma, visual.PatternWaves, visual.PatternGeometric, visual.PatternHexagonal},
	MoodRhythmic:  {visual.PatternRings, visual.PatternGrid, visual.PatternDiamonds, visual.PatternOctgrams},
	MoodChaotic:   {visual.PatternFractal, visual.PatternVoronoi, visual.PatternTruchet, visual.PatternWarpedFbm},
}

var moodPalettes = [numMoods][]visual.Palette{
	MoodAmbient:   {visual.PaletteSmooth},
	MoodEnergetic: {visual.PaletteBlocks},
	MoodMelodic:   {visual.PaletteStandard},
	MoodRhythmic:  {visual.PaletteGeometric},
	MoodChaotic:   {visual.PaletteBraille},
}

var moodColorModes = [numMoods]visual.ColorMode{
	MoodAmbient:   visual.ColorCool,
	MoodEnergetic: visual.ColorNeon,
	MoodMelodic:   visual.ColorRainbow,
	MoodRhythmic:  visual.ColorCyberpunk,
	MoodChaotic:   visual.ColorWarped,
}
