package director

import (
	"math"

	"github.com/chroma-vj/chromad/internal/visual"
)

// RandomizedParams layers mood-shaped sinusoidal modulation over a base
// parameter set. The result is cosmetic per-frame flavor; it is never
// written back into the committed state. Phase comes from the injected
// clock, so production output drifts with wall time while tests can pin
// it exactly.
func (d *Director) RandomizedParams(base visual.Params) visual.Params {
	d.mu.Lock()
	mood := d.mood
	energy := d.energy
	t := d.clk.Now().Sub(d.epoch).Seconds()
	d.mu.Unlock()

	p := base

	switch mood {
	case MoodAmbient:
		pulse := 0.5 + 0.8*math.Abs(math.Sin(2*math.Pi*0.3*t))
		wave := 1 + 0.5*math.Sin(2*math.Pi*0.1*t)
		p.Frequency *= pulse * wave
		p.Speed *= 0.2 + (energy*0.6)*pulse
		p.Amplitude *= 0.4 + (energy*1.2)*pulse
		p.Brightness *= pulse
		p.Contrast *= wave

	case MoodEnergetic:
		beatPulse := 1 + math.Abs(math.Sin(2*math.Pi*3*t))
		explosion := 1 + 0.8*math.Sin(2*math.Pi*0.2*t)
		p.Frequency *= 1.5 + (energy*1.0)*beatPulse
		p.Speed *= 1 + (energy*0.8)*beatPulse
		p.Amplitude *= 1.2 + (energy*1.0)*beatPulse
		p.Contrast *= beatPulse * explosion
		p.Saturation *= explosion

	case MoodMelodic:
		harmonic := 0.8 + 0.6*math.Abs(math.Sin(2*math.Pi*0.8*t))
		melodyWave := 1 + 0.4*math.Sin(2*math.Pi*0.3*t)
		p.Frequency *= harmonic
		p.Speed *= 0.4 + (energy*0.5)*melodyWave
		p.Amplitude *= 0.6 + (energy*0.8)*harmonic
		p.Saturation *= harmonic * melodyWave
		p.Brightness *= melodyWave

	case MoodRhythmic:
		rhythm := 1 + 0.8*math.Abs(math.Sin(2*math.Pi*2*t))
		beatWave := 1 + 0.6*math.Sin(2*math.Pi*0.5*t)
		p.Frequency *= 1.2 + (energy*0.6)*rhythm
		p.Speed *= 0.8 + (energy*0.4)*rhythm
		p.Amplitude *= 1 + (energy*0.6)*rhythm
		p.Scale *= rhythm * beatWave
		p.Contrast *= beatWave

	case MoodChaotic:
		chaos := 0.3 + 1.4*math.Abs(math.Sin(2*math.Pi*5*t))
		madness := 1 + 0.8*math.Sin(2*math.Pi*0.1*t)
		p.Frequency *= chaos
		p.Speed *= 0.1 + (energy*1.2)*chaos
		p.Amplitude *= 0.2 + (energy*2.0)*chaos
		p.DistortAmplitude *= chaos * madness
		p.NoiseStrength *= madness
	}

	globalPulse := 1 + 0.6*math.Abs(math.Sin(2*math.Pi*1.5*t))
	globalWave := 1 + 0.3*math.Sin(2*math.Pi*0.2*t)
	p.Brightness *= globalPulse
	p.Contrast *= globalWave

	if energy > 0.6 {
		p.Contrast *= 2.0
		p.Saturation *= 1.8
		p.Amplitude *= 1.5
	}

	// Short burst near the end of every second
	if t-math.Floor(t) > 0.95 {
		p.Frequency *= 2
		p.Speed *= 2
	}

	p.Clamp()
	return p
}
