package visual

import "math"

// Params holds the continuous shader parameters the renderer maps to
// GPU uniforms. All fields are kept inside the ranges enforced by Clamp.
type Params struct {
	Frequency        float64 `json:"frequency"`
	Amplitude        float64 `json:"amplitude"`
	Speed            float64 `json:"speed"`
	Scale            float64 `json:"scale"`
	NoiseStrength    float64 `json:"noiseStrength"`
	DistortAmplitude float64 `json:"distortAmplitude"`
	NoiseScale       float64 `json:"noiseScale"`
	Brightness       float64 `json:"brightness"`
	Contrast         float64 `json:"contrast"`
	Hue              float64 `json:"hue"` // degrees, [0, 360)
	Saturation       float64 `json:"saturation"`
	Gamma            float64 `json:"gamma"`
	Vignette         float64 `json:"vignette"`
	VignetteSoftness float64 `json:"vignetteSoftness"`
	GlyphSharpness   float64 `json:"glyphSharpness"`
}

// DefaultParams returns the renderer's neutral parameter set.
func DefaultParams() Params {
	return Params{
		Frequency:        10.0,
		Amplitude:        1.0,
		Speed:            0.5,
		Scale:            1.0,
		NoiseStrength:    0.15,
		DistortAmplitude: 0.5,
		NoiseScale:       0.005,
		Brightness:       1.2,
		Contrast:         1.0,
		Hue:              0.0,
		Saturation:       1.0,
		Gamma:            1.0,
		Vignette:         0.3,
		VignetteSoftness: 0.5,
		GlyphSharpness:   1.0,
	}
}

// AudioReactiveParams returns defaults tuned for audio-driven operation:
// nearly still and dimmed, so the modulation has headroom to push into.
func AudioReactiveParams() Params {
	p := DefaultParams()
	p.Speed = 0.05
	p.Brightness = 0.6
	p.Contrast = 0.8
	p.Amplitude = 0.4
	p.Frequency = 6.0
	return p
}

// Clamp forces every field back into its legal range. Hue wraps instead
// of clamping.
func (p *Params) Clamp() {
	p.Frequency = clampRange(p.Frequency, 3.0, 18.0)
	p.Amplitude = clampRange(p.Amplitude, 0.0, 2.0)
	p.Speed = clampRange(p.Speed, 0.0, 1.0)
	p.Scale = clampRange(p.Scale, 0.1, 5.0)

	p.NoiseStrength = clampRange(p.NoiseStrength, 0.0, 0.5)
	p.DistortAmplitude = clampRange(p.DistortAmplitude, 0.0, 2.0)
	p.NoiseScale = clampRange(p.NoiseScale, 0.0, 0.01)

	p.Brightness = clampRange(p.Brightness, 0.0, 2.0)
	p.Contrast = clampRange(p.Contrast, 0.2, 2.0)
	p.Hue = WrapHue(p.Hue)
	p.Saturation = clampRange(p.Saturation, 0.0, 2.0)
	p.Gamma = clampRange(p.Gamma, 0.5, 2.0)

	p.Vignette = clampRange(p.Vignette, 0.0, 1.0)
	p.VignetteSoftness = clampRange(p.VignetteSoftness, 0.0, 1.0)
	p.GlyphSharpness = clampRange(p.GlyphSharpness, 0.5, 2.0)
}

// WrapHue normalizes a hue angle into [0, 360).
func WrapHue(h float64) float64 {
	h = math.Mod(h, 360.0)
	if h < 0 {
		h += 360.0
	}
	return h
}

func clampRange(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Configuration is a complete visual state: the discrete choices plus
// the continuous parameters.
type Configuration struct {
	Pattern   Pattern   `json:"pattern"`
	Palette   Palette   `json:"palette"`
	ColorMode ColorMode `json:"colorMode"`
	Params    Params    `json:"params"`
}

// DefaultConfiguration returns the startup visual state.
func DefaultConfiguration() Configuration {
	return Configuration{
		Pattern:   PatternPlasma,
		Palette:   PaletteStandard,
		ColorMode: ColorRainbow,
		Params:    AudioReactiveParams(),
	}
}
