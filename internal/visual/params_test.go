package visual

import (
	"math"
	"testing"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()

	if p.Frequency != 10.0 {
		t.Errorf("Expected frequency 10.0, got %f", p.Frequency)
	}
	if p.Brightness != 1.2 {
		t.Errorf("Expected brightness 1.2, got %f", p.Brightness)
	}

	// Defaults must already be legal
	clamped := p
	clamped.Clamp()
	if clamped != p {
		t.Errorf("Expected defaults to survive Clamp unchanged, got %+v", clamped)
	}
}

func TestAudioReactiveParams(t *testing.T) {
	p := AudioReactiveParams()

	if p.Speed != 0.05 {
		t.Errorf("Expected speed 0.05, got %f", p.Speed)
	}
	if p.Brightness != 0.6 {
		t.Errorf("Expected brightness 0.6, got %f", p.Brightness)
	}
	if p.Contrast != 0.8 {
		t.Errorf("Expected contrast 0.8, got %f", p.Contrast)
	}
	if p.Amplitude != 0.4 {
		t.Errorf("Expected amplitude 0.4, got %f", p.Amplitude)
	}
	if p.Frequency != 6.0 {
		t.Errorf("Expected frequency 6.0, got %f", p.Frequency)
	}
}

func TestClampBounds(t *testing.T) {
	p := Params{
		Frequency:        1000,
		Amplitude:        -5,
		Speed:            3,
		Scale:            0,
		NoiseStrength:    2,
		DistortAmplitude: 99,
		NoiseScale:       1,
		Brightness:       -1,
		Contrast:         0,
		Hue:              725,
		Saturation:       10,
		Gamma:            0,
		Vignette:         2,
		VignetteSoftness: -1,
		GlyphSharpness:   100,
	}
	p.Clamp()

	checks := []struct {
		name     string
		value    float64
		min, max float64
	}{
		{"frequency", p.Frequency, 3, 18},
		{"amplitude", p.Amplitude, 0, 2},
		{"speed", p.Speed, 0, 1},
		{"scale", p.Scale, 0.1, 5},
		{"noiseStrength", p.NoiseStrength, 0, 0.5},
		{"distortAmplitude", p.DistortAmplitude, 0, 2},
		{"noiseScale", p.NoiseScale, 0, 0.01},
		{"brightness", p.Brightness, 0, 2},
		{"contrast", p.Contrast, 0.2, 2},
		{"hue", p.Hue, 0, 360},
		{"saturation", p.Saturation, 0, 2},
		{"gamma", p.Gamma, 0.5, 2},
		{"vignette", p.Vignette, 0, 1},
		{"vignetteSoftness", p.VignetteSoftness, 0, 1},
		{"glyphSharpness", p.GlyphSharpness, 0.5, 2},
	}
	for _, c := range checks {
		if c.value < c.min || c.value > c.max {
			t.Errorf("Expected %s in [%f, %f], got %f", c.name, c.min, c.max, c.value)
		}
	}

	if p.Hue != 5 {
		t.Errorf("Expected hue 725 to wrap to 5, got %f", p.Hue)
	}
}

func TestClampNaN(t *testing.T) {
	p := DefaultParams()
	p.Brightness = math.NaN()
	p.Clamp()

	if math.IsNaN(p.Brightness) {
		t.Error("Expected NaN brightness to be clamped, got NaN")
	}
}

func TestWrapHue(t *testing.T) {
	cases := []struct {
		in, out float64
	}{
		{0, 0},
		{360, 0},
		{-30, 330},
		{370, 10},
		{-725, 355},
	}
	for _, c := range cases {
		if got := WrapHue(c.in); math.Abs(got-c.out) > 1e-9 {
			t.Errorf("Expected WrapHue(%f) = %f, got %f", c.in, c.out, got)
		}
	}
}

func TestEnumNames(t *testing.T) {
	if len(AllPatterns()) != NumPatterns {
		t.Errorf("Expected %d patterns, got %d", NumPatterns, len(AllPatterns()))
	}
	if len(AllPalettes()) != NumPalettes {
		t.Errorf("Expected %d palettes, got %d", NumPalettes, len(AllPalettes()))
	}
	if len(AllColorModes()) != NumColorModes {
		t.Errorf("Expected %d color modes, got %d", NumColorModes, len(AllColorModes()))
	}

	if PatternWarpedFbm.String() != "warpedFbm" {
		t.Errorf("Expected warpedFbm, got %s", PatternWarpedFbm.String())
	}
	if Pattern(99).String() != "unknown" {
		t.Errorf("Expected unknown for out-of-range pattern, got %s", Pattern(99).String())
	}
	if PaletteBoxDraw.String() != "boxDraw" {
		t.Errorf("Expected boxDraw, got %s", PaletteBoxDraw.String())
	}
	if ColorChromatic.String() != "chromatic" {
		t.Errorf("Expected chromatic, got %s", ColorChromatic.String())
	}
}
