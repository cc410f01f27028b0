package morph

import (
	"math"
	"testing"
	"time"

	"github.com/chroma-vj/chromad/internal/clock"
	"github.com/chroma-vj/chromad/internal/visual"
)

func testConfigs() (visual.Configuration, visual.Configuration) {
	from := visual.DefaultConfiguration()
	from.Pattern = visual.PatternPlasma
	from.Params.Brightness = 0.5
	from.Params.Hue = 350

	to := visual.DefaultConfiguration()
	to.Pattern = visual.PatternWaves
	to.Palette = visual.PaletteBlocks
	to.ColorMode = visual.ColorNeon
	to.Params.Brightness = 1.5
	to.Params.Hue = 10
	return from, to
}

func TestIdleEngine(t *testing.T) {
	e := New(clock.NewFake(time.Unix(1000, 0)))

	if e.Active() {
		t.Error("Expected new engine to be idle")
	}
	if got := e.Update(120, 0.5, false); got != 1 {
		t.Errorf("Expected idle progress 1, got %f", got)
	}
}

func TestLinearProgress(t *testing.T) {
	clk := clock.NewFake(time.Unix(1000, 0))
	e := New(clk)
	from, to := testConfigs()

	e.Start(from, to, Linear, 2*time.Second)
	if !e.Active() {
		t.Fatal("Expected active engine after Start")
	}

	clk.Advance(500 * time.Millisecond)
	if got := e.Update(120, 0.5, false); math.Abs(got-0.25) > 1e-9 {
		t.Errorf("Expected progress 0.25, got %f", got)
	}

	clk.Advance(500 * time.Millisecond)
	if got := e.Update(120, 0.5, false); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Expected progress 0.5, got %f", got)
	}
}

func TestCompletionSnapsToTarget(t *testing.T) {
	clk := clock.NewFake(time.Unix(1000, 0))
	e := New(clk)
	from, to := testConfigs()

	e.Start(from, to, Linear, 2*time.Second)
	clk.Advance(3 * time.Second)

	if got := e.Update(120, 0.5, false); got != 1 {
		t.Errorf("Expected progress 1 past the duration, got %f", got)
	}
	if e.Active() {
		t.Error("Expected engine idle after completion")
	}
	if got := e.Params(); got != to {
		t.Errorf("Expected params to snap to target, got %+v", got)
	}

	// Further updates stay locked at completion
	clk.Advance(time.Hour)
	if got := e.Update(120, 0.5, false); got != 1 {
		t.Errorf("Expected progress to stay 1, got %f", got)
	}
	if got := e.Params(); got != to {
		t.Errorf("Expected params to stay at target, got %+v", got)
	}
}

func TestDiscreteFieldsSwitchAtMidpoint(t *testing.T) {
	clk := clock.NewFake(time.Unix(1000, 0))
	e := New(clk)
	from, to := testConfigs()

	e.Start(from, to, Linear, 2*time.Second)

	clk.Advance(800 * time.Millisecond)
	e.Update(120, 0.5, false)
	if got := e.Params(); got.Pattern != from.Pattern || got.Palette != from.Palette {
		t.Errorf("Expected source pattern/palette before midpoint, got %s/%s", got.Pattern, got.Palette)
	}

	clk.Advance(200 * time.Millisecond)
	e.Update(120, 0.5, false)
	got := e.Params()
	if got.Pattern != to.Pattern || got.Palette != to.Palette || got.ColorMode != to.ColorMode {
		t.Errorf("Expected target pattern/palette/colorMode at midpoint, got %s/%s/%s",
			got.Pattern, got.Palette, got.ColorMode)
	}
}

func TestHueShortestPath(t *testing.T) {
	clk := clock.NewFake(time.Unix(1000, 0))
	e := New(clk)
	from, to := testConfigs() // hue 350 -> 10

	e.Start(from, to, Linear, 2*time.Second)
	clk.Advance(time.Second)
	e.Update(120, 0.5, false)

	// Halfway along the short arc through 360 lands at 0, not 180
	if got := e.Params().Params.Hue; math.Abs(got) > 1e-9 {
		t.Errorf("Expected hue 0 at midpoint, got %f", got)
	}
}

func TestLerpHue(t *testing.T) {
	cases := []struct {
		from, to, t, want float64
	}{
		{350, 10, 0.5, 0},
		{10, 350, 0.5, 0},
		{0, 180, 0.5, 90},
		{0, 240, 0.5, 300}, // short arc goes backward through 360
		{120, 120, 0.7, 120},
	}
	for _, c := range cases {
		if got := lerpHue(c.from, c.to, c.t); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Expected lerpHue(%f, %f, %f) = %f, got %f", c.from, c.to, c.t, c.want, got)
		}
	}
}

func TestLaws(t *testing.T) {
	cases := []struct {
		name         string
		law          Law
		bpm          float64
		energy       float64
		beatDetected bool
		want         float64
	}{
		{"linear", Linear, 120, 0.5, false, 0.5},
		{"smooth", Smooth, 120, 0.5, false, 0.5},
		{"beatSync on beat", BeatSync, 120, 0.5, true, 0.6},
		{"beatSync off beat", BeatSync, 120, 0.5, false, 0.4},
		{"energyDriven quiet", EnergyDriven, 120, 0.0, false, 0.25},
		{"energyDriven loud", EnergyDriven, 120, 1.0, false, 0.75},
		{"tempoSync nominal", TempoSync, 120, 0.5, false, 0.5},
		{"tempoSync halved", TempoSync, 60, 0.5, false, 0.25},
		{"tempoSync capped", TempoSync, 600, 0.5, false, 1.0},
		{"tempoSync floored", TempoSync, 10, 0.5, false, 0.25},
	}
	for _, c := range cases {
		clk := clock.NewFake(time.Unix(1000, 0))
		e := New(clk)
		from, to := testConfigs()

		e.Start(from, to, c.law, 2*time.Second)
		clk.Advance(time.Second)

		if got := e.Update(c.bpm, c.energy, c.beatDetected); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("%s: Expected progress %f, got %f", c.name, c.want, got)
		}
	}
}

func TestDefaultDuration(t *testing.T) {
	clk := clock.NewFake(time.Unix(1000, 0))
	e := New(clk)
	from, to := testConfigs()

	e.Start(from, to, Linear, 0)
	clk.Advance(time.Second)

	if got := e.Update(120, 0.5, false); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Expected progress 0.5 under the default duration, got %f", got)
	}
}

func TestStop(t *testing.T) {
	clk := clock.NewFake(time.Unix(1000, 0))
	e := New(clk)
	from, to := testConfigs()

	e.Start(from, to, Linear, 2*time.Second)
	clk.Advance(100 * time.Millisecond)
	e.Update(120, 0.5, false)

	e.Stop()
	if e.Active() {
		t.Error("Expected engine idle after Stop")
	}
	if got := e.Progress(); got != 1 {
		t.Errorf("Expected progress 1 after Stop, got %f", got)
	}
	if got := e.Params(); got != to {
		t.Errorf("Expected params to snap to target after Stop, got %+v", got)
	}
}

func TestLawNames(t *testing.T) {
	if TempoSync.String() != "tempoSync" {
		t.Errorf("Expected tempoSync, got %s", TempoSync.String())
	}
	if Law(99).String() != "unknown" {
		t.Errorf("Expected unknown, got %s", Law(99).String())
	}
}
