// Package visual defines the configuration vocabulary consumed by the
// external renderer: pattern families, character palettes, color modes,
// and the continuous shader parameters.
package visual

// Pattern identifies a procedural pattern family.
type Pattern int

const (
	PatternPlasma Pattern = iota
	PatternWaves
	PatternRipples
	PatternVortex
	PatternNoise
	PatternGeometric
	PatternVoronoi
	PatternTruchet
	PatternHexagonal
	PatternInterference
	PatternFractal
	PatternGlitch
	PatternSpiral
	PatternRings
	PatternGrid
	PatternDiamonds
	PatternSphere
	PatternOctgrams
	PatternWarpedFbm

	numPatterns
)

var patternNames = [...]string{
	"plasma", "waves", "ripples", "vortex", "noise", "geometric",
	"voronoi", "truchet", "hexagonal", "interference", "fractal",
	"glitch", "spiral", "rings", "grid", "diamonds", "sphere",
	"octgrams", "warpedFbm",
}

func (p Pattern) String() string {
	if p < 0 || p >= numPatterns {
		return "unknown"
	}
	return patternNames[p]
}

// AllPatterns returns every pattern in declaration order.
func AllPatterns() []Pattern {
	out := make([]Pattern, numPatterns)
	for i := range out {
		out[i] = Pattern(i)
	}
	return out
}

// NumPatterns is the number of pattern families.
const NumPatterns = int(numPatterns)

// Palette identifies a character palette used for pixel-to-glyph mapping.
type Palette int

const (
	PaletteStandard Palette = iota
	PaletteBlocks
	PaletteCircles
	PaletteSmooth
	PaletteBraille
	PaletteGeometric
	PaletteMixed
	PaletteDots
	PaletteExtended
	PaletteSimple
	PaletteShades
	PaletteLines
	PaletteTriangles
	PaletteArrows
	PalettePowerline
	PaletteBoxDraw

	numPalettes
)

var paletteNames = [...]string{
	"standard", "blocks", "circles", "smooth", "braille", "geometric",
	"mixed", "dots", "extended", "simple", "shades", "lines",
	"triangles", "arrows", "powerline", "boxDraw",
}

func (p Palette) String() string {
	if p < 0 || p >= numPalettes {
		return "unknown"
	}
	return paletteNames[p]
}

// AllPalettes returns every palette in declaration order.
func AllPalettes() []Palette {
	out := make([]Palette, numPalettes)
	for i := range out {
		out[i] = Palette(i)
	}
	return out
}

// NumPalettes is the number of character palettes.
const NumPalettes = int(numPalettes)

// ColorMode identifies a color mapping scheme.
type ColorMode int

const (
	ColorRainbow ColorMode = iota
	ColorMonochrome
	ColorDuotone
	ColorWarm
	ColorCool
	ColorNeon
	ColorPastel
	ColorCyberpunk
	ColorWarped
	ColorChromatic

	numColorModes
)

var colorModeNames = [...]string{
	"rainbow", "monochrome", "duotone", "warm", "cool", "neon",
	"pastel", "cyberpunk", "warped", "chromatic",
}

func (c ColorMode) String() string {
	if c < 0 || c >= numColorModes {
		return "unknown"
	}
	return colorModeNames[c]
}

// AllColorModes returns every color mode in declaration order.
func AllColorModes() []ColorMode {
	out := make([]ColorMode, numColorModes)
	for i := range out {
		out[i] = ColorMode(i)
	}
	return out
}

// NumColorModes is the number of color modes.
const NumColorModes = int(numColorModes)
