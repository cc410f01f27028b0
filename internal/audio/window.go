// Package audio turns raw sample chunks into the features and tempo
// estimates the director consumes. All analysis is pure in-memory math;
// nothing here touches a device or blocks.
package audio

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	minFFTSize = 256
	maxFFTSize = 2048
)

// fftSizeFor picks a power-of-two transform size for a chunk of n
// samples, clamped to [minFFTSize, maxFFTSize].
func fftSizeFor(n int) int {
	if n > maxFFTSize {
		n = maxFFTSize
	}
	size := minFFTSize
	for size < n {
		size <<= 1
	}
	return size
}

// spectrum owns a reusable FFT plan, Hann window, and scratch buffers
// for one transform size.
type spectrum struct {
	size    int
	fft     *fourier.FFT
	window  []float64
	scratch []float64
}

func newSpectrum(size int) *spectrum {
	window := make([]float64, size)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}
	return &spectrum{
		size:    size,
		fft:     fourier.NewFFT(size),
		window:  window,
		scratch: make([]float64, size),
	}
}

// magnitudes windows the samples, transforms them, and writes the
// magnitude of each of the size/2+1 coefficients into dst. Input
// shorter than the transform size is zero-padded.
func (s *spectrum) magnitudes(samples []float64, dst []float64) []float64 {
	n := len(samples)
	if n > s.size {
		n = s.size
	}
	for i := 0; i < n; i++ {
		s.scratch[i] = samples[i] * s.window[i]
	}
	for i := n; i < s.size; i++ {
		s.scratch[i] = 0
	}

	coeffs := s.fft.Coefficients(nil, s.scratch)

	if cap(dst) < len(coeffs) {
		dst = make([]float64, len(coeffs))
	}
	dst = dst[:len(coeffs)]
	for i, c := range coeffs {
		dst[i] = math.Sqrt(real(c)*real(c) + imag(c)*imag(c))
	}
	return dst
}

// clamp01 bounds v to [0,1] and maps NaN/Inf to 0 so degenerate input
// never propagates.
func clamp01(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
